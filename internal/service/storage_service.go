package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const (
	maxAvatarSize    = 5 * 1024 * 1024
	presignedURLTTL  = 15 * time.Minute
	avatarPathPrefix = "avatars"
)

var (
	ErrFileTooBig         = errors.New("file size exceeds 5MB limit")
	ErrInvalidFileType    = errors.New("invalid file type, only JPEG and PNG images are allowed")
	ErrUploadFailed       = errors.New("failed to upload file")
	ErrDeleteFailed       = errors.New("failed to delete file")
	ErrUnauthorizedAccess = errors.New("unauthorized access to resource")

	allowedAvatarTypes = map[string]string{
		"image/jpeg": ".jpg",
		"image/png":  ".png",
	}
)

// StorageService stores and serves user avatar images.
type StorageService interface {
	UploadAvatar(ctx context.Context, userID uint, file io.Reader, fileSize int64) (string, error)
	DeleteAvatar(ctx context.Context, userID uint, objectKey string) error
	AvatarURL(ctx context.Context, objectKey string) (string, error)
}

type MinIOStorageService struct {
	client   *minio.Client
	bucket   string
	initOnce sync.Once
	initErr  error
}

func NewMinIOStorageService(endpoint, accessKey, secretKey, bucket string, useSSL bool) (*MinIOStorageService, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return &MinIOStorageService{client: client, bucket: bucket}, nil
}

// lazyInit creates the bucket on first use so startup never blocks on
// object storage availability.
func (s *MinIOStorageService) lazyInit(ctx context.Context) error {
	s.initOnce.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.bucket)
		if err != nil {
			s.initErr = fmt.Errorf("check bucket: %w", err)
			return
		}
		if !exists {
			if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
				s.initErr = fmt.Errorf("create bucket: %w", err)
			}
		}
	})
	return s.initErr
}

// UploadAvatar sniffs the content type from the first bytes rather than
// trusting any client-provided header.
func (s *MinIOStorageService) UploadAvatar(ctx context.Context, userID uint, file io.Reader, fileSize int64) (string, error) {
	if fileSize > maxAvatarSize {
		return "", ErrFileTooBig
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", fmt.Errorf("%w: read head: %v", ErrUploadFailed, err)
	}
	head = head[:n]

	contentType := strings.ToLower(strings.TrimSpace(http.DetectContentType(head)))
	ext, allowed := allowedAvatarTypes[contentType]
	if !allowed {
		return "", ErrInvalidFileType
	}

	if err := s.lazyInit(ctx); err != nil {
		return "", err
	}

	objectKey := fmt.Sprintf("%s/user-%d/%s%s", avatarPathPrefix, userID, uuid.NewString(), ext)
	body := io.MultiReader(bytes.NewReader(head), file)
	_, err = s.client.PutObject(ctx, s.bucket, objectKey, body, fileSize, minio.PutObjectOptions{
		ContentType: contentType,
		UserMetadata: map[string]string{
			"User-Id":     fmt.Sprintf("%d", userID),
			"Uploaded-At": time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	return objectKey, nil
}

func (s *MinIOStorageService) DeleteAvatar(ctx context.Context, userID uint, objectKey string) error {
	if strings.TrimSpace(objectKey) == "" {
		return nil
	}
	if strings.Contains(objectKey, "..") {
		return ErrUnauthorizedAccess
	}
	// Keys are namespaced per user; a key outside the caller's prefix
	// belongs to someone else.
	prefix := fmt.Sprintf("%s/user-%d/", avatarPathPrefix, userID)
	if !strings.HasPrefix(objectKey, prefix) {
		return ErrUnauthorizedAccess
	}
	if err := s.lazyInit(ctx); err != nil {
		return err
	}
	if err := s.client.RemoveObject(ctx, s.bucket, objectKey, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("%w: %v", ErrDeleteFailed, err)
	}
	return nil
}

func (s *MinIOStorageService) AvatarURL(ctx context.Context, objectKey string) (string, error) {
	if strings.TrimSpace(objectKey) == "" {
		return "", fmt.Errorf("empty object key")
	}
	if err := s.lazyInit(ctx); err != nil {
		return "", err
	}
	presigned, err := s.client.PresignedGetObject(ctx, s.bucket, objectKey, presignedURLTTL, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presign avatar url: %w", err)
	}
	return presigned.String(), nil
}

// NoopStorageService serves deployments that run without object
// storage. Uploads are rejected, URL lookups return the key unchanged.
type NoopStorageService struct{}

func (NoopStorageService) UploadAvatar(context.Context, uint, io.Reader, int64) (string, error) {
	return "", errors.New("avatar storage is disabled")
}

func (NoopStorageService) DeleteAvatar(context.Context, uint, string) error { return nil }

func (NoopStorageService) AvatarURL(_ context.Context, objectKey string) (string, error) {
	return objectKey, nil
}
