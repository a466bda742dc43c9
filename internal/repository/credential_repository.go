package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/lumenshare/backend/internal/domain"
	"github.com/lumenshare/backend/internal/observability"

	"gorm.io/gorm"
)

var ErrCredentialNotFound = errors.New("credential not found")

type CredentialRepository interface {
	Create(credential *domain.LocalCredential) error
	FindByUserID(userID uint) (*domain.LocalCredential, error)
	FindByEmail(email string) (*domain.LocalCredential, error)
	// UpgradePassword replaces the stored hash and clears the legacy salt
	// in one atomic row update. Either both fields change or neither does.
	UpgradePassword(userID uint, newHash string) error
	UpdatePassword(userID uint, newHash string) error
}

type GormCredentialRepository struct {
	db *gorm.DB
}

func NewCredentialRepository(db *gorm.DB) CredentialRepository {
	return &GormCredentialRepository{db: db}
}

func (r *GormCredentialRepository) Create(credential *domain.LocalCredential) error {
	if err := r.db.Create(credential).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "credential", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "credential", "create", "success")
	return nil
}

func (r *GormCredentialRepository) FindByUserID(userID uint) (*domain.LocalCredential, error) {
	var c domain.LocalCredential
	if err := r.db.Where("user_id = ?", userID).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCredentialNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *GormCredentialRepository) FindByEmail(email string) (*domain.LocalCredential, error) {
	var c domain.LocalCredential
	normalized := strings.TrimSpace(strings.ToLower(email))
	err := r.db.
		Joins("JOIN users ON users.id = local_credentials.user_id").
		Where("users.email = ?", normalized).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCredentialNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *GormCredentialRepository) UpgradePassword(userID uint, newHash string) error {
	res := r.db.Model(&domain.LocalCredential{}).Where("user_id = ?", userID).
		Updates(map[string]any{"password_hash": newHash, "legacy_salt": nil, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		observability.RecordRepositoryOperation(context.Background(), "credential", "upgrade_password", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(context.Background(), "credential", "upgrade_password", "not_found")
		return ErrCredentialNotFound
	}
	observability.RecordRepositoryOperation(context.Background(), "credential", "upgrade_password", "success")
	return nil
}

func (r *GormCredentialRepository) UpdatePassword(userID uint, newHash string) error {
	res := r.db.Model(&domain.LocalCredential{}).Where("user_id = ?", userID).
		Updates(map[string]any{"password_hash": newHash, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrCredentialNotFound
	}
	return nil
}
