package handler

import (
	"errors"
	"net/http"

	"github.com/lumenshare/backend/internal/http/middleware"
	"github.com/lumenshare/backend/internal/http/response"
	"github.com/lumenshare/backend/internal/observability"
	"github.com/lumenshare/backend/internal/service"
)

type UserHandler struct {
	userSvc    service.UserServiceInterface
	storageSvc service.StorageService
}

func NewUserHandler(userSvc service.UserServiceInterface, storageSvc service.StorageService) *UserHandler {
	return &UserHandler{userSvc: userSvc, storageSvc: storageSvc}
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	u, err := h.userSvc.GetByID(userID)
	if err != nil {
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "user not found", nil)
		return
	}
	response.JSON(w, r, http.StatusOK, u)
}

func (h *UserHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	u, err := h.userSvc.GetByID(userID)
	if err != nil {
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "user not found", nil)
		return
	}
	file, header, err := r.FormFile("avatar")
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "missing avatar file", nil)
		return
	}
	defer func() { _ = file.Close() }()

	objectKey, err := h.storageSvc.UploadAvatar(r.Context(), userID, file, header.Size)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFileTooBig):
			response.Error(w, r, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", err.Error(), nil)
		case errors.Is(err, service.ErrInvalidFileType):
			response.Error(w, r, http.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE", err.Error(), nil)
		default:
			response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to store avatar", nil)
		}
		return
	}

	url, err := h.storageSvc.AvatarURL(r.Context(), objectKey)
	if err != nil {
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to resolve avatar url", nil)
		return
	}
	if err := h.userSvc.SetAvatar(userID, url, objectKey); err != nil {
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to save avatar", nil)
		return
	}
	// The previous object is orphaned once the record points elsewhere.
	if u.AvatarKey != "" && u.AvatarKey != objectKey {
		if err := h.storageSvc.DeleteAvatar(r.Context(), userID, u.AvatarKey); err != nil {
			observability.Audit(r, "user.avatar.cleanup_failed", "user_id", userID, "object_key", u.AvatarKey, "error", err.Error())
		}
	}
	observability.Audit(r, "user.avatar.uploaded", "user_id", userID, "object_key", objectKey)
	response.JSON(w, r, http.StatusOK, map[string]string{"avatar_url": url})
}

func (h *UserHandler) DeleteAvatar(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	u, err := h.userSvc.GetByID(userID)
	if err != nil {
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "user not found", nil)
		return
	}
	if u.AvatarKey != "" {
		if err := h.storageSvc.DeleteAvatar(r.Context(), userID, u.AvatarKey); err != nil {
			response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to remove avatar", nil)
			return
		}
	}
	if err := h.userSvc.SetAvatar(userID, "", ""); err != nil {
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to remove avatar", nil)
		return
	}
	observability.Audit(r, "user.avatar.removed", "user_id", userID)
	response.JSON(w, r, http.StatusOK, map[string]string{"status": "avatar_removed"})
}

func currentUserID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context", nil)
		return 0, false
	}
	userID, err := service.ParseUserID(claims)
	if err != nil {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid subject", nil)
		return 0, false
	}
	return userID, true
}
