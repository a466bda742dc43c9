package service

import (
	"context"

	"github.com/lumenshare/backend/internal/domain"
	"github.com/lumenshare/backend/internal/repository"
)

type AuthServiceInterface interface {
	GoogleLoginURL(state string) string
	LoginWithGoogleCode(ctx context.Context, code string) (*LoginResult, error)
	RegisterLocal(ctx context.Context, email, username, password string) (*LoginResult, error)
	LoginWithPassword(ctx context.Context, email, password string) (*LoginResult, error)
	ChangePassword(ctx context.Context, userID uint, current, next string) error
	Logout(ctx context.Context, email string) error
}

type UserServiceInterface interface {
	GetByID(id uint) (*domain.User, error)
	GetByEmail(email string) (*domain.User, error)
	List() ([]domain.User, error)
	SetAvatar(userID uint, url, objectKey string) error
}

type ItemServiceInterface interface {
	Create(ownerID uint, input CreateItemInput) (*domain.Item, error)
	GetByID(id uint) (*domain.Item, error)
	ListPaged(req repository.PageRequest) (repository.PageResult[domain.Item], error)
	ListOwnedPaged(ownerID uint, req repository.PageRequest) (repository.PageResult[domain.Item], error)
	Update(ownerID, id uint, input UpdateItemInput) (*domain.Item, error)
	Delete(ownerID, id uint) error
}
