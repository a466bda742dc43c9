package service

import (
	"github.com/lumenshare/backend/internal/domain"
	"github.com/lumenshare/backend/internal/repository"
)

type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) GetByID(id uint) (*domain.User, error) {
	return s.userRepo.FindByID(id)
}

func (s *UserService) GetByEmail(email string) (*domain.User, error) {
	return s.userRepo.FindByEmail(email)
}

func (s *UserService) List() ([]domain.User, error) {
	return s.userRepo.List()
}

func (s *UserService) SetAvatar(userID uint, url, objectKey string) error {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return err
	}
	user.AvatarURL = url
	user.AvatarKey = objectKey
	return s.userRepo.Update(user)
}
