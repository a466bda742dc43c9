package service

import (
	"errors"
	"strings"

	"github.com/lumenshare/backend/internal/domain"
	"github.com/lumenshare/backend/internal/repository"
)

var (
	ErrItemInvalidTitle       = errors.New("title must be between 1 and 200 characters")
	ErrItemInvalidDescription = errors.New("description must be <= 2000 characters")
	ErrItemNoUpdates          = errors.New("no updates provided")
	ErrItemForbidden          = errors.New("item belongs to another user")
)

type CreateItemInput struct {
	Title       string
	Description string
	ImageURL    string
}

type UpdateItemInput struct {
	Title       *string
	Description *string
	ImageURL    *string
}

type ItemService struct {
	repo repository.ItemRepository
}

func NewItemService(repo repository.ItemRepository) *ItemService {
	return &ItemService{repo: repo}
}

func (s *ItemService) Create(ownerID uint, input CreateItemInput) (*domain.Item, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if len(title) < 1 || len(title) > 200 {
		return nil, ErrItemInvalidTitle
	}
	if len(description) > 2000 {
		return nil, ErrItemInvalidDescription
	}
	item := &domain.Item{OwnerID: ownerID, Title: title, Description: description, ImageURL: strings.TrimSpace(input.ImageURL)}
	if err := s.repo.Create(item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *ItemService) GetByID(id uint) (*domain.Item, error) {
	return s.repo.FindByID(id)
}

func (s *ItemService) ListPaged(req repository.PageRequest) (repository.PageResult[domain.Item], error) {
	return s.repo.ListPaged(req)
}

func (s *ItemService) ListOwnedPaged(ownerID uint, req repository.PageRequest) (repository.PageResult[domain.Item], error) {
	return s.repo.ListByOwnerPaged(ownerID, req)
}

// Update applies only the provided fields. Ownership is enforced here
// rather than in the repository so reads stay unrestricted.
func (s *ItemService) Update(ownerID, id uint, input UpdateItemInput) (*domain.Item, error) {
	item, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if item.OwnerID != ownerID {
		return nil, ErrItemForbidden
	}

	updates := map[string]any{}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if len(title) < 1 || len(title) > 200 {
			return nil, ErrItemInvalidTitle
		}
		updates["title"] = title
	}
	if input.Description != nil {
		description := strings.TrimSpace(*input.Description)
		if len(description) > 2000 {
			return nil, ErrItemInvalidDescription
		}
		updates["description"] = description
	}
	if input.ImageURL != nil {
		updates["image_url"] = strings.TrimSpace(*input.ImageURL)
	}
	if len(updates) == 0 {
		return nil, ErrItemNoUpdates
	}
	if err := s.repo.Update(id, updates); err != nil {
		return nil, err
	}
	return s.repo.FindByID(id)
}

func (s *ItemService) Delete(ownerID, id uint) error {
	item, err := s.repo.FindByID(id)
	if err != nil {
		return err
	}
	if item.OwnerID != ownerID {
		return ErrItemForbidden
	}
	return s.repo.DeleteByID(id)
}
