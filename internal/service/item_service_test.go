package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/lumenshare/backend/internal/domain"
	"github.com/lumenshare/backend/internal/repository"
)

type fakeItemRepo struct {
	items  map[uint]*domain.Item
	nextID uint
}

func newFakeItemRepo() *fakeItemRepo {
	return &fakeItemRepo{items: map[uint]*domain.Item{}, nextID: 1}
}

func (r *fakeItemRepo) Create(item *domain.Item) error {
	item.ID = r.nextID
	r.nextID++
	clone := *item
	r.items[item.ID] = &clone
	return nil
}

func (r *fakeItemRepo) FindByID(id uint) (*domain.Item, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, repository.ErrItemNotFound
	}
	clone := *item
	return &clone, nil
}

func (r *fakeItemRepo) ListPaged(req repository.PageRequest) (repository.PageResult[domain.Item], error) {
	out := make([]domain.Item, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, *item)
	}
	return repository.PageResult[domain.Item]{Items: out, Total: int64(len(out))}, nil
}

func (r *fakeItemRepo) ListByOwnerPaged(ownerID uint, req repository.PageRequest) (repository.PageResult[domain.Item], error) {
	out := make([]domain.Item, 0)
	for _, item := range r.items {
		if item.OwnerID == ownerID {
			out = append(out, *item)
		}
	}
	return repository.PageResult[domain.Item]{Items: out, Total: int64(len(out))}, nil
}

func (r *fakeItemRepo) Update(id uint, updates map[string]any) error {
	item, ok := r.items[id]
	if !ok {
		return repository.ErrItemNotFound
	}
	if v, ok := updates["title"]; ok {
		item.Title = v.(string)
	}
	if v, ok := updates["description"]; ok {
		item.Description = v.(string)
	}
	if v, ok := updates["image_url"]; ok {
		item.ImageURL = v.(string)
	}
	return nil
}

func (r *fakeItemRepo) DeleteByID(id uint) error {
	if _, ok := r.items[id]; !ok {
		return repository.ErrItemNotFound
	}
	delete(r.items, id)
	return nil
}

func TestItemServiceCreateValidation(t *testing.T) {
	svc := NewItemService(newFakeItemRepo())

	if _, err := svc.Create(1, CreateItemInput{Title: "  "}); !errors.Is(err, ErrItemInvalidTitle) {
		t.Fatalf("expected ErrItemInvalidTitle, got %v", err)
	}
	if _, err := svc.Create(1, CreateItemInput{Title: strings.Repeat("x", 201)}); !errors.Is(err, ErrItemInvalidTitle) {
		t.Fatalf("expected ErrItemInvalidTitle for long title, got %v", err)
	}
	if _, err := svc.Create(1, CreateItemInput{Title: "ok", Description: strings.Repeat("d", 2001)}); !errors.Is(err, ErrItemInvalidDescription) {
		t.Fatalf("expected ErrItemInvalidDescription, got %v", err)
	}

	item, err := svc.Create(1, CreateItemInput{Title: " Lamp ", Description: " vintage "})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if item.Title != "Lamp" || item.Description != "vintage" {
		t.Fatalf("expected trimmed fields, got %+v", item)
	}
}

func TestItemServiceUpdateOwnershipAndPartialFields(t *testing.T) {
	repo := newFakeItemRepo()
	svc := NewItemService(repo)

	item, err := svc.Create(1, CreateItemInput{Title: "Chair"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Update(2, item.ID, UpdateItemInput{Title: strPtr("Stolen")}); !errors.Is(err, ErrItemForbidden) {
		t.Fatalf("expected ErrItemForbidden, got %v", err)
	}
	if _, err := svc.Update(1, item.ID, UpdateItemInput{}); !errors.Is(err, ErrItemNoUpdates) {
		t.Fatalf("expected ErrItemNoUpdates, got %v", err)
	}

	updated, err := svc.Update(1, item.ID, UpdateItemInput{Description: strPtr("solid oak")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "Chair" || updated.Description != "solid oak" {
		t.Fatalf("unexpected update result: %+v", updated)
	}
}

func TestItemServiceDelete(t *testing.T) {
	repo := newFakeItemRepo()
	svc := NewItemService(repo)

	item, err := svc.Create(1, CreateItemInput{Title: "Desk"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(9, item.ID); !errors.Is(err, ErrItemForbidden) {
		t.Fatalf("expected ErrItemForbidden, got %v", err)
	}
	if err := svc.Delete(1, item.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(1, item.ID); !errors.Is(err, repository.ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound after delete, got %v", err)
	}
}

func strPtr(s string) *string { return &s }
