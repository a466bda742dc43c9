package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lumenshare/backend/internal/domain"
)

func TestItemRepositoryCRUDAndPagination(t *testing.T) {
	db := newRepositoryDBForTest(t)
	if err := db.AutoMigrate(&domain.Item{}); err != nil {
		t.Fatalf("migrate item: %v", err)
	}
	repo := NewItemRepository(db)

	created := make([]*domain.Item, 0, 3)
	for i := 0; i < 3; i++ {
		item := &domain.Item{OwnerID: 1, Title: fmt.Sprintf("Item %c", 'A'+i), Description: "desc"}
		if err := repo.Create(item); err != nil {
			t.Fatalf("create item %d: %v", i, err)
		}
		created = append(created, item)
	}

	page, err := repo.ListPaged(PageRequest{Page: 1, PageSize: 2})
	if err != nil {
		t.Fatalf("list paged: %v", err)
	}
	if page.Total != 3 || page.TotalPages != 2 || len(page.Items) != 2 {
		t.Fatalf("unexpected page result: %+v", page)
	}
	if page.Items[0].ID != created[2].ID {
		t.Fatalf("expected newest item first, got id=%d want=%d", page.Items[0].ID, created[2].ID)
	}

	loaded, err := repo.FindByID(created[0].ID)
	if err != nil {
		t.Fatalf("find by id: %v", err)
	}
	if loaded.Title != created[0].Title {
		t.Fatalf("title mismatch: got %q want %q", loaded.Title, created[0].Title)
	}

	if err := repo.Update(created[0].ID, map[string]any{"title": "Renamed"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	updated, err := repo.FindByID(created[0].ID)
	if err != nil {
		t.Fatalf("find updated: %v", err)
	}
	if updated.Title != "Renamed" {
		t.Fatalf("unexpected updated item: %+v", updated)
	}

	if err := repo.DeleteByID(created[1].ID); err != nil {
		t.Fatalf("delete by id: %v", err)
	}
	if _, err := repo.FindByID(created[1].ID); !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestItemRepositoryListByOwner(t *testing.T) {
	db := newRepositoryDBForTest(t)
	if err := db.AutoMigrate(&domain.Item{}); err != nil {
		t.Fatalf("migrate item: %v", err)
	}
	repo := NewItemRepository(db)

	for i := 0; i < 2; i++ {
		if err := repo.Create(&domain.Item{OwnerID: 7, Title: fmt.Sprintf("Mine %d", i)}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if err := repo.Create(&domain.Item{OwnerID: 8, Title: "Theirs"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	page, err := repo.ListByOwnerPaged(7, PageRequest{})
	if err != nil {
		t.Fatalf("list by owner: %v", err)
	}
	if page.Total != 2 || len(page.Items) != 2 {
		t.Fatalf("unexpected owner page: %+v", page)
	}
	for _, item := range page.Items {
		if item.OwnerID != 7 {
			t.Fatalf("foreign item leaked into owner listing: %+v", item)
		}
	}
}

func TestItemRepositoryNotFoundCases(t *testing.T) {
	db := newRepositoryDBForTest(t)
	if err := db.AutoMigrate(&domain.Item{}); err != nil {
		t.Fatalf("migrate item: %v", err)
	}
	repo := NewItemRepository(db)

	if _, err := repo.FindByID(999); !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
	if err := repo.Update(999, map[string]any{"title": "x"}); !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound on update, got %v", err)
	}
	if err := repo.DeleteByID(999); !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound on delete, got %v", err)
	}
}
