package repository

import (
	"context"
	"errors"

	"github.com/lumenshare/backend/internal/domain"
	"github.com/lumenshare/backend/internal/observability"

	"gorm.io/gorm"
)

var ErrItemNotFound = errors.New("item not found")

type ItemRepository interface {
	Create(item *domain.Item) error
	FindByID(id uint) (*domain.Item, error)
	ListPaged(req PageRequest) (PageResult[domain.Item], error)
	ListByOwnerPaged(ownerID uint, req PageRequest) (PageResult[domain.Item], error)
	Update(id uint, updates map[string]any) error
	DeleteByID(id uint) error
}

type GormItemRepository struct{ db *gorm.DB }

func NewItemRepository(db *gorm.DB) ItemRepository {
	return &GormItemRepository{db: db}
}

func (r *GormItemRepository) Create(item *domain.Item) error {
	if err := r.db.Create(item).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "item", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "item", "create", "success")
	return nil
}

func (r *GormItemRepository) FindByID(id uint) (*domain.Item, error) {
	var item domain.Item
	if err := r.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(context.Background(), "item", "find_by_id", "not_found")
			return nil, ErrItemNotFound
		}
		observability.RecordRepositoryOperation(context.Background(), "item", "find_by_id", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "item", "find_by_id", "success")
	return &item, nil
}

func (r *GormItemRepository) ListPaged(req PageRequest) (PageResult[domain.Item], error) {
	return r.listPaged(r.db.Model(&domain.Item{}), req)
}

func (r *GormItemRepository) ListByOwnerPaged(ownerID uint, req PageRequest) (PageResult[domain.Item], error) {
	return r.listPaged(r.db.Model(&domain.Item{}).Where("owner_id = ?", ownerID), req)
}

func (r *GormItemRepository) listPaged(base *gorm.DB, req PageRequest) (PageResult[domain.Item], error) {
	normalized := normalizePageRequest(req)
	result := PageResult[domain.Item]{
		Page:     normalized.Page,
		PageSize: normalized.PageSize,
	}

	if err := base.Count(&result.Total).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "item", "list_paged", "error")
		return PageResult[domain.Item]{}, err
	}
	offset := (normalized.Page - 1) * normalized.PageSize
	if err := base.Order("id desc").Offset(offset).Limit(normalized.PageSize).Find(&result.Items).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "item", "list_paged", "error")
		return PageResult[domain.Item]{}, err
	}
	result.TotalPages = calcTotalPages(result.Total, normalized.PageSize)
	observability.RecordRepositoryOperation(context.Background(), "item", "list_paged", "success")
	return result, nil
}

func (r *GormItemRepository) Update(id uint, updates map[string]any) error {
	res := r.db.Model(&domain.Item{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		observability.RecordRepositoryOperation(context.Background(), "item", "update", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(context.Background(), "item", "update", "not_found")
		return ErrItemNotFound
	}
	observability.RecordRepositoryOperation(context.Background(), "item", "update", "success")
	return nil
}

func (r *GormItemRepository) DeleteByID(id uint) error {
	res := r.db.Delete(&domain.Item{}, id)
	if res.Error != nil {
		observability.RecordRepositoryOperation(context.Background(), "item", "delete_by_id", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(context.Background(), "item", "delete_by_id", "not_found")
		return ErrItemNotFound
	}
	observability.RecordRepositoryOperation(context.Background(), "item", "delete_by_id", "success")
	return nil
}
