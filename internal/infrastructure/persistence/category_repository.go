package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/stockledger/backend/internal/domain/catalog"
	"github.com/stockledger/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCategoryRepository implements CategoryRepository using GORM
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewGormCategoryRepository creates a new GormCategoryRepository
func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// FindByID finds a category by its ID
func (r *GormCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	var category catalog.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "Category")
	}
	return &category, nil
}

// FindAll lists categories by name
func (r *GormCategoryRepository) FindAll(ctx context.Context) ([]catalog.Category, error) {
	var categories []catalog.Category
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// Save creates or updates a category
func (r *GormCategoryRepository) Save(ctx context.Context, category *catalog.Category) error {
	return translateError(r.db.WithContext(ctx).Omit(clause.Associations).Save(category).Error, "Category")
}

// Delete removes the category after detaching its items
func (r *GormCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&catalog.Item{}).
			Where("category_id = ?", id).
			Update("category_id", nil).Error; err != nil {
			return err
		}
		result := tx.Delete(&catalog.Category{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// GormItemRepository implements ItemRepository using GORM
type GormItemRepository struct {
	db *gorm.DB
}

// NewGormItemRepository creates a new GormItemRepository
func NewGormItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db}
}

// FindByID finds an item with its category
func (r *GormItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Item, error) {
	var item catalog.Item
	if err := r.db.WithContext(ctx).Preload("Category").First(&item, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "Item")
	}
	return &item, nil
}

// FindByName returns every item with exactly this name
func (r *GormItemRepository) FindByName(ctx context.Context, name string) ([]catalog.Item, error) {
	var items []catalog.Item
	if err := r.db.WithContext(ctx).
		Preload("Category").
		Where("name = ?", name).
		Order("created_at ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FindByNameAndCategory finds the item with this name in the category
func (r *GormItemRepository) FindByNameAndCategory(ctx context.Context, name string, categoryID *uuid.UUID) (*catalog.Item, error) {
	query := r.db.WithContext(ctx).Where("name = ?", name)
	if categoryID == nil {
		query = query.Where("category_id IS NULL")
	} else {
		query = query.Where("category_id = ?", *categoryID)
	}
	var item catalog.Item
	if err := query.Preload("Category").First(&item).Error; err != nil {
		return nil, translateError(err, "Item")
	}
	return &item, nil
}

// FindAll lists items by name
func (r *GormItemRepository) FindAll(ctx context.Context, filter catalog.ItemFilter) ([]catalog.Item, error) {
	query := r.db.WithContext(ctx).Model(&catalog.Item{})
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.Search != "" {
		query = query.Where("LOWER(name) LIKE ?", likePattern(filter.Search))
	}
	var items []catalog.Item
	if err := query.Preload("Category").Order("name ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Save creates or updates an item
func (r *GormItemRepository) Save(ctx context.Context, item *catalog.Item) error {
	return translateError(r.db.WithContext(ctx).Omit(clause.Associations).Save(item).Error, "Item")
}

// GormSpecRepository implements SpecRepository using GORM
type GormSpecRepository struct {
	db *gorm.DB
}

// NewGormSpecRepository creates a new GormSpecRepository
func NewGormSpecRepository(db *gorm.DB) *GormSpecRepository {
	return &GormSpecRepository{db: db}
}

// FindByID finds a spec by its ID
func (r *GormSpecRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Spec, error) {
	var spec catalog.Spec
	if err := r.db.WithContext(ctx).First(&spec, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "Spec")
	}
	return &spec, nil
}

// FindByLabel finds a spec by its exact label
func (r *GormSpecRepository) FindByLabel(ctx context.Context, label string) (*catalog.Spec, error) {
	var spec catalog.Spec
	if err := r.db.WithContext(ctx).First(&spec, "label = ?", label).Error; err != nil {
		return nil, translateError(err, "Spec")
	}
	return &spec, nil
}

// FindAll lists specs by label
func (r *GormSpecRepository) FindAll(ctx context.Context) ([]catalog.Spec, error) {
	var specs []catalog.Spec
	if err := r.db.WithContext(ctx).Order("label ASC").Find(&specs).Error; err != nil {
		return nil, err
	}
	return specs, nil
}

// Save creates or updates a spec. A duplicate label is ALREADY_EXISTS.
func (r *GormSpecRepository) Save(ctx context.Context, spec *catalog.Spec) error {
	return translateError(r.db.WithContext(ctx).Save(spec).Error, "Spec")
}

var (
	_ catalog.CategoryRepository = (*GormCategoryRepository)(nil)
	_ catalog.ItemRepository     = (*GormItemRepository)(nil)
	_ catalog.SpecRepository     = (*GormSpecRepository)(nil)
)
