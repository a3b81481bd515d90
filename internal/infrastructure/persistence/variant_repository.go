package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormVariantRepository implements VariantRepository using GORM
type GormVariantRepository struct {
	db *gorm.DB
}

// NewGormVariantRepository creates a new GormVariantRepository
func NewGormVariantRepository(db *gorm.DB) *GormVariantRepository {
	return &GormVariantRepository{db: db}
}

func (r *GormVariantRepository) withAssociations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Item").
		Preload("Item.Category").
		Preload("Spec")
}

// FindByID finds a variant with its item and spec
func (r *GormVariantRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Variant, error) {
	var variant inventory.Variant
	if err := r.withAssociations(ctx).First(&variant, "variants.id = ?", id).Error; err != nil {
		return nil, translateError(err, "Variant")
	}
	return &variant, nil
}

// FindByItemAndSpec finds the variant of an item x spec pair
func (r *GormVariantRepository) FindByItemAndSpec(ctx context.Context, itemID, specID uuid.UUID) (*inventory.Variant, error) {
	var variant inventory.Variant
	if err := r.withAssociations(ctx).
		Where("item_id = ? AND spec_id = ?", itemID, specID).
		First(&variant).Error; err != nil {
		return nil, translateError(err, "Variant")
	}
	return &variant, nil
}

// FindByItem lists the variants of an item by code
func (r *GormVariantRepository) FindByItem(ctx context.Context, itemID uuid.UUID) ([]inventory.Variant, error) {
	var variants []inventory.Variant
	if err := r.withAssociations(ctx).
		Where("item_id = ?", itemID).
		Order("code ASC").
		Find(&variants).Error; err != nil {
		return nil, err
	}
	return variants, nil
}

// FindForKiosk lists variants ordered by item name
func (r *GormVariantRepository) FindForKiosk(ctx context.Context, categoryID *uuid.UUID) ([]inventory.Variant, error) {
	query := r.withAssociations(ctx).
		Joins("JOIN items ON items.id = variants.item_id")
	if categoryID != nil {
		query = query.Where("items.category_id = ?", *categoryID)
	}
	var variants []inventory.Variant
	if err := query.Order("items.name ASC, variants.code ASC").Find(&variants).Error; err != nil {
		return nil, err
	}
	return variants, nil
}

// Search lists variants for the inventory status view. Without an explicit
// sort they are ordered by item name then spec label.
func (r *GormVariantRepository) Search(ctx context.Context, filter inventory.StatusFilter, page shared.Page) (shared.Paginated[inventory.Variant], error) {
	query := r.db.WithContext(ctx).Model(&inventory.Variant{}).
		Joins("JOIN items ON items.id = variants.item_id").
		Joins("JOIN specs ON specs.id = variants.spec_id")

	if filter.CategoryID != nil {
		query = query.Where("items.category_id = ?", *filter.CategoryID)
	}
	if filter.LowStock {
		query = query.Where("variants.current_quantity < variants.min_quantity")
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		like := likePattern(q)
		query = query.Where(
			"LOWER(items.name) LIKE ? OR LOWER(items.description) LIKE ? OR LOWER(specs.label) LIKE ?",
			like, like, like,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return shared.Paginated[inventory.Variant]{}, err
	}

	var variants []inventory.Variant
	if err := query.
		Preload("Item").
		Preload("Item.Category").
		Preload("Spec").
		Order(statusOrder(filter.OrderBy, filter.OrderDir)).
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&variants).Error; err != nil {
		return shared.Paginated[inventory.Variant]{}, err
	}

	return shared.NewPaginated(variants, total, page.Page, page.PageSize), nil
}

// CodesWithBase lists the codes that start with base + "-"
func (r *GormVariantRepository) CodesWithBase(ctx context.Context, base string) ([]string, error) {
	var codes []string
	if err := r.db.WithContext(ctx).Model(&inventory.Variant{}).
		Where("code LIKE ?", base+"-%").
		Pluck("code", &codes).Error; err != nil {
		return nil, err
	}
	return codes, nil
}

// Create inserts the variant. Code and item/spec clashes are ALREADY_EXISTS.
func (r *GormVariantRepository) Create(ctx context.Context, variant *inventory.Variant) error {
	return translateError(r.db.WithContext(ctx).Omit(clause.Associations).Create(variant).Error, "Variant")
}

// SaveQuantity writes the quantity with an optimistic version check
func (r *GormVariantRepository) SaveQuantity(ctx context.Context, variant *inventory.Variant) error {
	result := r.db.WithContext(ctx).Model(&inventory.Variant{}).
		Where("id = ? AND version = ?", variant.ID, variant.StoredVersion()).
		Updates(map[string]any{
			"current_quantity": variant.CurrentQuantity,
			"version":          variant.Version,
			"updated_at":       variant.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainErrorf(shared.CodeConcurrencyConflict,
			"Variant %s was modified by another request", variant.Code)
	}
	return nil
}

// SaveThresholds writes the minimum quantity and unit price
func (r *GormVariantRepository) SaveThresholds(ctx context.Context, variant *inventory.Variant) error {
	result := r.db.WithContext(ctx).Model(&inventory.Variant{}).
		Where("id = ?", variant.ID).
		Updates(map[string]any{
			"min_quantity": variant.MinQuantity,
			"unit_price":   variant.UnitPrice,
			"updated_at":   variant.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// likePattern builds a lower-cased substring pattern for LOWER(col) LIKE ?
func likePattern(s string) string {
	return "%" + strings.ToLower(strings.TrimSpace(s)) + "%"
}

var _ inventory.VariantRepository = (*GormVariantRepository)(nil)
