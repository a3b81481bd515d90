package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormMovementRepository implements MovementRepository using GORM
type GormMovementRepository struct {
	db *gorm.DB
}

// NewGormMovementRepository creates a new GormMovementRepository
func NewGormMovementRepository(db *gorm.DB) *GormMovementRepository {
	return &GormMovementRepository{db: db}
}

func (r *GormMovementRepository) withAssociations(query *gorm.DB) *gorm.DB {
	return query.
		Preload("User").
		Preload("Variant").
		Preload("Variant.Item").
		Preload("Variant.Spec")
}

// applyFilter adds the filter conditions qualified with the movement table
func applyMovementFilter(query *gorm.DB, filter inventory.MovementFilter) *gorm.DB {
	if filter.Direction != "" {
		query = query.Where("movement_logs.direction = ?", filter.Direction)
	}
	if filter.UserID != nil {
		query = query.Where("movement_logs.user_id = ?", *filter.UserID)
	}
	if filter.VariantID != nil {
		query = query.Where("movement_logs.variant_id = ?", *filter.VariantID)
	}
	if filter.From != nil {
		query = query.Where("movement_logs.timestamp >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("movement_logs.timestamp <= ?", *filter.To)
	}
	return query
}

// Create appends a ledger entry
func (r *GormMovementRepository) Create(ctx context.Context, log *inventory.MovementLog) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(log).Error
}

// FindByID finds a ledger entry with its user and variant
func (r *GormMovementRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.MovementLog, error) {
	var log inventory.MovementLog
	if err := r.withAssociations(r.db.WithContext(ctx)).First(&log, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "Movement")
	}
	return &log, nil
}

// Delete removes a ledger entry
func (r *GormMovementRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&inventory.MovementLog{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Search returns one page of entries, newest first
func (r *GormMovementRepository) Search(ctx context.Context, filter inventory.MovementFilter, page shared.Page) (shared.Paginated[inventory.MovementLog], error) {
	query := applyMovementFilter(r.db.WithContext(ctx).Model(&inventory.MovementLog{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return shared.Paginated[inventory.MovementLog]{}, err
	}

	var logs []inventory.MovementLog
	if err := r.withAssociations(query).
		Order("movement_logs.timestamp DESC").
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&logs).Error; err != nil {
		return shared.Paginated[inventory.MovementLog]{}, err
	}

	return shared.NewPaginated(logs, total, page.Page, page.PageSize), nil
}

// FindAll returns every matching entry, newest first
func (r *GormMovementRepository) FindAll(ctx context.Context, filter inventory.MovementFilter) ([]inventory.MovementLog, error) {
	query := applyMovementFilter(r.db.WithContext(ctx).Model(&inventory.MovementLog{}), filter)

	var logs []inventory.MovementLog
	if err := r.withAssociations(query).
		Order("movement_logs.timestamp DESC").
		Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// UsageByVariant totals OUT entries per variant
func (r *GormMovementRepository) UsageByVariant(ctx context.Context, filter inventory.MovementFilter) ([]inventory.UsageRow, error) {
	filter.Direction = inventory.DirectionOut
	query := r.db.WithContext(ctx).Model(&inventory.MovementLog{}).
		Select(`movement_logs.variant_id AS variant_id,
			variants.code AS code,
			items.name AS item_name,
			specs.label AS spec_label,
			variants.unit_price AS unit_price,
			SUM(movement_logs.quantity) AS quantity`).
		Joins("JOIN variants ON variants.id = movement_logs.variant_id").
		Joins("JOIN items ON items.id = variants.item_id").
		Joins("JOIN specs ON specs.id = variants.spec_id")
	query = applyMovementFilter(query, filter)

	var rows []inventory.UsageRow
	if err := query.
		Group("movement_logs.variant_id, variants.code, items.name, specs.label, variants.unit_price").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// NetQuantity returns IN minus OUT for a variant
func (r *GormMovementRepository) NetQuantity(ctx context.Context, variantID uuid.UUID) (int, error) {
	var net int64
	err := r.db.WithContext(ctx).Model(&inventory.MovementLog{}).
		Select("COALESCE(SUM(CASE WHEN direction = ? THEN quantity ELSE -quantity END), 0)", inventory.DirectionIn).
		Where("variant_id = ?", variantID).
		Row().
		Scan(&net)
	if err != nil {
		return 0, err
	}
	return int(net), nil
}

var _ inventory.MovementRepository = (*GormMovementRepository)(nil)
