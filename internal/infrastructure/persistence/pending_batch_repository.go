package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPendingBatchRepository implements PendingBatchRepository using GORM
type GormPendingBatchRepository struct {
	db *gorm.DB
}

// NewGormPendingBatchRepository creates a new GormPendingBatchRepository
func NewGormPendingBatchRepository(db *gorm.DB) *GormPendingBatchRepository {
	return &GormPendingBatchRepository{db: db}
}

func (r *GormPendingBatchRepository) withLines(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("pending_items.row_index ASC")
		}).
		Preload("Items.Item").
		Preload("Items.Spec").
		Preload("ProcessedBy")
}

// FindByID loads the batch with its lines, their items and specs
func (r *GormPendingBatchRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.PendingBatch, error) {
	var batch inventory.PendingBatch
	if err := r.withLines(ctx).First(&batch, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "Pending batch")
	}
	return &batch, nil
}

// FindByStatus lists batches newest first
func (r *GormPendingBatchRepository) FindByStatus(ctx context.Context, statuses []inventory.BatchStatus) ([]inventory.PendingBatch, error) {
	query := r.withLines(ctx)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	var batches []inventory.PendingBatch
	if err := query.Order("uploaded_at DESC").Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

// Create inserts the batch and all its lines
func (r *GormPendingBatchRepository) Create(ctx context.Context, batch *inventory.PendingBatch) error {
	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(batch).Error; err != nil {
		return err
	}
	if len(batch.Items) == 0 {
		return nil
	}
	return db.Omit(clause.Associations).Create(&batch.Items).Error
}

// SaveQuantities writes the quantity of every line
func (r *GormPendingBatchRepository) SaveQuantities(ctx context.Context, batch *inventory.PendingBatch) error {
	db := r.db.WithContext(ctx)
	for _, line := range batch.Items {
		result := db.Model(&inventory.PendingItem{}).
			Where("id = ? AND batch_id = ?", line.ID, batch.ID).
			Update("quantity", line.Quantity)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NotFound("Pending line", line.ID)
		}
	}
	return db.Model(&inventory.PendingBatch{}).
		Where("id = ?", batch.ID).
		Update("updated_at", batch.UpdatedAt).Error
}

// SaveStatus writes the status fields if the stored batch is still PENDING
// at the previous version
func (r *GormPendingBatchRepository) SaveStatus(ctx context.Context, batch *inventory.PendingBatch) error {
	result := r.db.WithContext(ctx).Model(&inventory.PendingBatch{}).
		Where("id = ? AND status = ? AND version = ?", batch.ID, inventory.BatchStatusPending, batch.StoredVersion()).
		Updates(map[string]any{
			"status":          batch.Status,
			"processed_by_id": batch.ProcessedByID,
			"processed_at":    batch.ProcessedAt,
			"version":         batch.Version,
			"updated_at":      batch.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError(shared.CodeConcurrencyConflict, "Batch was already processed by another request")
	}
	return nil
}

var _ inventory.PendingBatchRepository = (*GormPendingBatchRepository)(nil)
