package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockledger/backend/internal/domain/shared"
)

// StatusFilter narrows the inventory status listing
type StatusFilter struct {
	CategoryID *uuid.UUID
	LowStock   bool
	// Query matches item name, item description or spec label
	Query string
	// OrderBy names a sortable field; empty keeps the natural order
	OrderBy  string
	OrderDir string
}

// VariantRepository persists variants. Loaded variants carry their Item and Spec.
type VariantRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Variant, error)
	FindByItemAndSpec(ctx context.Context, itemID, specID uuid.UUID) (*Variant, error)
	FindByItem(ctx context.Context, itemID uuid.UUID) ([]Variant, error)
	// FindForKiosk lists variants of every item, optionally limited to a category
	FindForKiosk(ctx context.Context, categoryID *uuid.UUID) ([]Variant, error)
	Search(ctx context.Context, filter StatusFilter, page shared.Page) (shared.Paginated[Variant], error)
	// CodesWithBase lists the codes that start with base + "-"
	CodesWithBase(ctx context.Context, base string) ([]string, error)
	// Create inserts a new variant. A clash on the code or the item/spec pair
	// is reported as an ALREADY_EXISTS domain error.
	Create(ctx context.Context, variant *Variant) error
	// SaveQuantity writes the quantity if the stored version is Version-1
	SaveQuantity(ctx context.Context, variant *Variant) error
	SaveThresholds(ctx context.Context, variant *Variant) error
}

// MovementFilter narrows movement history queries
type MovementFilter struct {
	Direction Direction
	UserID    *uuid.UUID
	VariantID *uuid.UUID
	// From and To are inclusive bounds on the timestamp
	From *time.Time
	To   *time.Time
}

// UsageRow is the OUT total of one variant
type UsageRow struct {
	VariantID uuid.UUID
	Code      string
	ItemName  string
	SpecLabel string
	UnitPrice decimal.Decimal
	Quantity  int64
}

// Amount is the unit price times the quantity used
func (r UsageRow) Amount() decimal.Decimal {
	return r.UnitPrice.Mul(decimal.NewFromInt(r.Quantity))
}

// MovementRepository persists ledger entries. Loaded entries carry their user
// and variant (with item and spec).
type MovementRepository interface {
	Create(ctx context.Context, log *MovementLog) error
	FindByID(ctx context.Context, id uuid.UUID) (*MovementLog, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, filter MovementFilter, page shared.Page) (shared.Paginated[MovementLog], error)
	FindAll(ctx context.Context, filter MovementFilter) ([]MovementLog, error)
	// UsageByVariant totals OUT entries per variant; filter.Direction is ignored
	UsageByVariant(ctx context.Context, filter MovementFilter) ([]UsageRow, error)
	// NetQuantity returns IN minus OUT for a variant
	NetQuantity(ctx context.Context, variantID uuid.UUID) (int, error)
}

// PendingBatchRepository persists intake batches with their lines
type PendingBatchRepository interface {
	// FindByID loads the batch with its lines, their items and specs
	FindByID(ctx context.Context, id uuid.UUID) (*PendingBatch, error)
	FindByStatus(ctx context.Context, statuses []BatchStatus) ([]PendingBatch, error)
	// Create inserts the batch and all its lines
	Create(ctx context.Context, batch *PendingBatch) error
	// SaveQuantities writes the quantity of every line
	SaveQuantities(ctx context.Context, batch *PendingBatch) error
	// SaveStatus writes the status fields if the stored batch is still
	// PENDING at version Version-1
	SaveStatus(ctx context.Context, batch *PendingBatch) error
}
