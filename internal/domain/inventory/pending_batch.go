package inventory

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stockledger/backend/internal/domain/catalog"
	"github.com/stockledger/backend/internal/domain/identity"
	"github.com/stockledger/backend/internal/domain/shared"
)

// BatchStatus is the lifecycle state of a pending intake batch
type BatchStatus string

const (
	BatchStatusPending  BatchStatus = "PENDING"
	BatchStatusDone     BatchStatus = "DONE"
	BatchStatusCanceled BatchStatus = "CANCELED"
)

// IsValid checks if the status is known
func (s BatchStatus) IsValid() bool {
	switch s {
	case BatchStatusPending, BatchStatusDone, BatchStatusCanceled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is allowed
func (s BatchStatus) IsTerminal() bool {
	return s == BatchStatusDone || s == BatchStatusCanceled
}

// PendingBatch is one supplier delivery awaiting confirmation.
// PENDING -> DONE when committed to the ledger, PENDING -> CANCELED otherwise.
type PendingBatch struct {
	shared.BaseAggregateRoot
	Supplier      string      `gorm:"type:varchar(100);not null"`
	UploadedAt    time.Time   `gorm:"not null;index"`
	Status        BatchStatus `gorm:"type:varchar(10);not null;index"`
	ProcessedByID *uuid.UUID  `gorm:"type:uuid"`
	ProcessedAt   *time.Time

	ProcessedBy *identity.User `gorm:"foreignKey:ProcessedByID;constraint:OnDelete:SET NULL"`
	Items       []PendingItem  `gorm:"foreignKey:BatchID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (PendingBatch) TableName() string {
	return "pending_batches"
}

// PendingItem is one line of a pending batch
type PendingItem struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	BatchID  uuid.UUID `gorm:"type:uuid;not null;index"`
	ItemID   uuid.UUID `gorm:"type:uuid;not null"`
	SpecID   uuid.UUID `gorm:"type:uuid;not null"`
	Quantity int       `gorm:"not null"`
	// RowIndex is the 1-based row of the submission the line came from
	RowIndex int `gorm:"not null;default:0"`

	Item *catalog.Item `gorm:"foreignKey:ItemID;constraint:OnDelete:CASCADE"`
	Spec *catalog.Spec `gorm:"foreignKey:SpecID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (PendingItem) TableName() string {
	return "pending_items"
}

// DisplayName returns "item - spec" when the associations are loaded
func (p *PendingItem) DisplayName() string {
	if p.Item == nil || p.Spec == nil {
		return p.ID.String()
	}
	return fmt.Sprintf("%s - %s", p.Item.Name, p.Spec.Label)
}

// NewPendingBatch creates an empty PENDING batch for a supplier delivery date
func NewPendingBatch(supplier string, deliveredOn time.Time) (*PendingBatch, error) {
	supplier = shared.NormalizeText(supplier)
	if supplier == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Supplier cannot be empty")
	}
	if deliveredOn.IsZero() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Delivery date cannot be empty")
	}
	return &PendingBatch{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Supplier:          supplier,
		UploadedAt:        deliveredOn,
		Status:            BatchStatusPending,
		Items:             make([]PendingItem, 0),
	}, nil
}

// IsPending reports whether the batch can still be changed
func (b *PendingBatch) IsPending() bool {
	return b.Status == BatchStatusPending
}

func (b *PendingBatch) ensurePending() error {
	if !b.IsPending() {
		return shared.NewDomainErrorf(shared.CodeInvalidState, "Batch is %s, only PENDING batches can be changed", b.Status)
	}
	return nil
}

// AddLine appends a line to the batch
func (b *PendingBatch) AddLine(itemID, specID uuid.UUID, quantity, rowIndex int) (*PendingItem, error) {
	if err := b.ensurePending(); err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return nil, invalidQuantity(quantity)
	}
	line := PendingItem{
		ID:       uuid.New(),
		BatchID:  b.ID,
		ItemID:   itemID,
		SpecID:   specID,
		Quantity: quantity,
		RowIndex: rowIndex,
	}
	b.Items = append(b.Items, line)
	return &b.Items[len(b.Items)-1], nil
}

// UpdateQuantities replaces every line quantity. The map must cover every line
// and every quantity must be positive; nothing changes unless all pass.
func (b *PendingBatch) UpdateQuantities(quantities map[uuid.UUID]int) error {
	if err := b.ensurePending(); err != nil {
		return err
	}
	for _, line := range b.Items {
		q, ok := quantities[line.ID]
		if !ok {
			return shared.NewDomainErrorf(shared.CodeInvalidInput, "Missing quantity for line %s", line.ID)
		}
		if q <= 0 {
			return shared.NewDomainErrorf(shared.CodeInvalidQuantity,
				"Quantity for line %s must be a positive integer, got %d", line.ID, q)
		}
	}
	for i := range b.Items {
		b.Items[i].Quantity = quantities[b.Items[i].ID]
	}
	b.Touch()
	return nil
}

// CommitLine is a confirmed quantity for one line of the batch
type CommitLine struct {
	LineID   uuid.UUID
	Quantity int
}

// PrepareCommit checks that the lines with a positive quantity name exactly
// the lines of the batch and applies those quantities. On any mismatch the
// batch is left untouched.
func (b *PendingBatch) PrepareCommit(lines []CommitLine) error {
	if err := b.ensurePending(); err != nil {
		return err
	}
	if len(b.Items) == 0 {
		return shared.NewDomainError(shared.CodeInvalidState, "Batch has no lines")
	}

	confirmed := make(map[uuid.UUID]int, len(lines))
	for _, l := range lines {
		if l.Quantity > 0 {
			confirmed[l.LineID] = l.Quantity
		}
	}

	matched := 0
	for _, line := range b.Items {
		if _, ok := confirmed[line.ID]; ok {
			matched++
		}
	}
	if matched != len(confirmed) || matched != len(b.Items) {
		return shared.NewDomainErrorf(shared.CodeIDSetMismatch,
			"Submitted %d lines but %d matched the %d lines of the batch", len(confirmed), matched, len(b.Items))
	}

	for i := range b.Items {
		b.Items[i].Quantity = confirmed[b.Items[i].ID]
	}
	return nil
}

// MarkDone records the commit
func (b *PendingBatch) MarkDone(actor *identity.User, at time.Time) error {
	if err := b.ensurePending(); err != nil {
		return err
	}
	if actor == nil {
		return shared.NewDomainError(shared.CodeInvalidInput, "Commit actor is required")
	}
	b.Status = BatchStatusDone
	b.ProcessedByID = &actor.ID
	b.ProcessedBy = actor
	b.ProcessedAt = &at
	b.IncrementVersion()
	b.Touch()
	return nil
}

// Cancel abandons the batch without touching stock
func (b *PendingBatch) Cancel() error {
	if err := b.ensurePending(); err != nil {
		return err
	}
	b.Status = BatchStatusCanceled
	b.IncrementVersion()
	b.Touch()
	return nil
}

// TotalQuantity sums the line quantities
func (b *PendingBatch) TotalQuantity() int {
	total := 0
	for _, line := range b.Items {
		total += line.Quantity
	}
	return total
}
