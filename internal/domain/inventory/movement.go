package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/stockledger/backend/internal/domain/identity"
	"github.com/stockledger/backend/internal/domain/shared"
)

// Direction is the sign of a stock movement
type Direction string

const (
	DirectionIn  Direction = "IN"
	DirectionOut Direction = "OUT"
)

// IsValid checks if the direction is known
func (d Direction) IsValid() bool {
	return d == DirectionIn || d == DirectionOut
}

// ParseDirection converts user input to a Direction; empty input yields ""
func ParseDirection(s string) (Direction, error) {
	if s == "" {
		return "", nil
	}
	d := Direction(s)
	if !d.IsValid() {
		return "", shared.NewDomainErrorf(shared.CodeInvalidInput, "Unknown direction %q", s)
	}
	return d, nil
}

// MovementLog is an immutable ledger entry. Entries are only ever removed by
// cancelling an OUT movement, which also restores the quantity.
type MovementLog struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID    *uuid.UUID `gorm:"type:uuid;index"`
	VariantID uuid.UUID  `gorm:"type:uuid;not null;index"`
	Quantity  int        `gorm:"not null"`
	Direction Direction  `gorm:"type:varchar(3);not null;index"`
	Timestamp time.Time  `gorm:"not null;index"`
	Reason    string     `gorm:"type:varchar(255)"`

	User    *identity.User `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL"`
	Variant *Variant       `gorm:"foreignKey:VariantID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (MovementLog) TableName() string {
	return "movement_logs"
}

// NewMovementLog creates a ledger entry for a movement that has already been
// applied to the variant
func NewMovementLog(variantID uuid.UUID, userID *uuid.UUID, quantity int, direction Direction, reason string) (*MovementLog, error) {
	if quantity <= 0 {
		return nil, invalidQuantity(quantity)
	}
	if !direction.IsValid() {
		return nil, shared.NewDomainErrorf(shared.CodeInvalidInput, "Unknown direction %q", direction)
	}
	return &MovementLog{
		ID:        uuid.New(),
		UserID:    userID,
		VariantID: variantID,
		Quantity:  quantity,
		Direction: direction,
		Timestamp: time.Now(),
		Reason:    reason,
	}, nil
}

// SignedQuantity returns the effect of the entry on the running quantity
func (l *MovementLog) SignedQuantity() int {
	if l.Direction == DirectionOut {
		return -l.Quantity
	}
	return l.Quantity
}

// EnsureCancelable checks that the entry may be reversed
func (l *MovementLog) EnsureCancelable() error {
	if l.Direction != DirectionOut {
		return shared.NewDomainError(shared.CodeInvalidState, "Only stock-out entries can be cancelled")
	}
	return nil
}

// UserName returns the loaded handler name
func (l *MovementLog) UserName() string {
	if l.User == nil {
		return ""
	}
	return l.User.Name
}
