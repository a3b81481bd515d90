package inventory

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockledger/backend/internal/domain/catalog"
	"github.com/stockledger/backend/internal/domain/shared"
)

// Variant is one item x spec combination and the aggregate that owns the
// running stock quantity. CurrentQuantity is a cache of the movement log:
// it always equals the sum of IN quantities minus the sum of OUT quantities.
type Variant struct {
	shared.BaseAggregateRoot
	ItemID          uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_variant_item_spec,priority:1"`
	SpecID          uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_variant_item_spec,priority:2"`
	Code            string          `gorm:"type:varchar(32);not null;uniqueIndex"`
	CurrentQuantity int             `gorm:"not null;default:0"`
	MinQuantity     int             `gorm:"not null;default:0"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`

	Item *catalog.Item `gorm:"foreignKey:ItemID;constraint:OnDelete:CASCADE"`
	Spec *catalog.Spec `gorm:"foreignKey:SpecID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (Variant) TableName() string {
	return "variants"
}

// NewVariant registers an item x spec combination with zero stock.
// The code is assigned separately by the code allocator.
func NewVariant(itemID, specID uuid.UUID) (*Variant, error) {
	if itemID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ITEM", "Item ID cannot be empty")
	}
	if specID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SPEC", "Spec ID cannot be empty")
	}
	return &Variant{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ItemID:            itemID,
		SpecID:            specID,
		UnitPrice:         decimal.Zero,
	}, nil
}

// AssignCode sets the product code. A code is assigned once and never changes.
func (v *Variant) AssignCode(code string) error {
	if v.Code != "" {
		return shared.NewDomainErrorf(shared.CodeInvalidState, "Variant already has code %s", v.Code)
	}
	if code == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "Code cannot be empty")
	}
	v.Code = code
	return nil
}

// StockIn adds quantity to the variant
func (v *Variant) StockIn(quantity int) error {
	if quantity <= 0 {
		return invalidQuantity(quantity)
	}
	v.CurrentQuantity += quantity
	v.IncrementVersion()
	v.Touch()
	return nil
}

// StockOut removes quantity from the variant. The variant is left untouched
// when the quantity is invalid or exceeds what is on hand.
func (v *Variant) StockOut(quantity int) error {
	if quantity <= 0 {
		return invalidQuantity(quantity)
	}
	if quantity > v.CurrentQuantity {
		return shared.NewDomainErrorf(shared.CodeInsufficientStock,
			"Insufficient stock for %s: requested %d, available %d", v.Label(), quantity, v.CurrentQuantity)
	}
	v.CurrentQuantity -= quantity
	v.IncrementVersion()
	v.Touch()
	return nil
}

// SetThresholds updates the low-stock threshold and unit price
func (v *Variant) SetThresholds(minQuantity int, unitPrice decimal.Decimal) error {
	if minQuantity < 0 {
		return shared.NewDomainError(shared.CodeInvalidQuantity, "Minimum quantity cannot be negative")
	}
	if unitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	v.MinQuantity = minQuantity
	v.UnitPrice = unitPrice
	v.Touch()
	return nil
}

// IsLowStock reports whether stock is below the minimum threshold
func (v *Variant) IsLowStock() bool {
	return v.CurrentQuantity < v.MinQuantity
}

// ItemName returns the loaded item name
func (v *Variant) ItemName() string {
	if v.Item == nil {
		return ""
	}
	return v.Item.Name
}

// SpecLabel returns the loaded spec label
func (v *Variant) SpecLabel() string {
	if v.Spec == nil {
		return ""
	}
	return v.Spec.Label
}

// DisplayName returns "item - spec" when the associations are loaded
func (v *Variant) DisplayName() string {
	if v.Item == nil || v.Spec == nil {
		return v.Code
	}
	return fmt.Sprintf("%s - %s", v.Item.Name, v.Spec.Label)
}

// Label identifies the variant in messages
func (v *Variant) Label() string {
	if v.Code != "" {
		return v.Code
	}
	return v.ID.String()
}

func invalidQuantity(quantity int) *shared.DomainError {
	return shared.NewDomainErrorf(shared.CodeInvalidQuantity, "Quantity must be a positive integer, got %d", quantity)
}
