package catalog

import (
	"github.com/google/uuid"
	"github.com/stockledger/backend/internal/domain/shared"
)

// Item is a catalog entry; stock is kept per variant (item x spec)
type Item struct {
	shared.BaseEntity
	Name        string     `gorm:"type:varchar(100);not null;index"`
	CategoryID  *uuid.UUID `gorm:"type:uuid;index"`
	Description string     `gorm:"type:text"`

	Category *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL"`
}

// TableName returns the table name for GORM
func (Item) TableName() string {
	return "items"
}

// NewItem creates a new item, optionally assigned to a category
func NewItem(name string, categoryID *uuid.UUID, description string) (*Item, error) {
	name = shared.NormalizeText(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Item name cannot be empty")
	}
	if len([]rune(name)) > 100 {
		return nil, shared.NewDomainError("INVALID_NAME", "Item name cannot exceed 100 characters")
	}
	return &Item{
		BaseEntity:  shared.NewBaseEntity(),
		Name:        name,
		CategoryID:  categoryID,
		Description: shared.NormalizeText(description),
	}, nil
}

// SetCategory assigns or clears the category
func (i *Item) SetCategory(categoryID *uuid.UUID) {
	i.CategoryID = categoryID
	i.Category = nil
	i.Touch()
}

// CategoryName returns the loaded category name or an empty string
func (i *Item) CategoryName() string {
	if i.Category == nil {
		return ""
	}
	return i.Category.Name
}
