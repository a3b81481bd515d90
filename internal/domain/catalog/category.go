package catalog

import (
	"github.com/google/uuid"
	"github.com/stockledger/backend/internal/domain/shared"
)

// Category groups items for browsing and filtering
type Category struct {
	shared.BaseEntity
	Name string `gorm:"type:varchar(100);not null"`
}

// TableName returns the table name for GORM
func (Category) TableName() string {
	return "categories"
}

// NewCategory creates a new category
func NewCategory(name string) (*Category, error) {
	name = shared.NormalizeText(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Category name cannot be empty")
	}
	if len([]rune(name)) > 100 {
		return nil, shared.NewDomainError("INVALID_NAME", "Category name cannot exceed 100 characters")
	}
	return &Category{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
	}, nil
}

// Rename changes the category name
func (c *Category) Rename(name string) error {
	name = shared.NormalizeText(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Category name cannot be empty")
	}
	c.Name = name
	c.Touch()
	return nil
}

// CategoryRef returns a pointer to the id, or nil for the zero id
func CategoryRef(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}
