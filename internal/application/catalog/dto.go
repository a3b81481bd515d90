package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	appinv "github.com/stockledger/backend/internal/application/inventory"
	"github.com/stockledger/backend/internal/domain/catalog"
	"github.com/stockledger/backend/internal/domain/identity"
)

// CreateCategoryRequest represents a request to create a category
type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// ToCategoryResponse converts a category to its response
func ToCategoryResponse(c *catalog.Category) CategoryResponse {
	return CategoryResponse{ID: c.ID, Name: c.Name, CreatedAt: c.CreatedAt}
}

// CreateItemRequest represents a request to create an item
type CreateItemRequest struct {
	Name        string     `json:"name" binding:"required,min=1,max=100"`
	CategoryID  *uuid.UUID `json:"category_id"`
	Description string     `json:"description" binding:"max=2000"`
}

// ItemListFilter narrows the item listing
type ItemListFilter struct {
	CategoryID string `form:"category_id"`
	Search     string `form:"search"`
}

// ItemResponse represents an item in API responses
type ItemResponse struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	CategoryID   *uuid.UUID `json:"category_id,omitempty"`
	CategoryName string     `json:"category_name,omitempty"`
	Description  string     `json:"description,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// ToItemResponse converts an item to its response
func ToItemResponse(i *catalog.Item) ItemResponse {
	return ItemResponse{
		ID:           i.ID,
		Name:         i.Name,
		CategoryID:   i.CategoryID,
		CategoryName: i.CategoryName(),
		Description:  i.Description,
		CreatedAt:    i.CreatedAt,
	}
}

// CreateSpecRequest represents a request to create a spec
type CreateSpecRequest struct {
	Label string `json:"label" binding:"required,min=1,max=100"`
}

// SpecResponse represents a spec in API responses
type SpecResponse struct {
	ID    uuid.UUID `json:"id"`
	Label string    `json:"label"`
}

// ToSpecResponse converts a spec to its response
func ToSpecResponse(s *catalog.Spec) SpecResponse {
	return SpecResponse{ID: s.ID, Label: s.Label}
}

// RegisterVariantRequest registers an item x spec combination
type RegisterVariantRequest struct {
	ItemID      uuid.UUID        `json:"item_id" binding:"required"`
	SpecID      uuid.UUID        `json:"spec_id" binding:"required"`
	MinQuantity int              `json:"min_quantity" binding:"min=0"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
}

// UpdateVariantRequest changes the low-stock threshold and unit price
type UpdateVariantRequest struct {
	MinQuantity *int             `json:"min_quantity" binding:"omitempty,min=0"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
}

// QuickAddRequest creates an item with several specs at once. Specs is a
// comma-separated list of labels.
type QuickAddRequest struct {
	Name        string     `json:"name" binding:"required,min=1,max=100"`
	CategoryID  *uuid.UUID `json:"category_id"`
	Description string     `json:"description" binding:"max=2000"`
	Specs       string     `json:"specs" binding:"required"`
}

// QuickAddResult reports which variants were created
type QuickAddResult struct {
	Item    ItemResponse             `json:"item"`
	Created []appinv.VariantResponse `json:"created"`
	Skipped []string                 `json:"skipped"`
}

// CreateUserRequest represents a request to register a handler
type CreateUserRequest struct {
	Name string `json:"name" binding:"required,min=1,max=50"`
}

// UserResponse represents a handler in API responses
type UserResponse struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	System bool      `json:"system,omitempty"`
}

// ToUserResponse converts a user to its response
func ToUserResponse(u *identity.User) UserResponse {
	return UserResponse{ID: u.ID, Name: u.Name, System: u.System}
}
