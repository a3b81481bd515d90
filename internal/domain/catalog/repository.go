package catalog

import (
	"context"

	"github.com/google/uuid"
)

// CategoryRepository persists categories
type CategoryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Category, error)
	FindAll(ctx context.Context) ([]Category, error)
	Save(ctx context.Context, category *Category) error
	// Delete removes the category and clears it from every item referencing it
	Delete(ctx context.Context, id uuid.UUID) error
}

// ItemFilter narrows item listings
type ItemFilter struct {
	CategoryID *uuid.UUID
	Search     string
}

// ItemRepository persists items
type ItemRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Item, error)
	// FindByName returns every item with exactly this name
	FindByName(ctx context.Context, name string) ([]Item, error)
	// FindByNameAndCategory returns the item with this name in the category
	// (nil category means uncategorised)
	FindByNameAndCategory(ctx context.Context, name string, categoryID *uuid.UUID) (*Item, error)
	FindAll(ctx context.Context, filter ItemFilter) ([]Item, error)
	Save(ctx context.Context, item *Item) error
}

// SpecRepository persists specs
type SpecRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Spec, error)
	FindByLabel(ctx context.Context, label string) (*Spec, error)
	FindAll(ctx context.Context) ([]Spec, error)
	Save(ctx context.Context, spec *Spec) error
}
