package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository persists handlers
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByName(ctx context.Context, name string) (*User, error)
	// FindAll lists users by name; the system actor is left out unless includeSystem is set
	FindAll(ctx context.Context, includeSystem bool) ([]User, error)
	Save(ctx context.Context, user *User) error
}
