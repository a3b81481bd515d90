package identity

import (
	"github.com/stockledger/backend/internal/domain/shared"
)

// DefaultSystemUserName is the name of the actor credited with automated
// commits when no other name is configured
const DefaultSystemUserName = "system"

// User is a warehouse handler who moves stock at the kiosk. The System flag
// marks the actor that automated intake commits are attributed to; it is
// hidden from kiosk pickers.
type User struct {
	shared.BaseEntity
	Name   string `gorm:"type:varchar(50);not null;uniqueIndex"`
	System bool   `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (User) TableName() string {
	return "inventory_users"
}

// NewUser creates a new handler
func NewUser(name string) (*User, error) {
	name = shared.NormalizeText(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "User name cannot be empty")
	}
	if len([]rune(name)) > 50 {
		return nil, shared.NewDomainError("INVALID_NAME", "User name cannot exceed 50 characters")
	}
	return &User{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
	}, nil
}

// NewSystemUser creates the actor for automated commits
func NewSystemUser(name string) (*User, error) {
	if shared.NormalizeText(name) == "" {
		name = DefaultSystemUserName
	}
	u, err := NewUser(name)
	if err != nil {
		return nil, err
	}
	u.System = true
	return u, nil
}
