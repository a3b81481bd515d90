package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity carries the identity and timestamps shared by every table
type BaseEntity struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// NewBaseEntity creates a base entity with a fresh ID
func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
}

// Touch bumps the update timestamp
func (e *BaseEntity) Touch() {
	e.UpdatedAt = time.Now()
}

// BaseAggregateRoot adds an optimistic-lock version. Every state change bumps
// Version in memory; the repository then writes only if the stored row is
// still at StoredVersion, so a concurrent writer is detected instead of
// overwritten.
type BaseAggregateRoot struct {
	BaseEntity
	Version int `gorm:"not null;default:1"`
}

// NewBaseAggregateRoot creates an aggregate at version 1
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: NewBaseEntity(), Version: 1}
}

// IncrementVersion records one state change
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
}

// StoredVersion is the version the row must still have for a save to apply
func (a *BaseAggregateRoot) StoredVersion() int {
	return a.Version - 1
}
