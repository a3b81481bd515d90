package catalog

import (
	"github.com/stockledger/backend/internal/domain/shared"
)

// Spec is a size/grade label such as "M8" or "300mm"
type Spec struct {
	shared.BaseEntity
	Label string `gorm:"type:varchar(100);not null;uniqueIndex"`
}

// TableName returns the table name for GORM
func (Spec) TableName() string {
	return "specs"
}

// NewSpec creates a new spec
func NewSpec(label string) (*Spec, error) {
	label = shared.NormalizeText(label)
	if label == "" {
		return nil, shared.NewDomainError("INVALID_LABEL", "Spec label cannot be empty")
	}
	if len([]rune(label)) > 100 {
		return nil, shared.NewDomainError("INVALID_LABEL", "Spec label cannot exceed 100 characters")
	}
	return &Spec{
		BaseEntity: shared.NewBaseEntity(),
		Label:      label,
	}, nil
}
