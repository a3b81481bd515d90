package persistence

import (
	"errors"

	"github.com/stockledger/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// translateError maps gorm sentinel errors onto domain errors. what names the
// resource in the ALREADY_EXISTS message.
func translateError(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.NewDomainErrorf(shared.CodeAlreadyExists, "%s already exists", what)
	default:
		return err
	}
}
