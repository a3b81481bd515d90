package persistence

import (
	"context"

	appinv "github.com/stockledger/backend/internal/application/inventory"
	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GormTransactionScope runs ledger work in one database transaction. Every
// repository handed to the callback is bound to that transaction.
type GormTransactionScope struct {
	db *gorm.DB
}

func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute commits when fn returns nil and rolls back otherwise
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appinv.TransactionalRepositories) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newTxRepositories(tx))
	})
	if err != nil {
		logger.FromContext(ctx).Debug("inventory transaction rolled back", zap.Error(err))
	}
	return err
}

type txRepositories struct {
	variants  *GormVariantRepository
	movements *GormMovementRepository
	batches   *GormPendingBatchRepository
}

func newTxRepositories(tx *gorm.DB) *txRepositories {
	return &txRepositories{
		variants:  NewGormVariantRepository(tx),
		movements: NewGormMovementRepository(tx),
		batches:   NewGormPendingBatchRepository(tx),
	}
}

func (r *txRepositories) VariantRepo() inventory.VariantRepository           { return r.variants }
func (r *txRepositories) MovementRepo() inventory.MovementRepository         { return r.movements }
func (r *txRepositories) PendingBatchRepo() inventory.PendingBatchRepository { return r.batches }

var (
	_ appinv.TransactionScope          = (*GormTransactionScope)(nil)
	_ appinv.TransactionalRepositories = (*txRepositories)(nil)
)
