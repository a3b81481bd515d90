package inventory

import (
	"context"

	"github.com/stockledger/backend/internal/domain/inventory"
)

// TransactionScope provides transactional access to inventory repositories.
// All repository operations inside Execute are committed or rolled back together.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all inventory repositories within a transaction.
// All repositories returned share the same underlying database transaction.
//
// Aggregate boundaries:
//   - VariantRepo: the Variant aggregate owns the running quantity; writes are
//     version-checked so a concurrent movement surfaces as CONCURRENCY_CONFLICT.
//   - MovementRepo: append-only ledger, except for the cancel-out delete.
//   - PendingBatchRepo: the PendingBatch aggregate with its lines.
type TransactionalRepositories interface {
	VariantRepo() inventory.VariantRepository
	MovementRepo() inventory.MovementRepository
	PendingBatchRepo() inventory.PendingBatchRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use transactions.
// This is useful for testing or when transaction support is not required.
type NoOpTransactionScope struct {
	variantRepo  inventory.VariantRepository
	movementRepo inventory.MovementRepository
	batchRepo    inventory.PendingBatchRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	variantRepo inventory.VariantRepository,
	movementRepo inventory.MovementRepository,
	batchRepo inventory.PendingBatchRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		variantRepo:  variantRepo,
		movementRepo: movementRepo,
		batchRepo:    batchRepo,
	}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// VariantRepo returns the variant repository
func (s *NoOpTransactionScope) VariantRepo() inventory.VariantRepository {
	return s.variantRepo
}

// MovementRepo returns the movement repository
func (s *NoOpTransactionScope) MovementRepo() inventory.MovementRepository {
	return s.movementRepo
}

// PendingBatchRepo returns the pending batch repository
func (s *NoOpTransactionScope) PendingBatchRepo() inventory.PendingBatchRepository {
	return s.batchRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
