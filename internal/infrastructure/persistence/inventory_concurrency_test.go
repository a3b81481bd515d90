package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockGormDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func stockedVariant(t *testing.T) *inventory.Variant {
	t.Helper()
	v, err := inventory.NewVariant(uuid.New(), uuid.New())
	require.NoError(t, err)
	require.NoError(t, v.AssignCode("B8-001"))
	require.NoError(t, v.StockIn(5))
	return v
}

func TestSaveQuantity_OptimisticLocking(t *testing.T) {
	t.Run("matching version updates", func(t *testing.T) {
		db, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()

		v := stockedVariant(t)
		mock.ExpectExec(`UPDATE "variants" SET .* WHERE id = \$\d+ AND version = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := NewGormVariantRepository(db).SaveQuantity(context.Background(), v)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no row at the previous version is a conflict", func(t *testing.T) {
		db, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()

		v := stockedVariant(t)
		mock.ExpectExec(`UPDATE "variants" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := NewGormVariantRepository(db).SaveQuantity(context.Background(), v)

		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("driver errors pass through", func(t *testing.T) {
		db, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()

		v := stockedVariant(t)
		mock.ExpectExec(`UPDATE "variants" SET`).
			WillReturnError(sql.ErrConnDone)

		err := NewGormVariantRepository(db).SaveQuantity(context.Background(), v)

		assert.ErrorIs(t, err, sql.ErrConnDone)
	})
}

func TestSaveStatus_OnlyFromPending(t *testing.T) {
	db, mock, mockDB := newMockGormDB(t)
	defer mockDB.Close()

	batch, err := inventory.NewPendingBatch("Acme", stockedVariant(t).CreatedAt)
	require.NoError(t, err)
	require.NoError(t, batch.Cancel())

	mock.ExpectExec(`UPDATE "pending_batches" SET .* WHERE id = \$\d+ AND status = \$\d+ AND version = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = NewGormPendingBatchRepository(db).SaveStatus(context.Background(), batch)

	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}
