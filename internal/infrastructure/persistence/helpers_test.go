package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockledger/backend/internal/domain/catalog"
	"github.com/stockledger/backend/internal/domain/identity"
	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/require"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDatabase(t *testing.T) *Database {
	t.Helper()
	db, err := NewDatabase(&config.DatabaseConfig{Driver: config.DriverSQLite, Path: ":memory:"}, nil, gormlogger.Silent)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate())
	t.Cleanup(func() { _ = db.Close() })
	return db
}

type fixture struct {
	db       *Database
	category *catalog.Category
	item     *catalog.Item
	spec     *catalog.Spec
	variant  *inventory.Variant
	user     *identity.User
}

func seedVariant(t *testing.T, db *Database, itemName, specLabel, code string, categoryID *uuid.UUID) (*catalog.Item, *catalog.Spec, *inventory.Variant) {
	t.Helper()
	ctx := context.Background()

	item, err := catalog.NewItem(itemName, categoryID, "")
	require.NoError(t, err)
	if existing, ferr := NewGormItemRepository(db.DB).FindByNameAndCategory(ctx, item.Name, categoryID); ferr == nil {
		item = existing
	} else {
		require.NoError(t, NewGormItemRepository(db.DB).Save(ctx, item))
	}

	spec, err := catalog.NewSpec(specLabel)
	require.NoError(t, err)
	if existing, ferr := NewGormSpecRepository(db.DB).FindByLabel(ctx, spec.Label); ferr == nil {
		spec = existing
	} else {
		require.NoError(t, NewGormSpecRepository(db.DB).Save(ctx, spec))
	}

	variant, err := inventory.NewVariant(item.ID, spec.ID)
	require.NoError(t, err)
	require.NoError(t, variant.AssignCode(code))
	require.NoError(t, NewGormVariantRepository(db.DB).Create(ctx, variant))
	return item, spec, variant
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDatabase(t)
	ctx := context.Background()

	category, err := catalog.NewCategory("Fasteners")
	require.NoError(t, err)
	require.NoError(t, NewGormCategoryRepository(db.DB).Save(ctx, category))

	item, spec, variant := seedVariant(t, db, "Bolt", "M8", "B8-001", &category.ID)
	require.NoError(t, variant.SetThresholds(5, decimal.RequireFromString("1.25")))
	require.NoError(t, NewGormVariantRepository(db.DB).SaveThresholds(ctx, variant))

	user, err := identity.NewUser("alice")
	require.NoError(t, err)
	require.NoError(t, NewGormUserRepository(db.DB).Save(ctx, user))

	return &fixture{db: db, category: category, item: item, spec: spec, variant: variant, user: user}
}

// movementAt stores a ledger entry with a fixed timestamp
func movementAt(t *testing.T, db *Database, variantID uuid.UUID, userID *uuid.UUID, qty int, dir inventory.Direction, at time.Time) *inventory.MovementLog {
	t.Helper()
	log, err := inventory.NewMovementLog(variantID, userID, qty, dir, "")
	require.NoError(t, err)
	log.Timestamp = at
	require.NoError(t, NewGormMovementRepository(db.DB).Create(context.Background(), log))
	return log
}
