package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stockledger/backend/internal/domain/identity"
	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockVariantRepository is a mock implementation of VariantRepository
type MockVariantRepository struct {
	mock.Mock
}

func (m *MockVariantRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Variant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Variant), args.Error(1)
}

func (m *MockVariantRepository) FindByItemAndSpec(ctx context.Context, itemID, specID uuid.UUID) (*inventory.Variant, error) {
	args := m.Called(ctx, itemID, specID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Variant), args.Error(1)
}

func (m *MockVariantRepository) FindByItem(ctx context.Context, itemID uuid.UUID) ([]inventory.Variant, error) {
	args := m.Called(ctx, itemID)
	return args.Get(0).([]inventory.Variant), args.Error(1)
}

func (m *MockVariantRepository) FindForKiosk(ctx context.Context, categoryID *uuid.UUID) ([]inventory.Variant, error) {
	args := m.Called(ctx, categoryID)
	return args.Get(0).([]inventory.Variant), args.Error(1)
}

func (m *MockVariantRepository) Search(ctx context.Context, filter inventory.StatusFilter, page shared.Page) (shared.Paginated[inventory.Variant], error) {
	args := m.Called(ctx, filter, page)
	return args.Get(0).(shared.Paginated[inventory.Variant]), args.Error(1)
}

func (m *MockVariantRepository) CodesWithBase(ctx context.Context, base string) ([]string, error) {
	args := m.Called(ctx, base)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockVariantRepository) Create(ctx context.Context, variant *inventory.Variant) error {
	args := m.Called(ctx, variant)
	return args.Error(0)
}

func (m *MockVariantRepository) SaveQuantity(ctx context.Context, variant *inventory.Variant) error {
	args := m.Called(ctx, variant)
	return args.Error(0)
}

func (m *MockVariantRepository) SaveThresholds(ctx context.Context, variant *inventory.Variant) error {
	args := m.Called(ctx, variant)
	return args.Error(0)
}

// MockMovementRepository is a mock implementation of MovementRepository
type MockMovementRepository struct {
	mock.Mock
}

func (m *MockMovementRepository) Create(ctx context.Context, log *inventory.MovementLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockMovementRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.MovementLog, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.MovementLog), args.Error(1)
}

func (m *MockMovementRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockMovementRepository) Search(ctx context.Context, filter inventory.MovementFilter, page shared.Page) (shared.Paginated[inventory.MovementLog], error) {
	args := m.Called(ctx, filter, page)
	return args.Get(0).(shared.Paginated[inventory.MovementLog]), args.Error(1)
}

func (m *MockMovementRepository) FindAll(ctx context.Context, filter inventory.MovementFilter) ([]inventory.MovementLog, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]inventory.MovementLog), args.Error(1)
}

func (m *MockMovementRepository) UsageByVariant(ctx context.Context, filter inventory.MovementFilter) ([]inventory.UsageRow, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]inventory.UsageRow), args.Error(1)
}

func (m *MockMovementRepository) NetQuantity(ctx context.Context, variantID uuid.UUID) (int, error) {
	args := m.Called(ctx, variantID)
	return args.Int(0), args.Error(1)
}

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByName(ctx context.Context, name string) (*identity.User, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindAll(ctx context.Context, includeSystem bool) ([]identity.User, error) {
	args := m.Called(ctx, includeSystem)
	return args.Get(0).([]identity.User), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

type ledgerFixture struct {
	variants  *MockVariantRepository
	movements *MockMovementRepository
	users     *MockUserRepository
	service   *LedgerService
}

func newLedgerFixture() *ledgerFixture {
	f := &ledgerFixture{
		variants:  new(MockVariantRepository),
		movements: new(MockMovementRepository),
		users:     new(MockUserRepository),
	}
	scope := NewNoOpTransactionScope(f.variants, f.movements, nil)
	f.service = NewLedgerService(f.variants, f.movements, f.users, scope, nil)
	return f
}

func stockedVariant(t *testing.T, code string, quantity int) *inventory.Variant {
	t.Helper()
	v, err := inventory.NewVariant(uuid.New(), uuid.New())
	require.NoError(t, err)
	require.NoError(t, v.AssignCode(code))
	if quantity > 0 {
		require.NoError(t, v.StockIn(quantity))
	}
	return v
}

func TestLedgerService_StockIn(t *testing.T) {
	ctx := context.Background()

	t.Run("applies the movement and records an entry", func(t *testing.T) {
		f := newLedgerFixture()
		variant := stockedVariant(t, "B8-001", 0)
		f.variants.On("FindByID", ctx, variant.ID).Return(variant, nil)
		f.variants.On("SaveQuantity", ctx, variant).Return(nil)
		f.movements.On("Create", ctx, mock.MatchedBy(func(l *inventory.MovementLog) bool {
			return l.VariantID == variant.ID && l.Quantity == 5 && l.Direction == inventory.DirectionIn && l.Reason == "restock"
		})).Return(nil)

		result, err := f.service.StockIn(ctx, StockMoveRequest{VariantID: variant.ID, Quantity: 5, Reason: "  restock "})
		require.NoError(t, err)
		assert.Equal(t, 5, result.Variant.CurrentQuantity)
		assert.Equal(t, 5, result.Movement.Quantity)
		f.variants.AssertExpectations(t)
		f.movements.AssertExpectations(t)
	})

	t.Run("rejects a non-positive quantity without writing", func(t *testing.T) {
		f := newLedgerFixture()
		variant := stockedVariant(t, "B8-001", 0)
		f.variants.On("FindByID", ctx, variant.ID).Return(variant, nil)

		_, err := f.service.StockIn(ctx, StockMoveRequest{VariantID: variant.ID, Quantity: 0})
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrInvalidQuantity)
		f.variants.AssertNotCalled(t, "SaveQuantity", mock.Anything, mock.Anything)
		f.movements.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("unknown variant", func(t *testing.T) {
		f := newLedgerFixture()
		id := uuid.New()
		f.variants.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

		_, err := f.service.StockIn(ctx, StockMoveRequest{VariantID: id, Quantity: 1})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("unknown handler", func(t *testing.T) {
		f := newLedgerFixture()
		userID := uuid.New()
		f.users.On("FindByID", ctx, userID).Return(nil, shared.ErrNotFound)

		_, err := f.service.StockIn(ctx, StockMoveRequest{VariantID: uuid.New(), Quantity: 1, UserID: &userID})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "User not found")
		f.variants.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})
}

func TestLedgerService_StockOut(t *testing.T) {
	ctx := context.Background()

	t.Run("requires a handler", func(t *testing.T) {
		f := newLedgerFixture()
		_, err := f.service.StockOut(ctx, StockMoveRequest{VariantID: uuid.New(), Quantity: 1})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("insufficient stock leaves the variant untouched", func(t *testing.T) {
		f := newLedgerFixture()
		user, err := identity.NewUser("alice")
		require.NoError(t, err)
		variant := stockedVariant(t, "B8-001", 3)
		f.users.On("FindByID", ctx, user.ID).Return(user, nil)
		f.variants.On("FindByID", ctx, variant.ID).Return(variant, nil)

		_, err = f.service.StockOut(ctx, StockMoveRequest{VariantID: variant.ID, Quantity: 4, UserID: &user.ID})
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		assert.Equal(t, 3, variant.CurrentQuantity)
		f.movements.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("attaches the handler to the entry", func(t *testing.T) {
		f := newLedgerFixture()
		user, err := identity.NewUser("alice")
		require.NoError(t, err)
		variant := stockedVariant(t, "B8-001", 3)
		f.users.On("FindByID", ctx, user.ID).Return(user, nil)
		f.variants.On("FindByID", ctx, variant.ID).Return(variant, nil)
		f.variants.On("SaveQuantity", ctx, variant).Return(nil)
		f.movements.On("Create", ctx, mock.AnythingOfType("*inventory.MovementLog")).Return(nil)

		result, err := f.service.StockOut(ctx, StockMoveRequest{VariantID: variant.ID, Quantity: 3, UserID: &user.ID})
		require.NoError(t, err)
		assert.Equal(t, 0, result.Variant.CurrentQuantity)
		assert.Equal(t, "alice", result.Movement.UserName)
	})
}

func TestLedgerService_BulkMove(t *testing.T) {
	ctx := context.Background()

	t.Run("reports failing lines and keeps applying the rest", func(t *testing.T) {
		f := newLedgerFixture()
		good := stockedVariant(t, "B8-001", 0)
		missing := uuid.New()
		f.variants.On("FindByID", ctx, good.ID).Return(good, nil)
		f.variants.On("FindByID", ctx, missing).Return(nil, shared.ErrNotFound)
		f.variants.On("SaveQuantity", ctx, good).Return(nil)
		f.movements.On("Create", ctx, mock.AnythingOfType("*inventory.MovementLog")).Return(nil)

		result, err := f.service.BulkMove(ctx, BulkMoveRequest{Lines: []BulkLine{
			{VariantID: good.ID.String(), Quantity: NewLineQuantity(2)},
			{VariantID: "", Quantity: NewLineQuantity(1)},
			{VariantID: good.ID.String()},
			{VariantID: "not-a-uuid", Quantity: NewLineQuantity(1)},
			{VariantID: missing.String(), Quantity: NewLineQuantity(1)},
			{VariantID: good.ID.String(), Quantity: NewLineQuantity(3)},
		}}, inventory.DirectionIn)
		require.NoError(t, err)

		assert.Equal(t, 2, result.Applied)
		assert.Equal(t, 4, result.Failed)
		assert.Equal(t, MissingLineInfo, result.Errors[0])
		assert.Equal(t, MissingLineInfo, result.Errors[1])
		assert.Equal(t, "not-a-uuid: invalid variant id", result.Errors[2])
		assert.Contains(t, result.Errors[3], missing.String()+": Variant not found")
		assert.Equal(t, 5, good.CurrentQuantity)
	})

	t.Run("hides unexpected errors behind a generic reason", func(t *testing.T) {
		f := newLedgerFixture()
		variant := stockedVariant(t, "B8-001", 0)
		f.variants.On("FindByID", ctx, variant.ID).Return(variant, nil)
		f.variants.On("SaveQuantity", ctx, variant).Return(errors.New("disk full"))

		result, err := f.service.BulkMove(ctx, BulkMoveRequest{Lines: []BulkLine{
			{VariantID: variant.ID.String(), Quantity: NewLineQuantity(1)},
		}}, inventory.DirectionIn)
		require.NoError(t, err)
		assert.Equal(t, []string{variant.ID.String() + ": unexpected error"}, result.Errors)
	})

	t.Run("quantities are parsed per line", func(t *testing.T) {
		f := newLedgerFixture()
		m8 := stockedVariant(t, "B8-001", 0)
		m10 := stockedVariant(t, "B10-001", 0)
		f.variants.On("FindByID", ctx, m8.ID).Return(m8, nil)
		f.variants.On("SaveQuantity", ctx, m8).Return(nil)
		f.movements.On("Create", ctx, mock.AnythingOfType("*inventory.MovementLog")).Return(nil)

		var req BulkMoveRequest
		body := `{"lines":[` +
			`{"variant_id":"` + m8.ID.String() + `","quantity":10},` +
			`{"variant_id":"` + m10.ID.String() + `","quantity":"abc"},` +
			`{"variant_id":"` + m8.ID.String() + `","quantity":" 5 "},` +
			`{"variant_id":"` + m10.ID.String() + `","quantity":{"n":1}}]}`
		require.NoError(t, json.Unmarshal([]byte(body), &req))

		result, err := f.service.BulkMove(ctx, req, inventory.DirectionIn)
		require.NoError(t, err)

		assert.Equal(t, 2, result.Applied)
		assert.Equal(t, []string{
			m10.ID.String() + ": " + InvalidLineQuantity,
			m10.ID.String() + ": " + InvalidLineQuantity,
		}, result.Errors)
		assert.Equal(t, 15, m8.CurrentQuantity)
		f.variants.AssertNotCalled(t, "FindByID", ctx, m10.ID)
	})

	t.Run("negative quantity fails its line only", func(t *testing.T) {
		f := newLedgerFixture()
		variant := stockedVariant(t, "B8-001", 0)
		f.variants.On("FindByID", ctx, variant.ID).Return(variant, nil)

		result, err := f.service.BulkMove(ctx, BulkMoveRequest{Lines: []BulkLine{
			{VariantID: variant.ID.String(), Quantity: NewLineQuantity(-3)},
		}}, inventory.DirectionIn)
		require.NoError(t, err)
		require.Len(t, result.Errors, 1)
		assert.Contains(t, result.Errors[0], "Quantity must be a positive integer")
		assert.Equal(t, 0, variant.CurrentQuantity)
	})

	t.Run("stock out requires a handler", func(t *testing.T) {
		f := newLedgerFixture()
		_, err := f.service.BulkMove(ctx, BulkMoveRequest{Lines: []BulkLine{{VariantID: uuid.NewString(), Quantity: NewLineQuantity(1)}}}, inventory.DirectionOut)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("unknown direction", func(t *testing.T) {
		f := newLedgerFixture()
		_, err := f.service.BulkMove(ctx, BulkMoveRequest{}, inventory.Direction("SIDEWAYS"))
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestLineQuantity(t *testing.T) {
	decode := func(raw string) LineQuantity {
		var line BulkLine
		require.NoError(t, json.Unmarshal([]byte(`{"quantity":`+raw+`}`), &line))
		return line.Quantity
	}

	n, err := decode(`7`).Int()
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	n, err = decode(`"12"`).Int()
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	_, err = decode(`"abc"`).Int()
	assert.ErrorIs(t, err, shared.ErrInvalidQuantity)
	_, err = decode(`2.5`).Int()
	assert.ErrorIs(t, err, shared.ErrInvalidQuantity)

	assert.True(t, decode(`null`).IsMissing())
	assert.True(t, decode(`0`).IsMissing())
	assert.True(t, decode(`""`).IsMissing())
	assert.True(t, LineQuantity{}.IsMissing())
	assert.False(t, decode(`"abc"`).IsMissing())

	out, err := json.Marshal(NewLineQuantity(4))
	require.NoError(t, err)
	assert.JSONEq(t, `4`, string(out))
}

func TestLedgerService_CancelOut(t *testing.T) {
	ctx := context.Background()

	t.Run("restores the quantity and deletes the entry", func(t *testing.T) {
		f := newLedgerFixture()
		variant := stockedVariant(t, "B8-001", 2)
		userID := uuid.New()
		entry, err := inventory.NewMovementLog(variant.ID, &userID, 4, inventory.DirectionOut, "")
		require.NoError(t, err)
		f.movements.On("FindByID", ctx, entry.ID).Return(entry, nil)
		f.variants.On("FindByID", ctx, variant.ID).Return(variant, nil)
		f.variants.On("SaveQuantity", ctx, variant).Return(nil)
		f.movements.On("Delete", ctx, entry.ID).Return(nil)

		result, err := f.service.CancelOut(ctx, entry.ID)
		require.NoError(t, err)
		assert.Equal(t, 4, result.Restored)
		assert.Equal(t, 6, result.Variant.CurrentQuantity)
		assert.Equal(t, entry.ID, result.CancelledID)
		f.movements.AssertExpectations(t)
	})

	t.Run("stock-in entries cannot be cancelled", func(t *testing.T) {
		f := newLedgerFixture()
		entry, err := inventory.NewMovementLog(uuid.New(), nil, 4, inventory.DirectionIn, "")
		require.NoError(t, err)
		f.movements.On("FindByID", ctx, entry.ID).Return(entry, nil)

		_, err = f.service.CancelOut(ctx, entry.ID)
		assert.ErrorIs(t, err, shared.ErrInvalidState)
		f.movements.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("unknown entry", func(t *testing.T) {
		f := newLedgerFixture()
		id := uuid.New()
		f.movements.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

		_, err := f.service.CancelOut(ctx, id)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Movement not found")
	})
}

func TestLedgerService_History(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture()
	f.service.SetHistoryPageSize(20)
	f.service.SetHistoryPageSize(0)

	f.movements.On("Search", ctx, mock.Anything, mock.MatchedBy(func(p shared.Page) bool {
		return p.Page == 1 && p.PageSize == 20
	})).Return(shared.Paginated[inventory.MovementLog]{Items: []inventory.MovementLog{}}, nil)

	page, err := f.service.History(ctx, HistoryFilter{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	f.movements.AssertExpectations(t)
}
