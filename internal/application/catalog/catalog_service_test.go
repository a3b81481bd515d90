package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockledger/backend/internal/domain/catalog"
	"github.com/stockledger/backend/internal/domain/identity"
	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Category), args.Error(1)
}

func (m *MockCategoryRepository) FindAll(ctx context.Context) ([]catalog.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]catalog.Category), args.Error(1)
}

func (m *MockCategoryRepository) Save(ctx context.Context, category *catalog.Category) error {
	return m.Called(ctx, category).Error(0)
}

func (m *MockCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Item), args.Error(1)
}

func (m *MockItemRepository) FindByName(ctx context.Context, name string) ([]catalog.Item, error) {
	args := m.Called(ctx, name)
	return args.Get(0).([]catalog.Item), args.Error(1)
}

func (m *MockItemRepository) FindByNameAndCategory(ctx context.Context, name string, categoryID *uuid.UUID) (*catalog.Item, error) {
	args := m.Called(ctx, name, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Item), args.Error(1)
}

func (m *MockItemRepository) FindAll(ctx context.Context, filter catalog.ItemFilter) ([]catalog.Item, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Item), args.Error(1)
}

func (m *MockItemRepository) Save(ctx context.Context, item *catalog.Item) error {
	return m.Called(ctx, item).Error(0)
}

type MockSpecRepository struct {
	mock.Mock
}

func (m *MockSpecRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Spec, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Spec), args.Error(1)
}

func (m *MockSpecRepository) FindByLabel(ctx context.Context, label string) (*catalog.Spec, error) {
	args := m.Called(ctx, label)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Spec), args.Error(1)
}

func (m *MockSpecRepository) FindAll(ctx context.Context) ([]catalog.Spec, error) {
	args := m.Called(ctx)
	return args.Get(0).([]catalog.Spec), args.Error(1)
}

func (m *MockSpecRepository) Save(ctx context.Context, spec *catalog.Spec) error {
	return m.Called(ctx, spec).Error(0)
}

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
	return m.Called(ctx, variant).Error(0)
}

func (m *MockVariantRepository) SaveQuantity(ctx context.Context, variant *inventory.Variant) error {
	return m.Called(ctx, variant).Error(0)
}

func (m *MockVariantRepository) SaveThresholds(ctx context.Context, variant *inventory.Variant) error {
	return m.Called(ctx, variant).Error(0)
}

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
	return m.Called(ctx, user).Error(0)
}

type catalogFixture struct {
	categories *MockCategoryRepository
	items      *MockItemRepository
	specs      *MockSpecRepository
	variants   *MockVariantRepository
	service    *CatalogService
}

func newCatalogFixture() *catalogFixture {
	f := &catalogFixture{
		categories: new(MockCategoryRepository),
		items:      new(MockItemRepository),
		specs:      new(MockSpecRepository),
		variants:   new(MockVariantRepository),
	}
	f.service = NewCatalogService(f.categories, f.items, f.specs, f.variants, nil)
	return f
}

func boltAndM8(t *testing.T) (*catalog.Item, *catalog.Spec) {
	t.Helper()
	item, err := catalog.NewItem("Bolt", nil, "")
	require.NoError(t, err)
	spec, err := catalog.NewSpec("M8")
	require.NoError(t, err)
	return item, spec
}

func withCode(code string) any {
	return mock.MatchedBy(func(v *inventory.Variant) bool { return v.Code == code })
}

func TestCatalogService_RegisterVariant(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns the first free code and thresholds", func(t *testing.T) {
		f := newCatalogFixture()
		item, spec := boltAndM8(t)
		price := decimal.RequireFromString("1.25")
		f.items.On("FindByID", ctx, item.ID).Return(item, nil)
		f.specs.On("FindByID", ctx, spec.ID).Return(spec, nil)
		f.variants.On("FindByItemAndSpec", ctx, item.ID, spec.ID).Return(nil, shared.ErrNotFound)
		f.variants.On("CodesWithBase", ctx, "B8").Return([]string{"B8-001", "B8-003"}, nil)
		f.variants.On("Create", ctx, withCode("B8-002")).Return(nil)

		resp, err := f.service.RegisterVariant(ctx, RegisterVariantRequest{
			ItemID: item.ID, SpecID: spec.ID, MinQuantity: 4, UnitPrice: &price,
		})
		require.NoError(t, err)
		assert.Equal(t, "B8-002", resp.Code)
		assert.Equal(t, 4, resp.MinQuantity)
		assert.Equal(t, 0, resp.CurrentQuantity)
		f.variants.AssertExpectations(t)
	})

	t.Run("retries with the next code after a clash", func(t *testing.T) {
		f := newCatalogFixture()
		item, spec := boltAndM8(t)
		f.items.On("FindByID", ctx, item.ID).Return(item, nil)
		f.specs.On("FindByID", ctx, spec.ID).Return(spec, nil)
		f.variants.On("FindByItemAndSpec", ctx, item.ID, spec.ID).Return(nil, shared.ErrNotFound)
		f.variants.On("CodesWithBase", ctx, "B8").Return([]string{}, nil).Once()
		f.variants.On("CodesWithBase", ctx, "B8").Return([]string{"B8-001"}, nil).Once()
		f.variants.On("Create", ctx, withCode("B8-001")).Return(shared.ErrAlreadyExists).Once()
		f.variants.On("Create", ctx, withCode("B8-002")).Return(nil).Once()

		resp, err := f.service.RegisterVariant(ctx, RegisterVariantRequest{ItemID: item.ID, SpecID: spec.ID})
		require.NoError(t, err)
		assert.Equal(t, "B8-002", resp.Code)
		f.variants.AssertExpectations(t)
	})

	t.Run("gives up once the retry budget is spent", func(t *testing.T) {
		f := newCatalogFixture()
		item, spec := boltAndM8(t)
		f.items.On("FindByID", ctx, item.ID).Return(item, nil)
		f.specs.On("FindByID", ctx, spec.ID).Return(spec, nil)
		f.variants.On("FindByItemAndSpec", ctx, item.ID, spec.ID).Return(nil, shared.ErrNotFound)
		f.variants.On("CodesWithBase", ctx, "B8").Return([]string{}, nil)
		f.variants.On("Create", ctx, mock.Anything).Return(shared.ErrAlreadyExists)

		_, err := f.service.RegisterVariant(ctx, RegisterVariantRequest{ItemID: item.ID, SpecID: spec.ID})
		require.Error(t, err)
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, shared.CodeCodeExhausted, de.Code)
		f.variants.AssertNumberOfCalls(t, "Create", DefaultCodeRetryBudget)
	})

	t.Run("pair registered concurrently", func(t *testing.T) {
		f := newCatalogFixture()
		item, spec := boltAndM8(t)
		existing, err := inventory.NewVariant(item.ID, spec.ID)
		require.NoError(t, err)
		f.items.On("FindByID", ctx, item.ID).Return(item, nil)
		f.specs.On("FindByID", ctx, spec.ID).Return(spec, nil)
		f.variants.On("FindByItemAndSpec", ctx, item.ID, spec.ID).Return(nil, shared.ErrNotFound).Once()
		f.variants.On("FindByItemAndSpec", ctx, item.ID, spec.ID).Return(existing, nil).Once()
		f.variants.On("CodesWithBase", ctx, "B8").Return([]string{}, nil)
		f.variants.On("Create", ctx, mock.Anything).Return(shared.ErrAlreadyExists).Once()

		_, err = f.service.RegisterVariant(ctx, RegisterVariantRequest{ItemID: item.ID, SpecID: spec.ID})
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
		f.variants.AssertNumberOfCalls(t, "Create", 1)
	})

	t.Run("unknown spec", func(t *testing.T) {
		f := newCatalogFixture()
		item, _ := boltAndM8(t)
		specID := uuid.New()
		f.items.On("FindByID", ctx, item.ID).Return(item, nil)
		f.specs.On("FindByID", ctx, specID).Return(nil, shared.ErrNotFound)

		_, err := f.service.RegisterVariant(ctx, RegisterVariantRequest{ItemID: item.ID, SpecID: specID})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Spec not found")
	})
}

func TestCatalogService_QuickAddItem(t *testing.T) {
	ctx := context.Background()

	t.Run("reuses the item and skips registered specs", func(t *testing.T) {
		f := newCatalogFixture()
		item, m8 := boltAndM8(t)
		registered, err := inventory.NewVariant(item.ID, m8.ID)
		require.NoError(t, err)

		f.items.On("FindByNameAndCategory", ctx, "Bolt", (*uuid.UUID)(nil)).Return(item, nil)
		f.specs.On("FindByLabel", ctx, "M8").Return(m8, nil)
		f.specs.On("FindByLabel", ctx, "M10").Return(nil, shared.ErrNotFound)
		f.specs.On("Save", ctx, mock.MatchedBy(func(s *catalog.Spec) bool { return s.Label == "M10" })).Return(nil)
		f.variants.On("FindByItemAndSpec", ctx, item.ID, m8.ID).Return(registered, nil)
		f.variants.On("FindByItemAndSpec", ctx, item.ID, mock.Anything).Return(nil, shared.ErrNotFound)
		f.variants.On("CodesWithBase", ctx, "B10").Return([]string{}, nil)
		f.variants.On("Create", ctx, withCode("B10-001")).Return(nil)

		result, err := f.service.QuickAddItem(ctx, QuickAddRequest{Name: " Bolt ", Specs: "M8, M10, M8,"})
		require.NoError(t, err)
		assert.Equal(t, item.ID, result.Item.ID)
		assert.Equal(t, []string{"M8"}, result.Skipped)
		require.Len(t, result.Created, 1)
		assert.Equal(t, "B10-001", result.Created[0].Code)
		f.items.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("requires a spec", func(t *testing.T) {
		f := newCatalogFixture()
		_, err := f.service.QuickAddItem(ctx, QuickAddRequest{Name: "Bolt", Specs: " , "})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("unknown category", func(t *testing.T) {
		f := newCatalogFixture()
		id := uuid.New()
		f.categories.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

		_, err := f.service.QuickAddItem(ctx, QuickAddRequest{Name: "Bolt", CategoryID: &id, Specs: "M8"})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestCatalogService_UpdateVariant(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture()
	variant, err := inventory.NewVariant(uuid.New(), uuid.New())
	require.NoError(t, err)
	require.NoError(t, variant.SetThresholds(2, decimal.RequireFromString("3.50")))
	f.variants.On("FindByID", ctx, variant.ID).Return(variant, nil)
	f.variants.On("SaveThresholds", ctx, variant).Return(nil)

	minQty := 6
	resp, err := f.service.UpdateVariant(ctx, variant.ID, UpdateVariantRequest{MinQuantity: &minQty})
	require.NoError(t, err)
	assert.Equal(t, 6, resp.MinQuantity)
	assert.True(t, variant.UnitPrice.Equal(decimal.RequireFromString("3.5")))

	negative := -1
	_, err = f.service.UpdateVariant(ctx, variant.ID, UpdateVariantRequest{MinQuantity: &negative})
	assert.ErrorIs(t, err, shared.ErrInvalidQuantity)
	f.variants.AssertNumberOfCalls(t, "SaveThresholds", 1)
}

func TestSplitSpecLabels(t *testing.T) {
	assert.Equal(t, []string{"M8", "M10"}, SplitSpecLabels(" M8 ,M10,, M8 "))
	assert.Empty(t, SplitSpecLabels(" , ,"))
}

func TestUserService(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects duplicate names", func(t *testing.T) {
		repo := new(MockUserRepository)
		existing, err := identity.NewUser("alice")
		require.NoError(t, err)
		repo.On("FindByName", ctx, "alice").Return(existing, nil)

		_, err = NewUserService(repo).CreateUser(ctx, CreateUserRequest{Name: " alice "})
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("system user is promoted when it exists as a handler", func(t *testing.T) {
		repo := new(MockUserRepository)
		existing, err := identity.NewUser("system")
		require.NoError(t, err)
		repo.On("FindByName", ctx, "system").Return(existing, nil)
		repo.On("Save", ctx, existing).Return(nil)

		user, err := NewUserService(repo).EnsureSystemUser(ctx, "system")
		require.NoError(t, err)
		assert.True(t, user.System)
		assert.Equal(t, existing.ID, user.ID)
		repo.AssertExpectations(t)
	})

	t.Run("system user is created on first use", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("FindByName", ctx, identity.DefaultSystemUserName).Return(nil, shared.ErrNotFound)
		repo.On("Save", ctx, mock.AnythingOfType("*identity.User")).Return(nil)

		user, err := NewUserService(repo).EnsureSystemUser(ctx, "")
		require.NoError(t, err)
		assert.True(t, user.System)
		assert.Equal(t, identity.DefaultSystemUserName, user.Name)
	})
}
