package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	appinv "github.com/stockledger/backend/internal/application/inventory"
	"github.com/stockledger/backend/internal/domain/catalog"
	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DefaultCodeRetryBudget is how many insert conflicts code allocation
// tolerates beyond the number of codes already using the base
const DefaultCodeRetryBudget = 5

// CatalogService manages categories, items, specs and variants
type CatalogService struct {
	categoryRepo    catalog.CategoryRepository
	itemRepo        catalog.ItemRepository
	specRepo        catalog.SpecRepository
	variantRepo     inventory.VariantRepository
	logger          *zap.Logger
	codeRetryBudget int
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(
	categoryRepo catalog.CategoryRepository,
	itemRepo catalog.ItemRepository,
	specRepo catalog.SpecRepository,
	variantRepo inventory.VariantRepository,
	logger *zap.Logger,
) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{
		categoryRepo:    categoryRepo,
		itemRepo:        itemRepo,
		specRepo:        specRepo,
		variantRepo:     variantRepo,
		logger:          logger,
		codeRetryBudget: DefaultCodeRetryBudget,
	}
}

// CreateCategory creates a category
func (s *CatalogService) CreateCategory(ctx context.Context, req CreateCategoryRequest) (*CategoryResponse, error) {
	category, err := catalog.NewCategory(req.Name)
	if err != nil {
		return nil, err
	}
	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}
	resp := ToCategoryResponse(category)
	return &resp, nil
}

// ListCategories lists categories by name
func (s *CatalogService) ListCategories(ctx context.Context) ([]CategoryResponse, error) {
	categories, err := s.categoryRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]CategoryResponse, len(categories))
	for i := range categories {
		out[i] = ToCategoryResponse(&categories[i])
	}
	return out, nil
}

// DeleteCategory removes a category; its items become uncategorised
func (s *CatalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if _, err := s.findCategory(ctx, id); err != nil {
		return err
	}
	return s.categoryRepo.Delete(ctx, id)
}

// CreateItem creates an item. Names are unique within a category.
func (s *CatalogService) CreateItem(ctx context.Context, req CreateItemRequest) (*ItemResponse, error) {
	category, err := s.optionalCategory(ctx, req.CategoryID)
	if err != nil {
		return nil, err
	}
	item, err := catalog.NewItem(req.Name, req.CategoryID, req.Description)
	if err != nil {
		return nil, err
	}
	if _, err := s.itemRepo.FindByNameAndCategory(ctx, item.Name, item.CategoryID); err == nil {
		return nil, shared.NewDomainErrorf(shared.CodeAlreadyExists, "Item %q already exists in this category", item.Name)
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}
	item.Category = category
	resp := ToItemResponse(item)
	return &resp, nil
}

// ListItems lists items by name
func (s *CatalogService) ListItems(ctx context.Context, filter ItemListFilter) ([]ItemResponse, error) {
	domainFilter := catalog.ItemFilter{Search: shared.NormalizeText(filter.Search)}
	if c := strings.TrimSpace(filter.CategoryID); c != "" {
		id, err := uuid.Parse(c)
		if err != nil {
			return nil, shared.NewDomainErrorf(shared.CodeInvalidInput, "Invalid category_id: %s", c)
		}
		domainFilter.CategoryID = &id
	}
	items, err := s.itemRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	out := make([]ItemResponse, len(items))
	for i := range items {
		out[i] = ToItemResponse(&items[i])
	}
	return out, nil
}

// CreateSpec creates a spec. Labels are unique.
func (s *CatalogService) CreateSpec(ctx context.Context, req CreateSpecRequest) (*SpecResponse, error) {
	spec, err := catalog.NewSpec(req.Label)
	if err != nil {
		return nil, err
	}
	if _, err := s.specRepo.FindByLabel(ctx, spec.Label); err == nil {
		return nil, shared.NewDomainErrorf(shared.CodeAlreadyExists, "Spec %q already exists", spec.Label)
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if err := s.specRepo.Save(ctx, spec); err != nil {
		return nil, err
	}
	resp := ToSpecResponse(spec)
	return &resp, nil
}

// ListSpecs lists specs by label
func (s *CatalogService) ListSpecs(ctx context.Context) ([]SpecResponse, error) {
	specs, err := s.specRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]SpecResponse, len(specs))
	for i := range specs {
		out[i] = ToSpecResponse(&specs[i])
	}
	return out, nil
}

// RegisterVariant creates the variant for an existing item and spec and
// assigns its code
func (s *CatalogService) RegisterVariant(ctx context.Context, req RegisterVariantRequest) (*appinv.VariantResponse, error) {
	item, err := s.itemRepo.FindByID(ctx, req.ItemID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NotFound("Item", req.ItemID)
		}
		return nil, err
	}
	spec, err := s.specRepo.FindByID(ctx, req.SpecID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NotFound("Spec", req.SpecID)
		}
		return nil, err
	}

	variant, err := s.createVariant(ctx, item, spec, func(v *inventory.Variant) error {
		price := v.UnitPrice
		if req.UnitPrice != nil {
			price = *req.UnitPrice
		}
		return v.SetThresholds(req.MinQuantity, price)
	})
	if err != nil {
		return nil, err
	}
	resp := appinv.ToVariantResponse(variant)
	return &resp, nil
}

// ListItemVariants lists the variants of an item
func (s *CatalogService) ListItemVariants(ctx context.Context, itemID uuid.UUID) ([]appinv.VariantResponse, error) {
	if _, err := s.itemRepo.FindByID(ctx, itemID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NotFound("Item", itemID)
		}
		return nil, err
	}
	variants, err := s.variantRepo.FindByItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	out := make([]appinv.VariantResponse, len(variants))
	for i := range variants {
		out[i] = appinv.ToVariantResponse(&variants[i])
	}
	return out, nil
}

// UpdateVariant changes the low-stock threshold and unit price. The stock
// quantity is only changed by the ledger.
func (s *CatalogService) UpdateVariant(ctx context.Context, id uuid.UUID, req UpdateVariantRequest) (*appinv.VariantResponse, error) {
	variant, err := s.variantRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NotFound("Variant", id)
		}
		return nil, err
	}
	minQty := variant.MinQuantity
	if req.MinQuantity != nil {
		minQty = *req.MinQuantity
	}
	price := variant.UnitPrice
	if req.UnitPrice != nil {
		price = *req.UnitPrice
	}
	if err := variant.SetThresholds(minQty, price); err != nil {
		return nil, err
	}
	if err := s.variantRepo.SaveThresholds(ctx, variant); err != nil {
		return nil, err
	}
	resp := appinv.ToVariantResponse(variant)
	return &resp, nil
}

// QuickAddItem gets or creates the item, gets or creates every listed spec
// and registers a variant for each spec the item does not have yet
func (s *CatalogService) QuickAddItem(ctx context.Context, req QuickAddRequest) (*QuickAddResult, error) {
	labels := SplitSpecLabels(req.Specs)
	if len(labels) == 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "At least one spec label is required")
	}
	category, err := s.optionalCategory(ctx, req.CategoryID)
	if err != nil {
		return nil, err
	}
	item, err := s.getOrCreateItem(ctx, req.Name, req.CategoryID, req.Description)
	if err != nil {
		return nil, err
	}
	item.Category = category

	result := &QuickAddResult{
		Item:    ToItemResponse(item),
		Created: make([]appinv.VariantResponse, 0, len(labels)),
		Skipped: make([]string, 0),
	}
	for _, label := range labels {
		spec, err := s.getOrCreateSpec(ctx, label)
		if err != nil {
			return nil, err
		}
		variant, err := s.createVariant(ctx, item, spec, nil)
		if errors.Is(err, shared.ErrAlreadyExists) {
			result.Skipped = append(result.Skipped, spec.Label)
			continue
		}
		if err != nil {
			return nil, err
		}
		result.Created = append(result.Created, appinv.ToVariantResponse(variant))
	}

	s.logger.Info("quick add",
		zap.String("item", item.Name),
		zap.Int("created", len(result.Created)),
		zap.Int("skipped", len(result.Skipped)),
	)
	return result, nil
}

// SplitSpecLabels splits a comma-separated list, dropping blanks and repeats
func SplitSpecLabels(s string) []string {
	seen := make(map[string]struct{})
	var labels []string
	for _, part := range strings.Split(s, ",") {
		label := shared.NormalizeText(part)
		if label == "" {
			continue
		}
		if _, dup := seen[label]; dup {
			continue
		}
		seen[label] = struct{}{}
		labels = append(labels, label)
	}
	return labels
}

// createVariant inserts a variant with the first free code for its base.
// A clash on the unique code index means another request took the code
// first; the next free code is tried until the retry budget runs out.
// configure, when set, adjusts the variant before insert.
func (s *CatalogService) createVariant(ctx context.Context, item *catalog.Item, spec *catalog.Spec, configure func(*inventory.Variant) error) (*inventory.Variant, error) {
	if _, err := s.variantRepo.FindByItemAndSpec(ctx, item.ID, spec.ID); err == nil {
		return nil, variantExists(item, spec)
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	base := inventory.CodeBase(item.Name, spec.Label)
	codes, err := s.variantRepo.CodesWithBase(ctx, base)
	if err != nil {
		return nil, err
	}
	seq := inventory.FirstFreeSequence(base, codes)
	attempts := len(codes) + s.codeRetryBudget

	for attempt := 0; attempt < attempts; attempt++ {
		variant, err := inventory.NewVariant(item.ID, spec.ID)
		if err != nil {
			return nil, err
		}
		if err := variant.AssignCode(inventory.FormatCode(base, seq)); err != nil {
			return nil, err
		}
		if configure != nil {
			if err := configure(variant); err != nil {
				return nil, err
			}
		}

		err = s.variantRepo.Create(ctx, variant)
		if err == nil {
			variant.Item = item
			variant.Spec = spec
			s.logger.Debug("variant registered",
				zap.String("code", variant.Code),
				zap.Int("attempt", attempt+1),
			)
			return variant, nil
		}
		if !errors.Is(err, shared.ErrAlreadyExists) {
			return nil, err
		}

		// Either the pair was registered concurrently or the code was taken
		if _, ferr := s.variantRepo.FindByItemAndSpec(ctx, item.ID, spec.ID); ferr == nil {
			return nil, variantExists(item, spec)
		}
		if codes, err = s.variantRepo.CodesWithBase(ctx, base); err != nil {
			return nil, err
		}
		codes = append(codes, inventory.FormatCode(base, seq))
		seq = inventory.NextFreeSequence(base, codes, seq)
	}

	s.logger.Warn("code allocation exhausted", zap.String("base", base), zap.Int("attempts", attempts))
	return nil, shared.NewDomainErrorf(shared.CodeCodeExhausted, "Could not allocate a code for base %s", base)
}

func variantExists(item *catalog.Item, spec *catalog.Spec) error {
	return shared.NewDomainErrorf(shared.CodeAlreadyExists, "Variant %s - %s is already registered", item.Name, spec.Label)
}

func (s *CatalogService) getOrCreateItem(ctx context.Context, name string, categoryID *uuid.UUID, description string) (*catalog.Item, error) {
	item, err := catalog.NewItem(name, categoryID, description)
	if err != nil {
		return nil, err
	}
	existing, err := s.itemRepo.FindByNameAndCategory(ctx, item.Name, categoryID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *CatalogService) getOrCreateSpec(ctx context.Context, label string) (*catalog.Spec, error) {
	spec, err := s.specRepo.FindByLabel(ctx, label)
	if err == nil {
		return spec, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	spec, err = catalog.NewSpec(label)
	if err != nil {
		return nil, err
	}
	if err := s.specRepo.Save(ctx, spec); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return s.specRepo.FindByLabel(ctx, label)
		}
		return nil, err
	}
	return spec, nil
}

func (s *CatalogService) findCategory(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NotFound("Category", id)
		}
		return nil, err
	}
	return category, nil
}

func (s *CatalogService) optionalCategory(ctx context.Context, id *uuid.UUID) (*catalog.Category, error) {
	if id == nil {
		return nil, nil
	}
	return s.findCategory(ctx, *id)
}
