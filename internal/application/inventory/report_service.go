package inventory

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockledger/backend/internal/domain/catalog"
	"github.com/stockledger/backend/internal/domain/identity"
	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
)

const (
	defaultStatusPageSize = 20
	maxStatusPageSize     = 100
)

// ReportService serves read models: inventory status, usage statistics and
// the kiosk catalog
type ReportService struct {
	variantRepo  inventory.VariantRepository
	movementRepo inventory.MovementRepository
	userRepo     identity.UserRepository
	categoryRepo catalog.CategoryRepository
}

// NewReportService creates a new ReportService
func NewReportService(
	variantRepo inventory.VariantRepository,
	movementRepo inventory.MovementRepository,
	userRepo identity.UserRepository,
	categoryRepo catalog.CategoryRepository,
) *ReportService {
	return &ReportService{
		variantRepo:  variantRepo,
		movementRepo: movementRepo,
		userRepo:     userRepo,
		categoryRepo: categoryRepo,
	}
}

// ListStatus returns a page of variants with their stock, ordered by item
// name then spec label
func (s *ReportService) ListStatus(ctx context.Context, filter StatusFilter) (shared.Paginated[VariantResponse], error) {
	domainFilter, err := filter.toDomain()
	if err != nil {
		return shared.Paginated[VariantResponse]{}, err
	}
	page := shared.Page{Page: filter.Page, PageSize: filter.PageSize}.Normalize(defaultStatusPageSize, maxStatusPageSize)

	variants, err := s.variantRepo.Search(ctx, domainFilter, page)
	if err != nil {
		return shared.Paginated[VariantResponse]{}, err
	}
	return shared.MapPaginated(variants, func(v inventory.Variant) VariantResponse {
		return ToVariantResponse(&v)
	}), nil
}

// UsageStats totals stock-out per variant. Rows are ordered by amount
// (unit price x quantity), largest first.
func (s *ReportService) UsageStats(ctx context.Context, filter UsageFilter) (*UsageStatsResponse, error) {
	domainFilter, err := filter.toDomain()
	if err != nil {
		return nil, err
	}
	rows, err := s.movementRepo.UsageByVariant(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	resp := &UsageStatsResponse{
		Rows:        make([]UsageRowResponse, len(rows)),
		TotalAmount: decimal.Zero,
	}
	for i, r := range rows {
		amount := r.Amount()
		resp.Rows[i] = UsageRowResponse{
			VariantID: r.VariantID,
			Code:      r.Code,
			ItemName:  r.ItemName,
			SpecLabel: r.SpecLabel,
			UnitPrice: r.UnitPrice,
			Quantity:  r.Quantity,
			Amount:    amount,
		}
		resp.TotalQuantity += r.Quantity
		resp.TotalAmount = resp.TotalAmount.Add(amount)
	}
	sort.SliceStable(resp.Rows, func(i, j int) bool {
		if c := resp.Rows[i].Amount.Cmp(resp.Rows[j].Amount); c != 0 {
			return c > 0
		}
		return resp.Rows[i].Code < resp.Rows[j].Code
	})
	return resp, nil
}

// KioskCatalog groups variants by item for the kiosk form. Variants of an
// item are ordered by the first number in the spec label; labels without a
// number come last.
func (s *ReportService) KioskCatalog(ctx context.Context, categoryID string) (*KioskCatalogResponse, error) {
	catID, err := parseOptionalUUID("category_id", categoryID)
	if err != nil {
		return nil, err
	}

	users, err := s.userRepo.FindAll(ctx, false)
	if err != nil {
		return nil, err
	}
	categories, err := s.categoryRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	variants, err := s.variantRepo.FindForKiosk(ctx, catID)
	if err != nil {
		return nil, err
	}

	resp := &KioskCatalogResponse{
		Users:      make([]KioskOption, len(users)),
		Categories: make([]KioskOption, len(categories)),
		Items:      make([]KioskItem, 0),
	}
	for i, u := range users {
		resp.Users[i] = KioskOption{ID: u.ID, Name: u.Name}
	}
	for i, c := range categories {
		resp.Categories[i] = KioskOption{ID: c.ID, Name: c.Name}
	}

	index := make(map[uuid.UUID]int)
	for _, v := range variants {
		i, ok := index[v.ItemID]
		if !ok {
			i = len(resp.Items)
			index[v.ItemID] = i
			item := KioskItem{ItemID: v.ItemID, ItemName: v.ItemName()}
			if v.Item != nil {
				item.CategoryID = v.Item.CategoryID
			}
			resp.Items = append(resp.Items, item)
		}
		resp.Items[i].Variants = append(resp.Items[i].Variants, KioskVariant{
			ID:        v.ID,
			Code:      v.Code,
			SpecLabel: v.SpecLabel(),
			Stock:     v.CurrentQuantity,
		})
	}
	for i := range resp.Items {
		SortBySpecNumber(resp.Items[i].Variants)
	}
	return resp, nil
}

// SortBySpecNumber orders kiosk variants by the number in their spec label
func SortBySpecNumber(variants []KioskVariant) {
	sort.SliceStable(variants, func(i, j int) bool {
		ni, oki := inventory.SpecNumber(variants[i].SpecLabel)
		nj, okj := inventory.SpecNumber(variants[j].SpecLabel)
		switch {
		case oki && okj && ni != nj:
			return ni < nj
		case oki != okj:
			return oki
		}
		return variants[i].SpecLabel < variants[j].SpecLabel
	})
}
