package inventory

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
)

const dateLayout = "2006-01-02"

func parseOptionalUUID(field, value string) (*uuid.UUID, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return nil, shared.NewDomainErrorf(shared.CodeInvalidInput, "Invalid %s: %s", field, value)
	}
	return &id, nil
}

// parseDateRange turns whole-day bounds into inclusive timestamps
func parseDateRange(start, end string) (from, to *time.Time, err error) {
	if s := strings.TrimSpace(start); s != "" {
		t, perr := time.ParseInLocation(dateLayout, s, time.Local)
		if perr != nil {
			return nil, nil, shared.NewDomainErrorf(shared.CodeInvalidInput, "Invalid start_date %q, expected YYYY-MM-DD", s)
		}
		from = &t
	}
	if s := strings.TrimSpace(end); s != "" {
		t, perr := time.ParseInLocation(dateLayout, s, time.Local)
		if perr != nil {
			return nil, nil, shared.NewDomainErrorf(shared.CodeInvalidInput, "Invalid end_date %q, expected YYYY-MM-DD", s)
		}
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		to = &t
	}
	if from != nil && to != nil && from.After(*to) {
		return nil, nil, shared.NewDomainError(shared.CodeInvalidInput, "start_date must not be after end_date")
	}
	return from, to, nil
}

func (f HistoryFilter) toDomain() (inventory.MovementFilter, error) {
	var out inventory.MovementFilter
	dir, err := inventory.ParseDirection(strings.ToUpper(strings.TrimSpace(f.Direction)))
	if err != nil {
		return out, err
	}
	out.Direction = dir
	if out.UserID, err = parseOptionalUUID("user_id", f.UserID); err != nil {
		return out, err
	}
	if out.VariantID, err = parseOptionalUUID("variant_id", f.VariantID); err != nil {
		return out, err
	}
	out.From, out.To, err = parseDateRange(f.StartDate, f.EndDate)
	return out, err
}

func (f UsageFilter) toDomain() (inventory.MovementFilter, error) {
	return HistoryFilter{
		UserID:    f.UserID,
		VariantID: f.VariantID,
		StartDate: f.StartDate,
		EndDate:   f.EndDate,
	}.toDomain()
}

func (f StatusFilter) toDomain() (inventory.StatusFilter, error) {
	categoryID, err := parseOptionalUUID("category_id", f.CategoryID)
	if err != nil {
		return inventory.StatusFilter{}, err
	}
	return inventory.StatusFilter{
		CategoryID: categoryID,
		LowStock:   f.LowStock,
		Query:      shared.NormalizeText(f.Query),
		OrderBy:    f.OrderBy,
		OrderDir:   f.OrderDir,
	}, nil
}
