package inventory

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
	csvimport "github.com/stockledger/backend/internal/infrastructure/import"
)

// VariantResponse represents a variant with its stock in API responses
type VariantResponse struct {
	ID              uuid.UUID       `json:"id"`
	Code            string          `json:"code"`
	ItemID          uuid.UUID       `json:"item_id"`
	ItemName        string          `json:"item_name"`
	SpecID          uuid.UUID       `json:"spec_id"`
	SpecLabel       string          `json:"spec_label"`
	CategoryID      *uuid.UUID      `json:"category_id,omitempty"`
	CategoryName    string          `json:"category_name,omitempty"`
	CurrentQuantity int             `json:"current_quantity"`
	MinQuantity     int             `json:"min_quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	IsLowStock      bool            `json:"is_low_stock"`
	Version         int             `json:"version"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ToVariantResponse converts a variant to its response
func ToVariantResponse(v *inventory.Variant) VariantResponse {
	resp := VariantResponse{
		ID:              v.ID,
		Code:            v.Code,
		ItemID:          v.ItemID,
		ItemName:        v.ItemName(),
		SpecID:          v.SpecID,
		SpecLabel:       v.SpecLabel(),
		CurrentQuantity: v.CurrentQuantity,
		MinQuantity:     v.MinQuantity,
		UnitPrice:       v.UnitPrice,
		IsLowStock:      v.IsLowStock(),
		Version:         v.Version,
		UpdatedAt:       v.UpdatedAt,
	}
	if v.Item != nil {
		resp.CategoryID = v.Item.CategoryID
		resp.CategoryName = v.Item.CategoryName()
	}
	return resp
}

// MovementResponse represents a ledger entry in API responses
type MovementResponse struct {
	ID          uuid.UUID  `json:"id"`
	VariantID   uuid.UUID  `json:"variant_id"`
	VariantCode string     `json:"variant_code"`
	ItemName    string     `json:"item_name"`
	SpecLabel   string     `json:"spec_label"`
	UserID      *uuid.UUID `json:"user_id,omitempty"`
	UserName    string     `json:"user_name,omitempty"`
	Quantity    int        `json:"quantity"`
	Direction   string     `json:"direction"`
	Timestamp   time.Time  `json:"timestamp"`
	Reason      string     `json:"reason,omitempty"`
}

// ToMovementResponse converts a ledger entry to its response
func ToMovementResponse(l *inventory.MovementLog) MovementResponse {
	resp := MovementResponse{
		ID:        l.ID,
		VariantID: l.VariantID,
		UserID:    l.UserID,
		UserName:  l.UserName(),
		Quantity:  l.Quantity,
		Direction: string(l.Direction),
		Timestamp: l.Timestamp,
		Reason:    l.Reason,
	}
	if l.Variant != nil {
		resp.VariantCode = l.Variant.Code
		resp.ItemName = l.Variant.ItemName()
		resp.SpecLabel = l.Variant.SpecLabel()
	}
	return resp
}

// StockMoveRequest is a single stock-in or stock-out
type StockMoveRequest struct {
	VariantID uuid.UUID  `json:"variant_id" binding:"required"`
	Quantity  int        `json:"quantity"`
	UserID    *uuid.UUID `json:"user_id"`
	Reason    string     `json:"reason" binding:"max=255"`
}

// StockMoveResult is the outcome of a single movement
type StockMoveResult struct {
	Movement MovementResponse `json:"movement"`
	Variant  VariantResponse  `json:"variant"`
}

// BulkLine is one line of a bulk movement. Fields are optional so that a
// line with missing or malformed information is reported instead of failing
// the request.
type BulkLine struct {
	VariantID string       `json:"variant_id"`
	Quantity  LineQuantity `json:"quantity" swaggertype:"integer"`
}

// LineQuantity is a bulk line quantity as sent: a JSON number, a numeric
// string, or anything else. Decoding never fails; the value is parsed per
// line so one bad line cannot reject its siblings.
type LineQuantity struct {
	raw string
	set bool
}

// NewLineQuantity builds a quantity from an integer
func NewLineQuantity(n int) LineQuantity {
	return LineQuantity{raw: strconv.Itoa(n), set: true}
}

// UnmarshalJSON implements json.Unmarshaler
func (q *LineQuantity) UnmarshalJSON(data []byte) error {
	text := strings.TrimSpace(string(data))
	if text == "null" {
		*q = LineQuantity{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		text = s
	}
	*q = LineQuantity{raw: strings.TrimSpace(text), set: true}
	return nil
}

// MarshalJSON writes integers as numbers and anything else as a string
func (q LineQuantity) MarshalJSON() ([]byte, error) {
	if !q.set {
		return []byte("null"), nil
	}
	if n, err := strconv.Atoi(q.raw); err == nil {
		return []byte(strconv.Itoa(n)), nil
	}
	return json.Marshal(q.raw)
}

// IsMissing reports an absent, blank or zero quantity
func (q LineQuantity) IsMissing() bool {
	if !q.set || q.raw == "" {
		return true
	}
	n, err := strconv.Atoi(q.raw)
	return err == nil && n == 0
}

// Int parses the quantity as a base-10 integer
func (q LineQuantity) Int() (int, error) {
	n, err := strconv.Atoi(q.raw)
	if err != nil {
		return 0, shared.NewDomainError(shared.CodeInvalidQuantity, InvalidLineQuantity)
	}
	return n, nil
}

// BulkMoveRequest applies many movements for one handler
type BulkMoveRequest struct {
	UserID *uuid.UUID `json:"user_id"`
	Reason string     `json:"reason" binding:"max=255"`
	Lines  []BulkLine `json:"lines" binding:"required,min=1"`
}

// BulkMoveResult reports per-line failures. Applied lines are not rolled back
// when other lines fail.
type BulkMoveResult struct {
	Applied int      `json:"applied"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors"`
}

// CancelOutResult is the outcome of reversing a stock-out
type CancelOutResult struct {
	CancelledID uuid.UUID       `json:"cancelled_id"`
	Restored    int             `json:"restored"`
	Variant     VariantResponse `json:"variant"`
}

// HistoryFilter narrows the movement history. Dates are YYYY-MM-DD and
// inclusive.
type HistoryFilter struct {
	Direction string `form:"direction" binding:"omitempty,oneof=IN OUT"`
	UserID    string `form:"user_id"`
	VariantID string `form:"variant_id"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=500"`
}

// UsageFilter narrows usage statistics
type UsageFilter struct {
	UserID    string `form:"user_id"`
	VariantID string `form:"variant_id"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
}

// UsageRowResponse is the OUT total of one variant
type UsageRowResponse struct {
	VariantID uuid.UUID       `json:"variant_id"`
	Code      string          `json:"code"`
	ItemName  string          `json:"item_name"`
	SpecLabel string          `json:"spec_label"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int64           `json:"quantity"`
	Amount    decimal.Decimal `json:"amount"`
}

// UsageStatsResponse lists usage ordered by amount, largest first
type UsageStatsResponse struct {
	Rows          []UsageRowResponse `json:"rows"`
	TotalQuantity int64              `json:"total_quantity"`
	TotalAmount   decimal.Decimal    `json:"total_amount"`
}

// StatusFilter narrows the inventory status listing
type StatusFilter struct {
	CategoryID string `form:"category_id"`
	LowStock   bool   `form:"low_stock"`
	Query      string `form:"q"`
	OrderBy    string `form:"order_by"`
	OrderDir   string `form:"order_dir" binding:"omitempty,oneof=asc desc ASC DESC"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// KioskVariant is one spec of an item on the kiosk form
type KioskVariant struct {
	ID        uuid.UUID `json:"id"`
	Code      string    `json:"code"`
	SpecLabel string    `json:"spec_label"`
	Stock     int       `json:"stock"`
}

// KioskItem is one item with its variants ordered by spec number
type KioskItem struct {
	ItemID     uuid.UUID      `json:"item_id"`
	ItemName   string         `json:"item_name"`
	CategoryID *uuid.UUID     `json:"category_id,omitempty"`
	Variants   []KioskVariant `json:"variants"`
}

// KioskOption is an id/name pair for pickers
type KioskOption struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// KioskCatalogResponse is everything the kiosk form needs
type KioskCatalogResponse struct {
	Users      []KioskOption `json:"users"`
	Categories []KioskOption `json:"categories"`
	Items      []KioskItem   `json:"items"`
}

// SubmitRowsRequest carries pasted rows as arrays of cells
type SubmitRowsRequest struct {
	Rows [][]any `json:"rows" binding:"required"`
}

// SubmitRowsResult lists the batches created, or the row errors that
// blocked the submission
type SubmitRowsResult struct {
	Batches []BatchSummary       `json:"batches"`
	Errors  []csvimport.RowError `json:"errors,omitempty"`
}

// BatchSummary represents a pending batch in listings
type BatchSummary struct {
	ID            uuid.UUID  `json:"id"`
	Supplier      string     `json:"supplier"`
	UploadedAt    time.Time  `json:"uploaded_at"`
	Status        string     `json:"status"`
	ProcessedAt   *time.Time `json:"processed_at,omitempty"`
	ProcessedBy   string     `json:"processed_by,omitempty"`
	LineCount     int        `json:"line_count"`
	TotalQuantity int        `json:"total_quantity"`
	Version       int        `json:"version"`
}

// ToBatchSummary converts a batch to its summary
func ToBatchSummary(b *inventory.PendingBatch) BatchSummary {
	s := BatchSummary{
		ID:            b.ID,
		Supplier:      b.Supplier,
		UploadedAt:    b.UploadedAt,
		Status:        string(b.Status),
		ProcessedAt:   b.ProcessedAt,
		LineCount:     len(b.Items),
		TotalQuantity: b.TotalQuantity(),
		Version:       b.Version,
	}
	if b.ProcessedBy != nil {
		s.ProcessedBy = b.ProcessedBy.Name
	}
	return s
}

// BatchItemResponse is one line of a batch
type BatchItemResponse struct {
	ID          uuid.UUID `json:"id"`
	ItemID      uuid.UUID `json:"item_id"`
	SpecID      uuid.UUID `json:"spec_id"`
	Item        string    `json:"item"`
	VariantCode string    `json:"variant_code,omitempty"`
	Quantity    int       `json:"quantity"`
	Row         int       `json:"row"`
}

// BatchItemsResponse is a batch with its lines
type BatchItemsResponse struct {
	BatchSummary
	Items []BatchItemResponse `json:"items"`
}

// BatchListFilter selects batches by status
type BatchListFilter struct {
	Status string `form:"status"`
}

// Statuses parses a comma-separated status list; empty means PENDING and DONE
func (f BatchListFilter) Statuses() ([]inventory.BatchStatus, error) {
	if strings.TrimSpace(f.Status) == "" {
		return []inventory.BatchStatus{inventory.BatchStatusPending, inventory.BatchStatusDone}, nil
	}
	var statuses []inventory.BatchStatus
	for _, part := range strings.Split(f.Status, ",") {
		s := inventory.BatchStatus(strings.ToUpper(strings.TrimSpace(part)))
		if !s.IsValid() {
			return nil, shared.NewDomainErrorf(shared.CodeInvalidInput, "Unknown batch status %q", part)
		}
		statuses = append(statuses, s)
	}
	return statuses, nil
}

// QuantityUpdate replaces the quantity of one line
type QuantityUpdate struct {
	ID       uuid.UUID `json:"id" binding:"required"`
	Quantity int       `json:"quantity"`
}

// UpdateQuantitiesRequest must list every line of the batch
type UpdateQuantitiesRequest struct {
	Updates []QuantityUpdate `json:"updates" binding:"required"`
}

// CommitQuantity is the confirmed quantity of one line
type CommitQuantity struct {
	ID       uuid.UUID `json:"id" binding:"required"`
	Quantity int       `json:"qty"`
}

// ProcessBatchRequest confirms every line of a batch
type ProcessBatchRequest struct {
	Quantities []CommitQuantity `json:"quantities"`
}

// ProcessBatchResult is the outcome of committing a batch
type ProcessBatchResult struct {
	Batch   BatchSummary `json:"batch"`
	Applied int          `json:"applied"`
}
