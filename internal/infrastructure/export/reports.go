package export

import (
	appinv "github.com/stockledger/backend/internal/application/inventory"
)

// Download filenames
const (
	MovementHistoryFilename = "movement_history.xlsx"
	UsageStatisticsFilename = "usage_statistics.xlsx"
)

// DefaultWarehouseMarker fills the warehouse column of the history export
const DefaultWarehouseMarker = "1"

var (
	historyHeaders = []string{"Date", "Warehouse", "Handler", "Code", "Item", "Spec", "Quantity", "Usage Type", "Notes"}
	usageHeaders   = []string{"Item", "Spec", "Unit Price", "Quantity Used", "Amount"}
)

// MovementHistory renders ledger entries in the order given. Usage type and
// notes are left blank for the downstream ERP import.
func MovementHistory(entries []appinv.MovementResponse, warehouseMarker string) ([]byte, error) {
	if warehouseMarker == "" {
		warehouseMarker = DefaultWarehouseMarker
	}
	w, err := newSheetWriter(historyHeaders)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		row := []any{
			e.Timestamp.Local().Format("2006-01-02"),
			warehouseMarker,
			e.UserName,
			e.VariantCode,
			e.ItemName,
			e.SpecLabel,
			e.Quantity,
			"",
			"",
		}
		if err := w.append(row); err != nil {
			return nil, err
		}
	}
	return w.bytes()
}

// UsageStatistics renders per-variant stock-out totals
func UsageStatistics(stats *appinv.UsageStatsResponse) ([]byte, error) {
	w, err := newSheetWriter(usageHeaders)
	if err != nil {
		return nil, err
	}
	if stats != nil {
		for _, r := range stats.Rows {
			unitPrice, _ := r.UnitPrice.Float64()
			amount, _ := r.Amount.Float64()
			if err := w.append([]any{r.ItemName, r.SpecLabel, unitPrice, r.Quantity, amount}); err != nil {
				return nil, err
			}
		}
	}
	return w.bytes()
}
