package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField maps a requested sort field to its column through a
// whitelist. Unknown or empty input yields defaultColumn.
func ValidateSortField(sortField string, columns map[string]string, defaultColumn string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultColumn
	}
	if column, ok := columns[trimmed]; ok {
		return column
	}
	return defaultColumn
}

// VariantSortColumns lists the sortable fields of the inventory status view
var VariantSortColumns = map[string]string{
	"code":             "variants.code",
	"current_quantity": "variants.current_quantity",
	"min_quantity":     "variants.min_quantity",
	"unit_price":       "variants.unit_price",
	"updated_at":       "variants.updated_at",
	"item_name":        "items.name",
	"spec_label":       "specs.label",
}

// statusOrder builds the ORDER BY clause of the status view. Item name and
// spec label always break ties.
func statusOrder(orderBy, orderDir string) string {
	const natural = "items.name ASC, specs.label ASC"
	column := ValidateSortField(orderBy, VariantSortColumns, "")
	if column == "" {
		return natural
	}
	return column + " " + ValidateSortOrder(orderDir) + ", " + natural
}
