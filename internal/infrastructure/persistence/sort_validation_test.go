package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSortOrder(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string returns DESC", "", "DESC"},
		{"ASC uppercase returns ASC", "ASC", "ASC"},
		{"asc lowercase returns ASC", "asc", "ASC"},
		{"desc lowercase returns DESC", "desc", "DESC"},
		{"invalid value returns DESC", "INVALID", "DESC"},
		{"sql injection attempt returns DESC", "ASC; DROP TABLE variants;--", "DESC"},
		{"whitespace around ASC returns ASC", "  asc  ", "ASC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortOrder(tt.input))
		})
	}
}

func TestValidateSortField(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string returns default", "", "variants.code"},
		{"known field maps to column", "current_quantity", "variants.current_quantity"},
		{"joined column", "item_name", "items.name"},
		{"whitespace around valid field", "  spec_label  ", "specs.label"},
		{"unknown field returns default", "version", "variants.code"},
		{"case sensitive", "CODE", "variants.code"},
		{"sql injection attempt returns default", "code; DROP TABLE variants;--", "variants.code"},
		{"raw column is not accepted", "variants.code", "variants.code"},
		{"subquery returns default", "code, (SELECT name FROM inventory_users)", "variants.code"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortField(tt.input, VariantSortColumns, "variants.code"))
		})
	}
}

func TestStatusOrder(t *testing.T) {
	assert.Equal(t, "items.name ASC, specs.label ASC", statusOrder("", ""))
	assert.Equal(t, "items.name ASC, specs.label ASC", statusOrder("nope", "asc"))
	assert.Equal(t, "variants.current_quantity DESC, items.name ASC, specs.label ASC", statusOrder("current_quantity", ""))
	assert.Equal(t, "variants.code ASC, items.name ASC, specs.label ASC", statusOrder("code", "asc"))
}
