package csvimport

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/stockledger/backend/internal/domain/shared"
)

// Intake rows are positional: date, supplier, item, spec, quantity
const (
	ColumnDate     = "date"
	ColumnSupplier = "supplier"
	ColumnItem     = "item"
	ColumnSpec     = "spec"
	ColumnQuantity = "quantity"

	intakeColumnCount = 5
	intakeDateLayout  = "2006-1-2"

	// DefaultUnspecifiedSupplier replaces a blank supplier cell
	DefaultUnspecifiedSupplier = "unspecified"
)

var intakeColumns = [intakeColumnCount]string{ColumnDate, ColumnSupplier, ColumnItem, ColumnSpec, ColumnQuantity}

// IntakeLine is one valid row of an intake submission
type IntakeLine struct {
	Row       int    `json:"row"`
	ItemName  string `json:"item_name"`
	SpecLabel string `json:"spec_label"`
	Quantity  int    `json:"quantity"`
}

// IntakeGroup collects the lines delivered by one supplier on one date
type IntakeGroup struct {
	Date     time.Time    `json:"date"`
	Supplier string       `json:"supplier"`
	Lines    []IntakeLine `json:"lines"`
}

// RowParser validates intake rows and groups them by (date, supplier).
// It holds no state between calls.
type RowParser struct {
	unspecifiedSupplier string
	maxErrors           int
}

// RowParserOption configures a RowParser
type RowParserOption func(*RowParser)

// WithUnspecifiedSupplier sets the label used for rows without a supplier
func WithUnspecifiedSupplier(label string) RowParserOption {
	return func(p *RowParser) {
		if label = strings.TrimSpace(label); label != "" {
			p.unspecifiedSupplier = label
		}
	}
}

// WithMaxErrors caps the number of row errors reported
func WithMaxErrors(n int) RowParserOption {
	return func(p *RowParser) {
		p.maxErrors = n
	}
}

// NewRowParser creates a parser
func NewRowParser(opts ...RowParserOption) *RowParser {
	p := &RowParser{
		unspecifiedSupplier: DefaultUnspecifiedSupplier,
		maxErrors:           500,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseRows parses records with the default options
func ParseRows(records []Record) ([]IntakeGroup, []RowError) {
	return NewRowParser().Parse(records)
}

// Parse returns the valid rows grouped by (date, supplier) in order of first
// appearance, and an error for every rejected row. Blank rows are skipped.
func (p *RowParser) Parse(records []Record) ([]IntakeGroup, []RowError) {
	ec := NewErrorCollection(p.maxErrors)
	var groups []IntakeGroup
	index := make(map[string]int)

	for _, rec := range records {
		if rec.IsEmpty() {
			continue
		}
		if len(rec.Fields) != intakeColumnCount {
			ec.Add(NewRowError(rec.Line, "", ErrCodeImportMalformedRow,
				fmt.Sprintf("expected %d columns, got %d", intakeColumnCount, len(rec.Fields))))
			continue
		}

		values := [intakeColumnCount]string{
			NormalizeDate(rec.Fields[0]),
			shared.NormalizeText(rec.Fields[1]),
			shared.NormalizeText(rec.Fields[2]),
			shared.NormalizeText(rec.Fields[3]),
			strings.TrimSpace(rec.Fields[4]),
		}
		if values[1] == "" {
			values[1] = p.unspecifiedSupplier
		}

		if missing := firstBlank(values); missing != "" {
			ec.AddRequiredError(rec.Line, missing)
			continue
		}

		date, err := ParseDate(values[0])
		if err != nil {
			ec.AddFormatError(rec.Line, ColumnDate, "YYYY-MM-DD", values[0])
			continue
		}
		qty, err := ParseQuantity(values[4])
		if err != nil {
			if errors.Is(err, errQuantityRange) {
				ec.Add(NewRowErrorWithValue(rec.Line, ColumnQuantity, ErrCodeImportInvalidRange,
					"quantity must be at least 1", values[4]))
			} else {
				ec.AddTypeError(rec.Line, ColumnQuantity, "integer", values[4])
			}
			continue
		}

		key := date.Format(time.DateOnly) + "\x00" + values[1]
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, IntakeGroup{Date: date, Supplier: values[1]})
		}
		groups[i].Lines = append(groups[i].Lines, IntakeLine{
			Row:       rec.Line,
			ItemName:  values[2],
			SpecLabel: values[3],
			Quantity:  qty,
		})
	}

	return groups, ec.Errors()
}

func firstBlank(values [intakeColumnCount]string) string {
	for i, v := range values {
		if v == "" {
			return intakeColumns[i]
		}
	}
	return ""
}

// RecordsFromRows numbers rows from 1 in input order
func RecordsFromRows(rows [][]string) []Record {
	records := make([]Record, len(rows))
	for i, row := range rows {
		records[i] = Record{Line: i + 1, Fields: row}
	}
	return records
}

// NormalizeDate rewrites an 8-digit YYYYMMDD value as YYYY-MM-DD
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) == 8 && isAllDigits(s) {
		return s[:4] + "-" + s[4:6] + "-" + s[6:]
	}
	return s
}

// ParseDate parses YYYY-MM-DD; month and day may have one digit
func ParseDate(s string) (time.Time, error) {
	return time.Parse(intakeDateLayout, s)
}

var errQuantityRange = errors.New("quantity must be at least 1")

// ParseQuantity parses a positive integer, ignoring thousands separators
func ParseQuantity(s string) (int, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	qty, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("parse quantity %q: %w", s, err)
	}
	if qty <= 0 {
		return 0, errQuantityRange
	}
	return qty, nil
}

// DropHeaderRow removes the first non-empty record when its quantity cell is
// not a number, which is how an optional header row is recognised
func DropHeaderRow(records []Record) []Record {
	for i, rec := range records {
		if rec.IsEmpty() {
			continue
		}
		if len(rec.Fields) == intakeColumnCount {
			if _, err := strconv.Atoi(strings.ReplaceAll(strings.TrimSpace(rec.Fields[4]), ",", "")); err != nil {
				return append(records[:i:i], records[i+1:]...)
			}
		}
		return records
	}
	return records
}

func isAllDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
