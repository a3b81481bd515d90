package csvimport

import (
	"errors"
	"fmt"
	"strings"
)

// Row error codes reported back to the operator
const (
	ErrCodeImportMalformedRow       = "ERR_IMPORT_MALFORMED_ROW"
	ErrCodeImportRequiredField      = "ERR_IMPORT_REQUIRED_FIELD"
	ErrCodeImportInvalidType        = "ERR_IMPORT_INVALID_TYPE"
	ErrCodeImportInvalidFormat      = "ERR_IMPORT_INVALID_FORMAT"
	ErrCodeImportInvalidRange       = "ERR_IMPORT_INVALID_RANGE"
	ErrCodeImportReferenceNotFound  = "ERR_IMPORT_REFERENCE_NOT_FOUND"
	ErrCodeImportAmbiguousReference = "ERR_IMPORT_AMBIGUOUS_REFERENCE"
)

// Input-level failures; these reject the submission before any row is read
var (
	ErrEmptyFile         = errors.New("file is empty")
	ErrInvalidEncoding   = errors.New("invalid file encoding")
	ErrMalformedInput    = errors.New("malformed delimited input")
	ErrNoDataRows        = errors.New("input contains no data rows")
	ErrFileTooLarge      = errors.New("file exceeds maximum allowed size")
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

// RowError points at one cell of the submitted rows. Row is 1-based in
// submission order; Column is one of the intake column names, or empty when
// the row as a whole is malformed.
type RowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

func (e RowError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("row %d: %s", e.Row, e.Message)
	}
	return fmt.Sprintf("row %d, column '%s': %s", e.Row, e.Column, e.Message)
}

// NewRowError creates a RowError without the offending value
func NewRowError(row int, column, code, message string) RowError {
	return RowError{Row: row, Column: column, Code: code, Message: message}
}

// NewRowErrorWithValue creates a RowError that echoes the offending value
func NewRowErrorWithValue(row int, column, code, message, value string) RowError {
	e := NewRowError(row, column, code, message)
	e.Value = value
	return e
}

const defaultMaxErrors = 100

// ErrorCollection keeps the first maxErrors row errors and counts the rest
type ErrorCollection struct {
	errors    []RowError
	maxErrors int
	total     int
}

// NewErrorCollection creates a collection; a non-positive cap uses the default
func NewErrorCollection(maxErrors int) *ErrorCollection {
	if maxErrors <= 0 {
		maxErrors = defaultMaxErrors
	}
	return &ErrorCollection{errors: make([]RowError, 0), maxErrors: maxErrors}
}

// Add records an error, dropping it once the cap is reached
func (ec *ErrorCollection) Add(err RowError) {
	ec.total++
	if len(ec.errors) < ec.maxErrors {
		ec.errors = append(ec.errors, err)
	}
}

// AddRequiredError reports a blank cell
func (ec *ErrorCollection) AddRequiredError(row int, column string) {
	ec.Add(NewRowError(row, column, ErrCodeImportRequiredField, fmt.Sprintf("field '%s' is required", column)))
}

// AddTypeError reports a cell that does not parse as expectedType
func (ec *ErrorCollection) AddTypeError(row int, column, expectedType, value string) {
	ec.Add(NewRowErrorWithValue(row, column, ErrCodeImportInvalidType, "expected "+expectedType, value))
}

// AddFormatError reports a cell in the wrong layout
func (ec *ErrorCollection) AddFormatError(row int, column, expectedFormat, value string) {
	ec.Add(NewRowErrorWithValue(row, column, ErrCodeImportInvalidFormat, "invalid format, expected "+expectedFormat, value))
}

// AddReferenceError reports a name that matches no catalog record
func (ec *ErrorCollection) AddReferenceError(row int, column, value, refType string) {
	ec.Add(NewRowErrorWithValue(row, column, ErrCodeImportReferenceNotFound,
		fmt.Sprintf("%s '%s' not found", refType, value), value))
}

// AddAmbiguousError reports a name that matches more than one catalog record
func (ec *ErrorCollection) AddAmbiguousError(row int, column, value, refType string, matches int) {
	ec.Add(NewRowErrorWithValue(row, column, ErrCodeImportAmbiguousReference,
		fmt.Sprintf("%s '%s' matches %d records", refType, value, matches), value))
}

// Errors returns the kept errors in the order they were added
func (ec *ErrorCollection) Errors() []RowError {
	return ec.errors
}

// Count is the number of kept errors
func (ec *ErrorCollection) Count() int {
	return len(ec.errors)
}

// TotalCount includes the errors dropped by the cap
func (ec *ErrorCollection) TotalCount() int {
	return ec.total
}

// IsTruncated reports whether errors were dropped
func (ec *ErrorCollection) IsTruncated() bool {
	return ec.total > len(ec.errors)
}

// Summary renders every kept error on its own line
func (ec *ErrorCollection) Summary() string {
	if ec.total == 0 {
		return "no errors"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d error(s) found", ec.total)
	if ec.IsTruncated() {
		fmt.Fprintf(&sb, " (showing first %d)", len(ec.errors))
	}
	sb.WriteString(":\n")
	for _, err := range ec.errors {
		fmt.Fprintf(&sb, "  - %s\n", err.Error())
	}
	return sb.String()
}
