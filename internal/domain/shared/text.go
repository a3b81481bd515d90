package shared

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeText trims surrounding whitespace and folds the string to NFC, so
// names pasted from spreadsheets compare equal to names typed into forms.
func NormalizeText(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}
