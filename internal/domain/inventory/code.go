package inventory

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	defaultInitials  = "XX"
	defaultSpecDigit = "00"
	maxInitials      = 2
)

// ItemInitials takes the first letter of each whitespace-separated word of
// the item name, up to two, upper-cased. Non-letters are ignored; a name with
// no letters yields "XX".
func ItemInitials(name string) string {
	var b strings.Builder
	n := 0
	for _, word := range strings.Fields(name) {
		for _, r := range word {
			if unicode.IsLetter(r) {
				b.WriteRune(r)
				n++
				break
			}
		}
		if n == maxInitials {
			break
		}
	}
	if n == 0 {
		return defaultInitials
	}
	return cases.Upper(language.Und).String(b.String())
}

// SpecDigits returns the first run of ASCII digits in the spec label, or "00"
func SpecDigits(label string) string {
	start := strings.IndexFunc(label, isDigit)
	if start < 0 {
		return defaultSpecDigit
	}
	end := strings.IndexFunc(label[start:], func(r rune) bool { return !isDigit(r) })
	if end < 0 {
		return label[start:]
	}
	return label[start : start+end]
}

// CodeBase builds the prefix shared by all codes of this item/spec text
func CodeBase(itemName, specLabel string) string {
	return ItemInitials(itemName) + SpecDigits(specLabel)
}

// FormatCode appends the zero-padded sequence suffix to a base
func FormatCode(base string, seq int) string {
	return fmt.Sprintf("%s-%03d", base, seq)
}

// CodeSequence extracts the numeric suffix of a code with the given base.
// ok is false when the code does not belong to the base.
func CodeSequence(base, code string) (int, bool) {
	prefix := base + "-"
	if !strings.HasPrefix(code, prefix) {
		return 0, false
	}
	seq, err := strconv.Atoi(code[len(prefix):])
	if err != nil || seq < 1 {
		return 0, false
	}
	return seq, true
}

// FirstFreeSequence returns the smallest suffix >= 1 not used by any of the
// existing codes for the base
func FirstFreeSequence(base string, existing []string) int {
	used := make(map[int]struct{}, len(existing))
	for _, code := range existing {
		if seq, ok := CodeSequence(base, code); ok {
			used[seq] = struct{}{}
		}
	}
	for seq := 1; ; seq++ {
		if _, taken := used[seq]; !taken {
			return seq
		}
	}
}

// NextFreeSequence returns the smallest unused suffix greater than after
func NextFreeSequence(base string, existing []string, after int) int {
	used := make(map[int]struct{}, len(existing))
	for _, code := range existing {
		if seq, ok := CodeSequence(base, code); ok {
			used[seq] = struct{}{}
		}
	}
	for seq := after + 1; ; seq++ {
		if _, taken := used[seq]; !taken {
			return seq
		}
	}
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// SpecNumber returns the value of the first run of digits in the spec label.
// ok is false when the label has no digits.
func SpecNumber(label string) (n int, ok bool) {
	if strings.IndexFunc(label, isDigit) < 0 {
		return 0, false
	}
	n, err := strconv.Atoi(SpecDigits(label))
	if err != nil {
		return 0, false
	}
	return n, true
}
