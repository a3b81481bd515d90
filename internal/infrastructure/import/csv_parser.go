package csvimport

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"
)

const encodingProbeSize = 4096

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Record is one input row with its 1-based line number
type Record struct {
	Line   int
	Fields []string
}

// IsEmpty reports whether every cell of the record is blank
func (r Record) IsEmpty() bool {
	for _, v := range r.Fields {
		if trimSpaces(v) != "" {
			return false
		}
	}
	return true
}

// DelimitedReader reads pasted or uploaded delimited text into raw records.
// Intake input is positional, so no header row is interpreted here.
type DelimitedReader struct {
	csv   *csv.Reader
	count int
}

// ReaderOption configures a DelimitedReader
type ReaderOption func(*csv.Reader)

// WithDelimiter sets the field delimiter (default is comma)
func WithDelimiter(d rune) ReaderOption {
	return func(r *csv.Reader) {
		r.Comma = d
	}
}

// NewDelimitedReader strips a UTF-8 BOM and rejects input that is empty or
// not UTF-8 before any record is read.
func NewDelimitedReader(r io.Reader, opts ...ReaderOption) (*DelimitedReader, error) {
	buf := bufio.NewReaderSize(r, encodingProbeSize)
	if err := checkEncoding(buf); err != nil {
		return nil, err
	}

	cr := csv.NewReader(buf)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	for _, opt := range opts {
		opt(cr)
	}
	// Leading-space trimming would merge empty tab-separated cells
	cr.TrimLeadingSpace = !unicode.IsSpace(cr.Comma)

	return &DelimitedReader{csv: cr}, nil
}

func checkEncoding(buf *bufio.Reader) error {
	head, err := buf.Peek(len(utf8BOM))
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read input: %w", err)
	}
	if bytes.Equal(head, utf8BOM) {
		_, _ = buf.Discard(len(utf8BOM))
	}

	probe, err := buf.Peek(encodingProbeSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return fmt.Errorf("failed to read input: %w", err)
	}
	if len(probe) == 0 {
		return ErrEmptyFile
	}
	// A multi-byte rune may straddle the end of the probe
	if len(probe) == encodingProbeSize {
		for i := 0; i < utf8.UTFMax && !utf8.Valid(probe); i++ {
			probe = probe[:len(probe)-1]
		}
	}
	if !utf8.Valid(probe) {
		return ErrInvalidEncoding
	}
	return nil
}

// Next returns the next record with trimmed cells, or io.EOF
func (d *DelimitedReader) Next() (*Record, error) {
	fields, err := d.csv.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}

	line, _ := d.csv.FieldPos(0)
	d.count++
	for i := range fields {
		fields[i] = trimSpaces(fields[i])
	}
	return &Record{Line: line, Fields: fields}, nil
}

// ReadAll reads the remaining records. Blank lines are skipped; lines made
// only of empty cells are kept so row numbers match what the operator sees.
func (d *DelimitedReader) ReadAll() ([]Record, error) {
	var records []Record
	for {
		rec, err := d.Next()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return records, err
		}
		records = append(records, *rec)
	}
}

// Count is the number of records read so far
func (d *DelimitedReader) Count() int {
	return d.count
}

// ReadTSV reads tab-separated text, as produced by copying a spreadsheet range
func ReadTSV(r io.Reader) ([]Record, error) {
	return readDelimited(r, '\t')
}

// ReadCSV reads comma-separated text
func ReadCSV(r io.Reader) ([]Record, error) {
	return readDelimited(r, ',')
}

func readDelimited(r io.Reader, delimiter rune) ([]Record, error) {
	dr, err := NewDelimitedReader(r, WithDelimiter(delimiter))
	if err != nil {
		return nil, err
	}
	return dr.ReadAll()
}

func trimSpaces(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == ' '
	})
}
