package csvimport

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReadXLSX reads the first sheet of a workbook. Rows are padded to the width
// of the widest row because trailing empty cells are not stored. Date cells
// in the first column are rendered as YYYY-MM-DD.
func ReadXLSX(r io.Reader) ([]Record, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}
	sheet := sheets[0]

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}

	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}

	records := make([]Record, 0, len(rows))
	for i, row := range rows {
		fields := make([]string, width)
		copy(fields, row)
		if width > 0 && fields[0] != "" {
			fields[0] = dateCell(f, sheet, i+1, fields[0])
		}
		records = append(records, Record{Line: i + 1, Fields: fields})
	}
	return records, nil
}

// dateCell converts a date-formatted cell back to YYYY-MM-DD using its raw
// serial value; other cells are returned unchanged
func dateCell(f *excelize.File, sheet string, row int, formatted string) string {
	if _, err := ParseDate(NormalizeDate(formatted)); err == nil {
		return formatted
	}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return formatted
	}
	raw, err := f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
	if err != nil {
		return formatted
	}
	serial, err := strconv.ParseFloat(raw, 64)
	if err != nil || serial <= 0 {
		return formatted
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return formatted
	}
	return t.Format("2006-01-02")
}

// ReadUpload reads an uploaded intake file, choosing the format by extension
func ReadUpload(filename string, r io.Reader) ([]Record, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		return ReadXLSX(r)
	case ".csv":
		return ReadCSV(r)
	case ".tsv", ".txt":
		return ReadTSV(r)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filename)
	}
}
