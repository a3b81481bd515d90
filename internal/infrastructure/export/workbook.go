// Package export renders ledger reports as XLSX workbooks.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ContentType is the MIME type of the generated workbooks
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const sheetName = "Sheet1"

// sheetWriter appends rows to the single sheet of a new workbook
type sheetWriter struct {
	file *excelize.File
	row  int
}

func newSheetWriter(headers []string) (*sheetWriter, error) {
	w := &sheetWriter{file: excelize.NewFile()}
	cells := make([]any, len(headers))
	for i, h := range headers {
		cells[i] = h
	}
	if err := w.append(cells); err != nil {
		_ = w.file.Close()
		return nil, err
	}
	if err := w.file.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		_ = w.file.Close()
		return nil, fmt.Errorf("failed to freeze header row: %w", err)
	}
	return w, nil
}

func (w *sheetWriter) append(cells []any) error {
	w.row++
	cell, err := excelize.CoordinatesToCellName(1, w.row)
	if err != nil {
		return err
	}
	if err := w.file.SetSheetRow(sheetName, cell, &cells); err != nil {
		return fmt.Errorf("failed to write row %d: %w", w.row, err)
	}
	return nil
}

// bytes serialises the workbook and releases it
func (w *sheetWriter) bytes() ([]byte, error) {
	defer func() { _ = w.file.Close() }()
	buf, err := w.file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}
	return buf.Bytes(), nil
}
