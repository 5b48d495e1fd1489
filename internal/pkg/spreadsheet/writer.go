package spreadsheet

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ContentTypeXLSX is the MIME type served with generated workbooks.
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const defaultSheet = "Sheet1"

// Workbook builds a multi-sheet .xlsx download. Each sheet gets a styled
// header row followed by the data rows.
type Workbook struct {
	file        *excelize.File
	headerStyle int
	sheets      []string
}

func NewWorkbook() (*Workbook, error) {
	f := excelize.NewFile()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	return &Workbook{file: f, headerStyle: headerStyle}, nil
}

// AddSheet appends a sheet named name holding headers and rows.
func (w *Workbook) AddSheet(name string, headers []string, rows [][]interface{}) error {
	if len(w.sheets) == 0 {
		if err := w.file.SetSheetName(defaultSheet, name); err != nil {
			return fmt.Errorf("failed to rename sheet: %w", err)
		}
	} else if _, err := w.file.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create sheet %q: %w", name, err)
	}
	w.sheets = append(w.sheets, name)

	if len(headers) > 0 {
		header := make([]interface{}, len(headers))
		for i, h := range headers {
			header[i] = h
		}
		if err := w.file.SetSheetRow(name, "A1", &header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}

		lastCell, err := excelize.CoordinatesToCellName(len(headers), 1)
		if err != nil {
			return err
		}
		if err := w.file.SetCellStyle(name, "A1", lastCell, w.headerStyle); err != nil {
			return fmt.Errorf("failed to style header: %w", err)
		}

		lastCol, err := excelize.ColumnNumberToName(len(headers))
		if err != nil {
			return err
		}
		if err := w.file.SetColWidth(name, "A", lastCol, 18); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := w.file.SetSheetRow(name, cell, &rows[i]); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}
	return nil
}

// Sheets lists sheet names in the order they were added.
func (w *Workbook) Sheets() []string {
	return append([]string(nil), w.sheets...)
}

// Bytes serialises the workbook. The first sheet is made active.
func (w *Workbook) Bytes() ([]byte, error) {
	if len(w.sheets) > 0 {
		if idx, err := w.file.GetSheetIndex(w.sheets[0]); err == nil && idx >= 0 {
			w.file.SetActiveSheet(idx)
		}
	}
	buf, err := w.file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func (w *Workbook) Close() error {
	return w.file.Close()
}

// StringRows widens string rows into workbook rows.
func StringRows(rows [][]string) [][]interface{} {
	out := make([][]interface{}, len(rows))
	for i, row := range rows {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		out[i] = cells
	}
	return out
}
