package spreadsheet

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")
	ErrEmptyWorkbook     = errors.New("workbook contains no data")
)

// Read loads the first worksheet of an .xlsx or .xls workbook as a grid of raw
// cell values. Numeric .xlsx cells carrying a date or time number format come
// back as "2006-01-02", "2006-01-02 15:04:05" or "15:04:05"; unformatted
// serials are left alone for ParseDateTime and ParseClock.
func Read(content []byte, filename string) ([][]string, error) {
	var (
		grid [][]string
		err  error
	)

	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".xlsx":
		grid, err = readXLSX(content)
	case ".xls":
		grid, err = readXLS(content)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, err
	}

	grid = trimTrailingBlankRows(grid)
	if len(grid) == 0 {
		return nil, ErrEmptyWorkbook
	}
	return grid, nil
}

func readXLSX(content []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyWorkbook
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if err := renderDateCells(f, sheets[0], rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// ==================== Date formatted cells ====================

type dateKind int

const (
	notDate dateKind = iota
	dateLike
	timeOnly
)

var builtInDateKinds = map[int]dateKind{
	14: dateLike, 15: dateLike, 16: dateLike, 17: dateLike, 22: dateLike,
	18: timeOnly, 19: timeOnly, 20: timeOnly, 21: timeOnly,
	45: timeOnly, 46: timeOnly, 47: timeOnly,
}

// renderDateCells rewrites numeric cells whose style is a date or time format.
func renderDateCells(f *excelize.File, sheet string, rows [][]string) error {
	kinds := make(map[int]dateKind)
	for r, row := range rows {
		for c, value := range row {
			serial, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
			if err != nil || serial < 0 {
				continue
			}

			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			styleID, err := f.GetCellStyle(sheet, cell)
			if err != nil {
				return fmt.Errorf("failed to read style of %s: %w", cell, err)
			}

			kind, ok := kinds[styleID]
			if !ok {
				kind = styleDateKind(f, styleID)
				kinds[styleID] = kind
			}
			if kind != notDate {
				row[c] = formatSerial(value, serial, kind)
			}
		}
	}
	return nil
}

func styleDateKind(f *excelize.File, styleID int) dateKind {
	style, err := f.GetStyle(styleID)
	if err != nil || style == nil {
		return notDate
	}
	if kind, ok := builtInDateKinds[style.NumFmt]; ok {
		return kind
	}
	if style.CustomNumFmt != nil {
		return formatCodeKind(*style.CustomNumFmt)
	}
	return notDate
}

// formatCodeKind inspects a custom number format code. Quoted literals,
// escaped characters and bracketed sections such as colors or locales are
// ignored; elapsed time formats like [h]:mm count as durations, not dates.
func formatCodeKind(code string) dateKind {
	var b strings.Builder
	inQuote, inBracket, escaped := false, false, false
	for _, ch := range strings.ToLower(code) {
		switch {
		case escaped:
			escaped = false
		case inQuote:
			inQuote = ch != '"'
		case inBracket:
			if ch == ']' {
				inBracket = false
			}
		case ch == '"':
			inQuote = true
		case ch == '[':
			inBracket = true
		case ch == '\\':
			escaped = true
		default:
			b.WriteRune(ch)
		}
	}

	// only the first section applies to positive values
	clean, _, _ := strings.Cut(b.String(), ";")
	if strings.Contains(clean, "general") {
		return notDate
	}
	if strings.ContainsAny(clean, "yd") {
		return dateLike
	}
	if strings.ContainsAny(clean, "hs") {
		return timeOnly
	}
	return notDate
}

func formatSerial(value string, serial float64, kind dateKind) string {
	if kind == timeOnly && serial < 1 {
		d, ok := ParseClock(value)
		if !ok {
			return value
		}
		return time.Time{}.Add(d).Format("15:04:05")
	}

	t, ok := ParseDateTime(value, true)
	if !ok {
		return value
	}
	if ClockOf(t) == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01-02 15:04:05")
}

func readXLS(content []byte) ([][]string, error) {
	wb, err := xls.OpenReader(bytes.NewReader(content), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("failed to open xls workbook: %w", err)
	}

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, ErrEmptyWorkbook
	}

	grid := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			grid = append(grid, nil)
			continue
		}
		cells := make([]string, row.LastCol())
		for c := row.FirstCol(); c < row.LastCol(); c++ {
			cells[c] = row.Col(c)
		}
		grid = append(grid, cells)
	}
	return grid, nil
}

func trimTrailingBlankRows(grid [][]string) [][]string {
	end := len(grid)
	for end > 0 && isBlankRow(grid[end-1]) {
		end--
	}
	return grid[:end]
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
