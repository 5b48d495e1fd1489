package spreadsheet

import "strings"

// Table is a worksheet grid split into a header row and the data rows below it.
type Table struct {
	Headers []string
	Rows    [][]string
}

// NewTable builds a Table using grid[headerRow] as the header. Blank data rows
// are skipped.
func NewTable(grid [][]string, headerRow int) Table {
	if headerRow < 0 || headerRow >= len(grid) {
		return Table{}
	}

	headers := make([]string, len(grid[headerRow]))
	for i, h := range grid[headerRow] {
		headers[i] = strings.TrimSpace(h)
	}

	rows := make([][]string, 0, len(grid)-headerRow-1)
	for _, row := range grid[headerRow+1:] {
		if isBlankRow(row) {
			continue
		}
		rows = append(rows, row)
	}

	return Table{Headers: headers, Rows: rows}
}

// Len returns the number of data rows.
func (t Table) Len() int {
	return len(t.Rows)
}

// Index returns the position of the header matching name case-insensitively, or -1.
func (t Table) Index(name string) int {
	name = strings.TrimSpace(name)
	for i, h := range t.Headers {
		if strings.EqualFold(h, name) {
			return i
		}
	}
	return -1
}

// Cell returns the trimmed value at col, or "" when the row is shorter than col.
// Excel writers drop trailing empty cells so short rows are common.
func Cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

// Slice copies columns [from, to) of row, padding missing cells with "".
func Slice(row []string, from, to int) []string {
	out := make([]string, 0, to-from)
	for c := from; c < to; c++ {
		out = append(out, Cell(row, c))
	}
	return out
}
