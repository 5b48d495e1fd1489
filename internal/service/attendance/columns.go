package attendance

import (
	"strings"

	"github.com/cmlabs-hris/report-dashboard/internal/domain/attendance"
	"github.com/cmlabs-hris/report-dashboard/internal/pkg/spreadsheet"
)

// DetectColumns guesses a ColumnMapping from header names. The first header
// matching each rule wins. A header naming both a date and a time is taken as
// a combined timestamp column.
func DetectColumns(headers []string) attendance.ColumnMapping {
	var m attendance.ColumnMapping
	for _, h := range headers {
		l := strings.ToLower(strings.TrimSpace(h))
		if l == "" {
			continue
		}

		isDate := strings.Contains(l, "date")
		isTime := strings.Contains(l, "time")

		switch {
		case strings.Contains(l, "datetime") || (isDate && isTime):
			if m.DateTime == "" {
				m.DateTime = h
			}
		case (strings.Contains(l, "name") || strings.Contains(l, "employee")) && !strings.Contains(l, "department"):
			if m.Employee == "" {
				m.Employee = h
			}
		case isDate:
			if m.Date == "" {
				m.Date = h
			}
		case isTime && !strings.Contains(l, "punch"):
			if m.Time == "" {
				m.Time = h
			}
		case strings.Contains(l, "punch") || strings.Contains(l, "type"):
			if m.PunchType == "" {
				m.PunchType = h
			}
		}
	}
	return m
}

// columnIndex holds the resolved positions of a ColumnMapping; -1 means absent.
type columnIndex struct {
	employee  int
	date      int
	time      int
	dateTime  int
	punchType int
}

func (c columnIndex) separate() bool {
	return c.date >= 0 && c.time >= 0
}

// resolveColumns finds each mapped header in the table. Employee is required,
// as is either Date and Time or DateTime.
func resolveColumns(table spreadsheet.Table, m attendance.ColumnMapping) (columnIndex, error) {
	find := func(name string) int {
		if strings.TrimSpace(name) == "" {
			return -1
		}
		return table.Index(name)
	}

	idx := columnIndex{
		employee:  find(m.Employee),
		date:      find(m.Date),
		time:      find(m.Time),
		dateTime:  find(m.DateTime),
		punchType: find(m.PunchType),
	}

	var missing []string
	if idx.employee < 0 {
		missing = append(missing, "employee")
	}
	if !idx.separate() && idx.dateTime < 0 {
		switch {
		case idx.date >= 0:
			missing = append(missing, "time")
		case idx.time >= 0:
			missing = append(missing, "date")
		default:
			missing = append(missing, "date", "time")
		}
	}

	if len(missing) > 0 {
		return columnIndex{}, &attendance.MissingColumnError{
			Columns: missing,
			Headers: table.Headers,
		}
	}
	return idx, nil
}

// ExtractPunches converts table rows into PunchRecords. Rows without an
// employee or with an unreadable date or time are dropped and counted.
func ExtractPunches(table spreadsheet.Table, m attendance.ColumnMapping) ([]attendance.PunchRecord, int, error) {
	if m.IsZero() {
		m = DetectColumns(table.Headers)
	}

	idx, err := resolveColumns(table, m)
	if err != nil {
		return nil, 0, err
	}

	punches := make([]attendance.PunchRecord, 0, table.Len())
	dropped := 0
	for _, row := range table.Rows {
		p, ok := extractPunch(row, idx)
		if !ok {
			dropped++
			continue
		}
		punches = append(punches, p)
	}
	return punches, dropped, nil
}

func extractPunch(row []string, idx columnIndex) (attendance.PunchRecord, bool) {
	p := attendance.PunchRecord{
		Employee: spreadsheet.Cell(row, idx.employee),
	}
	if p.Employee == "" {
		return p, false
	}

	if idx.separate() {
		date, ok := spreadsheet.ParseDateTime(spreadsheet.Cell(row, idx.date), true)
		if !ok {
			return p, false
		}
		clock, ok := spreadsheet.ParseClock(spreadsheet.Cell(row, idx.time))
		if !ok {
			return p, false
		}
		p.Date = spreadsheet.DateOf(date)
		p.Time = attendance.TimeOfDayFromDuration(clock)
	} else {
		stamp, ok := spreadsheet.ParseDateTime(spreadsheet.Cell(row, idx.dateTime), true)
		if !ok {
			return p, false
		}
		p.Date = spreadsheet.DateOf(stamp)
		p.Time = attendance.TimeOfDayFromDuration(spreadsheet.ClockOf(stamp))
	}

	if idx.punchType >= 0 {
		p.PunchType = attendance.ParsePunchType(spreadsheet.Cell(row, idx.punchType))
	}
	return p, true
}
