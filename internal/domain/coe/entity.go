package coe

import (
	"time"

	"github.com/shopspring/decimal"
)

// UnknownLabel replaces a blank consultant or COE type in the sales pivot.
const UnknownLabel = "Unknown"

// Layout holds the 0-based positions of the columns the COE report reads.
// The export keeps the first OutputColumns columns (A..W by default).
type Layout struct {
	Type          int `json:"type"`
	Received      int `json:"received"`
	End           int `json:"end"`
	NetSales      int `json:"net_sales"`
	Consultant    int `json:"consultant"`
	OutputColumns int `json:"output_columns"`
}

// DefaultLayout is the enrolment system export: L, O, S, AO, AU and A..W.
func DefaultLayout() Layout {
	return Layout{
		Type:          11,
		Received:      14,
		End:           18,
		NetSales:      40,
		Consultant:    46,
		OutputColumns: 23,
	}
}

// ExpiryColumns is the column count an expiry analysis needs.
func (l Layout) ExpiryColumns() int {
	return maxInt(l.Received, l.End) + 1
}

// SalesColumns is the column count a sales pivot needs.
func (l Layout) SalesColumns() int {
	return maxInt(l.Type, l.Received, l.NetSales, l.Consultant) + 1
}

func maxInt(values ...int) int {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// Record is one row of the COE export with its typed fields resolved.
// Received and End are nil when the cell is blank or not a date.
type Record struct {
	Cells      []string
	Type       string
	Consultant string
	Received   *time.Time
	End        *time.Time
	NetSales   decimal.Decimal
}

// Window is an inclusive time range.
type Window struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t is set and From <= *t <= To.
func (w Window) Contains(t *time.Time) bool {
	if t == nil {
		return false
	}
	return !t.Before(w.From) && !t.After(w.To)
}
