package coe

import (
	"github.com/cmlabs-hris/report-dashboard/internal/domain/report"
	"github.com/shopspring/decimal"
)

type ReportRequest struct {
	report.SpreadsheetFile
}

func (r *ReportRequest) Validate() error {
	return r.SpreadsheetFile.Validate()
}

// ========================================
// EXPIRY ANALYSIS
// ========================================

type ExpiryReport struct {
	GeneratedAt string `json:"generated_at"`
	Filename    string `json:"filename"`
	TotalRows   int    `json:"total_rows"`

	ReceivedFrom string `json:"received_from"`
	ReceivedTo   string `json:"received_to"`
	ExpiringFrom string `json:"expiring_from"`
	ExpiringTo   string `json:"expiring_to"`

	ReceivedCount int `json:"received_count"`
	ExpiringCount int `json:"expiring_count"`

	Headers  []string   `json:"headers"`
	Received [][]string `json:"received"`
	Expiring [][]string `json:"expiring"`
}

// ========================================
// CURRENT MONTH SALES
// ========================================

type TypeSales struct {
	Count int             `json:"count"`
	Gross decimal.Decimal `json:"gross"`
}

// ConsultantSales is one row of the sales pivot. ByType holds an entry for
// every type of the report, zero when the consultant sold none.
type ConsultantSales struct {
	Consultant string               `json:"consultant"`
	Count      int                  `json:"count"`
	Gross      decimal.Decimal      `json:"gross"`
	ByType     map[string]TypeSales `json:"by_type"`
}

type SalesReport struct {
	GeneratedAt string `json:"generated_at"`
	Filename    string `json:"filename"`
	PeriodStart string `json:"period_start"`
	PeriodEnd   string `json:"period_end"`
	PeriodLabel string `json:"period_label"`

	Types      []string          `json:"types"`
	Rows       []ConsultantSales `json:"rows"`
	TotalCount int               `json:"total_count"`
	TotalGross decimal.Decimal   `json:"total_gross"`

	RawHeaders []string   `json:"raw_headers"`
	Raw        [][]string `json:"raw"`
}
