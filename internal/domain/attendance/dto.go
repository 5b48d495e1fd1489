package attendance

import (
	"fmt"
	"strings"

	"github.com/cmlabs-hris/report-dashboard/internal/domain/report"
	"github.com/cmlabs-hris/report-dashboard/internal/pkg/validator"
)

// ========================================
// THRESHOLDS
// ========================================

// Thresholds drive every compliance flag. A single value is built from
// configuration at startup and passed to the calculator per call.
type Thresholds struct {
	LateThreshold   TimeOfDay `json:"late_threshold"`
	FullDayMinutes  int       `json:"full_day_minutes"`
	MaxLunchMinutes int       `json:"max_lunch_minutes"`
	LunchStart      TimeOfDay `json:"lunch_start"`
	LunchEnd        TimeOfDay `json:"lunch_end"`
	MaxBreakMinutes int       `json:"max_break_minutes"`
	MaxPunches      int       `json:"max_punches"`
	BreakGapMinutes int       `json:"break_gap_minutes"`
	ExitThreshold   TimeOfDay `json:"exit_threshold"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		LateThreshold:   NewTimeOfDay(9, 45, 0),
		FullDayMinutes:  480,
		MaxLunchMinutes: 60,
		LunchStart:      NewTimeOfDay(12, 0, 0),
		LunchEnd:        NewTimeOfDay(15, 0, 0),
		MaxBreakMinutes: 150,
		MaxPunches:      5,
		BreakGapMinutes: 15,
		ExitThreshold:   NewTimeOfDay(17, 30, 0),
	}
}

func (t Thresholds) Validate() error {
	var errs validator.ValidationErrors

	if t.FullDayMinutes <= 0 || t.FullDayMinutes > 24*60 {
		errs = append(errs, validator.ValidationError{
			Field:   "full_day_minutes",
			Message: "full_day_minutes must be between 1 and 1440",
		})
	}
	if t.MaxLunchMinutes < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "max_lunch_minutes",
			Message: "max_lunch_minutes must not be negative",
		})
	}
	if t.LunchStart > t.LunchEnd {
		errs = append(errs, validator.ValidationError{
			Field:   "lunch_end",
			Message: "lunch_end must not be before lunch_start",
		})
	}
	if t.MaxBreakMinutes < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "max_break_minutes",
			Message: "max_break_minutes must not be negative",
		})
	}
	if t.MaxPunches < 2 {
		errs = append(errs, validator.ValidationError{
			Field:   "max_punches",
			Message: "max_punches must be at least 2",
		})
	}
	if t.BreakGapMinutes < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "break_gap_minutes",
			Message: "break_gap_minutes must not be negative",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ThresholdOverrides lets a single request adjust the configured thresholds.
type ThresholdOverrides struct {
	LateThreshold   *string `json:"late_threshold"`
	FullDayMinutes  *int    `json:"full_day_minutes"`
	MaxLunchMinutes *int    `json:"max_lunch_minutes"`
	LunchStart      *string `json:"lunch_start"`
	LunchEnd        *string `json:"lunch_end"`
	MaxBreakMinutes *int    `json:"max_break_minutes"`
	MaxPunches      *int    `json:"max_punches"`
	BreakGapMinutes *int    `json:"break_gap_minutes"`
	ExitThreshold   *string `json:"exit_threshold"`
}

func (o *ThresholdOverrides) Validate() error {
	if o == nil {
		return nil
	}
	var errs validator.ValidationErrors

	clocks := map[string]*string{
		"late_threshold": o.LateThreshold,
		"lunch_start":    o.LunchStart,
		"lunch_end":      o.LunchEnd,
		"exit_threshold": o.ExitThreshold,
	}
	for field, value := range clocks {
		if value != nil && !validator.IsValidClock(*value) {
			errs = append(errs, validator.ValidationError{
				Field:   field,
				Message: fmt.Sprintf("%s must be a time in HH:MM format", field),
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Apply returns base with every non-nil override applied. Call Validate first.
func (o *ThresholdOverrides) Apply(base Thresholds) Thresholds {
	if o == nil {
		return base
	}
	out := base

	setClock := func(dst *TimeOfDay, value *string) {
		if value == nil {
			return
		}
		if parsed, err := ParseTimeOfDay(*value); err == nil {
			*dst = parsed
		}
	}
	setInt := func(dst *int, value *int) {
		if value != nil {
			*dst = *value
		}
	}

	setClock(&out.LateThreshold, o.LateThreshold)
	setInt(&out.FullDayMinutes, o.FullDayMinutes)
	setInt(&out.MaxLunchMinutes, o.MaxLunchMinutes)
	setClock(&out.LunchStart, o.LunchStart)
	setClock(&out.LunchEnd, o.LunchEnd)
	setInt(&out.MaxBreakMinutes, o.MaxBreakMinutes)
	setInt(&out.MaxPunches, o.MaxPunches)
	setInt(&out.BreakGapMinutes, o.BreakGapMinutes)
	setClock(&out.ExitThreshold, o.ExitThreshold)
	return out
}

// ========================================
// COLUMN MAPPING
// ========================================

// ColumnMapping names the header of each logical punch field. Either Date and
// Time or a combined DateTime column must be resolvable; PunchType is optional.
type ColumnMapping struct {
	Employee  string `json:"employee"`
	Date      string `json:"date,omitempty"`
	Time      string `json:"time,omitempty"`
	DateTime  string `json:"datetime,omitempty"`
	PunchType string `json:"punch_type,omitempty"`
}

func (m ColumnMapping) IsZero() bool {
	return m == ColumnMapping{}
}

// ========================================
// REPORT
// ========================================

type ReportRequest struct {
	report.SpreadsheetFile
	Thresholds *ThresholdOverrides `json:"thresholds"`
}

func (r *ReportRequest) Validate() error {
	var errs validator.ValidationErrors

	if err := r.SpreadsheetFile.Validate(); err != nil {
		errs = append(errs, err.(validator.ValidationErrors)...)
	}
	if err := r.Thresholds.Validate(); err != nil {
		errs = append(errs, err.(validator.ValidationErrors)...)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Metrics are the KPI cards shown above the report tables.
type Metrics struct {
	ActiveStaff  int `json:"active_staff"`
	LateArrivals int `json:"late_arrivals"`
	EarlyExits   int `json:"early_exits"`
	UnderFullDay int `json:"under_full_day"`
	ExcessLunch  int `json:"excess_lunch"`
	Suspicious   int `json:"suspicious"`
}

type Report struct {
	GeneratedAt string        `json:"generated_at"`
	Filename    string        `json:"filename"`
	Thresholds  Thresholds    `json:"thresholds"`
	Columns     ColumnMapping `json:"columns"`

	TotalRows   int `json:"total_rows"`
	ValidRows   int `json:"valid_rows"`
	DroppedRows int `json:"dropped_rows"`

	Metrics        Metrics          `json:"metrics"`
	Daily          []DailySummary   `json:"daily"`
	Employees      []EmployeeRollup `json:"employees"`
	RiskCandidates []RiskCandidate  `json:"risk_candidates"`
}

// ========================================
// WARNING DRAFTS
// ========================================

type WarningRequest struct {
	report.SpreadsheetFile
	Employees  []string            `json:"employees"`
	Recipients map[string]string   `json:"recipients"`
	Send       bool                `json:"send"`
	Thresholds *ThresholdOverrides `json:"thresholds"`
}

func (r *WarningRequest) Validate() error {
	var errs validator.ValidationErrors

	if err := r.SpreadsheetFile.Validate(); err != nil {
		errs = append(errs, err.(validator.ValidationErrors)...)
	}
	if err := r.Thresholds.Validate(); err != nil {
		errs = append(errs, err.(validator.ValidationErrors)...)
	}

	selected := 0
	for _, e := range r.Employees {
		if !validator.IsEmpty(e) {
			selected++
		}
	}
	if selected == 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "employees",
			Message: ErrNoEmployeesSelected.Error(),
		})
	}

	if r.Send {
		seen := make(map[string]bool)
		for _, e := range r.Employees {
			e = strings.TrimSpace(e)
			if e == "" || seen[e] {
				continue
			}
			seen[e] = true

			to := strings.TrimSpace(r.Recipients[e])
			if !validator.IsValidEmail(to) {
				errs = append(errs, validator.ValidationError{
					Field:   "recipients." + e,
					Message: ErrRecipientRequired.Error(),
				})
			}
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type WarningDraft struct {
	Employee   string         `json:"employee"`
	Recipient  string         `json:"recipient,omitempty"`
	Subject    string         `json:"subject"`
	HTMLBody   string         `json:"html_body"`
	Violations []DailySummary `json:"violations"`
	Sent       bool           `json:"sent"`
	Error      string         `json:"error,omitempty"`
}

type WarningResponse struct {
	Drafts []WarningDraft `json:"drafts"`
	Sent   int            `json:"sent"`
	Failed int            `json:"failed"`
}
