package attendance

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeOfDay is a wall-clock time expressed in seconds since midnight.
type TimeOfDay int

func NewTimeOfDay(hour, minute, second int) TimeOfDay {
	return TimeOfDay(hour*3600 + minute*60 + second)
}

// TimeOfDayFromDuration converts an offset from midnight.
func TimeOfDayFromDuration(d time.Duration) TimeOfDay {
	return TimeOfDay(d / time.Second)
}

// ParseTimeOfDay parses "HH:MM" or "HH:MM:SS".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid time of day %q: want HH:MM", s)
	}

	limits := []int{23, 59, 59}
	values := make([]int, 3)
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil || v < 0 || v > limits[i] {
			return 0, fmt.Errorf("invalid time of day %q", s)
		}
		values[i] = v
	}
	return NewTimeOfDay(values[0], values[1], values[2]), nil
}

// Minutes returns whole minutes since midnight; seconds are discarded.
func (t TimeOfDay) Minutes() int {
	return int(t) / 60
}

func (t TimeOfDay) String() string {
	s := int(t)
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, (s%3600)/60, s%60)
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

type PunchType string

const (
	PunchUnknown  PunchType = ""
	PunchCheckIn  PunchType = "check_in"
	PunchCheckOut PunchType = "check_out"
)

// ParsePunchType maps free-text device labels ("C/In", "Check Out", "OUT") to a PunchType.
func ParsePunchType(label string) PunchType {
	l := strings.ToLower(strings.TrimSpace(label))
	l = strings.NewReplacer("/", "", "-", "", "_", "", " ", "").Replace(l)
	switch {
	case l == "":
		return PunchUnknown
	case strings.HasSuffix(l, "out"):
		return PunchCheckOut
	case strings.HasSuffix(l, "in"):
		return PunchCheckIn
	}
	return PunchUnknown
}

// PunchRecord is one validated row of a time-clock export.
type PunchRecord struct {
	Employee  string
	Date      time.Time
	Time      TimeOfDay
	PunchType PunchType
}

// DayKey is the grouping key for a punch: the calendar date as YYYY-MM-DD.
func (p PunchRecord) DayKey() string {
	return p.Date.Format("2006-01-02")
}

// Break is a detected gap between two punches, tagged with its start.
type Break struct {
	Start   TimeOfDay `json:"start"`
	End     TimeOfDay `json:"end"`
	Minutes int       `json:"minutes"`
}

// DailySummary is the per (employee, date) result of the metrics calculator.
type DailySummary struct {
	Employee             string    `json:"employee"`
	Date                 string    `json:"date"`
	FirstCheckIn         TimeOfDay `json:"first_check_in"`
	LastCheckOut         TimeOfDay `json:"last_check_out"`
	TotalPresenceMinutes int       `json:"total_presence_minutes"`
	BreakMinutes         int       `json:"break_minutes"`
	LunchMinutes         int       `json:"lunch_minutes"`
	NetWorkMinutes       int       `json:"net_work_minutes"`
	PunchCount           int       `json:"punch_count"`
	Breaks               []Break   `json:"breaks"`

	IsLate      bool   `json:"is_late"`
	IsShortDay  bool   `json:"is_short_day"`
	ExcessLunch bool   `json:"excess_lunch"`
	Suspicious  bool   `json:"suspicious"`
	IsEarlyExit bool   `json:"is_early_exit"`
	IsCompliant bool   `json:"is_compliant"`
	Note        string `json:"note"`
}

// PresenceHours returns the span from first check-in to last check-out in hours.
func (d DailySummary) PresenceHours() float64 {
	return float64(d.TotalPresenceMinutes) / 60
}

// NetWorkHours returns net work time in hours.
func (d DailySummary) NetWorkHours() float64 {
	return float64(d.NetWorkMinutes) / 60
}

// IsViolation reports whether the day belongs on the risk list.
func (d DailySummary) IsViolation() bool {
	return d.IsLate || d.IsEarlyExit || d.IsShortDay
}

// EmployeeRollup aggregates DailySummary rows for one employee.
type EmployeeRollup struct {
	Employee            string    `json:"employee"`
	DaysPresent         int       `json:"days_present"`
	AvgFirstCheckIn     TimeOfDay `json:"avg_first_check_in"`
	AvgNetWorkHours     float64   `json:"avg_net_work_hours"`
	TotalNetWorkMinutes int       `json:"total_net_work_minutes"`
	LateDays            int       `json:"late_days"`
	ShortDays           int       `json:"short_days"`
	ExcessLunchDays     int       `json:"excess_lunch_days"`
	EarlyExitDays       int       `json:"early_exit_days"`
	SuspiciousDays      int       `json:"suspicious_days"`
}

// RiskCandidate lists the flagged days of one employee.
type RiskCandidate struct {
	Employee      string         `json:"employee"`
	Violations    int            `json:"violations"`
	LastViolation string         `json:"last_violation"`
	Days          []DailySummary `json:"days"`
}
