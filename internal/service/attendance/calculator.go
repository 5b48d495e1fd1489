package attendance

import (
	"math"
	"sort"

	"github.com/cmlabs-hris/report-dashboard/internal/domain/attendance"
)

// MetricsCalculator turns raw punches into per-day summaries and derived
// aggregates. It holds no state; every result depends only on its arguments.
type MetricsCalculator struct {
}

func NewMetricsCalculator() *MetricsCalculator {
	return &MetricsCalculator{}
}

type dayKey struct {
	employee string
	date     string
}

// Calculate groups punches by (employee, date) and emits one summary for each
// group holding at least two punches, ordered by employee then date.
func (c *MetricsCalculator) Calculate(punches []attendance.PunchRecord, th attendance.Thresholds) []attendance.DailySummary {
	groups := make(map[dayKey][]attendance.TimeOfDay)
	for _, p := range punches {
		k := dayKey{employee: p.Employee, date: p.DayKey()}
		groups[k] = append(groups[k], p.Time)
	}

	keys := make([]dayKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].employee != keys[j].employee {
			return keys[i].employee < keys[j].employee
		}
		return keys[i].date < keys[j].date
	})

	summaries := make([]attendance.DailySummary, 0, len(keys))
	for _, k := range keys {
		times := groups[k]
		// A lone punch has no in/out pair; the day is skipped, not zero-filled.
		if len(times) < 2 {
			continue
		}
		sorted := append([]attendance.TimeOfDay(nil), times...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

		summaries = append(summaries, c.summarize(k.employee, k.date, sorted, th))
	}
	return summaries
}

func (c *MetricsCalculator) summarize(employee, date string, times []attendance.TimeOfDay, th attendance.Thresholds) attendance.DailySummary {
	firstIn := times[0]
	lastOut := times[len(times)-1]
	presence := lastOut.Minutes() - firstIn.Minutes()

	breaks, paired := pairedBreaks(times)
	if paired == 0 && len(times) > 2 {
		breaks = gapBreaks(times, th.BreakGapMinutes)
	}

	breakMinutes := 0
	lunchMinutes := 0
	for _, b := range breaks {
		breakMinutes += b.Minutes
		if b.Start >= th.LunchStart && b.Start <= th.LunchEnd && b.Minutes > lunchMinutes {
			lunchMinutes = b.Minutes
		}
	}

	net := presence - breakMinutes

	s := attendance.DailySummary{
		Employee:             employee,
		Date:                 date,
		FirstCheckIn:         firstIn,
		LastCheckOut:         lastOut,
		TotalPresenceMinutes: presence,
		BreakMinutes:         breakMinutes,
		LunchMinutes:         lunchMinutes,
		NetWorkMinutes:       net,
		PunchCount:           len(times),
		Breaks:               breaks,

		IsLate:      firstIn > th.LateThreshold,
		IsShortDay:  net < th.FullDayMinutes,
		ExcessLunch: lunchMinutes > th.MaxLunchMinutes,
		Suspicious:  breakMinutes > th.MaxBreakMinutes || len(times) > th.MaxPunches,
	}
	s.IsEarlyExit = presence < th.FullDayMinutes && lastOut < th.ExitThreshold
	s.IsCompliant = presence >= th.FullDayMinutes && !s.IsLate
	s.Note = complianceNote(s.IsLate, s.IsEarlyExit)
	return s
}

// pairedBreaks assumes strict in/out alternation: the 2nd, 4th, ... punch
// starts a break and the punch after it ends the break. It also reports how
// many pairs it looked at; a zero-length pair from a repeated tap counts as
// paired but adds no break.
func pairedBreaks(times []attendance.TimeOfDay) ([]attendance.Break, int) {
	var breaks []attendance.Break
	paired := 0
	for i := 1; i+1 < len(times); i += 2 {
		paired++
		if b, ok := newBreak(times[i], times[i+1]); ok {
			breaks = append(breaks, b)
		}
	}
	return breaks, paired
}

// gapBreaks treats every gap between consecutive punches longer than
// gapMinutes as a break.
func gapBreaks(times []attendance.TimeOfDay, gapMinutes int) []attendance.Break {
	var breaks []attendance.Break
	for i := 0; i+1 < len(times); i++ {
		b, ok := newBreak(times[i], times[i+1])
		if ok && b.Minutes > gapMinutes {
			breaks = append(breaks, b)
		}
	}
	return breaks
}

func newBreak(start, end attendance.TimeOfDay) (attendance.Break, bool) {
	minutes := end.Minutes() - start.Minutes()
	if minutes <= 0 {
		return attendance.Break{}, false
	}
	return attendance.Break{Start: start, End: end, Minutes: minutes}, true
}

func complianceNote(late, earlyExit bool) string {
	switch {
	case late && earlyExit:
		return "Late Entry & Early Exit"
	case late:
		return "Late Entry"
	case earlyExit:
		return "Early Exit"
	}
	return "Compliant"
}

// Rollup aggregates summaries per employee, ordered by employee.
func (c *MetricsCalculator) Rollup(summaries []attendance.DailySummary) []attendance.EmployeeRollup {
	index := make(map[string]int)
	var rollups []attendance.EmployeeRollup
	checkInTotals := make(map[string]int)

	for _, s := range summaries {
		i, ok := index[s.Employee]
		if !ok {
			i = len(rollups)
			index[s.Employee] = i
			rollups = append(rollups, attendance.EmployeeRollup{Employee: s.Employee})
		}
		r := &rollups[i]
		r.DaysPresent++
		r.TotalNetWorkMinutes += s.NetWorkMinutes
		checkInTotals[s.Employee] += int(s.FirstCheckIn)
		if s.IsLate {
			r.LateDays++
		}
		if s.IsShortDay {
			r.ShortDays++
		}
		if s.ExcessLunch {
			r.ExcessLunchDays++
		}
		if s.IsEarlyExit {
			r.EarlyExitDays++
		}
		if s.Suspicious {
			r.SuspiciousDays++
		}
	}

	for i := range rollups {
		r := &rollups[i]
		days := float64(r.DaysPresent)
		r.AvgFirstCheckIn = attendance.TimeOfDay(math.Round(float64(checkInTotals[r.Employee]) / days))
		r.AvgNetWorkHours = math.Round(float64(r.TotalNetWorkMinutes)/60/days*100) / 100
	}

	sort.Slice(rollups, func(i, j int) bool { return rollups[i].Employee < rollups[j].Employee })
	return rollups
}

// Metrics counts the KPI cards over a set of summaries.
func (c *MetricsCalculator) Metrics(summaries []attendance.DailySummary) attendance.Metrics {
	var m attendance.Metrics
	staff := make(map[string]struct{})
	for _, s := range summaries {
		staff[s.Employee] = struct{}{}
		if s.IsLate {
			m.LateArrivals++
		}
		if s.IsEarlyExit {
			m.EarlyExits++
		}
		if s.IsShortDay {
			m.UnderFullDay++
		}
		if s.ExcessLunch {
			m.ExcessLunch++
		}
		if s.Suspicious {
			m.Suspicious++
		}
	}
	m.ActiveStaff = len(staff)
	return m
}

// RiskCandidates collects late, early-exit and short days per employee, most
// violations first.
func (c *MetricsCalculator) RiskCandidates(summaries []attendance.DailySummary) []attendance.RiskCandidate {
	index := make(map[string]int)
	var candidates []attendance.RiskCandidate

	for _, s := range summaries {
		if !s.IsViolation() {
			continue
		}
		i, ok := index[s.Employee]
		if !ok {
			i = len(candidates)
			index[s.Employee] = i
			candidates = append(candidates, attendance.RiskCandidate{Employee: s.Employee})
		}
		rc := &candidates[i]
		rc.Violations++
		rc.Days = append(rc.Days, s)
		if s.Date > rc.LastViolation {
			rc.LastViolation = s.Date
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Violations != candidates[j].Violations {
			return candidates[i].Violations > candidates[j].Violations
		}
		return candidates[i].Employee < candidates[j].Employee
	})
	return candidates
}
