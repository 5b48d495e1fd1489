package spreadsheet

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

const secondsPerDay = 24 * 60 * 60

// Excel serials for 1900-01-01 and 9999-12-31.
const (
	minSerial = 1
	maxSerial = 2958466
)

var (
	isoDateLayouts = []string{
		"2006-01-02",
		"2006/01/02",
		"2006-1-2",
		"2 Jan 2006",
		"2 January 2006",
		"2-Jan-2006",
		"2-Jan-06",
		"Jan 2, 2006",
		"January 2, 2006",
	}
	dayFirstLayouts   = []string{"2/1/2006", "2-1-2006", "2.1.2006", "2/1/06"}
	monthFirstLayouts = []string{"1/2/2006", "1-2-2006", "1/2/06"}

	clockLayouts = []string{
		"15:04",
		"15:04:05",
		"3:04 PM",
		"3:04:05 PM",
		"3:04PM",
		"3:04:05PM",
	}

	wholeLayouts = []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05.000",
	}

	dayFirstDateTimeLayouts   = buildLayouts(isoDateLayouts, dayFirstLayouts, monthFirstLayouts)
	monthFirstDateTimeLayouts = buildLayouts(isoDateLayouts, monthFirstLayouts, dayFirstLayouts)
)

func buildLayouts(groups ...[]string) []string {
	layouts := append([]string{}, wholeLayouts...)
	for _, group := range groups {
		for _, date := range group {
			layouts = append(layouts, date)
			for _, clock := range clockLayouts {
				layouts = append(layouts, date+" "+clock)
			}
		}
	}
	return layouts
}

// ParseDateTime interprets a cell as a date or timestamp. Excel serial numbers
// are converted with the 1900 date system. Ambiguous numeric dates such as
// 03/04/2026 are read day-first when dayFirst is set, month-first otherwise.
func ParseDateTime(value string, dayFirst bool) (time.Time, bool) {
	value = normalizeSpaces(value)
	if value == "" {
		return time.Time{}, false
	}

	if serial, err := strconv.ParseFloat(value, 64); err == nil {
		if serial < minSerial || serial >= maxSerial {
			return time.Time{}, false
		}
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, false
		}
		return t.Round(time.Second), true
	}

	layouts := monthFirstDateTimeLayouts
	if dayFirst {
		layouts = dayFirstDateTimeLayouts
	}
	// time.Parse only accepts upper case meridiems; month names match either way.
	value = strings.ToUpper(value)
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseClock interprets a cell as a time of day and returns the offset from
// midnight. Accepts clock strings, Excel day fractions and full timestamps.
func ParseClock(value string) (time.Duration, bool) {
	value = normalizeSpaces(value)
	if value == "" {
		return 0, false
	}

	if f, err := strconv.ParseFloat(value, 64); err == nil {
		if f < 0 || f >= maxSerial {
			return 0, false
		}
		_, frac := math.Modf(f)
		seconds := int(math.Round(frac * secondsPerDay))
		if seconds >= secondsPerDay {
			seconds = secondsPerDay - 1
		}
		return time.Duration(seconds) * time.Second, true
	}

	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, strings.ToUpper(value)); err == nil {
			return ClockOf(t), true
		}
	}

	if t, ok := ParseDateTime(value, true); ok {
		return ClockOf(t), true
	}
	return 0, false
}

// ClockOf returns the offset of t from its own midnight.
func ClockOf(t time.Time) time.Duration {
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second
}

// DateOf truncates t to midnight UTC of the same calendar day.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// CleanNumeric strips thousands separators, currency symbols and spaces so the
// result can be handed to a numeric parser.
func CleanNumeric(value string) string {
	replacer := strings.NewReplacer(",", "", "$", "", " ", "", " ", "")
	return replacer.Replace(strings.TrimSpace(value))
}

// ParseNumber parses a numeric cell after CleanNumeric.
func ParseNumber(value string) (float64, bool) {
	f, err := strconv.ParseFloat(CleanNumeric(value), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func normalizeSpaces(value string) string {
	return strings.Join(strings.Fields(value), " ")
}
