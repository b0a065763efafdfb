// Package period implements the date arithmetic behind NBP queries:
// analysis windows, archive bounds and request chunking.
package period

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the date format used by the NBP API and the CLI
const DateLayout = "2006-01-02"

// MaxRangeDays is the longest inclusive range a single NBP request may span
const MaxRangeDays = 93

// MinDate is the first publication date available in the NBP archive
var MinDate = time.Date(2002, time.January, 2, 0, 0, 0, 0, time.UTC)

var (
	ErrUnsupportedPeriod = errors.New("unsupported period")
	ErrInvalidDateFormat = errors.New("invalid date format, please use YYYY-MM-DD")
	ErrBeforeArchive     = errors.New(
		"requested date is outside the supported NBP archival range (minimum: 2002-01-02)",
	)
	ErrFutureDate = errors.New("requested date cannot be in the future")
)

// Period is a predefined analysis window, counted back from an anchor date
type Period string

const (
	OneWeek    Period = "1-week"
	TwoWeeks   Period = "2-weeks"
	OneMonth   Period = "1-month"
	OneQuarter Period = "1-quarter"
	SixMonths  Period = "6-months"
	OneYear    Period = "1-year"
)

// All lists every supported period, shortest first
var All = []Period{OneWeek, TwoWeeks, OneMonth, OneQuarter, SixMonths, OneYear}

func (p Period) String() string {
	return string(p)
}

// Parse parses the period name
func Parse(raw string) (Period, error) {
	p := Period(strings.ToLower(strings.TrimSpace(raw)))

	for _, known := range All {
		if p == known {
			return p, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrUnsupportedPeriod, raw)
}

// Names returns the period names, joined for help output
func Names(periods []Period) string {
	names := make([]string, 0, len(periods))
	for _, p := range periods {
		names = append(names, p.String())
	}

	return strings.Join(names, ", ")
}

// Start returns the first day of the period ending at the given anchor.
// The result never precedes MinDate
func Start(anchor time.Time, p Period) (time.Time, error) {
	end := Day(anchor)

	var start time.Time

	switch p {
	case OneWeek:
		start = end.AddDate(0, 0, -7)
	case TwoWeeks:
		start = end.AddDate(0, 0, -14)
	case OneMonth:
		start = subtractMonths(end, 1)
	case OneQuarter:
		start = subtractMonths(end, 3)
	case SixMonths:
		start = subtractMonths(end, 6)
	case OneYear:
		start = subtractYears(end, 1)
	default:
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnsupportedPeriod, p)
	}

	if start.Before(MinDate) {
		return MinDate, nil
	}

	return start, nil
}

// subtractMonths moves the date back by whole calendar months,
// clamping the day to the length of the target month
func subtractMonths(d time.Time, months int) time.Time {
	year, month := d.Year(), int(d.Month())-months

	for month <= 0 {
		month += 12
		year--
	}

	day := min(d.Day(), daysIn(year, time.Month(month)))

	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// subtractYears moves the date back by whole years (Feb 29 becomes Feb 28)
func subtractYears(d time.Time, years int) time.Time {
	year := d.Year() - years
	day := min(d.Day(), daysIn(year, d.Month()))

	return time.Date(year, d.Month(), day, 0, 0, 0, 0, time.UTC)
}

func daysIn(year int, month time.Month) int {
	// day 0 of the next month is the last day of this one
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
