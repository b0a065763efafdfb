package period

import (
	"strings"
	"time"
	_ "time/tzdata" // release binaries may run without a system zoneinfo
)

// warsaw is the zone NBP publishes in. The embedded tzdata keeps the
// lookup from failing on hosts without zoneinfo
var warsaw = mustLoadLocation("Europe/Warsaw")

// Range is an inclusive span of days
type Range struct {
	From time.Time
	To   time.Time
}

// Days returns the number of days covered by the range
func (r Range) Days() int {
	return int(r.To.Sub(r.From).Hours()/24) + 1
}

func (r Range) String() string {
	return r.From.Format(DateLayout) + " - " + r.To.Format(DateLayout)
}

// Split splits [from, to] into consecutive chunks of at most MaxRangeDays days
func Split(from, to time.Time) []Range {
	from, to = Day(from), Day(to)

	var out []Range

	for cur := from; !cur.After(to); {
		end := cur.AddDate(0, 0, MaxRangeDays-1)
		if end.After(to) {
			end = to
		}

		out = append(out, Range{From: cur, To: end})

		cur = end.AddDate(0, 0, 1)
	}

	return out
}

// Day truncates the time to its calendar date, at UTC midnight
func Day(t time.Time) time.Time {
	y, m, d := t.Date()

	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today returns the current date on the NBP publication calendar
func Today() time.Time {
	return dayIn(time.Now())
}

// dayIn returns the Warsaw calendar date of the given instant
func dayIn(now time.Time) time.Time {
	return Day(now.In(warsaw))
}

// ParseAnchor parses and validates an anchor (end) date.
// An empty value resolves to today
func ParseAnchor(raw string, today time.Time) (time.Time, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return Day(today), nil
	}

	t, err := time.Parse(DateLayout, v)
	if err != nil {
		return time.Time{}, ErrInvalidDateFormat
	}

	if t.Before(MinDate) {
		return time.Time{}, ErrBeforeArchive
	}

	if t.After(Day(today)) {
		return time.Time{}, ErrFutureDate
	}

	return t, nil
}

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}

	return loc
}
