package daterange

import (
	"fmt"
	"time"
)

// DateFormat is the wire format for trade dates (MOEX ISS and the public API).
const DateFormat = "2006-01-02"

// Range represents an inclusive span of calendar days. Both bounds are
// normalized to UTC midnight; a Range where Start equals End covers one day.
type Range struct {
	Start time.Time
	End   time.Time
}

// New creates a Range from two dates, normalizing both to day granularity.
func New(start, end time.Time) (Range, error) {
	r := Range{Start: Truncate(start), End: Truncate(end)}
	if r.End.Before(r.Start) {
		return Range{}, fmt.Errorf("invalid range: end %s before start %s", r.End.Format(DateFormat), r.Start.Format(DateFormat))
	}
	return r, nil
}

// Parse builds a Range from two YYYY-MM-DD strings.
func Parse(from, till string) (Range, error) {
	start, err := ParseDate(from)
	if err != nil {
		return Range{}, err
	}
	end, err := ParseDate(till)
	if err != nil {
		return Range{}, err
	}
	return New(start, end)
}

// ParseDate parses a single YYYY-MM-DD date into a UTC midnight time.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(DateFormat, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse date %q: %w", value, err)
	}
	return t, nil
}

// Truncate normalizes a time to UTC midnight of the same calendar day.
func Truncate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Today returns the current UTC calendar day.
func Today() time.Time {
	return Truncate(time.Now())
}

// Yesterday returns the UTC calendar day before today.
func Yesterday() time.Time {
	return Today().AddDate(0, 0, -1)
}

// Days returns the number of calendar days the range covers, inclusive.
func (r Range) Days() int {
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}

// Contains reports whether the given day falls inside the range.
func (r Range) Contains(day time.Time) bool {
	day = Truncate(day)
	return !day.Before(r.Start) && !day.After(r.End)
}

// Overlaps reports whether two inclusive ranges share at least one day.
func (r Range) Overlaps(other Range) bool {
	return !r.Start.After(other.End) && !r.End.Before(other.Start)
}

// String renders the range as "YYYY-MM-DD..YYYY-MM-DD".
func (r Range) String() string {
	return r.Start.Format(DateFormat) + ".." + r.End.Format(DateFormat)
}
