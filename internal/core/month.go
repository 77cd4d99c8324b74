package core

import (
	"time"
)

// MonthRange is the half-open UTC interval covering one calendar month.
// Start is the first instant of the month; End is the first instant of the
// next month, so [Start, End) includes every day of the month regardless of
// its length.
type MonthRange struct {
	Start time.Time
	End   time.Time
}

// ParseMonth parses a "YYYY-MM" month key into its calendar range.
func ParseMonth(month string) (MonthRange, error) {
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return MonthRange{}, Validation("invalid month format, want YYYY-MM")
	}
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return MonthRange{Start: start, End: start.AddDate(0, 1, 0)}, nil
}

// Contains reports whether ts falls inside the month.
func (r MonthRange) Contains(ts time.Time) bool {
	return !ts.Before(r.Start) && ts.Before(r.End)
}

// Key renders the range back to its "YYYY-MM" form.
func (r MonthRange) Key() string {
	return r.Start.Format("2006-01")
}

// CurrentMonth returns the month key for now, in UTC.
func CurrentMonth(now time.Time) string {
	return now.UTC().Format("2006-01")
}
