package domain

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// DueDate is the calendar date by which a borrowed book must be returned.
// It carries no time of day; values are normalised to midnight UTC.
type DueDate struct {
	date time.Time
}

// NewDueDate keeps only the calendar date of t as seen in t's location.
func NewDueDate(t time.Time) DueDate {
	return DueDate{date: truncateToDate(t)}
}

// DueDateOf builds a DueDate from explicit calendar parts.
func DueDateOf(year int, month time.Month, day int) DueDate {
	return DueDate{date: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDueDate parses a YYYY-MM-DD string.
func ParseDueDate(s string) (DueDate, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return DueDate{}, fmt.Errorf("%w: %q", ErrInvalidDueDate, s)
	}
	return DueDate{date: t}, nil
}

// Time returns the due date as midnight UTC.
func (d DueDate) Time() time.Time { return d.date }

func (d DueDate) String() string { return d.date.Format(dateLayout) }

// AddDays returns a new DueDate n calendar days later (earlier when n < 0).
func (d DueDate) AddDays(n int) DueDate {
	return DueDate{date: d.date.AddDate(0, 0, n)}
}

// Equal compares calendar dates.
func (d DueDate) Equal(o DueDate) bool { return d.date.Equal(o.date) }

// IsOverdue reports whether the due date is strictly before today.
// It is evaluated on every call.
func (d DueDate) IsOverdue() bool {
	return d.IsOverdueAt(time.Now())
}

// IsOverdueAt reports whether the due date is strictly before the calendar
// date of now.
func (d DueDate) IsOverdueAt(now time.Time) bool {
	return d.date.Before(truncateToDate(now))
}

func (d DueDate) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *DueDate) UnmarshalText(b []byte) error {
	parsed, err := ParseDueDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func truncateToDate(t time.Time) time.Time {
	y, m, day := t.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}
