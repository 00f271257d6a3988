package scheduler

import (
	"fmt"
	"time"
)

// Date identifies a calendar day independent of time zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar day of the provided instant in its location.
func DateOf(t time.Time) Date {
	year, month, day := t.Date()
	return Date{Year: year, Month: month, Day: day}
}

// ParseDate parses a date in YYYY-MM-DD form.
func ParseDate(value string) (Date, error) {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return Date{}, fmt.Errorf("scheduler: invalid date %q: %w", value, err)
	}
	return DateOf(t), nil
}

// String renders the date in YYYY-MM-DD form.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// IsZero reports whether the date is the zero value.
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// Before reports whether d falls earlier in the calendar than other.
func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

// TimeOfDay counts minutes since midnight.
type TimeOfDay int

const minutesPerDay = 24 * 60

// ParseTimeOfDay parses a clock time in HH:MM form.
func ParseTimeOfDay(value string) (TimeOfDay, error) {
	var hours, minutes int
	if _, err := fmt.Sscanf(value, "%d:%d", &hours, &minutes); err != nil {
		return 0, fmt.Errorf("scheduler: invalid time of day %q: %w", value, err)
	}
	if hours < 0 || hours > 24 || minutes < 0 || minutes > 59 || hours*60+minutes > minutesPerDay {
		return 0, fmt.Errorf("scheduler: time of day %q out of range", value)
	}
	return TimeOfDay(hours*60 + minutes), nil
}

// String renders the clock time in HH:MM form.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// TimeWindow is a half-open interval [Start, End) on a single calendar day.
type TimeWindow struct {
	Date  Date
	Start TimeOfDay
	End   TimeOfDay
}

// NewTimeWindow constructs a window, rejecting empty or inverted intervals
// with ErrInvalidWindow.
func NewTimeWindow(date Date, start, end TimeOfDay) (TimeWindow, error) {
	if date.IsZero() {
		return TimeWindow{}, fmt.Errorf("%w: date is required", ErrInvalidWindow)
	}
	if start < 0 || end > minutesPerDay {
		return TimeWindow{}, fmt.Errorf("%w: bounds outside the day", ErrInvalidWindow)
	}
	if end <= start {
		return TimeWindow{}, fmt.Errorf("%w: start %s must precede end %s", ErrInvalidWindow, start, end)
	}
	return TimeWindow{Date: date, Start: start, End: end}, nil
}

// Overlaps reports whether two windows intersect. Windows on different days
// never overlap; on the same day the half-open rule applies, so a window
// ending at 09:00 does not collide with one starting at 09:00.
func (w TimeWindow) Overlaps(other TimeWindow) bool {
	if w.Date != other.Date {
		return false
	}
	return w.Start < other.End && other.Start < w.End
}

// Contains reports whether the given instant falls inside the window.
func (w TimeWindow) Contains(date Date, at TimeOfDay) bool {
	return w.Date == date && at >= w.Start && at < w.End
}

// IsZero reports whether the window is unset.
func (w TimeWindow) IsZero() bool {
	return w.Date.IsZero() && w.Start == 0 && w.End == 0
}

// String renders the window as "YYYY-MM-DD HH:MM-HH:MM".
func (w TimeWindow) String() string {
	return fmt.Sprintf("%s %s-%s", w.Date, w.Start, w.End)
}

// before orders windows by date then start time, with end as tiebreak.
func (w TimeWindow) before(other TimeWindow) bool {
	if w.Date != other.Date {
		return w.Date.Before(other.Date)
	}
	if w.Start != other.Start {
		return w.Start < other.Start
	}
	return w.End < other.End
}
