package recurrence

import (
	"errors"
	"time"

	"github.com/schooltransit/dispatch/internal/scheduler"
)

// Pattern describes a repeating weekday service pattern over an inclusive
// date range. Regular runs operate on patterns like Monday through Friday
// for a semester.
type Pattern struct {
	Weekdays []time.Weekday
	From     scheduler.Date
	Until    scheduler.Date
}

// maxRangeDays bounds expansion to one school year so a bad request cannot
// generate an unbounded number of occurrences.
const maxRangeDays = 366

var (
	// ErrEmptyPattern indicates no weekday was selected.
	ErrEmptyPattern = errors.New("recurrence: at least one weekday is required")
	// ErrInvalidRange indicates the range is unset or inverted.
	ErrInvalidRange = errors.New("recurrence: from must be a date on or before until")
	// ErrRangeTooWide indicates the range exceeds one year.
	ErrRangeTooWide = errors.New("recurrence: range exceeds one year")
)

// Expand returns the service dates selected by the pattern, in calendar
// order.
func Expand(p Pattern) ([]scheduler.Date, error) {
	if len(p.Weekdays) == 0 {
		return nil, ErrEmptyPattern
	}
	if p.From.IsZero() || p.Until.IsZero() || p.Until.Before(p.From) {
		return nil, ErrInvalidRange
	}

	from := time.Date(p.From.Year, p.From.Month, p.From.Day, 0, 0, 0, 0, time.UTC)
	until := time.Date(p.Until.Year, p.Until.Month, p.Until.Day, 0, 0, 0, 0, time.UTC)
	if until.Sub(from) > maxRangeDays*24*time.Hour {
		return nil, ErrRangeTooWide
	}

	selected := make(map[time.Weekday]struct{}, len(p.Weekdays))
	for _, day := range p.Weekdays {
		selected[day] = struct{}{}
	}

	var dates []scheduler.Date
	for current := from; !current.After(until); current = current.AddDate(0, 0, 1) {
		if _, ok := selected[current.Weekday()]; ok {
			dates = append(dates, scheduler.DateOf(current))
		}
	}
	return dates, nil
}
