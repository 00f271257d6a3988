package recurrence

import (
	"errors"
	"testing"
	"time"

	"github.com/schooltransit/dispatch/internal/scheduler"
)

func mustDate(t *testing.T, value string) scheduler.Date {
	t.Helper()
	date, err := scheduler.ParseDate(value)
	if err != nil {
		t.Fatalf("parse date %q: %v", value, err)
	}
	return date
}

func TestExpand(t *testing.T) {
	t.Parallel()

	t.Run("respects weekday selections", func(t *testing.T) {
		t.Parallel()

		// 2026-09-07 is a Monday.
		dates, err := Expand(Pattern{
			Weekdays: []time.Weekday{time.Monday, time.Wednesday, time.Friday},
			From:     mustDate(t, "2026-09-07"),
			Until:    mustDate(t, "2026-09-18"),
		})
		if err != nil {
			t.Fatalf("expand: %v", err)
		}

		want := []string{
			"2026-09-07", "2026-09-09", "2026-09-11",
			"2026-09-14", "2026-09-16", "2026-09-18",
		}
		if len(dates) != len(want) {
			t.Fatalf("dates = %v", dates)
		}
		for i, date := range dates {
			if date.String() != want[i] {
				t.Fatalf("dates[%d] = %s, want %s", i, date, want[i])
			}
		}
	})

	t.Run("range bounds are inclusive", func(t *testing.T) {
		t.Parallel()

		day := mustDate(t, "2026-09-07")
		dates, err := Expand(Pattern{
			Weekdays: []time.Weekday{time.Monday},
			From:     day,
			Until:    day,
		})
		if err != nil {
			t.Fatalf("expand: %v", err)
		}
		if len(dates) != 1 || dates[0] != day {
			t.Fatalf("dates = %v", dates)
		}
	})

	t.Run("no selected weekday in range yields nothing", func(t *testing.T) {
		t.Parallel()

		dates, err := Expand(Pattern{
			Weekdays: []time.Weekday{time.Sunday},
			From:     mustDate(t, "2026-09-07"),
			Until:    mustDate(t, "2026-09-11"),
		})
		if err != nil {
			t.Fatalf("expand: %v", err)
		}
		if len(dates) != 0 {
			t.Fatalf("dates = %v", dates)
		}
	})

	t.Run("rejects an empty weekday set", func(t *testing.T) {
		t.Parallel()

		_, err := Expand(Pattern{
			From:  mustDate(t, "2026-09-07"),
			Until: mustDate(t, "2026-09-11"),
		})
		if !errors.Is(err, ErrEmptyPattern) {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("rejects an inverted range", func(t *testing.T) {
		t.Parallel()

		_, err := Expand(Pattern{
			Weekdays: []time.Weekday{time.Monday},
			From:     mustDate(t, "2026-09-11"),
			Until:    mustDate(t, "2026-09-07"),
		})
		if !errors.Is(err, ErrInvalidRange) {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("rejects a missing range", func(t *testing.T) {
		t.Parallel()

		_, err := Expand(Pattern{Weekdays: []time.Weekday{time.Monday}})
		if !errors.Is(err, ErrInvalidRange) {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("rejects a range wider than a year", func(t *testing.T) {
		t.Parallel()

		_, err := Expand(Pattern{
			Weekdays: []time.Weekday{time.Monday},
			From:     mustDate(t, "2026-09-07"),
			Until:    mustDate(t, "2028-09-07"),
		})
		if !errors.Is(err, ErrRangeTooWide) {
			t.Fatalf("err = %v", err)
		}
	})
}
