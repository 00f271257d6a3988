package scheduler

import "sort"

// ledgerKey identifies one resource ledger.
type ledgerKey struct {
	kind ResourceKind
	id   string
}

// booking is one committed ledger entry.
type booking struct {
	eventID string
	window  TimeWindow
}

// resourceLedger holds the committed bookings for a single resource,
// ordered by date then start time. The ledger's invariant is that no two
// entries overlap; it is maintained entirely by conflict-gated inserts, so
// insert itself performs no checking.
type resourceLedger struct {
	entries []booking
}

// findOverlaps returns the IDs of all entries overlapping the window,
// excluding excludeEventID when non-empty. Entries are ordered, so the scan
// skips earlier days and terminates once an entry starts at or after the
// window's end.
func (l *resourceLedger) findOverlaps(window TimeWindow, excludeEventID string) []string {
	var overlapping []string
	for _, entry := range l.entries {
		if entry.window.Date.Before(window.Date) {
			continue
		}
		if window.Date.Before(entry.window.Date) || entry.window.Start >= window.End {
			break
		}
		if entry.eventID == excludeEventID {
			continue
		}
		if entry.window.Overlaps(window) {
			overlapping = append(overlapping, entry.eventID)
		}
	}
	return overlapping
}

// insert records a booking. Callers must have cleared the window through
// the conflict detector first; the ledger deliberately does not re-check so
// that conflict policy lives in exactly one place.
func (l *resourceLedger) insert(eventID string, window TimeWindow) {
	idx := sort.Search(len(l.entries), func(i int) bool {
		return window.before(l.entries[i].window)
	})
	l.entries = append(l.entries, booking{})
	copy(l.entries[idx+1:], l.entries[idx:])
	l.entries[idx] = booking{eventID: eventID, window: window}
}

// remove deletes the entry for the event if present. Removing an absent
// event is a no-op.
func (l *resourceLedger) remove(eventID string) bool {
	for i, entry := range l.entries {
		if entry.eventID == eventID {
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			return true
		}
	}
	return false
}

// size returns the number of committed bookings.
func (l *resourceLedger) size() int {
	return len(l.entries)
}
