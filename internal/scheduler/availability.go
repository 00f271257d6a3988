package scheduler

import "sort"

// IsResourceAvailable reports whether the resource has no committed booking
// overlapping the window.
func (e *Engine) IsResourceAvailable(kind ResourceKind, resourceID string, window TimeWindow) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	ledger, ok := e.ledgers[ledgerKey{kind: kind, id: resourceID}]
	if !ok {
		return true
	}
	return len(ledger.findOverlaps(window, "")) == 0
}

// ListAvailable filters a caller-supplied candidate pool down to the
// resources free in the window, preserving the pool's order. Eligibility
// (active status and the like) is the caller's concern; the engine only
// knows about bookings.
func (e *Engine) ListAvailable(kind ResourceKind, candidateIDs []string, window TimeWindow) []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	available := make([]string, 0, len(candidateIDs))
	for _, id := range candidateIDs {
		ledger, ok := e.ledgers[ledgerKey{kind: kind, id: id}]
		if ok && len(ledger.findOverlaps(window, "")) > 0 {
			continue
		}
		available = append(available, id)
	}
	return available
}

// FindScheduleConflicts returns every non-cancelled event whose window
// overlaps the given one, regardless of resource assignment. This is a
// reporting view ("what else is happening in this slot"), distinct from
// CheckConflict, which is resource-scoped and policy-enforcing.
func (e *Engine) FindScheduleConflicts(window TimeWindow, excludeEventID string) []ScheduledEvent {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var overlapping []ScheduledEvent
	for _, event := range e.events {
		if event.ID == excludeEventID || event.Status == StatusCancelled {
			continue
		}
		if event.Window.Overlaps(window) {
			overlapping = append(overlapping, event.clone())
		}
	}
	sort.Slice(overlapping, func(i, j int) bool {
		if overlapping[i].Window == overlapping[j].Window {
			return overlapping[i].ID < overlapping[j].ID
		}
		return overlapping[i].Window.before(overlapping[j].Window)
	})
	return overlapping
}
