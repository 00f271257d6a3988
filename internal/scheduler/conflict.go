package scheduler

import "sort"

// ConflictResult reports the outcome of a conflict check. ConflictingEventIDs
// is deduplicated and sorted so results are stable for callers and tests.
type ConflictResult struct {
	HasConflict         bool
	ConflictingEventIDs []string
}

// CheckConflict determines whether the candidate event collides with
// committed bookings for its vehicle or driver. excludeEventID removes the
// candidate's own booking from consideration when re-validating an update;
// pass the empty string for new events.
//
// An event with neither resource assigned can never conflict. This is a pure
// query and the single authority consulted before any ledger insert.
func (e *Engine) CheckConflict(candidate ScheduledEvent, excludeEventID string) ConflictResult {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.checkConflictLocked(candidate, excludeEventID)
}

func (e *Engine) checkConflictLocked(candidate ScheduledEvent, excludeEventID string) ConflictResult {
	seen := make(map[string]struct{})
	for _, key := range candidate.resources() {
		ledger, ok := e.ledgers[key]
		if !ok {
			continue
		}
		for _, id := range ledger.findOverlaps(candidate.Window, excludeEventID) {
			seen[id] = struct{}{}
		}
	}
	if len(seen) == 0 {
		return ConflictResult{}
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ConflictResult{HasConflict: true, ConflictingEventIDs: ids}
}
