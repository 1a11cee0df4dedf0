package finance

import "guidetrack/internal/core"

// HasConflict reports whether [start, end] overlaps any existing tour,
// bounds included. The tour with excludeID is skipped so an edited tour
// never conflicts with itself; pass "" to check every tour.
//
// The result is advisory. Callers warn and still save.
func HasConflict(start, end core.Date, tours []core.TourEntry, excludeID string) bool {
	for _, t := range tours {
		if overlaps(start, end, t, excludeID) {
			return true
		}
	}
	return false
}

// Conflicts returns every tour that HasConflict would have matched.
func Conflicts(start, end core.Date, tours []core.TourEntry, excludeID string) []core.TourEntry {
	out := []core.TourEntry{}
	for _, t := range tours {
		if overlaps(start, end, t, excludeID) {
			out = append(out, t)
		}
	}
	return out
}

func overlaps(start, end core.Date, t core.TourEntry, excludeID string) bool {
	if excludeID != "" && t.ID == excludeID {
		return false
	}
	return start <= t.EndDate && end >= t.StartDate
}
