package finance

import (
	"time"

	"guidetrack/internal/core"
)

// TourDays maps every calendar day covered by a tour to the ids of the
// tours on that day. Tours with malformed dates are skipped.
func TourDays(tours []core.TourEntry) map[core.Date][]string {
	days := make(map[core.Date][]string)
	for _, t := range tours {
		start, ok1 := t.StartDate.Time()
		end, ok2 := t.EndDate.Time()
		if !ok1 || !ok2 {
			continue
		}
		for cur := start; !cur.After(end); cur = cur.AddDate(0, 0, 1) {
			key := core.Date(cur.Format(core.DateLayout))
			days[key] = append(days[key], t.ID)
		}
	}
	return days
}

// ToursOn returns the tours covering d, in input order.
func ToursOn(tours []core.TourEntry, d core.Date) []core.TourEntry {
	out := make([]core.TourEntry, 0)
	for _, t := range tours {
		if t.StartDate <= d && d <= t.EndDate {
			out = append(out, t)
		}
	}
	return out
}

// CalendarMonth is the month view: which days carry tours and how much the
// tours starting in the month earn.
type CalendarMonth struct {
	Year        int                    `json:"year"`
	Month       int                    `json:"month"`
	Days        map[core.Date][]string `json:"days"`
	Income      core.Money             `json:"income"`
	Today       core.Date              `json:"today"`
	DaysInMonth int                    `json:"daysInMonth"`
}

func BuildCalendarMonth(tours []core.TourEntry, year, month int, now time.Time) CalendarMonth {
	prefix := core.NewDate(year, month, 1)[:8]
	all := TourDays(tours)
	days := make(map[core.Date][]string)
	for d, ids := range all {
		if d[:8] == prefix {
			days[d] = ids
		}
	}
	var income core.Money
	for _, t := range FilterToursByMonth(tours, year, month) {
		income = income.Add(TotalIncome(t))
	}
	return CalendarMonth{
		Year:        year,
		Month:       month,
		Days:        days,
		Income:      income,
		Today:       core.ToDateString(now),
		DaysInMonth: time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day(),
	}
}
