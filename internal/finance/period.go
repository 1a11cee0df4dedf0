package finance

import (
	"fmt"
	"sort"
	"time"

	"guidetrack/internal/core"
)

// Period selects tours and expenses by start/expense date. A zero Month
// covers the whole Year and a zero Year covers all time.
type Period struct {
	Year  int `json:"year,omitempty"`
	Month int `json:"month,omitempty"`
}

func AllTime() Period { return Period{} }

func YearOf(now time.Time) Period {
	return Period{Year: now.In(time.Local).Year()}
}

func MonthOf(now time.Time) Period {
	now = now.In(time.Local)
	return Period{Year: now.Year(), Month: int(now.Month())}
}

func (p Period) Validate() error {
	if p.Year < 0 {
		return fmt.Errorf("invalid year %d", p.Year)
	}
	if p.Month < 0 || p.Month > 12 {
		return fmt.Errorf("invalid month %d", p.Month)
	}
	if p.Year == 0 && p.Month != 0 {
		return fmt.Errorf("month %d given without a year", p.Month)
	}
	return nil
}

// Contains matches on the year and month components of d only.
func (p Period) Contains(d core.Date) bool {
	if p.Year == 0 {
		return true
	}
	y, m := d.YearMonth()
	if y != p.Year {
		return false
	}
	return p.Month == 0 || m == p.Month
}

// Label renders the period the way the dashboard titles it.
func (p Period) Label() string {
	switch {
	case p.Year == 0:
		return "Tüm Zamanlar"
	case p.Month == 0:
		return fmt.Sprintf("%d Yılı", p.Year)
	default:
		return fmt.Sprintf("%s %d", core.MonthNames[p.Month-1], p.Year)
	}
}

func FilterTours(tours []core.TourEntry, p Period) []core.TourEntry {
	out := make([]core.TourEntry, 0, len(tours))
	for _, t := range tours {
		if p.Contains(t.StartDate) {
			out = append(out, t)
		}
	}
	return out
}

func FilterExpenses(expenses []core.Expense, p Period) []core.Expense {
	out := make([]core.Expense, 0, len(expenses))
	for _, e := range expenses {
		if p.Contains(e.Date) {
			out = append(out, e)
		}
	}
	return out
}

// FilterToursByMonth keeps tours starting in the given month (1-12).
func FilterToursByMonth(tours []core.TourEntry, year, month int) []core.TourEntry {
	return FilterTours(tours, Period{Year: year, Month: month})
}

func FilterExpensesByMonth(expenses []core.Expense, year, month int) []core.Expense {
	return FilterExpenses(expenses, Period{Year: year, Month: month})
}

// FilterToursByStatus keeps the tours whose status at now equals status.
func FilterToursByStatus(tours []core.TourEntry, status core.TourStatus, now time.Time) []core.TourEntry {
	out := make([]core.TourEntry, 0, len(tours))
	for _, t := range tours {
		if StatusAt(t, now) == status {
			out = append(out, t)
		}
	}
	return out
}

// NewestFirst returns a copy sorted by start date, latest first.
func NewestFirst(tours []core.TourEntry) []core.TourEntry {
	out := append([]core.TourEntry(nil), tours...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartDate > out[j].StartDate })
	return out
}

// UpcomingTours returns up to limit tours that are not yet past, soonest
// first. A non-positive limit returns all of them.
func UpcomingTours(tours []core.TourEntry, now time.Time, limit int) []core.TourEntry {
	out := make([]core.TourEntry, 0, len(tours))
	for _, t := range tours {
		if StatusAt(t, now) != core.Past {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartDate < out[j].StartDate })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
