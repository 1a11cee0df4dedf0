// Package finance derives durations, income, status and reports from
// snapshots of tours and expenses. Nothing here mutates its inputs or
// performs I/O, so every function is safe to call concurrently.
package finance

import (
	"math"
	"time"

	"guidetrack/internal/core"
)

const day = 24 * time.Hour

// DurationDays is 0.5 for a HALF tour, otherwise the inclusive number of
// calendar days between start and end, never less than 1.
func DurationDays(t core.TourEntry) float64 {
	return float64(durationHalfDays(t)) / 2
}

// durationHalfDays counts half-day units so HALF tours stay in integer math.
func durationHalfDays(t core.TourEntry) int64 {
	if t.Type == core.TourHalf {
		return 1
	}
	return 2 * inclusiveDays(t.StartDate, t.EndDate)
}

func inclusiveDays(start, end core.Date) int64 {
	s, ok1 := start.Time()
	e, ok2 := end.Time()
	if !ok1 || !ok2 {
		return 1
	}
	n := int64(math.Floor(float64(e.Sub(s))/float64(day))) + 1
	if n < 1 {
		return 1
	}
	return n
}

// BaseIncome is dailyRate multiplied by the duration. Half cents from HALF
// tours round away from zero.
func BaseIncome(t core.TourEntry) core.Money {
	n := t.DailyRate.Cents * durationHalfDays(t)
	switch {
	case n%2 == 0:
		return core.Money{Cents: n / 2}
	case n > 0:
		return core.Money{Cents: (n + 1) / 2}
	default:
		return core.Money{Cents: (n - 1) / 2}
	}
}

func TipsTotal(t core.TourEntry) core.Money {
	var sum core.Money
	for _, tip := range t.Tips {
		sum = sum.Add(tip.Amount)
	}
	return sum
}

func CommissionsTotal(t core.TourEntry) core.Money {
	var sum core.Money
	for _, c := range t.Commissions {
		sum = sum.Add(c.Amount)
	}
	return sum
}

func TotalIncome(t core.TourEntry) core.Money {
	return BaseIncome(t).Add(TipsTotal(t)).Add(CommissionsTotal(t))
}

// Remaining is the receivable part of the base income. It is negative when
// more than the base income was recorded as paid.
func Remaining(t core.TourEntry) core.Money {
	return BaseIncome(t).Sub(t.PaidAmount)
}

// Status evaluates the tour against the current local date.
func Status(t core.TourEntry) core.TourStatus {
	return StatusAt(t, time.Now())
}

// StatusAt compares the local calendar date of now with the inclusive
// [StartDate, EndDate] range.
func StatusAt(t core.TourEntry, now time.Time) core.TourStatus {
	today := core.ToDateString(now)
	switch {
	case today < t.StartDate:
		return core.Upcoming
	case today > t.EndDate:
		return core.Past
	default:
		return core.Current
	}
}

// TourMetrics bundles the values derived from a single tour.
type TourMetrics struct {
	DurationDays     float64         `json:"durationDays"`
	BaseIncome       core.Money      `json:"baseIncome"`
	TipsTotal        core.Money      `json:"tipsTotal"`
	CommissionsTotal core.Money      `json:"commissionsTotal"`
	TotalIncome      core.Money      `json:"totalIncome"`
	Remaining        core.Money      `json:"remaining"`
	Status           core.TourStatus `json:"status"`
}

func MetricsAt(t core.TourEntry, now time.Time) TourMetrics {
	base := BaseIncome(t)
	tips := TipsTotal(t)
	comm := CommissionsTotal(t)
	return TourMetrics{
		DurationDays:     DurationDays(t),
		BaseIncome:       base,
		TipsTotal:        tips,
		CommissionsTotal: comm,
		TotalIncome:      base.Add(tips).Add(comm),
		Remaining:        base.Sub(t.PaidAmount),
		Status:           StatusAt(t, now),
	}
}
