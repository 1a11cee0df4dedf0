package finance

import (
	"testing"

	"guidetrack/internal/core"
)

func TestPeriodFilters(t *testing.T) {
	tours := []core.TourEntry{
		tour("a", core.TourFull, "2024-06-05", "2024-06-05", 1000),
		tour("b", core.TourFull, "2024-07-05", "2024-07-05", 1000),
		tour("c", core.TourFull, "2023-06-05", "2023-06-05", 1000),
	}
	expenses := []core.Expense{
		{ID: "e1", Date: "2024-06-30"},
		{ID: "e2", Date: "2024-01-01"},
		{ID: "e3", Date: "bogus"},
	}

	cases := []struct {
		p        Period
		tours    int
		expenses int
	}{
		{AllTime(), 3, 3},
		{Period{Year: 2024}, 2, 2},
		{Period{Year: 2024, Month: 6}, 1, 1},
		{Period{Year: 2022}, 0, 0},
	}
	for _, tc := range cases {
		if got := len(FilterTours(tours, tc.p)); got != tc.tours {
			t.Fatalf("%+v tours: expected %d, got %d", tc.p, tc.tours, got)
		}
		if got := len(FilterExpenses(expenses, tc.p)); got != tc.expenses {
			t.Fatalf("%+v expenses: expected %d, got %d", tc.p, tc.expenses, got)
		}
	}

	if got := FilterToursByMonth(tours, 2024, 7); len(got) != 1 || got[0].ID != "b" {
		t.Fatalf("unexpected month filter: %+v", got)
	}
	if got := FilterExpensesByMonth(expenses, 2024, 1); len(got) != 1 || got[0].ID != "e2" {
		t.Fatalf("unexpected expense month filter: %+v", got)
	}
}

func TestPeriodValidateAndLabel(t *testing.T) {
	if err := (Period{Month: 3}).Validate(); err == nil {
		t.Fatalf("month without year should fail")
	}
	if err := (Period{Year: 2024, Month: 13}).Validate(); err == nil {
		t.Fatalf("month 13 should fail")
	}
	labels := map[Period]string{
		{}:                     "Tüm Zamanlar",
		{Year: 2024}:           "2024 Yılı",
		{Year: 2024, Month: 2}: "Şubat 2024",
	}
	for p, want := range labels {
		if got := p.Label(); got != want {
			t.Fatalf("%+v: expected %q, got %q", p, want, got)
		}
	}
}

func TestUpcomingTours(t *testing.T) {
	tours := []core.TourEntry{
		tour("past", core.TourFull, "2024-05-01", "2024-05-01", 1000),
		tour("later", core.TourFull, "2024-07-01", "2024-07-01", 1000),
		tour("now", core.TourPackage, "2024-06-01", "2024-06-20", 1000),
		tour("soon", core.TourFull, "2024-06-16", "2024-06-16", 1000),
	}
	got := UpcomingTours(tours, localNoon(2024, 6, 15), 2)
	if len(got) != 2 || got[0].ID != "now" || got[1].ID != "soon" {
		t.Fatalf("unexpected upcoming: %+v", got)
	}

	newest := NewestFirst(tours)
	if newest[0].ID != "later" || newest[3].ID != "past" {
		t.Fatalf("unexpected order: %s..%s", newest[0].ID, newest[3].ID)
	}
	if tours[0].ID != "past" {
		t.Fatalf("input must not be reordered")
	}

	if got := FilterToursByStatus(tours, core.Current, localNoon(2024, 6, 15)); len(got) != 1 || got[0].ID != "now" {
		t.Fatalf("unexpected current tours: %+v", got)
	}
}

func TestCalendar(t *testing.T) {
	tours := []core.TourEntry{
		tour("a", core.TourPackage, "2024-06-29", "2024-07-02", 1000),
		tour("b", core.TourFull, "2024-07-01", "2024-07-01", 500),
	}
	days := TourDays(tours)
	if len(days) != 4 || len(days["2024-07-01"]) != 2 {
		t.Fatalf("unexpected day map: %v", days)
	}
	if got := ToursOn(tours, "2024-06-30"); len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("unexpected tours on day: %+v", got)
	}

	june := BuildCalendarMonth(tours, 2024, 6, localNoon(2024, 6, 15))
	if len(june.Days) != 2 || june.Income != core.NewMoney(4000) || june.DaysInMonth != 30 {
		t.Fatalf("unexpected june: %+v", june)
	}
	july := BuildCalendarMonth(tours, 2024, 7, localNoon(2024, 6, 15))
	if len(july.Days) != 2 || july.Income != core.NewMoney(500) {
		t.Fatalf("unexpected july: %+v", july)
	}
}
