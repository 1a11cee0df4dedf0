package services

import (
	"fmt"

	"guidetrack/internal/core"
	"guidetrack/internal/finance"
)

const upcomingLimit = 3

type SummaryReport struct {
	Period    finance.Period        `json:"period"`
	Label     string                `json:"label"`
	TourCount int                   `json:"tourCount"`
	Summary   core.FinancialSummary `json:"summary"`
}

// Dashboard is the home screen: a period summary plus the next tours that
// have not ended yet.
type Dashboard struct {
	SummaryReport
	Upcoming []core.TourEntry `json:"upcoming"`
}

func (s *GuideService) Summary(p finance.Period) (SummaryReport, error) {
	if err := p.Validate(); err != nil {
		return SummaryReport{}, invalid(err)
	}
	st := s.store.State()
	tours := finance.FilterTours(st.Tours, p)
	return SummaryReport{
		Period:    p,
		Label:     p.Label(),
		TourCount: len(tours),
		Summary:   finance.CalculateFinancialSummary(tours, finance.FilterExpenses(st.Expenses, p)),
	}, nil
}

func (s *GuideService) Dashboard(p finance.Period) (Dashboard, error) {
	sum, err := s.Summary(p)
	if err != nil {
		return Dashboard{}, err
	}
	return Dashboard{
		SummaryReport: sum,
		Upcoming:      finance.UpcomingTours(s.store.State().Tours, s.now(), upcomingLimit),
	}, nil
}

// MonthlyReports returns monthCount buckets ending with the current month,
// oldest first.
func (s *GuideService) MonthlyReports(monthCount int) ([]core.MonthlyReport, error) {
	if monthCount <= 0 {
		return nil, invalid(ErrInvalidMonthSpan)
	}
	st := s.store.State()
	return finance.BuildMonthlyReportsAt(st.Tours, st.Expenses, monthCount, s.now()), nil
}

// AgencyReports ranks agencies with at least one tour in p by income.
func (s *GuideService) AgencyReports(p finance.Period) ([]core.AgencyReport, error) {
	if err := p.Validate(); err != nil {
		return nil, invalid(err)
	}
	st := s.store.State()
	reports := finance.BuildAgencyReports(finance.FilterTours(st.Tours, p), st.Agencies)
	return finance.RankAgencyReports(reports), nil
}

func (s *GuideService) Calendar(year, month int) (finance.CalendarMonth, error) {
	if year <= 0 || month < 1 || month > 12 {
		return finance.CalendarMonth{}, invalid(fmt.Errorf("invalid month %d-%02d", year, month))
	}
	return finance.BuildCalendarMonth(s.store.State().Tours, year, month, s.now()), nil
}

// ToursOn lists the tours covering day d.
func (s *GuideService) ToursOn(d core.Date) ([]core.TourEntry, error) {
	if err := d.Validate(); err != nil {
		return nil, invalid(err)
	}
	return finance.ToursOn(s.store.State().Tours, d), nil
}
