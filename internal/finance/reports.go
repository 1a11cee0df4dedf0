package finance

import (
	"sort"
	"time"

	"guidetrack/internal/core"
)

// DefaultMonthCount is the window used when callers do not choose one.
const DefaultMonthCount = 12

// BuildMonthlyReports uses the current month as the newest bucket.
func BuildMonthlyReports(tours []core.TourEntry, expenses []core.Expense, monthCount int) []core.MonthlyReport {
	return BuildMonthlyReportsAt(tours, expenses, monthCount, time.Now())
}

// BuildMonthlyReportsAt returns monthCount buckets ordered oldest to newest,
// the last one being the local month of now. Tours are bucketed by their
// start month only. A non-positive monthCount yields no buckets.
func BuildMonthlyReportsAt(tours []core.TourEntry, expenses []core.Expense, monthCount int, now time.Time) []core.MonthlyReport {
	if monthCount <= 0 {
		return []core.MonthlyReport{}
	}
	now = now.In(time.Local)

	reports := make([]core.MonthlyReport, 0, monthCount)
	for i := monthCount - 1; i >= 0; i-- {
		first := time.Date(now.Year(), now.Month()-time.Month(i), 1, 0, 0, 0, 0, time.Local)
		year, month := first.Year(), int(first.Month())

		r := core.MonthlyReport{Year: year, Month: month}
		for _, t := range tours {
			if y, m := t.StartDate.YearMonth(); y == year && m == month {
				r.TotalIncome = r.TotalIncome.Add(TotalIncome(t))
				r.TourCount++
			}
		}
		for _, e := range expenses {
			if y, m := e.Date.YearMonth(); y == year && m == month {
				r.TotalExpenses = r.TotalExpenses.Add(e.Amount)
			}
		}
		r.NetProfit = r.TotalIncome.Sub(r.TotalExpenses)
		reports = append(reports, r)
	}
	return reports
}

// BuildAgencyReports returns one report per agency, in input order,
// including agencies without tours. Tours whose agency is not in the list
// contribute to nothing.
func BuildAgencyReports(tours []core.TourEntry, agencies []core.Agency) []core.AgencyReport {
	byAgency := make(map[string][]core.TourEntry, len(agencies))
	for _, t := range tours {
		byAgency[t.AgencyID] = append(byAgency[t.AgencyID], t)
	}

	reports := make([]core.AgencyReport, 0, len(agencies))
	for _, a := range agencies {
		r := core.AgencyReport{AgencyID: a.ID, AgencyName: a.Name}
		for _, t := range byAgency[a.ID] {
			base := BaseIncome(t)
			r.TourCount++
			r.TotalDailyRates = r.TotalDailyRates.Add(base)
			r.TotalTips = r.TotalTips.Add(TipsTotal(t))
			r.TotalCommissions = r.TotalCommissions.Add(CommissionsTotal(t))
			if t.PaymentStatus != core.Paid {
				r.UnpaidAmount = r.UnpaidAmount.Add(base.Sub(t.PaidAmount))
			}
		}
		r.TotalIncome = r.TotalDailyRates.Add(r.TotalTips).Add(r.TotalCommissions)
		reports = append(reports, r)
	}
	return reports
}

// RankAgencyReports drops agencies without tours and orders the rest by
// total income, highest first. Ties keep their input order.
func RankAgencyReports(reports []core.AgencyReport) []core.AgencyReport {
	out := make([]core.AgencyReport, 0, len(reports))
	for _, r := range reports {
		if r.TourCount > 0 {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalIncome.Cents > out[j].TotalIncome.Cents
	})
	return out
}
