package finance

import (
	"github.com/shopspring/decimal"

	"guidetrack/internal/core"
)

var hundred = decimal.NewFromInt(100)

// CalculateFinancialSummary aggregates whatever tours and expenses it is
// given. Filter by period first (see Period).
//
// UnpaidAmount counts only base income still owed by non-PAID tours.
// PaidAmount is the base income of PAID tours, not their recorded PaidAmount.
func CalculateFinancialSummary(tours []core.TourEntry, expenses []core.Expense) core.FinancialSummary {
	var s core.FinancialSummary
	for _, t := range tours {
		base := BaseIncome(t)
		s.TotalDailyRates = s.TotalDailyRates.Add(base)
		s.TotalTips = s.TotalTips.Add(TipsTotal(t))
		s.TotalCommissions = s.TotalCommissions.Add(CommissionsTotal(t))
		if t.PaymentStatus == core.Paid {
			s.PaidAmount = s.PaidAmount.Add(base)
		} else {
			s.UnpaidAmount = s.UnpaidAmount.Add(base.Sub(t.PaidAmount))
		}
	}
	s.TotalIncome = s.TotalDailyRates.Add(s.TotalTips).Add(s.TotalCommissions)
	s.TotalExpenses = SumExpenses(expenses)
	s.NetProfit = s.TotalIncome.Sub(s.TotalExpenses)
	s.NetMargin = netMargin(s.NetProfit, s.TotalIncome)
	return s
}

func SumExpenses(expenses []core.Expense) core.Money {
	var sum core.Money
	for _, e := range expenses {
		sum = sum.Add(e.Amount)
	}
	return sum
}

// netMargin is a whole percentage, rounded half away from zero.
func netMargin(net, income core.Money) int {
	if income.Cents <= 0 {
		return 0
	}
	pct := decimal.NewFromInt(net.Cents).Mul(hundred).Div(decimal.NewFromInt(income.Cents))
	return int(pct.Round(0).IntPart())
}
