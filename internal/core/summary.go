package core

// FinancialSummary aggregates tours and expenses for a caller-chosen period.
type FinancialSummary struct {
	TotalIncome      Money `json:"totalIncome"`
	TotalDailyRates  Money `json:"totalDailyRates"`
	TotalTips        Money `json:"totalTips"`
	TotalCommissions Money `json:"totalCommissions"`
	TotalExpenses    Money `json:"totalExpenses"`
	NetProfit        Money `json:"netProfit"`
	NetMargin        int   `json:"netMargin"` // whole percent
	UnpaidAmount     Money `json:"unpaidAmount"`
	PaidAmount       Money `json:"paidAmount"`
}

// MonthlyReport is one calendar-month bucket.
type MonthlyReport struct {
	Year          int   `json:"year"`
	Month         int   `json:"month"` // 1-12
	TotalIncome   Money `json:"totalIncome"`
	TotalExpenses Money `json:"totalExpenses"`
	NetProfit     Money `json:"netProfit"`
	TourCount     int   `json:"tourCount"`
}

type AgencyReport struct {
	AgencyID         string `json:"agencyId"`
	AgencyName       string `json:"agencyName"`
	TourCount        int    `json:"tourCount"`
	TotalDailyRates  Money  `json:"totalDailyRates"`
	TotalCommissions Money  `json:"totalCommissions"`
	TotalTips        Money  `json:"totalTips"`
	TotalIncome      Money  `json:"totalIncome"`
	UnpaidAmount     Money  `json:"unpaidAmount"`
}
