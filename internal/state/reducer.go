package state

import (
	"slices"

	"guidetrack/internal/core"
)

// Reduce returns the state that results from applying a to s. The input is
// never modified. Unknown actions return s unchanged.
func Reduce(s State, a Action) State {
	next, _ := reduce(s, a)
	return next
}

func reduce(s State, a Action) (State, Collection) {
	if a == nil {
		return s, None
	}
	return a.apply(s)
}

func (a Init) apply(s State) (State, Collection) {
	s.Tours = orEmpty(a.Tours)
	s.Expenses = orEmpty(a.Expenses)
	s.Agencies = orEmpty(a.Agencies)
	s.User = a.User
	s.Settings = a.Settings
	s.ExpenseCategories = orEmpty(a.ExpenseCategories)
	s.Loading = false
	// Loaded data is already persisted.
	return s, None
}

func (a SetLoading) apply(s State) (State, Collection) {
	s.Loading = a.Loading
	return s, None
}

func (a SetUser) apply(s State) (State, Collection) {
	s.User = a.User
	return s, User
}

func (a AddTour) apply(s State) (State, Collection) {
	s.Tours = prepend(s.Tours, a.Tour)
	return s, Tours
}

func (a UpdateTour) apply(s State) (State, Collection) {
	s.Tours = mapByID(s.Tours, tourID, a.Tour.ID, func(core.TourEntry) core.TourEntry { return a.Tour })
	return s, Tours
}

func (a DeleteTour) apply(s State) (State, Collection) {
	s.Tours = removeByID(s.Tours, tourID, a.ID)
	return s, Tours
}

func (a AddTip) apply(s State) (State, Collection) {
	s.Tours = mapByID(s.Tours, tourID, a.TourID, func(t core.TourEntry) core.TourEntry {
		t.Tips = append(slices.Clip(t.Tips), a.Tip)
		t.UpdatedAt = a.At
		return t
	})
	return s, Tours
}

func (a AddCommission) apply(s State) (State, Collection) {
	s.Tours = mapByID(s.Tours, tourID, a.TourID, func(t core.TourEntry) core.TourEntry {
		t.Commissions = append(slices.Clip(t.Commissions), a.Commission)
		t.UpdatedAt = a.At
		return t
	})
	return s, Tours
}

func (a UpdatePaymentStatus) apply(s State) (State, Collection) {
	s.Tours = mapByID(s.Tours, tourID, a.TourID, func(t core.TourEntry) core.TourEntry {
		t.PaymentStatus = a.Status
		t.PaidAmount = a.PaidAmount
		if a.Status == core.Paid {
			t.PaidDate = a.At
		}
		t.UpdatedAt = a.At
		return t
	})
	return s, Tours
}

func (a AddExpense) apply(s State) (State, Collection) {
	s.Expenses = prepend(s.Expenses, a.Expense)
	return s, Expenses
}

func (a AddExpenses) apply(s State) (State, Collection) {
	if len(a.Expenses) == 0 {
		return s, None
	}
	out := make([]core.Expense, 0, len(s.Expenses)+len(a.Expenses))
	for i := len(a.Expenses) - 1; i >= 0; i-- {
		out = append(out, a.Expenses[i])
	}
	s.Expenses = append(out, s.Expenses...)
	return s, Expenses
}

func (a UpdateExpense) apply(s State) (State, Collection) {
	s.Expenses = mapByID(s.Expenses, expenseID, a.Expense.ID, func(core.Expense) core.Expense { return a.Expense })
	return s, Expenses
}

func (a DeleteExpense) apply(s State) (State, Collection) {
	s.Expenses = removeByID(s.Expenses, expenseID, a.ID)
	return s, Expenses
}

func (a AddAgency) apply(s State) (State, Collection) {
	s.Agencies = append(slices.Clip(s.Agencies), a.Agency)
	return s, Agencies
}

func (a UpdateAgency) apply(s State) (State, Collection) {
	s.Agencies = mapByID(s.Agencies, agencyID, a.Agency.ID, func(core.Agency) core.Agency { return a.Agency })
	return s, Agencies
}

func (a DeleteAgency) apply(s State) (State, Collection) {
	s.Agencies = removeByID(s.Agencies, agencyID, a.ID)
	return s, Agencies
}

func (a UpdateSettings) apply(s State) (State, Collection) {
	s.Settings = a.Patch.Apply(s.Settings)
	return s, Settings
}

func (a AddExpenseCategory) apply(s State) (State, Collection) {
	if a.Category == "" || slices.Contains(s.ExpenseCategories, a.Category) {
		return s, None
	}
	s.ExpenseCategories = append(slices.Clip(s.ExpenseCategories), a.Category)
	return s, ExpenseCategories
}

func tourID(t core.TourEntry) string  { return t.ID }
func expenseID(e core.Expense) string { return e.ID }
func agencyID(a core.Agency) string   { return a.ID }

func orEmpty[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}

func prepend[T any](in []T, v T) []T {
	out := make([]T, 0, len(in)+1)
	out = append(out, v)
	return append(out, in...)
}

// mapByID copies in, replacing every element whose id matches with fn(elem).
func mapByID[T any](in []T, id func(T) string, want string, fn func(T) T) []T {
	out := make([]T, len(in))
	for i, v := range in {
		if id(v) == want {
			out[i] = fn(v)
		} else {
			out[i] = v
		}
	}
	return out
}

func removeByID[T any](in []T, id func(T) string, want string) []T {
	out := make([]T, 0, len(in))
	for _, v := range in {
		if id(v) != want {
			out = append(out, v)
		}
	}
	return out
}
