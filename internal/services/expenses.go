package services

import (
	"context"
	"slices"
	"sort"
	"strings"

	"guidetrack/internal/core"
	"guidetrack/internal/finance"
	"guidetrack/internal/log"
	"guidetrack/internal/state"
)

const (
	MinRecurrenceMonths     = 1
	MaxRecurrenceMonths     = 60
	DefaultRecurrenceMonths = 12
)

type ExpenseInput struct {
	Title            string     `json:"title"`
	Amount           core.Money `json:"amount"`
	Category         string     `json:"category"`
	Date             core.Date  `json:"date"`
	IsRecurring      bool       `json:"isRecurring"`
	RecurrenceMonths int        `json:"recurrenceMonths,omitempty"`
	Notes            string     `json:"notes,omitempty"`
}

// ClampRecurrence bounds a requested month count to 1..60. Zero means the
// form default of 12.
func ClampRecurrence(n int) int {
	if n == 0 {
		n = DefaultRecurrenceMonths
	}
	if n < MinRecurrenceMonths {
		return MinRecurrenceMonths
	}
	if n > MaxRecurrenceMonths {
		return MaxRecurrenceMonths
	}
	return n
}

// CreateExpense stores one expense, or for a recurring one a separate
// record per month starting at in.Date. Each generated record is
// independent; editing one later does not touch the others. Days past the
// end of a shorter month are clamped to its last day. The series is saved
// as a single change, so it is stored whole or not at all.
func (s *GuideService) CreateExpense(ctx context.Context, in ExpenseInput) ([]core.Expense, error) {
	base := core.Expense{
		Title:       strings.TrimSpace(in.Title),
		Amount:      in.Amount,
		Category:    strings.TrimSpace(in.Category),
		Date:        in.Date,
		IsRecurring: in.IsRecurring,
		Notes:       strings.TrimSpace(in.Notes),
		CreatedAt:   s.timestamp(),
	}
	if err := base.Validate(); err != nil {
		return nil, invalid(err)
	}

	months := 1
	if in.IsRecurring {
		months = ClampRecurrence(in.RecurrenceMonths)
		base.RecurrenceMonths = months
	}

	created := make([]core.Expense, 0, months)
	for i := 0; i < months; i++ {
		e := base
		e.ID = s.newID()
		e.Date, _ = in.Date.AddMonthsClamped(i)
		created = append(created, e)
	}
	if _, err := s.dispatch(ctx, state.AddExpenses{Expenses: created}); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Expense created",
		append(log.NewFields().WithExpense(created[0].ID, base.Category, base.Amount.Cents).ToSlice(),
			log.FieldCount, len(created))...)
	return created, nil
}

// UpdateExpense edits a single record. The recurrence flag is kept for
// display; no further records are generated.
func (s *GuideService) UpdateExpense(ctx context.Context, id string, in ExpenseInput) (core.Expense, error) {
	var e core.Expense
	e.Title = strings.TrimSpace(in.Title)
	e.Amount = in.Amount
	e.Category = strings.TrimSpace(in.Category)
	e.Date = in.Date
	e.IsRecurring = in.IsRecurring
	e.RecurrenceMonths = 0
	if in.IsRecurring {
		e.RecurrenceMonths = ClampRecurrence(in.RecurrenceMonths)
	}
	e.Notes = strings.TrimSpace(in.Notes)
	if err := e.Validate(); err != nil {
		return core.Expense{}, invalid(err)
	}

	_, err := s.update(ctx, func(st state.State) (state.Action, error) {
		cur, ok := st.Expense(id)
		if !ok {
			return nil, ErrNotFound
		}
		e.ID = cur.ID
		e.CreatedAt = cur.CreatedAt
		return state.UpdateExpense{Expense: e}, nil
	})
	if err != nil {
		return core.Expense{}, err
	}
	return e, nil
}

func (s *GuideService) DeleteExpense(ctx context.Context, id string) error {
	_, err := s.update(ctx, func(st state.State) (state.Action, error) {
		if _, ok := st.Expense(id); !ok {
			return nil, ErrNotFound
		}
		return state.DeleteExpense{ID: id}, nil
	})
	return err
}

func (s *GuideService) Expense(id string) (core.Expense, error) {
	e, ok := s.store.State().Expense(id)
	if !ok {
		return core.Expense{}, ErrNotFound
	}
	return e, nil
}

// ListExpenses returns the expenses in p, latest date first. A non-empty
// category keeps only that category.
func (s *GuideService) ListExpenses(p finance.Period, category string) []core.Expense {
	out := finance.FilterExpenses(s.store.State().Expenses, p)
	if category != "" {
		kept := out[:0]
		for _, e := range out {
			if e.Category == category {
				kept = append(kept, e)
			}
		}
		out = kept
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out
}

// ExpensesByCategory totals the expenses in p per category.
func (s *GuideService) ExpensesByCategory(p finance.Period) map[string]core.Money {
	totals := make(map[string]core.Money)
	for _, e := range finance.FilterExpenses(s.store.State().Expenses, p) {
		totals[e.Category] = totals[e.Category].Add(e.Amount)
	}
	return totals
}

func (s *GuideService) ExpenseCategories() []string {
	return append([]string(nil), s.store.State().ExpenseCategories...)
}

func (s *GuideService) AddExpenseCategory(ctx context.Context, name string) ([]string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid(core.ErrEmptyCategory)
	}
	st, err := s.update(ctx, func(st state.State) (state.Action, error) {
		if slices.Contains(st.ExpenseCategories, name) {
			return nil, ErrDuplicateName
		}
		return state.AddExpenseCategory{Category: name}, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]string(nil), st.ExpenseCategories...), nil
}

func (s *GuideService) CommissionCategories() []string {
	return append([]string(nil), core.DefaultCommissionCategories...)
}
