package state

import "guidetrack/internal/core"

// Action is a discrete change request. Timestamps are carried inside the
// action so that reducing stays deterministic.
type Action interface {
	apply(State) (State, Collection)
}

type (
	// Init replaces every collection with loaded data and ends loading.
	Init struct {
		Tours             []core.TourEntry
		Expenses          []core.Expense
		Agencies          []core.Agency
		User              *core.UserProfile
		Settings          core.AppSettings
		ExpenseCategories []string
	}

	SetLoading struct{ Loading bool }

	SetUser struct{ User *core.UserProfile }

	AddTour    struct{ Tour core.TourEntry }
	UpdateTour struct{ Tour core.TourEntry }
	DeleteTour struct{ ID string }

	AddTip struct {
		TourID string
		Tip    core.Tip
		At     string
	}

	AddCommission struct {
		TourID     string
		Commission core.Commission
		At         string
	}

	// UpdatePaymentStatus stamps PaidDate with At when the new status is PAID
	// and keeps the previous PaidDate otherwise.
	UpdatePaymentStatus struct {
		TourID     string
		Status     core.PaymentStatus
		PaidAmount core.Money
		At         string
	}

	AddExpense    struct{ Expense core.Expense }
	UpdateExpense struct{ Expense core.Expense }
	DeleteExpense struct{ ID string }

	// AddExpenses stores a whole recurring series in one change, first
	// element oldest.
	AddExpenses struct{ Expenses []core.Expense }

	AddAgency    struct{ Agency core.Agency }
	UpdateAgency struct{ Agency core.Agency }
	DeleteAgency struct{ ID string }

	// UpdateSettings applies only the non-nil fields.
	UpdateSettings struct{ Patch SettingsPatch }

	AddExpenseCategory struct{ Category string }
)

type SettingsPatch struct {
	DefaultDailyRate     *core.Money `json:"defaultDailyRate,omitempty"`
	NotificationsEnabled *bool       `json:"notificationsEnabled,omitempty"`
	FirstDayOfWeek       *int        `json:"firstDayOfWeek,omitempty"`
}

// Apply returns settings with the patch applied.
func (p SettingsPatch) Apply(s core.AppSettings) core.AppSettings {
	if p.DefaultDailyRate != nil {
		s.DefaultDailyRate = *p.DefaultDailyRate
	}
	if p.NotificationsEnabled != nil {
		s.NotificationsEnabled = *p.NotificationsEnabled
	}
	if p.FirstDayOfWeek != nil {
		s.FirstDayOfWeek = *p.FirstDayOfWeek
	}
	return s
}
