package core

import (
	"errors"
	"fmt"
	"strings"
)

const (
	TourHalf    TourType = "HALF"
	TourFull    TourType = "FULL"
	TourPackage TourType = "PACKAGE"

	Unpaid  PaymentStatus = "UNPAID"
	Partial PaymentStatus = "PARTIAL"
	Paid    PaymentStatus = "PAID"

	Upcoming TourStatus = "UPCOMING"
	Current  TourStatus = "CURRENT"
	Past     TourStatus = "PAST"
)

type (
	TourType      string
	PaymentStatus string
	TourStatus    string

	Tip struct {
		ID     string `json:"id"`
		Amount Money  `json:"amount"`
		Note   string `json:"note,omitempty"`
	}

	Commission struct {
		ID       string `json:"id"`
		Category string `json:"category"`
		Amount   Money  `json:"amount"`
	}

	// TourEntry is a booked engagement. DailyRate is captured at booking time
	// and does not follow later changes to the agency's default rate.
	TourEntry struct {
		ID            string        `json:"id"`
		Title         string        `json:"title"`
		Type          TourType      `json:"type"`
		StartDate     Date          `json:"startDate"`
		EndDate       Date          `json:"endDate"`
		AgencyID      string        `json:"agencyId"`
		DailyRate     Money         `json:"dailyRate"`
		PaymentStatus PaymentStatus `json:"paymentStatus"`
		PaidAmount    Money         `json:"paidAmount"`
		PaidDate      string        `json:"paidDate,omitempty"`
		Tips          []Tip         `json:"tips"`
		Commissions   []Commission  `json:"commissions"`
		Notes         string        `json:"notes"`
		CreatedAt     string        `json:"createdAt"`
		UpdatedAt     string        `json:"updatedAt"`
	}

	Agency struct {
		ID               string `json:"id"`
		Name             string `json:"name"`
		DefaultDailyRate Money  `json:"defaultDailyRate"`
		ContactPerson    string `json:"contactPerson,omitempty"`
		Phone            string `json:"phone,omitempty"`
		Email            string `json:"email,omitempty"`
		Notes            string `json:"notes,omitempty"`
		CreatedAt        string `json:"createdAt"`
	}

	Expense struct {
		ID               string `json:"id"`
		Title            string `json:"title"`
		Amount           Money  `json:"amount"`
		Category         string `json:"category"`
		Date             Date   `json:"date"`
		IsRecurring      bool   `json:"isRecurring"`
		RecurrenceMonths int    `json:"recurrenceMonths,omitempty"`
		Notes            string `json:"notes,omitempty"`
		CreatedAt        string `json:"createdAt"`
	}

	UserProfile struct {
		ID               string `json:"id"`
		Name             string `json:"name"`
		Email            string `json:"email,omitempty"`
		IsPremium        bool   `json:"isPremium"`
		PremiumExpiresAt string `json:"premiumExpiresAt,omitempty"`
		CreatedAt        string `json:"createdAt"`
	}

	AppSettings struct {
		DefaultDailyRate     Money `json:"defaultDailyRate"`
		NotificationsEnabled bool  `json:"notificationsEnabled"`
		FirstDayOfWeek       int   `json:"firstDayOfWeek"` // 0=Sunday, 1=Monday
	}
)

var (
	ErrEmptyTitle       = errors.New("empty title")
	ErrEmptyAgency      = errors.New("agency is required")
	ErrEmptyName        = errors.New("empty name")
	ErrEmptyCategory    = errors.New("empty category")
	ErrInvalidRate      = errors.New("daily rate must be positive")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidTourType  = errors.New("invalid tour type")
	ErrInvalidStatus    = errors.New("invalid payment status")
	ErrEndBeforeStart   = errors.New("end date before start date")
	ErrInvalidWeekStart = errors.New("first day of week must be 0 or 1")
	ErrTitleTooLong     = errors.New("title too long (max 200 characters)")
)

func (t TourType) IsValid() bool {
	switch t {
	case TourHalf, TourFull, TourPackage:
		return true
	}
	return false
}

func (s PaymentStatus) IsValid() bool {
	switch s {
	case Unpaid, Partial, Paid:
		return true
	}
	return false
}

// Validate applies the form-layer rules for a tour. The financial engine
// never calls it and computes whatever stored data implies.
func (t TourEntry) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTitle
	}
	if !t.Type.IsValid() {
		return ErrInvalidTourType
	}
	if err := t.StartDate.Validate(); err != nil {
		return fmt.Errorf("invalid start date: %w", err)
	}
	if err := t.EndDate.Validate(); err != nil {
		return fmt.Errorf("invalid end date: %w", err)
	}
	if t.Type == TourPackage && t.EndDate < t.StartDate {
		return ErrEndBeforeStart
	}
	if strings.TrimSpace(t.AgencyID) == "" {
		return ErrEmptyAgency
	}
	if t.DailyRate.Cents <= 0 {
		return ErrInvalidRate
	}
	if !t.PaymentStatus.IsValid() {
		return ErrInvalidStatus
	}
	return nil
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return ErrEmptyTitle
	}
	if len(e.Title) > 200 {
		return ErrTitleTooLong
	}
	if e.Amount.Cents <= 0 {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	return e.Date.Validate()
}

func (a Agency) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if a.DefaultDailyRate.Cents < 0 {
		return ErrInvalidRate
	}
	return nil
}

func (s AppSettings) Validate() error {
	if s.DefaultDailyRate.Cents < 0 {
		return ErrInvalidRate
	}
	if s.FirstDayOfWeek != 0 && s.FirstDayOfWeek != 1 {
		return ErrInvalidWeekStart
	}
	return nil
}

// Validate checks a tip or commission amount, which must be positive.
func (t Tip) Validate() error {
	if t.Amount.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (c Commission) Validate() error {
	if strings.TrimSpace(c.Category) == "" {
		return ErrEmptyCategory
	}
	if c.Amount.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}
