package services

import (
	"context"
	"strings"

	"guidetrack/internal/core"
	"guidetrack/internal/finance"
	"guidetrack/internal/log"
	"guidetrack/internal/state"
)

// TourInput holds the editable fields of a tour. Payment data, tips and
// commissions have their own operations.
type TourInput struct {
	Title     string        `json:"title"`
	Type      core.TourType `json:"type"`
	StartDate core.Date     `json:"startDate"`
	EndDate   core.Date     `json:"endDate"`
	AgencyID  string        `json:"agencyId"`
	DailyRate core.Money    `json:"dailyRate"`
	Notes     string        `json:"notes"`
}

// TourResult carries a saved tour together with the tours it overlaps.
// Overlaps are a warning only; the tour is saved regardless.
type TourResult struct {
	Tour      core.TourEntry   `json:"tour"`
	Conflicts []core.TourEntry `json:"conflicts"`
}

// TourFilter narrows ListTours. A nil Status keeps every status.
type TourFilter struct {
	Period finance.Period
	Status *core.TourStatus
}

func (in TourInput) apply(t core.TourEntry) core.TourEntry {
	t.Title = strings.TrimSpace(in.Title)
	t.Type = in.Type
	t.StartDate = in.StartDate
	t.EndDate = in.EndDate
	if in.Type != core.TourPackage {
		t.EndDate = in.StartDate
	}
	t.AgencyID = in.AgencyID
	t.DailyRate = in.DailyRate
	t.Notes = strings.TrimSpace(in.Notes)
	return t
}

func (s *GuideService) checkTour(st state.State, t core.TourEntry) error {
	if err := t.Validate(); err != nil {
		return invalid(err)
	}
	if _, ok := st.Agency(t.AgencyID); !ok {
		return invalid(ErrUnknownAgency)
	}
	return nil
}

func (s *GuideService) CreateTour(ctx context.Context, in TourInput) (TourResult, error) {
	now := s.timestamp()
	t := in.apply(core.TourEntry{
		ID:            s.newID(),
		PaymentStatus: core.Unpaid,
		Tips:          []core.Tip{},
		Commissions:   []core.Commission{},
		CreatedAt:     now,
		UpdatedAt:     now,
	})

	var conflicts []core.TourEntry
	_, err := s.update(ctx, func(st state.State) (state.Action, error) {
		if err := s.checkTour(st, t); err != nil {
			return nil, err
		}
		conflicts = finance.Conflicts(t.StartDate, t.EndDate, st.Tours, "")
		return state.AddTour{Tour: t}, nil
	})
	if err != nil {
		return TourResult{}, err
	}
	s.logTour(ctx, "Tour created", t, len(conflicts))
	return TourResult{Tour: t, Conflicts: conflicts}, nil
}

// UpdateTour replaces the editable fields and keeps payment data, tips,
// commissions and createdAt as they are at the moment of the write.
func (s *GuideService) UpdateTour(ctx context.Context, id string, in TourInput) (TourResult, error) {
	at := s.timestamp()
	var (
		t         core.TourEntry
		conflicts []core.TourEntry
	)
	_, err := s.update(ctx, func(st state.State) (state.Action, error) {
		cur, ok := st.Tour(id)
		if !ok {
			return nil, ErrNotFound
		}
		t = in.apply(cur)
		t.UpdatedAt = at
		if err := s.checkTour(st, t); err != nil {
			return nil, err
		}
		conflicts = finance.Conflicts(t.StartDate, t.EndDate, st.Tours, id)
		return state.UpdateTour{Tour: t}, nil
	})
	if err != nil {
		return TourResult{}, err
	}
	s.logTour(ctx, "Tour updated", t, len(conflicts))
	return TourResult{Tour: t, Conflicts: conflicts}, nil
}

func (s *GuideService) DeleteTour(ctx context.Context, id string) error {
	_, err := s.update(ctx, func(st state.State) (state.Action, error) {
		if _, ok := st.Tour(id); !ok {
			return nil, ErrNotFound
		}
		return state.DeleteTour{ID: id}, nil
	})
	return err
}

func (s *GuideService) Tour(id string) (core.TourEntry, error) {
	t, ok := s.store.State().Tour(id)
	if !ok {
		return core.TourEntry{}, ErrNotFound
	}
	return t, nil
}

// ListTours returns matching tours, latest start date first.
func (s *GuideService) ListTours(f TourFilter) []core.TourEntry {
	tours := finance.FilterTours(s.store.State().Tours, f.Period)
	if f.Status != nil {
		tours = finance.FilterToursByStatus(tours, *f.Status, s.now())
	}
	return finance.NewestFirst(tours)
}

// TourMetrics returns the derived values for one tour as of now.
func (s *GuideService) TourMetrics(id string) (finance.TourMetrics, error) {
	t, err := s.Tour(id)
	if err != nil {
		return finance.TourMetrics{}, err
	}
	return finance.MetricsAt(t, s.now()), nil
}

// CheckConflicts lists the tours overlapping [start, end], ignoring
// excludeID. An empty end means a single-day range.
func (s *GuideService) CheckConflicts(start, end core.Date, excludeID string) ([]core.TourEntry, error) {
	if end == "" {
		end = start
	}
	if err := start.Validate(); err != nil {
		return nil, invalid(err)
	}
	if err := end.Validate(); err != nil {
		return nil, invalid(err)
	}
	return finance.Conflicts(start, end, s.store.State().Tours, excludeID), nil
}

func (s *GuideService) AddTip(ctx context.Context, tourID string, amount core.Money, note string) (core.TourEntry, error) {
	tip := core.Tip{ID: s.newID(), Amount: amount, Note: strings.TrimSpace(note)}
	if err := tip.Validate(); err != nil {
		return core.TourEntry{}, invalid(err)
	}
	a := state.AddTip{TourID: tourID, Tip: tip, At: s.timestamp()}
	return s.updateTour(ctx, tourID, func(core.TourEntry) state.Action { return a })
}

func (s *GuideService) AddCommission(ctx context.Context, tourID, category string, amount core.Money) (core.TourEntry, error) {
	c := core.Commission{ID: s.newID(), Category: strings.TrimSpace(category), Amount: amount}
	if err := c.Validate(); err != nil {
		return core.TourEntry{}, invalid(err)
	}
	a := state.AddCommission{TourID: tourID, Commission: c, At: s.timestamp()}
	return s.updateTour(ctx, tourID, func(core.TourEntry) state.Action { return a })
}

// UpdatePaymentStatus records a payment. Without an explicit amount, PAID
// means the whole base income, PARTIAL half of it and UNPAID nothing.
func (s *GuideService) UpdatePaymentStatus(ctx context.Context, tourID string, status core.PaymentStatus, paid *core.Money) (core.TourEntry, error) {
	if !status.IsValid() {
		return core.TourEntry{}, invalid(core.ErrInvalidStatus)
	}
	if paid != nil && paid.Cents < 0 {
		return core.TourEntry{}, invalid(core.ErrInvalidAmount)
	}
	at := s.timestamp()

	return s.updateTour(ctx, tourID, func(t core.TourEntry) state.Action {
		var amount core.Money
		switch {
		case paid != nil:
			amount = *paid
		case status == core.Paid:
			amount = finance.BaseIncome(t)
		case status == core.Partial:
			amount = half(finance.BaseIncome(t))
		}
		return state.UpdatePaymentStatus{
			TourID:     tourID,
			Status:     status,
			PaidAmount: amount,
			At:         at,
		}
	})
}

// updateTour builds an action from the tour as it is when the dispatch
// runs and returns the tour afterwards.
func (s *GuideService) updateTour(ctx context.Context, id string, build func(core.TourEntry) state.Action) (core.TourEntry, error) {
	st, err := s.update(ctx, func(st state.State) (state.Action, error) {
		t, ok := st.Tour(id)
		if !ok {
			return nil, ErrNotFound
		}
		return build(t), nil
	})
	if err != nil {
		return core.TourEntry{}, err
	}
	t, _ := st.Tour(id)
	return t, nil
}

func (s *GuideService) logTour(ctx context.Context, msg string, t core.TourEntry, conflicts int) {
	fields := log.NewFields().
		WithTour(t.ID, string(t.Type), t.AgencyID, t.DailyRate.Cents).
		ToSlice()
	fields = append(fields, "conflicts", conflicts)
	if conflicts > 0 {
		s.logger.WarnContext(ctx, msg+" with overlapping dates", fields...)
		return
	}
	s.logger.InfoContext(ctx, msg, fields...)
}

// half rounds half away from zero to whole minor units.
func half(m core.Money) core.Money {
	c := m.Cents
	if c >= 0 {
		return core.Money{Cents: (c + 1) / 2}
	}
	return core.Money{Cents: (c - 1) / 2}
}
