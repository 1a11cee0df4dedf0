package services

import (
	"context"
	"strings"

	"guidetrack/internal/core"
	"guidetrack/internal/state"
)

type AgencyInput struct {
	Name             string     `json:"name"`
	DefaultDailyRate core.Money `json:"defaultDailyRate"`
	ContactPerson    string     `json:"contactPerson,omitempty"`
	Phone            string     `json:"phone,omitempty"`
	Email            string     `json:"email,omitempty"`
	Notes            string     `json:"notes,omitempty"`
}

func (in AgencyInput) apply(a core.Agency) core.Agency {
	a.Name = strings.TrimSpace(in.Name)
	a.DefaultDailyRate = in.DefaultDailyRate
	a.ContactPerson = strings.TrimSpace(in.ContactPerson)
	a.Phone = strings.TrimSpace(in.Phone)
	a.Email = strings.TrimSpace(in.Email)
	a.Notes = strings.TrimSpace(in.Notes)
	return a
}

func (s *GuideService) Agencies() []core.Agency {
	return append([]core.Agency(nil), s.store.State().Agencies...)
}

func (s *GuideService) Agency(id string) (core.Agency, error) {
	a, ok := s.store.State().Agency(id)
	if !ok {
		return core.Agency{}, ErrNotFound
	}
	return a, nil
}

func (s *GuideService) CreateAgency(ctx context.Context, in AgencyInput) (core.Agency, error) {
	a := in.apply(core.Agency{ID: s.newID(), CreatedAt: s.timestamp()})
	if err := a.Validate(); err != nil {
		return core.Agency{}, invalid(err)
	}
	if _, err := s.dispatch(ctx, state.AddAgency{Agency: a}); err != nil {
		return core.Agency{}, err
	}
	return a, nil
}

// UpdateAgency does not touch existing tours: their daily rate was fixed
// when they were booked.
func (s *GuideService) UpdateAgency(ctx context.Context, id string, in AgencyInput) (core.Agency, error) {
	var a core.Agency
	_, err := s.update(ctx, func(st state.State) (state.Action, error) {
		cur, ok := st.Agency(id)
		if !ok {
			return nil, ErrNotFound
		}
		a = in.apply(cur)
		if err := a.Validate(); err != nil {
			return nil, invalid(err)
		}
		return state.UpdateAgency{Agency: a}, nil
	})
	if err != nil {
		return core.Agency{}, err
	}
	return a, nil
}

// DeleteAgency refuses while any tour still references the agency. The
// check and the removal happen in one dispatch, so a tour booked
// concurrently either blocks the delete or fails on the missing agency.
func (s *GuideService) DeleteAgency(ctx context.Context, id string) error {
	_, err := s.update(ctx, func(st state.State) (state.Action, error) {
		if _, ok := st.Agency(id); !ok {
			return nil, ErrNotFound
		}
		if st.AgencyInUse(id) {
			return nil, ErrAgencyInUse
		}
		return state.DeleteAgency{ID: id}, nil
	})
	return err
}
