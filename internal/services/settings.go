package services

import (
	"context"
	"strings"

	"guidetrack/internal/core"
	"guidetrack/internal/state"
)

func (s *GuideService) Settings() core.AppSettings {
	return s.store.State().Settings
}

// UpdateSettings applies the non-nil fields of patch after checking the
// merged result.
func (s *GuideService) UpdateSettings(ctx context.Context, patch state.SettingsPatch) (core.AppSettings, error) {
	st, err := s.update(ctx, func(cur state.State) (state.Action, error) {
		if err := patch.Apply(cur.Settings).Validate(); err != nil {
			return nil, invalid(err)
		}
		return state.UpdateSettings{Patch: patch}, nil
	})
	if err != nil {
		return core.AppSettings{}, err
	}
	return st.Settings, nil
}

type UserInput struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// User returns the profile, or nil before onboarding.
func (s *GuideService) User() *core.UserProfile {
	return s.store.State().User
}

// SaveUser creates the profile on first use and edits it afterwards.
// Premium fields are never set from here.
func (s *GuideService) SaveUser(ctx context.Context, in UserInput) (*core.UserProfile, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid(core.ErrEmptyName)
	}

	now := s.timestamp()
	var u core.UserProfile
	_, err := s.update(ctx, func(st state.State) (state.Action, error) {
		if st.User != nil {
			u = *st.User
		} else {
			u = core.UserProfile{ID: s.newID(), CreatedAt: now}
		}
		u.Name = name
		u.Email = strings.TrimSpace(in.Email)
		return state.SetUser{User: &u}, nil
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *GuideService) DeleteUser(ctx context.Context) error {
	_, err := s.update(ctx, func(st state.State) (state.Action, error) {
		if st.User == nil {
			return nil, ErrNotFound
		}
		return state.SetUser{User: nil}, nil
	})
	return err
}
