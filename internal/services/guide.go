package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"guidetrack/internal/core"
	"guidetrack/internal/log"
	"guidetrack/internal/state"
	"guidetrack/internal/storage"
)

// GuideService applies form rules on top of the state store: it validates
// input, assigns ids and timestamps, and turns requests into actions.
// Reads come from the store snapshot, never from storage.
type GuideService struct {
	store  *state.Store
	repo   *storage.Repository
	logger *log.Logger

	now   func() time.Time
	newID func() string
}

func NewGuideService(store *state.Store, repo *storage.Repository, logger *log.Logger) *GuideService {
	if logger == nil {
		logger = log.Discard()
	}
	return &GuideService{
		store:  store,
		repo:   repo,
		logger: logger.WithComponent(log.ComponentService),
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Load reads every collection from storage and replaces the state.
func (s *GuideService) Load(ctx context.Context) error {
	snap, err := s.repo.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	if _, err := s.store.Dispatch(ctx, state.Init{
		Tours:             snap.Tours,
		Expenses:          snap.Expenses,
		Agencies:          snap.Agencies,
		User:              snap.User,
		Settings:          snap.Settings,
		ExpenseCategories: core.MergeExpenseCategories(snap.ExpenseCategories),
	}); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "State loaded",
		"tours", len(snap.Tours),
		"expenses", len(snap.Expenses),
		"agencies", len(snap.Agencies))
	return nil
}

// State returns the current snapshot.
func (s *GuideService) State() state.State {
	return s.store.State()
}

func (s *GuideService) dispatch(ctx context.Context, a state.Action) (state.State, error) {
	st, err := s.store.Dispatch(ctx, a)
	if err != nil {
		return st, fmt.Errorf("persist change: %w", err)
	}
	return st, nil
}

// update checks and builds an action against the current state and
// dispatches it atomically. Errors from build come back unwrapped.
func (s *GuideService) update(ctx context.Context, build func(state.State) (state.Action, error)) (state.State, error) {
	var buildErr error
	st, err := s.store.Update(ctx, func(cur state.State) (state.Action, error) {
		a, err := build(cur)
		buildErr = err
		return a, err
	})
	if buildErr != nil {
		return st, buildErr
	}
	if err != nil {
		return st, fmt.Errorf("persist change: %w", err)
	}
	return st, nil
}

func (s *GuideService) timestamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}

// Now is the service clock. Handlers use it to resolve "current" periods.
func (s *GuideService) Now() time.Time {
	return s.now()
}
