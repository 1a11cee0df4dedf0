package state

import (
	"context"
	"sync"

	"guidetrack/internal/log"
)

// Observer is told which collections changed after each dispatch.
type Observer interface {
	StateChanged(ctx context.Context, s State, changed Collection) error
}

type ObserverFunc func(ctx context.Context, s State, changed Collection) error

func (f ObserverFunc) StateChanged(ctx context.Context, s State, changed Collection) error {
	return f(ctx, s, changed)
}

// Store owns the current State. Dispatches are serialized, so observers
// see changes in the order they were made.
type Store struct {
	dispatchMu sync.Mutex
	mu         sync.RWMutex
	state      State
	observers  []Observer
	logger     *log.Logger
}

func NewStore(initial State, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Discard()
	}
	return &Store{state: initial, logger: logger.WithComponent(log.ComponentState)}
}

// Subscribe registers an observer. Observers run in registration order.
func (s *Store) Subscribe(o Observer) {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()
	s.observers = append(s.observers, o)
}

// State returns the current snapshot.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Dispatch reduces a into the current state and notifies observers unless
// nothing changed or the store is still loading. Every observer runs; the
// first error is returned and the new state stays in place regardless.
func (s *Store) Dispatch(ctx context.Context, a Action) (State, error) {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()
	return s.dispatchLocked(ctx, s.State(), a)
}

// Update calls build with the current state and dispatches the action it
// returns before any other dispatch can run, so checks made in build still
// hold when the action is reduced. An error from build is returned as is
// and nothing changes; so does a nil action.
func (s *Store) Update(ctx context.Context, build func(State) (Action, error)) (State, error) {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	cur := s.State()
	a, err := build(cur)
	if err != nil || a == nil {
		return cur, err
	}
	return s.dispatchLocked(ctx, cur, a)
}

func (s *Store) dispatchLocked(ctx context.Context, cur State, a Action) (State, error) {
	next, changed := reduce(cur, a)

	s.mu.Lock()
	s.state = next
	s.mu.Unlock()

	if changed == None || next.Loading {
		return next, nil
	}

	var firstErr error
	for _, o := range s.observers {
		if err := o.StateChanged(ctx, next, changed); err != nil {
			s.logger.ErrorContext(ctx, "State observer failed",
				log.FieldCollection, changed.String(),
				log.FieldError, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return next, firstErr
}
