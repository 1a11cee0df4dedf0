package services

import (
	"context"
	"errors"
	"fmt"

	"guidetrack/internal/core"
	"guidetrack/internal/log"
	"guidetrack/internal/state"
	"guidetrack/internal/storage"
)

// Persister writes every changed collection back to storage as a whole.
type Persister struct {
	repo   *storage.Repository
	logger *log.Logger
}

var _ state.Observer = (*Persister)(nil)

func NewPersister(repo *storage.Repository, logger *log.Logger) *Persister {
	if logger == nil {
		logger = log.Discard()
	}
	return &Persister{repo: repo, logger: logger.WithComponent(log.ComponentStorage)}
}

func (p *Persister) StateChanged(ctx context.Context, s state.State, changed state.Collection) error {
	var errs []error
	changed.Each(func(c state.Collection) {
		if err := p.save(ctx, s, c); err != nil {
			errs = append(errs, fmt.Errorf("save %s: %w", c, err))
			return
		}
		p.logger.DebugContext(ctx, "Collection persisted",
			log.FieldCollection, c.String(),
			log.FieldOperation, log.OpPersist)
	})
	return errors.Join(errs...)
}

func (p *Persister) save(ctx context.Context, s state.State, c state.Collection) error {
	switch c {
	case state.Tours:
		return p.repo.SaveTours(ctx, s.Tours)
	case state.Expenses:
		return p.repo.SaveExpenses(ctx, s.Expenses)
	case state.Agencies:
		return p.repo.SaveAgencies(ctx, s.Agencies)
	case state.Settings:
		return p.repo.SaveSettings(ctx, s.Settings)
	case state.User:
		return p.repo.SaveUser(ctx, s.User)
	case state.ExpenseCategories:
		return p.repo.SaveExpenseCategories(ctx, core.CustomExpenseCategories(s.ExpenseCategories))
	}
	return nil
}

// Publisher announces that a stored collection changed.
type Publisher interface {
	PublishCollectionChanged(ctx context.Context, collection string) error
}

// SyncedCollections are mirrored to the spreadsheet.
const SyncedCollections = state.Tours | state.Expenses | state.Agencies

// SyncPublisher forwards changes of the mirrored collections to a
// Publisher. Publishing is best effort: failures are logged, never
// returned, because the periodic resync picks up anything missed.
type SyncPublisher struct {
	pub    Publisher
	logger *log.Logger
}

var _ state.Observer = (*SyncPublisher)(nil)

func NewSyncPublisher(pub Publisher, logger *log.Logger) *SyncPublisher {
	if logger == nil {
		logger = log.Discard()
	}
	return &SyncPublisher{pub: pub, logger: logger.WithComponent(log.ComponentAMQP)}
}

func (p *SyncPublisher) StateChanged(ctx context.Context, _ state.State, changed state.Collection) error {
	if p.pub == nil {
		return nil
	}
	(changed & SyncedCollections).Each(func(c state.Collection) {
		if err := p.pub.PublishCollectionChanged(ctx, c.String()); err != nil {
			p.logger.WarnContext(ctx, "Failed to publish collection change",
				log.FieldCollection, c.String(),
				log.FieldError, err)
		}
	})
	return nil
}
