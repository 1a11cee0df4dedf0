package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"guidetrack/internal/amqp"
	"guidetrack/internal/export"
	"guidetrack/internal/log"
	"guidetrack/internal/sheets"
	"guidetrack/internal/state"
	"guidetrack/internal/storage"
)

const resyncTimeout = 2 * time.Minute

type target struct {
	key string
	tab string
}

var targets = map[state.Collection]target{
	state.Tours:    {storage.KeyTours, sheets.TabTours},
	state.Expenses: {storage.KeyExpenses, sheets.TabExpenses},
	state.Agencies: {storage.KeyAgencies, sheets.TabAgencies},
}

// SyncWorker mirrors stored collections into spreadsheet tabs. A tab is
// always rewritten from the current stored value, so messages may arrive
// late, twice or out of order.
type SyncWorker struct {
	repo      *storage.Repository
	tracker   storage.SyncTracker
	writer    sheets.TableWriter
	batchSize int
	logger    *log.Logger

	mu   sync.Mutex // one sync at a time
	cron *cron.Cron
}

// NewSyncWorker builds a worker. tracker may be nil, in which case every
// sync is unconditional and nothing is marked.
func NewSyncWorker(repo *storage.Repository, tracker storage.SyncTracker, writer sheets.TableWriter, batchSize int, logger *log.Logger) *SyncWorker {
	if logger == nil {
		logger = log.Discard()
	}
	if batchSize <= 0 {
		batchSize = 10
	}
	return &SyncWorker{
		repo:      repo,
		tracker:   tracker,
		writer:    writer,
		batchSize: batchSize,
		logger:    logger.WithComponent(log.ComponentWorker),
	}
}

// HandleCollectionChanged processes one AMQP message. Collections that are
// not mirrored are acknowledged and ignored.
func (w *SyncWorker) HandleCollectionChanged(ctx context.Context, msg *amqp.CollectionChangedMessage) error {
	c, ok := state.ParseCollection(msg.Collection)
	if !ok {
		w.logger.WarnContext(ctx, "Ignoring message for unknown collection", log.FieldCollection, msg.Collection)
		return nil
	}
	if _, mirrored := targets[c]; !mirrored {
		return nil
	}

	w.logger.InfoContext(ctx, "Processing collection changed message",
		log.FieldCollection, msg.Collection,
		"sent_at", msg.Timestamp)
	return w.Sync(ctx, c)
}

// Sync rewrites the tab of c. Tour rows show agency names, so an agency
// change rewrites the tours tab as well.
func (w *SyncWorker) Sync(ctx context.Context, c state.Collection) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.syncLocked(ctx, c); err != nil {
		return err
	}
	if c == state.Agencies {
		return w.syncLocked(ctx, state.Tours)
	}
	return nil
}

func (w *SyncWorker) syncLocked(ctx context.Context, c state.Collection) error {
	t, ok := targets[c]
	if !ok {
		return fmt.Errorf("collection %s is not mirrored", c)
	}

	// Read the version before the data so a write racing with us stays
	// pending and is picked up by the next run.
	version, err := w.pendingVersion(ctx, t.key)
	if err != nil {
		return err
	}

	header, rows, err := w.table(ctx, c)
	if err != nil {
		return fmt.Errorf("read %s: %w", c, err)
	}
	if err := w.writer.WriteTable(ctx, t.tab, header, rows); err != nil {
		return fmt.Errorf("write %s: %w", t.tab, err)
	}

	if version > 0 {
		if err := w.tracker.MarkSynced(ctx, t.key, version); err != nil {
			w.logger.WarnContext(ctx, "Failed to mark collection synced",
				log.FieldKey, t.key, log.FieldError, err)
		}
	}

	w.logger.InfoContext(ctx, "Collection mirrored",
		log.FieldCollection, c.String(),
		"tab", t.tab,
		log.FieldCount, len(rows))
	return nil
}

func (w *SyncWorker) pendingVersion(ctx context.Context, key string) (int64, error) {
	if w.tracker == nil {
		return 0, nil
	}
	pending, err := w.tracker.PendingSync(ctx, 0)
	if err != nil {
		return 0, fmt.Errorf("read pending versions: %w", err)
	}
	for _, p := range pending {
		if p.Key == key {
			return p.Version, nil
		}
	}
	return 0, nil
}

func (w *SyncWorker) table(ctx context.Context, c state.Collection) ([]string, [][]string, error) {
	switch c {
	case state.Tours:
		tours, err := w.repo.Tours(ctx)
		if err != nil {
			return nil, nil, err
		}
		agencies, err := w.repo.Agencies(ctx)
		if err != nil {
			return nil, nil, err
		}
		return export.TourHeader, export.TourRows(tours, agencies), nil
	case state.Expenses:
		expenses, err := w.repo.Expenses(ctx)
		if err != nil {
			return nil, nil, err
		}
		return export.ExpenseHeader, export.ExpenseRows(expenses), nil
	case state.Agencies:
		agencies, err := w.repo.Agencies(ctx)
		if err != nil {
			return nil, nil, err
		}
		return export.AgencyHeader, export.AgencyRows(agencies), nil
	}
	return nil, nil, fmt.Errorf("collection %s is not mirrored", c)
}

// ProcessPending syncs up to batchSize keys whose latest version was never
// mirrored. Keys of collections that are not mirrored are marked synced so
// they stop showing up.
func (w *SyncWorker) ProcessPending(ctx context.Context) error {
	if w.tracker == nil {
		return w.FullResync(ctx)
	}
	pending, err := w.tracker.PendingSync(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("read pending sync: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}
	w.logger.InfoContext(ctx, "Processing pending collections", log.FieldCount, len(pending))

	var errs []error
	for _, p := range pending {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c, ok := collectionForKey(p.Key)
		if !ok {
			if err := w.tracker.MarkSynced(ctx, p.Key, p.Version); err != nil {
				errs = append(errs, err)
			}
			continue
		}
		if err := w.Sync(ctx, c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// FullResync rewrites every mirrored tab.
func (w *SyncWorker) FullResync(ctx context.Context) error {
	var errs []error
	for _, c := range []state.Collection{state.Agencies, state.Expenses} {
		if err := w.Sync(ctx, c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func collectionForKey(key string) (state.Collection, bool) {
	for c, t := range targets {
		if t.key == key {
			return c, true
		}
	}
	return state.None, false
}

// StartSchedule runs ProcessPending on the cron spec (standard five
// fields, or descriptors such as "@every 5m").
func (w *SyncWorker) StartSchedule(spec string) error {
	c := cron.New()
	if _, err := c.AddFunc(spec, w.runScheduled); err != nil {
		return fmt.Errorf("schedule resync %q: %w", spec, err)
	}
	w.cron = c
	c.Start()
	w.logger.Info("Resync scheduled", "spec", spec)
	return nil
}

// StopSchedule stops the cron and waits for a running job to finish.
func (w *SyncWorker) StopSchedule() {
	if w.cron == nil {
		return
	}
	<-w.cron.Stop().Done()
	w.logger.Info("Resync schedule stopped")
}

func (w *SyncWorker) runScheduled() {
	ctx, cancel := context.WithTimeout(context.Background(), resyncTimeout)
	defer cancel()
	if err := w.ProcessPending(ctx); err != nil {
		w.logger.ErrorContext(ctx, "Scheduled resync failed", log.FieldError, err)
	}
}
