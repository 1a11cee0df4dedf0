package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"guidetrack/internal/core"
	"guidetrack/internal/log"
)

// Repository reads and writes typed collections over a KV. Reads are fail
// soft: a missing or corrupt value yields the documented default and a
// warning, never an error. Only KV failures are returned.
type Repository struct {
	kv     KV
	logger *log.Logger
	now    func() time.Time
}

func NewRepository(kv KV, logger *log.Logger) *Repository {
	if logger == nil {
		logger = log.Discard()
	}
	return &Repository{kv: kv, logger: logger.WithComponent(log.ComponentStorage), now: time.Now}
}

// KV exposes the underlying store, e.g. for sync tracking.
func (r *Repository) KV() KV { return r.kv }

// getJSON decodes key into dst. It reports false when the key is absent,
// empty, null or undecodable.
func (r *Repository) getJSON(ctx context.Context, key string, dst any) (bool, error) {
	data, err := r.kv.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if len(data) == 0 || string(data) == "null" {
		return false, nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		r.logger.WarnContext(ctx, "Ignoring unreadable stored value",
			log.FieldKey, key, log.FieldError, err)
		return false, nil
	}
	return true, nil
}

func (r *Repository) setJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := r.kv.Set(ctx, key, data); err != nil {
		return err
	}
	return nil
}

func (r *Repository) Tours(ctx context.Context) ([]core.TourEntry, error) {
	var tours []core.TourEntry
	if ok, err := r.getJSON(ctx, KeyTours, &tours); err != nil || !ok {
		return []core.TourEntry{}, err
	}
	return normalizeTours(tours), nil
}

func (r *Repository) SaveTours(ctx context.Context, tours []core.TourEntry) error {
	return r.setJSON(ctx, KeyTours, normalizeTours(tours))
}

func (r *Repository) Expenses(ctx context.Context) ([]core.Expense, error) {
	var expenses []core.Expense
	if ok, err := r.getJSON(ctx, KeyExpenses, &expenses); err != nil || !ok {
		return []core.Expense{}, err
	}
	return expenses, nil
}

func (r *Repository) SaveExpenses(ctx context.Context, expenses []core.Expense) error {
	if expenses == nil {
		expenses = []core.Expense{}
	}
	return r.setJSON(ctx, KeyExpenses, expenses)
}

// Agencies seeds and stores the default agencies when nothing, or an
// empty list, is stored.
func (r *Repository) Agencies(ctx context.Context) ([]core.Agency, error) {
	var agencies []core.Agency
	ok, err := r.getJSON(ctx, KeyAgencies, &agencies)
	if err != nil {
		return nil, err
	}
	if ok && len(agencies) > 0 {
		return agencies, nil
	}
	defaults := core.DefaultAgencies(r.now().UTC().Format(time.RFC3339))
	if err := r.SaveAgencies(ctx, defaults); err != nil {
		return nil, fmt.Errorf("seed default agencies: %w", err)
	}
	r.logger.InfoContext(ctx, "Seeded default agencies", log.FieldCount, len(defaults))
	return defaults, nil
}

func (r *Repository) SaveAgencies(ctx context.Context, agencies []core.Agency) error {
	if agencies == nil {
		agencies = []core.Agency{}
	}
	return r.setJSON(ctx, KeyAgencies, agencies)
}

func (r *Repository) Settings(ctx context.Context) (core.AppSettings, error) {
	var s core.AppSettings
	if ok, err := r.getJSON(ctx, KeySettings, &s); err != nil || !ok {
		return core.DefaultSettings(), err
	}
	return s, nil
}

func (r *Repository) SaveSettings(ctx context.Context, s core.AppSettings) error {
	return r.setJSON(ctx, KeySettings, s)
}

// User returns nil when no profile is stored.
func (r *Repository) User(ctx context.Context) (*core.UserProfile, error) {
	var u core.UserProfile
	if ok, err := r.getJSON(ctx, KeyUser, &u); err != nil || !ok {
		return nil, err
	}
	return &u, nil
}

// SaveUser removes the profile when u is nil.
func (r *Repository) SaveUser(ctx context.Context, u *core.UserProfile) error {
	if u == nil {
		return r.kv.Delete(ctx, KeyUser)
	}
	return r.setJSON(ctx, KeyUser, u)
}

// ExpenseCategories returns only the user-added categories.
func (r *Repository) ExpenseCategories(ctx context.Context) ([]string, error) {
	var cats []string
	if ok, err := r.getJSON(ctx, KeyExpenseCategories, &cats); err != nil || !ok {
		return []string{}, err
	}
	return cats, nil
}

func (r *Repository) SaveExpenseCategories(ctx context.Context, custom []string) error {
	if custom == nil {
		custom = []string{}
	}
	return r.setJSON(ctx, KeyExpenseCategories, custom)
}

// Snapshot is everything the application persists.
type Snapshot struct {
	Tours             []core.TourEntry
	Expenses          []core.Expense
	Agencies          []core.Agency
	Settings          core.AppSettings
	User              *core.UserProfile
	ExpenseCategories []string // user-added only
}

// LoadAll reads every collection concurrently.
func (r *Repository) LoadAll(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		snap.Tours, err = r.Tours(gctx)
		return wrap("load tours", err)
	})
	g.Go(func() (err error) {
		snap.Expenses, err = r.Expenses(gctx)
		return wrap("load expenses", err)
	})
	g.Go(func() (err error) {
		snap.Agencies, err = r.Agencies(gctx)
		return wrap("load agencies", err)
	})
	g.Go(func() (err error) {
		snap.Settings, err = r.Settings(gctx)
		return wrap("load settings", err)
	})
	g.Go(func() (err error) {
		snap.User, err = r.User(gctx)
		return wrap("load user", err)
	})
	g.Go(func() (err error) {
		snap.ExpenseCategories, err = r.ExpenseCategories(gctx)
		return wrap("load expense categories", err)
	})

	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// Backup is the JSON document produced by ExportAll and accepted by Import.
// On import, collections absent from the document are left untouched.
type Backup struct {
	Tours      []core.TourEntry  `json:"tours"`
	Expenses   []core.Expense    `json:"expenses"`
	Agencies   []core.Agency     `json:"agencies"`
	Settings   *core.AppSettings `json:"settings"`
	User       *core.UserProfile `json:"user"`
	ExportedAt string            `json:"exportedAt,omitempty"`
}

// ExportAll renders an indented JSON backup of every collection.
func (r *Repository) ExportAll(ctx context.Context) ([]byte, error) {
	snap, err := r.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	b := Backup{
		Tours:      snap.Tours,
		Expenses:   snap.Expenses,
		Agencies:   snap.Agencies,
		Settings:   &snap.Settings,
		User:       snap.User,
		ExportedAt: r.now().UTC().Format(time.RFC3339Nano),
	}
	return json.MarshalIndent(b, "", "  ")
}

// ErrInvalidBackup wraps JSON errors from Import.
var ErrInvalidBackup = errors.New("invalid backup")

// Import replaces the tours, expenses, agencies and settings present in
// data. The user profile is never imported.
func (r *Repository) Import(ctx context.Context, data []byte) (imported []string, err error) {
	var b Backup
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	if b.Tours != nil {
		if err := r.SaveTours(ctx, b.Tours); err != nil {
			return imported, err
		}
		imported = append(imported, KeyTours)
	}
	if b.Expenses != nil {
		if err := r.SaveExpenses(ctx, b.Expenses); err != nil {
			return imported, err
		}
		imported = append(imported, KeyExpenses)
	}
	if b.Agencies != nil {
		if err := r.SaveAgencies(ctx, b.Agencies); err != nil {
			return imported, err
		}
		imported = append(imported, KeyAgencies)
	}
	if b.Settings != nil {
		if err := r.SaveSettings(ctx, *b.Settings); err != nil {
			return imported, err
		}
		imported = append(imported, KeySettings)
	}
	r.logger.InfoContext(ctx, "Backup imported", log.FieldCount, len(imported))
	return imported, nil
}

// Clear removes every stored key, then writes the mirrored collections
// back as empty lists. The fresh versions show up as pending sync, so the
// spreadsheet tabs are emptied too.
func (r *Repository) Clear(ctx context.Context) error {
	if err := r.kv.Delete(ctx, AllKeys...); err != nil {
		return fmt.Errorf("clear storage: %w", err)
	}
	if err := r.SaveTours(ctx, nil); err != nil {
		return fmt.Errorf("clear storage: %w", err)
	}
	if err := r.SaveExpenses(ctx, nil); err != nil {
		return fmt.Errorf("clear storage: %w", err)
	}
	if err := r.SaveAgencies(ctx, nil); err != nil {
		return fmt.Errorf("clear storage: %w", err)
	}
	return nil
}

// normalizeTours returns a copy in which nil tip and commission lists are
// empty, so they encode as [] rather than null.
func normalizeTours(tours []core.TourEntry) []core.TourEntry {
	out := make([]core.TourEntry, len(tours))
	for i, t := range tours {
		if t.Tips == nil {
			t.Tips = []core.Tip{}
		}
		if t.Commissions == nil {
			t.Commissions = []core.Commission{}
		}
		out[i] = t
	}
	return out
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}
