// Package storage persists whole collections as JSON documents under
// fixed keys.
package storage

import (
	"context"
	"errors"
	"time"
)

// Keys under which each collection is stored.
const (
	KeyUser              = "gt_user"
	KeyTours             = "gt_tours"
	KeyExpenses          = "gt_expenses"
	KeyAgencies          = "gt_agencies"
	KeySettings          = "gt_settings"
	KeyExpenseCategories = "gt_expense_categories"
)

// AllKeys lists every key the application writes.
var AllKeys = []string{
	KeyUser,
	KeyTours,
	KeyExpenses,
	KeyAgencies,
	KeySettings,
	KeyExpenseCategories,
}

var ErrNotFound = errors.New("key not found")

// KV is a whole-value key/value store. Set replaces the value entirely.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

// PendingKey is a key whose latest version has not been mirrored yet.
type PendingKey struct {
	Key       string
	Version   int64
	UpdatedAt time.Time
}

// SyncTracker records which stored versions reached the external mirror.
type SyncTracker interface {
	PendingSync(ctx context.Context, limit int) ([]PendingKey, error)
	MarkSynced(ctx context.Context, key string, version int64) error
}
