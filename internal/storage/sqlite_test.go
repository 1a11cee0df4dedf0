package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "data", "guidetrack.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	s := newSQLite(t)

	_, err := s.Get(ctx, KeyTours)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, KeyTours, []byte(`[]`)))
	require.NoError(t, s.Set(ctx, KeyTours, []byte(`[{"id":"t1"}]`)))

	got, err := s.Get(ctx, KeyTours)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"t1"}]`, string(got))

	require.NoError(t, s.Set(ctx, KeySettings, []byte(`{}`)))
	require.NoError(t, s.Delete(ctx, KeyTours, KeySettings, "missing"))
	_, err = s.Get(ctx, KeySettings)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Delete(ctx))
}

func TestSQLiteStore_SyncTracking(t *testing.T) {
	ctx := context.Background()
	s := newSQLite(t)

	require.NoError(t, s.Set(ctx, KeyTours, []byte(`[]`)))
	require.NoError(t, s.Set(ctx, KeyTours, []byte(`[1]`)))
	require.NoError(t, s.Set(ctx, KeyExpenses, []byte(`[]`)))

	pending, err := s.PendingSync(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)

	versions := map[string]int64{}
	for _, p := range pending {
		versions[p.Key] = p.Version
		assert.False(t, p.UpdatedAt.IsZero())
	}
	assert.Equal(t, int64(2), versions[KeyTours])
	assert.Equal(t, int64(1), versions[KeyExpenses])

	require.NoError(t, s.MarkSynced(ctx, KeyTours, 2))
	require.NoError(t, s.MarkSynced(ctx, KeyTours, 1)) // stale ack is ignored

	pending, err = s.PendingSync(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, KeyExpenses, pending[0].Key)

	require.NoError(t, s.Set(ctx, KeyTours, []byte(`[2]`)))
	pending, err = s.PendingSync(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestSQLiteStore_ReopenRunsMigrationsOnce(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "guidetrack.db")

	first, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, KeyUser, []byte(`{"id":"u1"}`)))
	require.NoError(t, first.Close())

	second, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer second.Close()

	got, err := second.Get(ctx, KeyUser)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"u1"}`, string(got))
}
