package storage_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guidetrack/internal/core"
	"guidetrack/internal/storage"
	"guidetrack/internal/storage/memory"
)

func newRepo(t *testing.T) (*storage.Repository, *memory.Store) {
	t.Helper()
	kv := memory.NewStore()
	return storage.NewRepository(kv, nil), kv
}

func TestRepository_DefaultsWhenEmpty(t *testing.T) {
	ctx := context.Background()
	repo, kv := newRepo(t)

	tours, err := repo.Tours(ctx)
	require.NoError(t, err)
	assert.NotNil(t, tours)
	assert.Empty(t, tours)

	settings, err := repo.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, core.DefaultSettings(), settings)

	user, err := repo.User(ctx)
	require.NoError(t, err)
	assert.Nil(t, user)

	agencies, err := repo.Agencies(ctx)
	require.NoError(t, err)
	require.Len(t, agencies, 4)
	assert.Equal(t, "agency-2", agencies[1].ID)
	assert.Equal(t, core.NewMoney(2000), agencies[1].DefaultDailyRate)

	// Defaults are written back on first read.
	raw, err := kv.Get(ctx, storage.KeyAgencies)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Thomas Cook")
}

func TestRepository_EmptyAgencyListReseeds(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t)

	require.NoError(t, repo.SaveAgencies(ctx, []core.Agency{}))
	agencies, err := repo.Agencies(ctx)
	require.NoError(t, err)
	assert.Len(t, agencies, 4)
}

func TestRepository_CorruptValueFallsBack(t *testing.T) {
	ctx := context.Background()
	repo, kv := newRepo(t)

	require.NoError(t, kv.Set(ctx, storage.KeySettings, []byte("{not json")))
	require.NoError(t, kv.Set(ctx, storage.KeyTours, []byte(`"oops"`)))

	settings, err := repo.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, core.DefaultSettings(), settings)

	tours, err := repo.Tours(ctx)
	require.NoError(t, err)
	assert.Empty(t, tours)
}

func TestRepository_RoundTripKeepsJSONShape(t *testing.T) {
	ctx := context.Background()
	repo, kv := newRepo(t)

	tour := core.TourEntry{
		ID: "tour-1", Title: "Efes", Type: core.TourFull,
		StartDate: "2024-06-10", EndDate: "2024-06-10",
		AgencyID: "agency-1", DailyRate: core.NewMoney(1500),
		PaymentStatus: core.Unpaid,
	}
	require.NoError(t, repo.SaveTours(ctx, []core.TourEntry{tour}))

	raw, err := kv.Get(ctx, storage.KeyTours)
	require.NoError(t, err)
	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Len(t, decoded, 1)
	assert.EqualValues(t, 1500, decoded[0]["dailyRate"])
	assert.Equal(t, []any{}, decoded[0]["tips"])
	assert.Equal(t, "2024-06-10", decoded[0]["startDate"])

	tours, err := repo.Tours(ctx)
	require.NoError(t, err)
	require.Len(t, tours, 1)
	assert.Equal(t, core.NewMoney(1500), tours[0].DailyRate)
	assert.Nil(t, tour.Tips, "input must not be modified")
}

func TestRepository_UserSaveAndRemove(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t)

	require.NoError(t, repo.SaveUser(ctx, &core.UserProfile{ID: "u1", Name: "Ayşe"}))
	u, err := repo.User(ctx)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "Ayşe", u.Name)

	require.NoError(t, repo.SaveUser(ctx, nil))
	u, err = repo.User(ctx)
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestRepository_LoadAll(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t)

	require.NoError(t, repo.SaveExpenses(ctx, []core.Expense{{ID: "e1", Title: "Kira", Amount: core.NewMoney(8000)}}))
	require.NoError(t, repo.SaveExpenseCategories(ctx, []string{"Rehber Kartı"}))

	snap, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Expenses, 1)
	assert.Len(t, snap.Agencies, 4)
	assert.Equal(t, []string{"Rehber Kartı"}, snap.ExpenseCategories)
	assert.Nil(t, snap.User)
}

type failingKV struct{ *memory.Store }

func (failingKV) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("disk gone")
}

func TestRepository_LoadAllPropagatesStoreErrors(t *testing.T) {
	repo := storage.NewRepository(failingKV{memory.NewStore()}, nil)
	_, err := repo.LoadAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk gone")
}

func TestRepository_ExportImportClear(t *testing.T) {
	ctx := context.Background()
	repo, kv := newRepo(t)

	require.NoError(t, repo.SaveExpenses(ctx, []core.Expense{{ID: "e1", Title: "Kira", Amount: core.NewMoney(8000)}}))
	require.NoError(t, repo.SaveUser(ctx, &core.UserProfile{ID: "u1", Name: "Ayşe"}))

	data, err := repo.ExportAll(ctx)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	for _, k := range []string{"tours", "expenses", "agencies", "settings", "user", "exportedAt"} {
		assert.Contains(t, doc, k)
	}
	assert.Contains(t, string(data), "\n  \"tours\"", "backup should be indented")

	// Only the collections present are replaced.
	imported, err := repo.Import(ctx, []byte(`{"tours":[{"id":"t9","title":"Side","type":"HALF","startDate":"2024-07-01","endDate":"2024-07-01","agencyId":"agency-1","dailyRate":"1200,5","paymentStatus":"UNPAID"}]}`))
	require.NoError(t, err)
	assert.Equal(t, []string{storage.KeyTours}, imported)

	tours, err := repo.Tours(ctx)
	require.NoError(t, err)
	require.Len(t, tours, 1)
	assert.Equal(t, int64(120050), tours[0].DailyRate.Cents)

	expenses, err := repo.Expenses(ctx)
	require.NoError(t, err)
	assert.Len(t, expenses, 1, "expenses were not in the backup")

	_, err = repo.Import(ctx, []byte("not json"))
	assert.ErrorIs(t, err, storage.ErrInvalidBackup)

	require.NoError(t, repo.Clear(ctx))
	for _, k := range []string{storage.KeyUser, storage.KeySettings, storage.KeyExpenseCategories} {
		_, err := kv.Get(ctx, k)
		assert.ErrorIs(t, err, storage.ErrNotFound, k)
	}
	for _, k := range []string{storage.KeyTours, storage.KeyExpenses, storage.KeyAgencies} {
		data, err := kv.Get(ctx, k)
		require.NoError(t, err, k)
		assert.Equal(t, "[]", string(data), k)
	}
	tours, err = repo.Tours(ctx)
	require.NoError(t, err)
	assert.Empty(t, tours)
	user, err := repo.User(ctx)
	require.NoError(t, err)
	assert.Nil(t, user)
}
