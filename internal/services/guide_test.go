package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guidetrack/internal/core"
	"guidetrack/internal/finance"
	"guidetrack/internal/state"
	"guidetrack/internal/storage"
	"guidetrack/internal/storage/memory"
)

var fixedNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.Local)

type fixture struct {
	svc   *GuideService
	repo  *storage.Repository
	kv    *memory.Store
	store *state.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	kv := memory.NewStore()
	repo := storage.NewRepository(kv, nil)
	store := state.NewStore(state.Initial(), nil)
	store.Subscribe(NewPersister(repo, nil))

	svc := NewGuideService(store, repo, nil)
	svc.now = func() time.Time { return fixedNow }
	n := 0
	svc.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	require.NoError(t, svc.Load(context.Background()))
	return &fixture{svc: svc, repo: repo, kv: kv, store: store}
}

func fullTour(start string) TourInput {
	return TourInput{
		Title:     "Efes",
		Type:      core.TourFull,
		StartDate: core.Date(start),
		EndDate:   "2099-01-01",
		AgencyID:  "agency-1",
		DailyRate: core.NewMoney(1500),
	}
}

func TestGuideService_LoadSeedsDefaults(t *testing.T) {
	f := newFixture(t)

	assert.Len(t, f.svc.Agencies(), 4)
	assert.Equal(t, core.DefaultExpenseCategories, f.svc.ExpenseCategories())
	assert.Equal(t, core.DefaultSettings(), f.svc.Settings())
	assert.Nil(t, f.svc.User())
	assert.False(t, f.svc.State().Loading)
}

func TestGuideService_CreateTour(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	res, err := f.svc.CreateTour(ctx, fullTour("2024-06-10"))
	require.NoError(t, err)
	assert.Equal(t, core.Date("2024-06-10"), res.Tour.EndDate, "single-day tours end on their start date")
	assert.Equal(t, core.Unpaid, res.Tour.PaymentStatus)
	assert.NotNil(t, res.Tour.Tips)
	assert.Empty(t, res.Conflicts)

	stored, err := f.repo.Tours(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, res.Tour.ID, stored[0].ID)

	pkg := TourInput{
		Title: "Kapadokya", Type: core.TourPackage,
		StartDate: "2024-06-09", EndDate: "2024-06-12",
		AgencyID: "agency-2", DailyRate: core.NewMoney(2000),
	}
	res2, err := f.svc.CreateTour(ctx, pkg)
	require.NoError(t, err, "overlaps never block saving")
	require.Len(t, res2.Conflicts, 1)
	assert.Equal(t, res.Tour.ID, res2.Conflicts[0].ID)
	assert.Len(t, f.svc.ListTours(TourFilter{}), 2)
}

func TestGuideService_CreateTourValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	tests := []struct {
		name string
		edit func(*TourInput)
		want error
	}{
		{"empty title", func(in *TourInput) { in.Title = "  " }, core.ErrEmptyTitle},
		{"bad type", func(in *TourInput) { in.Type = "WEEK" }, core.ErrInvalidTourType},
		{"zero rate", func(in *TourInput) { in.DailyRate = core.Money{} }, core.ErrInvalidRate},
		{"unknown agency", func(in *TourInput) { in.AgencyID = "nope" }, ErrUnknownAgency},
		{"bad date", func(in *TourInput) { in.StartDate = "2024-13-01" }, core.ErrInvalidDate},
		{"package ends early", func(in *TourInput) {
			in.Type = core.TourPackage
			in.EndDate = "2024-06-01"
		}, core.ErrEndBeforeStart},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := fullTour("2024-06-10")
			tt.edit(&in)
			_, err := f.svc.CreateTour(ctx, in)
			require.Error(t, err)
			assert.True(t, IsValidation(err))
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Empty(t, f.svc.ListTours(TourFilter{}))
}

func TestGuideService_UpdateTourKeepsPaymentAndExtras(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	res, err := f.svc.CreateTour(ctx, fullTour("2024-06-10"))
	require.NoError(t, err)
	id := res.Tour.ID

	_, err = f.svc.AddTip(ctx, id, core.NewMoney(200), "teşekkürler")
	require.NoError(t, err)
	_, err = f.svc.AddCommission(ctx, id, "Halı", core.NewMoney(300))
	require.NoError(t, err)
	_, err = f.svc.UpdatePaymentStatus(ctx, id, core.Partial, nil)
	require.NoError(t, err)

	in := fullTour("2024-06-11")
	in.Title = "Efes ve Şirince"
	upd, err := f.svc.UpdateTour(ctx, id, in)
	require.NoError(t, err)
	assert.Equal(t, "Efes ve Şirince", upd.Tour.Title)
	assert.Equal(t, core.Date("2024-06-11"), upd.Tour.EndDate)
	assert.Len(t, upd.Tour.Tips, 1)
	assert.Len(t, upd.Tour.Commissions, 1)
	assert.Equal(t, core.Partial, upd.Tour.PaymentStatus)
	assert.Equal(t, core.NewMoney(750), upd.Tour.PaidAmount)
	assert.Empty(t, upd.Conflicts, "a tour never conflicts with itself")

	_, err = f.svc.UpdateTour(ctx, "missing", in)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGuideService_UpdatePaymentStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	in := fullTour("2024-06-10")
	in.DailyRate = core.Money{Cents: 150001}
	res, err := f.svc.CreateTour(ctx, in)
	require.NoError(t, err)
	id := res.Tour.ID

	tour, err := f.svc.UpdatePaymentStatus(ctx, id, core.Partial, nil)
	require.NoError(t, err)
	assert.Equal(t, core.Money{Cents: 75001}, tour.PaidAmount)
	assert.Empty(t, tour.PaidDate)

	tour, err = f.svc.UpdatePaymentStatus(ctx, id, core.Paid, nil)
	require.NoError(t, err)
	assert.Equal(t, core.Money{Cents: 150001}, tour.PaidAmount)
	assert.NotEmpty(t, tour.PaidDate)

	amount := core.NewMoney(100)
	tour, err = f.svc.UpdatePaymentStatus(ctx, id, core.Partial, &amount)
	require.NoError(t, err)
	assert.Equal(t, amount, tour.PaidAmount)
	assert.NotEmpty(t, tour.PaidDate, "paid date survives a later status change")

	tour, err = f.svc.UpdatePaymentStatus(ctx, id, core.Unpaid, nil)
	require.NoError(t, err)
	assert.True(t, tour.PaidAmount.IsZero())

	_, err = f.svc.UpdatePaymentStatus(ctx, id, "LATER", nil)
	assert.True(t, IsValidation(err))
	_, err = f.svc.UpdatePaymentStatus(ctx, "missing", core.Paid, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGuideService_TipAndCommissionValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	res, err := f.svc.CreateTour(ctx, fullTour("2024-06-10"))
	require.NoError(t, err)

	_, err = f.svc.AddTip(ctx, res.Tour.ID, core.Money{}, "")
	assert.ErrorIs(t, err, core.ErrInvalidAmount)
	_, err = f.svc.AddCommission(ctx, res.Tour.ID, " ", core.NewMoney(10))
	assert.ErrorIs(t, err, core.ErrEmptyCategory)
	_, err = f.svc.AddTip(ctx, "missing", core.NewMoney(10), "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGuideService_RecurringExpense(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	created, err := f.svc.CreateExpense(ctx, ExpenseInput{
		Title:            "Kira",
		Amount:           core.NewMoney(12000),
		Category:         "Kira",
		Date:             "2024-01-31",
		IsRecurring:      true,
		RecurrenceMonths: 3,
	})
	require.NoError(t, err)
	require.Len(t, created, 3)
	assert.Equal(t, core.Date("2024-01-31"), created[0].Date)
	assert.Equal(t, core.Date("2024-02-29"), created[1].Date)
	assert.Equal(t, core.Date("2024-03-31"), created[2].Date)
	for _, e := range created {
		assert.Equal(t, 3, e.RecurrenceMonths)
	}
	assert.NotEqual(t, created[0].ID, created[1].ID)

	stored, err := f.repo.Expenses(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, 3)

	listed := f.svc.ListExpenses(finance.AllTime(), "")
	require.Len(t, listed, 3)
	assert.Equal(t, core.Date("2024-03-31"), listed[0].Date)

	// Editing one record leaves the rest alone.
	in := ExpenseInput{Title: "Kira (zam)", Amount: core.NewMoney(13000), Category: "Kira", Date: "2024-02-29", IsRecurring: true}
	_, err = f.svc.UpdateExpense(ctx, created[1].ID, in)
	require.NoError(t, err)
	other, err := f.svc.Expense(created[2].ID)
	require.NoError(t, err)
	assert.Equal(t, core.NewMoney(12000), other.Amount)
}

func TestClampRecurrence(t *testing.T) {
	assert.Equal(t, 12, ClampRecurrence(0))
	assert.Equal(t, 1, ClampRecurrence(-4))
	assert.Equal(t, 60, ClampRecurrence(100))
	assert.Equal(t, 7, ClampRecurrence(7))
}

func TestGuideService_ExpenseValidationAndCategories(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.CreateExpense(ctx, ExpenseInput{Title: "Taksi", Category: "Ulaşım", Date: "2024-06-01"})
	assert.ErrorIs(t, err, core.ErrInvalidAmount)

	cats, err := f.svc.AddExpenseCategory(ctx, " Rehber Kartı ")
	require.NoError(t, err)
	assert.Equal(t, "Rehber Kartı", cats[len(cats)-1])

	_, err = f.svc.AddExpenseCategory(ctx, "Kira")
	assert.ErrorIs(t, err, ErrDuplicateName)

	custom, err := f.repo.ExpenseCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Rehber Kartı"}, custom)
}

func TestGuideService_DeleteAgency(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.CreateTour(ctx, fullTour("2024-06-10"))
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.DeleteAgency(ctx, "agency-1"), ErrAgencyInUse)
	assert.ErrorIs(t, f.svc.DeleteAgency(ctx, "missing"), ErrNotFound)
	require.NoError(t, f.svc.DeleteAgency(ctx, "agency-4"))
	assert.Len(t, f.svc.Agencies(), 3)

	a, err := f.svc.CreateAgency(ctx, AgencyInput{Name: "Jolly", DefaultDailyRate: core.NewMoney(1700)})
	require.NoError(t, err)
	agencies := f.svc.Agencies()
	assert.Equal(t, a.ID, agencies[len(agencies)-1].ID, "new agencies are appended")

	_, err = f.svc.UpdateAgency(ctx, a.ID, AgencyInput{Name: ""})
	assert.True(t, IsValidation(err))
}

// holdDispatch parks the next settings change inside its observer so
// that calls started meanwhile queue up behind it. The returned func
// lets the store run again.
func holdDispatch(t *testing.T, f *fixture) func() {
	t.Helper()
	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	f.store.Subscribe(state.ObserverFunc(func(_ context.Context, _ state.State, changed state.Collection) error {
		if changed.Has(state.Settings) {
			once.Do(func() { close(entered) })
			<-release
		}
		return nil
	}))

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = f.svc.UpdateSettings(context.Background(), state.SettingsPatch{})
	}()
	<-entered
	return func() {
		close(release)
		<-done
	}
}

func TestGuideService_DeleteAgencyRacingCreateTour(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	resume := holdDispatch(t, f)

	in := fullTour("2024-06-10")
	in.AgencyID = "agency-2"

	var (
		wg        sync.WaitGroup
		createErr error
		deleteErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, createErr = f.svc.CreateTour(ctx, in)
	}()
	go func() {
		defer wg.Done()
		deleteErr = f.svc.DeleteAgency(ctx, "agency-2")
	}()
	time.Sleep(20 * time.Millisecond)
	resume()
	wg.Wait()

	if createErr == nil {
		assert.ErrorIs(t, deleteErr, ErrAgencyInUse)
		_, err := f.svc.Agency("agency-2")
		assert.NoError(t, err)
	} else {
		assert.NoError(t, deleteErr)
		assert.ErrorIs(t, createErr, ErrUnknownAgency)
	}

	st := f.svc.State()
	for _, tour := range st.Tours {
		_, ok := st.Agency(tour.AgencyID)
		assert.True(t, ok, "tour %s points at a missing agency", tour.ID)
	}
	stored, err := f.repo.Tours(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, len(st.Tours))
}

func TestGuideService_UpdateTourKeepsConcurrentTip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	res, err := f.svc.CreateTour(ctx, fullTour("2024-06-10"))
	require.NoError(t, err)
	id := res.Tour.ID
	resume := holdDispatch(t, f)

	in := fullTour("2024-06-10")
	in.Title = "Efes ve Meryem Ana"

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := f.svc.AddTip(ctx, id, core.NewMoney(250), "")
		assert.NoError(t, err)
	}()
	go func() {
		defer wg.Done()
		_, err := f.svc.UpdateTour(ctx, id, in)
		assert.NoError(t, err)
	}()
	time.Sleep(20 * time.Millisecond)
	resume()
	wg.Wait()

	tour, err := f.svc.Tour(id)
	require.NoError(t, err)
	assert.Equal(t, "Efes ve Meryem Ana", tour.Title)
	assert.Len(t, tour.Tips, 1, "edit must not drop a tip added alongside it")
}

func TestGuideService_RecurringExpenseIsSavedOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	var writes []int
	f.store.Subscribe(state.ObserverFunc(func(_ context.Context, st state.State, changed state.Collection) error {
		if changed.Has(state.Expenses) {
			writes = append(writes, len(st.Expenses))
		}
		return nil
	}))

	created, err := f.svc.CreateExpense(ctx, ExpenseInput{
		Title: "Sigorta", Amount: core.NewMoney(900), Category: "Sigorta",
		Date: "2024-01-15", IsRecurring: true, RecurrenceMonths: 6,
	})
	require.NoError(t, err)
	require.Len(t, created, 6)
	assert.Equal(t, []int{6}, writes, "the whole series lands in one change")
}

func TestGuideService_RecurringExpenseFailsWhole(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.store.Subscribe(state.ObserverFunc(func(_ context.Context, _ state.State, changed state.Collection) error {
		if changed.Has(state.Expenses) {
			return errors.New("disk full")
		}
		return nil
	}))

	created, err := f.svc.CreateExpense(ctx, ExpenseInput{
		Title: "Kira", Amount: core.NewMoney(12000), Category: "Kira",
		Date: "2024-01-31", IsRecurring: true, RecurrenceMonths: 3,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "persist change")
	assert.Nil(t, created)

	stored, err := f.repo.Expenses(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, 3, "the persister saw the full series before the failing observer")
}

func TestGuideService_SummaryScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	res, err := f.svc.CreateTour(ctx, fullTour("2024-06-10"))
	require.NoError(t, err)
	id := res.Tour.ID
	_, err = f.svc.AddTip(ctx, id, core.NewMoney(200), "")
	require.NoError(t, err)
	_, err = f.svc.AddCommission(ctx, id, "Halı", core.NewMoney(300))
	require.NoError(t, err)
	paid := core.NewMoney(750)
	_, err = f.svc.UpdatePaymentStatus(ctx, id, core.Partial, &paid)
	require.NoError(t, err)

	rep, err := f.svc.Summary(finance.Period{Year: 2024, Month: 6})
	require.NoError(t, err)
	assert.Equal(t, "Haziran 2024", rep.Label)
	assert.Equal(t, 1, rep.TourCount)
	assert.Equal(t, core.NewMoney(2000), rep.Summary.TotalIncome)
	assert.Equal(t, core.NewMoney(750), rep.Summary.UnpaidAmount)
	assert.Equal(t, core.NewMoney(2000), rep.Summary.NetProfit)
	assert.Equal(t, 100, rep.Summary.NetMargin)

	other, err := f.svc.Summary(finance.Period{Year: 2024, Month: 5})
	require.NoError(t, err)
	assert.Zero(t, other.TourCount)
	assert.True(t, other.Summary.TotalIncome.IsZero())

	_, err = f.svc.Summary(finance.Period{Month: 3})
	assert.True(t, IsValidation(err))

	agencies, err := f.svc.AgencyReports(finance.AllTime())
	require.NoError(t, err)
	require.Len(t, agencies, 1)
	assert.Equal(t, "Özel Tur", agencies[0].AgencyName)

	months, err := f.svc.MonthlyReports(2)
	require.NoError(t, err)
	require.Len(t, months, 2)
	assert.Equal(t, 6, months[1].Month)
	assert.Equal(t, 1, months[1].TourCount)

	_, err = f.svc.MonthlyReports(0)
	assert.ErrorIs(t, err, ErrInvalidMonthSpan)
}

func TestGuideService_Dashboard(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for _, start := range []string{"2024-06-01", "2024-06-15", "2024-06-20", "2024-07-01", "2024-08-01"} {
		_, err := f.svc.CreateTour(ctx, fullTour(start))
		require.NoError(t, err)
	}

	d, err := f.svc.Dashboard(finance.MonthOf(fixedNow))
	require.NoError(t, err)
	assert.Equal(t, 3, d.TourCount)
	require.Len(t, d.Upcoming, 3)
	assert.Equal(t, core.Date("2024-06-15"), d.Upcoming[0].StartDate, "current tours come first")
	assert.Equal(t, core.Date("2024-07-01"), d.Upcoming[2].StartDate)
}

func TestGuideService_SettingsAndUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	rate := core.NewMoney(2500)
	settings, err := f.svc.UpdateSettings(ctx, state.SettingsPatch{DefaultDailyRate: &rate})
	require.NoError(t, err)
	assert.Equal(t, rate, settings.DefaultDailyRate)
	assert.True(t, settings.NotificationsEnabled)

	bad := 3
	_, err = f.svc.UpdateSettings(ctx, state.SettingsPatch{FirstDayOfWeek: &bad})
	assert.ErrorIs(t, err, core.ErrInvalidWeekStart)

	u, err := f.svc.SaveUser(ctx, UserInput{Name: "Ayşe"})
	require.NoError(t, err)
	firstID := u.ID
	u, err = f.svc.SaveUser(ctx, UserInput{Name: "Ayşe Y.", Email: "a@example.com"})
	require.NoError(t, err)
	assert.Equal(t, firstID, u.ID)

	stored, err := f.repo.User(ctx)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "Ayşe Y.", stored.Name)

	require.NoError(t, f.svc.DeleteUser(ctx))
	stored, err = f.repo.User(ctx)
	require.NoError(t, err)
	assert.Nil(t, stored)
	assert.ErrorIs(t, f.svc.DeleteUser(ctx), ErrNotFound)
}

func TestGuideService_BackupRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.CreateTour(ctx, fullTour("2024-06-10"))
	require.NoError(t, err)
	data, err := f.svc.ExportBackup(ctx)
	require.NoError(t, err)

	g := newFixture(t)
	imported, err := g.svc.ImportBackup(ctx, data)
	require.NoError(t, err)
	assert.Contains(t, imported, storage.KeyTours)
	assert.Len(t, g.svc.ListTours(TourFilter{}), 1, "state is reloaded after import")

	_, err = g.svc.ImportBackup(ctx, []byte("{"))
	assert.ErrorIs(t, err, storage.ErrInvalidBackup)

	require.NoError(t, g.svc.ClearAll(ctx))
	assert.Empty(t, g.svc.ListTours(TourFilter{}))
	assert.Len(t, g.svc.Agencies(), 4)
}

func TestGuideService_CSVFiles(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CreateTour(context.Background(), fullTour("2024-06-10"))
	require.NoError(t, err)

	tours := f.svc.ToursCSV()
	assert.Equal(t, "guidetrack-turlar-2024-06-15.csv", tours.Name)
	assert.Contains(t, tours.Content, "Özel Tur")
	assert.Contains(t, f.svc.AllCSV().Content, "GİDER KAYITLARI")
	assert.Equal(t, "guidetrack-giderler-2024-06-15.csv", f.svc.ExpensesCSV().Name)
}

type failingKV struct{ storage.KV }

func (failingKV) Set(context.Context, string, []byte) error { return errors.New("disk full") }

func TestPersister_ReturnsStorageErrors(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewRepository(failingKV{memory.NewStore()}, nil)
	p := NewPersister(repo, nil)

	st := state.Initial()
	err := p.StateChanged(ctx, st, state.Tours|state.Settings)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save tours")
	assert.Contains(t, err.Error(), "save settings")
	assert.NoError(t, p.StateChanged(ctx, st, state.None))
}

type recordingPublisher struct {
	got []string
	err error
}

func (r *recordingPublisher) PublishCollectionChanged(_ context.Context, c string) error {
	r.got = append(r.got, c)
	return r.err
}

func TestSyncPublisher(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	p := NewSyncPublisher(pub, nil)

	require.NoError(t, p.StateChanged(ctx, state.State{}, state.Tours|state.Settings|state.Agencies))
	assert.Equal(t, []string{"tours", "agencies"}, pub.got)

	pub.err = errors.New("broker down")
	assert.NoError(t, p.StateChanged(ctx, state.State{}, state.Expenses), "publishing is best effort")

	assert.NoError(t, NewSyncPublisher(nil, nil).StateChanged(ctx, state.State{}, state.All))
}
