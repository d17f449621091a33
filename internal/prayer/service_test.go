package prayer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/minaret-app/minaret/internal/db"
	"github.com/minaret-app/minaret/internal/model"
	"github.com/minaret-app/minaret/internal/timetable"
)

type fixedClock struct{ now time.Time }

func (c *fixedClock) Now() time.Time { return c.now }

// fakeStore is an in-memory db.Store covering the prayer service paths.
// Unused interface methods panic via the embedded nil Store.
type fakeStore struct {
	db.Store

	user    *model.User
	records map[string]*model.PrayerRecord // keyed by date-prayer
	periods []model.ExcusedPeriod

	nextID    int
	openLists int
	listErrs  int
}

func newFakeStore() *fakeStore {
	lat, lon := 41.0, 29.0
	return &fakeStore{
		user:    &model.User{ID: 1, Email: "a@b.c", Latitude: &lat, Longitude: &lon},
		records: map[string]*model.PrayerRecord{},
		nextID:  1,
	}
}

func (f *fakeStore) GetUserByID(id int) (*model.User, error) { return f.user, nil }

func (f *fakeStore) ListOpenPrayerRecords(userID int) ([]model.PrayerRecord, error) {
	f.openLists++
	if f.listErrs > 0 {
		f.listErrs--
		return nil, errors.New("store down")
	}
	var out []model.PrayerRecord
	for _, r := range f.records {
		if !r.Status.Confirmed() {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeStore) CreatePrayerRecords(records []model.PrayerRecord) error {
	for _, r := range records {
		if _, exists := f.records[r.Key()]; exists {
			continue
		}
		r.ID = f.nextID
		f.nextID++
		stored := r
		f.records[r.Key()] = &stored
	}
	return nil
}

func (f *fakeStore) ApplyStatusUpdates(updates []db.StatusUpdate) error {
	for _, u := range updates {
		for _, r := range f.records {
			if r.ID == u.RecordID && !r.Status.Confirmed() {
				r.Status = u.Status
			}
		}
	}
	return nil
}

func (f *fakeStore) SetPrayerStatus(userID int, date string, name model.PrayerName, status model.PrayerStatus) error {
	r, ok := f.records[date+"-"+string(name)]
	if !ok {
		return db.ErrRecordNotFound
	}
	r.Status = status
	return nil
}

func (f *fakeStore) ListExcusedPeriods(userID int) ([]model.ExcusedPeriod, error) {
	return f.periods, nil
}

func (f *fakeStore) GetOngoingExcusedPeriod(userID int) (*model.ExcusedPeriod, error) {
	for i := range f.periods {
		if f.periods[i].Status == model.PeriodOngoing {
			return &f.periods[i], nil
		}
	}
	return nil, nil
}

func (f *fakeStore) CreateExcusedPeriod(p model.ExcusedPeriod) error {
	f.periods = append(f.periods, p)
	return nil
}

func (f *fakeStore) GetExcusedPeriod(id uuid.UUID) (*model.ExcusedPeriod, error) {
	for i := range f.periods {
		if f.periods[i].ID == id {
			return &f.periods[i], nil
		}
	}
	return nil, db.ErrPeriodNotFound
}

func (f *fakeStore) CompleteExcusedPeriod(id uuid.UUID, endDate string, endPrayer model.PrayerName) error {
	for i := range f.periods {
		if f.periods[i].ID == id && f.periods[i].Status == model.PeriodOngoing {
			f.periods[i].EndDate = &endDate
			f.periods[i].EndPrayer = &endPrayer
			f.periods[i].Status = model.PeriodCompleted
		}
	}
	return nil
}

type fakeProvider struct{ calls int }

func (f *fakeProvider) GetTimings(ctx context.Context, lat, lon float64, date time.Time) (timetable.Timings, error) {
	f.calls++
	return timetable.Timings{
		model.Fajr:    "05:10",
		model.Dhuhr:   "12:45",
		model.Asr:     "16:00",
		model.Maghrib: "18:20",
		model.Isha:    "20:30",
	}, nil
}

func newTestService(store *fakeStore, now time.Time) (*Service, *fakeProvider) {
	provider := &fakeProvider{}
	s := NewService(store, provider)
	s.clock = &fixedClock{now: now}
	return s, provider
}

func seed(store *fakeStore, recs ...model.PrayerRecord) {
	for _, r := range recs {
		stored := r
		stored.ID = store.nextID
		store.nextID++
		store.records[stored.Key()] = &stored
	}
}

func TestHistoryZeroUserIsEmpty(t *testing.T) {
	s, _ := newTestService(newFakeStore(), testNow)
	res, err := s.History(context.Background(), 0, offsetUTC3)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.History) != 0 || res.PendingByDate == nil || res.MissedByDate == nil {
		t.Error("logged-out read must be an empty, non-nil triple")
	}
}

func TestHistoryReconcilesAndCommits(t *testing.T) {
	store := newFakeStore()
	seed(store,
		record(0, "2026-03-12", model.Fajr, "05:10", model.StatusUpcoming),  // due today
		record(0, "2026-03-11", model.Maghrib, "18:00", model.StatusNone),   // past day
		record(0, "2026-03-12", model.Isha, "20:30", model.StatusUpcoming),  // not yet due
		record(0, "2026-03-11", model.Dhuhr, "12:45", model.StatusOnTime),   // confirmed
	)
	s, _ := newTestService(store, testNow)

	res, err := s.History(context.Background(), 1, offsetUTC3)
	if err != nil {
		t.Fatal(err)
	}

	if got := store.records["2026-03-12-fajr"].Status; got != model.StatusPending {
		t.Errorf("store must hold the reconciled pending status, got %s", got)
	}
	if got := store.records["2026-03-11-maghrib"].Status; got != model.StatusMissed {
		t.Errorf("store must hold the reconciled missed status, got %s", got)
	}
	if got := store.records["2026-03-11-dhuhr"].Status; got != model.StatusOnTime {
		t.Errorf("confirmed status must survive reconciliation, got %s", got)
	}

	g, ok := res.PendingByDate["2026-03-12"]
	if !ok || !g.IsToday || len(g.Prayers) != 1 {
		t.Fatalf("today's due prayer must appear in its pending group: %+v", res.PendingByDate)
	}
	if _, ok := res.MissedByDate["2026-03-11"]; !ok {
		t.Error("past-day miss must appear in the missed groups")
	}
	for _, r := range res.History {
		if r.PrayerName == model.Isha {
			t.Error("not-yet-due prayers must not appear in the triple")
		}
	}
}

func TestHistoryServesFreshFromMemory(t *testing.T) {
	store := newFakeStore()
	seed(store, record(0, "2026-03-11", model.Maghrib, "18:00", model.StatusNone))
	s, _ := newTestService(store, testNow)

	ctx := context.Background()
	if _, err := s.History(ctx, 1, offsetUTC3); err != nil {
		t.Fatal(err)
	}
	if _, err := s.History(ctx, 1, offsetUTC3); err != nil {
		t.Fatal(err)
	}

	if store.openLists != 1 {
		t.Errorf("second read inside the freshness window must not hit the store, got %d fetches", store.openLists)
	}
}

func TestHistoryRetriesTransientStoreErrors(t *testing.T) {
	store := newFakeStore()
	store.listErrs = 2 // first two attempts fail, third succeeds
	seed(store, record(0, "2026-03-11", model.Maghrib, "18:00", model.StatusNone))
	s, _ := newTestService(store, testNow)

	res, err := s.History(context.Background(), 1, offsetUTC3)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.MissedByDate) != 1 {
		t.Error("read must succeed after transient store errors")
	}
}

func TestSaveStatusRejectsDerivedValues(t *testing.T) {
	s, _ := newTestService(newFakeStore(), testNow)
	for _, status := range []model.PrayerStatus{model.StatusNone, model.StatusUpcoming, model.StatusPending} {
		err := s.SaveStatus(context.Background(), 1, "2026-03-12", model.Fajr, status, offsetUTC3)
		if !errors.Is(err, ErrInvalidMark) {
			t.Errorf("%s must be rejected, got %v", status, err)
		}
	}
}

func TestSaveStatusCreatesDayLazily(t *testing.T) {
	store := newFakeStore()
	s, provider := newTestService(store, testNow)

	err := s.SaveStatus(context.Background(), 1, "2026-03-12", model.Fajr, model.StatusOnTime, offsetUTC3)
	if err != nil {
		t.Fatal(err)
	}

	if provider.calls != 1 {
		t.Errorf("missing day must trigger one time-table lookup, got %d", provider.calls)
	}
	if len(store.records) != len(model.PrayerOrder) {
		t.Errorf("all five records must be created, got %d", len(store.records))
	}
	if got := store.records["2026-03-12-fajr"].Status; got != model.StatusOnTime {
		t.Errorf("the mark must land after lazy creation, got %s", got)
	}
}

func TestSaveStatusRequiresLocation(t *testing.T) {
	store := newFakeStore()
	store.user.Latitude = nil
	store.user.Longitude = nil
	s, _ := newTestService(store, testNow)

	err := s.SaveStatus(context.Background(), 1, "2026-03-12", model.Fajr, model.StatusOnTime, offsetUTC3)
	if !errors.Is(err, ErrNoLocation) {
		t.Errorf("want ErrNoLocation, got %v", err)
	}
}

func TestStartExcusedPeriodFlipsMissed(t *testing.T) {
	store := newFakeStore()
	seed(store,
		record(0, "2026-03-10", model.Isha, "20:30", model.StatusMissed),
		record(0, "2026-03-10", model.Fajr, "05:10", model.StatusMissed), // before the period start
	)
	s, _ := newTestService(store, testNow)

	p, err := s.StartExcusedPeriod(context.Background(), 1, "2026-03-10", model.Dhuhr, offsetUTC3)
	if err != nil {
		t.Fatal(err)
	}
	if p.Status != model.PeriodOngoing {
		t.Errorf("new period must be ongoing, got %s", p.Status)
	}

	if got := store.records["2026-03-10-isha"].Status; got != model.StatusExcused {
		t.Errorf("missed prayer inside the period must flip to excused, got %s", got)
	}
	if got := store.records["2026-03-10-fajr"].Status; got != model.StatusMissed {
		t.Errorf("prayer before the period start must stay missed, got %s", got)
	}
}

func TestStartExcusedPeriodRejectsSecondOngoing(t *testing.T) {
	store := newFakeStore()
	s, _ := newTestService(store, testNow)

	ctx := context.Background()
	if _, err := s.StartExcusedPeriod(ctx, 1, "2026-03-10", model.Fajr, offsetUTC3); err != nil {
		t.Fatal(err)
	}
	_, err := s.StartExcusedPeriod(ctx, 1, "2026-03-11", model.Fajr, offsetUTC3)
	if !errors.Is(err, ErrOngoingPeriod) {
		t.Errorf("want ErrOngoingPeriod, got %v", err)
	}
}

func TestEndExcusedPeriod(t *testing.T) {
	store := newFakeStore()
	s, _ := newTestService(store, testNow)
	ctx := context.Background()

	p, err := s.StartExcusedPeriod(ctx, 1, "2026-03-10", model.Dhuhr, offsetUTC3)
	if err != nil {
		t.Fatal(err)
	}

	// end before start is rejected, including the same-day prayer order case
	err = s.EndExcusedPeriod(ctx, 1, p.ID, "2026-03-10", model.Fajr, offsetUTC3)
	if !errors.Is(err, ErrInvalidRange) {
		t.Errorf("want ErrInvalidRange, got %v", err)
	}

	if err := s.EndExcusedPeriod(ctx, 1, p.ID, "2026-03-11", model.Asr, offsetUTC3); err != nil {
		t.Fatal(err)
	}
	got, _ := store.GetExcusedPeriod(p.ID)
	if got.Status != model.PeriodCompleted || got.EndDate == nil || *got.EndDate != "2026-03-11" {
		t.Errorf("period must be completed with its bound, got %+v", got)
	}

	// someone else's period is invisible
	err = s.EndExcusedPeriod(ctx, 2, p.ID, "2026-03-12", model.Asr, offsetUTC3)
	if !errors.Is(err, db.ErrPeriodNotFound) {
		t.Errorf("want ErrPeriodNotFound for a foreign period, got %v", err)
	}
}

func TestHistoryServesSnapshotAfterRestart(t *testing.T) {
	ctx := context.Background()
	snaps := newFakeSnapshots()
	store := newFakeStore()
	seed(store, record(0, "2026-03-11", model.Maghrib, "18:00", model.StatusNone))

	s1, _ := newTestService(store, testNow)
	s1.cache.snapshots = snaps
	if _, err := s1.History(ctx, 1, offsetUTC3); err != nil {
		t.Fatal(err)
	}
	fetches := store.openLists

	// fresh process, stale-but-usable snapshot, store unreachable
	later := testNow.Add(cacheFreshFor + time.Minute)
	s2, _ := newTestService(store, later)
	s2.cache.snapshots = snaps
	store.listErrs = 99
	s2.cache.allowFetch(1, later) // burn the fetch slot so no refresh runs

	res, err := s2.History(ctx, 1, offsetUTC3)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.MissedByDate) != 1 {
		t.Error("snapshot read must serve the persisted triple")
	}
	if store.openLists != fetches {
		t.Errorf("snapshot hit must not touch the store, got %d extra fetches", store.openLists-fetches)
	}
}

func TestHistoryFallsBackToLastSnapshotOnStoreFailure(t *testing.T) {
	ctx := context.Background()
	snaps := newFakeSnapshots()
	store := newFakeStore()
	seed(store, record(0, "2026-03-11", model.Maghrib, "18:00", model.StatusNone))

	s1, _ := newTestService(store, testNow)
	s1.cache.snapshots = snaps
	if _, err := s1.History(ctx, 1, offsetUTC3); err != nil {
		t.Fatal(err)
	}

	// snapshot too old to hydrate, store failing every retry
	later := testNow.Add(2*cacheFreshFor + time.Minute)
	s2, _ := newTestService(store, later)
	s2.cache.snapshots = snaps
	store.listErrs = fetchAttempts

	res, err := s2.History(ctx, 1, offsetUTC3)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.MissedByDate) != 1 {
		t.Error("store failure must degrade to the last persisted snapshot")
	}
}

func TestHistoryFallsBackToStaleMemoryWhenSnapshotGone(t *testing.T) {
	ctx := context.Background()
	snaps := newFakeSnapshots()
	store := newFakeStore()
	seed(store, record(0, "2026-03-11", model.Maghrib, "18:00", model.StatusNone))

	clk := &fixedClock{now: testNow}
	s, _ := newTestService(store, testNow)
	s.clock = clk
	s.cache.snapshots = snaps
	if _, err := s.History(ctx, 1, offsetUTC3); err != nil {
		t.Fatal(err)
	}

	// Redis flushed, store down, memory entry stale
	snaps.drop(ctx, 1)
	clk.now = testNow.Add(cacheFreshFor + time.Minute)
	store.listErrs = fetchAttempts

	res, err := s.History(ctx, 1, offsetUTC3)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.MissedByDate) != 1 {
		t.Error("with both durable tiers gone, stale memory must beat an empty triple")
	}
}

func TestChangeListenerFiresOnceForSameContent(t *testing.T) {
	store := newFakeStore()
	seed(store, record(0, "2026-03-11", model.Maghrib, "18:00", model.StatusNone))
	s, _ := newTestService(store, testNow)

	var notified int
	s.SetChangeListener(func(userID int, res HistoryResult) { notified++ })

	ctx := context.Background()
	if _, err := s.refresh(ctx, 1, offsetUTC3); err != nil {
		t.Fatal(err)
	}
	if _, err := s.refresh(ctx, 1, offsetUTC3); err != nil {
		t.Fatal(err)
	}

	if notified != 1 {
		t.Errorf("identical content must notify once, got %d", notified)
	}
}

func TestEnsureWindowCreatesRollingWindow(t *testing.T) {
	store := newFakeStore()
	s, provider := newTestService(store, testNow)

	if err := s.EnsureWindow(context.Background(), 1, offsetUTC3); err != nil {
		t.Fatal(err)
	}
	if provider.calls != windowDays {
		t.Errorf("one lookup per day, got %d", provider.calls)
	}
	if len(store.records) != windowDays*len(model.PrayerOrder) {
		t.Errorf("want %d records, got %d", windowDays*len(model.PrayerOrder), len(store.records))
	}
}
