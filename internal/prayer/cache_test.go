package prayer

import (
	"context"
	"testing"
	"time"

	"github.com/minaret-app/minaret/internal/model"
)

// fakeSnapshots is a map-backed snapshotStore standing in for Redis.
type fakeSnapshots struct {
	data map[int]string
}

func newFakeSnapshots() *fakeSnapshots {
	return &fakeSnapshots{data: map[int]string{}}
}

func (f *fakeSnapshots) write(ctx context.Context, userID int, payload []byte, ttl time.Duration) {
	f.data[userID] = string(payload)
}

func (f *fakeSnapshots) read(ctx context.Context, userID int) (string, bool) {
	s, ok := f.data[userID]
	return s, ok
}

func (f *fakeSnapshots) drop(ctx context.Context, userID int) {
	delete(f.data, userID)
}

func historyOf(records ...model.PrayerRecord) HistoryResult {
	res := emptyHistoryResult()
	res.History = records
	return res
}

func TestContentHashIgnoresOrder(t *testing.T) {
	a := record(1, "2026-03-12", model.Fajr, "05:10", model.StatusPending)
	b := record(2, "2026-03-11", model.Isha, "20:30", model.StatusMissed)

	if contentHash(historyOf(a, b)) != contentHash(historyOf(b, a)) {
		t.Error("hash must not depend on record order")
	}
}

func TestContentHashSeesStatusChange(t *testing.T) {
	a := record(1, "2026-03-12", model.Fajr, "05:10", model.StatusPending)
	before := contentHash(historyOf(a))

	a.Status = model.StatusOnTime
	if contentHash(historyOf(a)) == before {
		t.Error("hash must change when a status changes")
	}
}

func TestCachePutReportsChange(t *testing.T) {
	ctx := context.Background()
	c := newHistoryCache()
	now := time.Now()

	res := historyOf(record(1, "2026-03-12", model.Fajr, "05:10", model.StatusPending))
	if _, changed := c.put(ctx, 1, res, now); !changed {
		t.Error("first put is always a change")
	}
	if _, changed := c.put(ctx, 1, res, now.Add(time.Second)); changed {
		t.Error("identical content must not report a change")
	}

	res.History[0].Status = model.StatusOnTime
	if _, changed := c.put(ctx, 1, res, now.Add(2*time.Second)); !changed {
		t.Error("status flip must report a change")
	}
}

func TestCacheFreshness(t *testing.T) {
	ctx := context.Background()
	c := newHistoryCache()
	now := time.Now()

	c.put(ctx, 1, emptyHistoryResult(), now)

	if _, ok, fresh := c.get(1, now.Add(cacheFreshFor-time.Second)); !ok || !fresh {
		t.Error("entry inside the freshness window must be fresh")
	}
	if _, ok, fresh := c.get(1, now.Add(cacheFreshFor+time.Second)); !ok || fresh {
		t.Error("entry outside the freshness window must be stale but present")
	}
	if _, ok, _ := c.get(2, now); ok {
		t.Error("unknown user must miss")
	}
}

func TestCacheThrottles(t *testing.T) {
	c := newHistoryCache()
	now := time.Now()

	if !c.allowFetch(1, now) {
		t.Fatal("first fetch must pass")
	}
	if c.allowFetch(1, now.Add(throttleInterval-time.Second)) {
		t.Error("fetch inside the throttle interval must be suppressed")
	}
	if !c.allowFetch(1, now.Add(throttleInterval+time.Second)) {
		t.Error("fetch after the throttle interval must pass")
	}

	// fetch and refresh throttles are independent
	if !c.allowRefresh(1, now) {
		t.Error("refresh throttle must not be tripped by fetches")
	}
	if c.allowRefresh(1, now.Add(time.Second)) {
		t.Error("refresh inside the throttle interval must be suppressed")
	}

	// per user, not global
	if !c.allowFetch(2, now) {
		t.Error("another user's fetch must pass")
	}
}

func TestCacheInvalidate(t *testing.T) {
	ctx := context.Background()
	c := newHistoryCache()
	now := time.Now()

	c.put(ctx, 1, emptyHistoryResult(), now)
	c.allowFetch(1, now)
	c.invalidate(ctx, 1)

	if _, ok, _ := c.get(1, now); ok {
		t.Error("invalidate must drop the memory entry")
	}
	if !c.allowFetch(1, now) {
		t.Error("invalidate must reset the fetch throttle")
	}
}

func TestCacheHydratesFromSnapshot(t *testing.T) {
	ctx := context.Background()
	snaps := newFakeSnapshots()
	now := time.Now()
	res := historyOf(record(1, "2026-03-12", model.Fajr, "05:10", model.StatusPending))

	writer := newHistoryCache()
	writer.snapshots = snaps
	wantHash, _ := writer.put(ctx, 1, res, now)

	// a second cache sharing the snapshot store models a process restart
	reader := newHistoryCache()
	reader.snapshots = snaps

	e, ok := reader.hydrate(ctx, 1, now.Add(2*cacheFreshFor-time.Second))
	if !ok {
		t.Fatal("snapshot inside the stale window must hydrate")
	}
	if e.hash != wantHash {
		t.Error("hydrated entry must hash identically to the persisted one")
	}
	if _, ok, _ := reader.get(1, now); !ok {
		t.Error("hydrate must populate the memory tier")
	}
}

func TestCacheHydrateRejectsExpiredSnapshot(t *testing.T) {
	ctx := context.Background()
	snaps := newFakeSnapshots()
	now := time.Now()

	writer := newHistoryCache()
	writer.snapshots = snaps
	writer.put(ctx, 1, emptyHistoryResult(), now)

	c := newHistoryCache()
	c.snapshots = snaps
	if _, ok := c.hydrate(ctx, 1, now.Add(2*cacheFreshFor)); ok {
		t.Error("snapshot at twice the freshness window must not hydrate")
	}
	// too old for the read path, still good enough as a last resort
	if _, ok := c.lastGood(ctx, 1); !ok {
		t.Error("lastGood must serve the snapshot regardless of age")
	}
}

func TestCacheHydrateDropsCorruptSnapshot(t *testing.T) {
	ctx := context.Background()
	snaps := newFakeSnapshots()
	snaps.data[1] = "{not json"

	c := newHistoryCache()
	c.snapshots = snaps

	if _, ok := c.hydrate(ctx, 1, time.Now()); ok {
		t.Error("corrupt snapshot must not hydrate")
	}
	if _, ok := snaps.data[1]; ok {
		t.Error("corrupt snapshot must be dropped from the store")
	}
	if _, ok := c.lastGood(ctx, 1); ok {
		t.Error("lastGood must not resurrect a dropped snapshot")
	}
}

func TestCacheInvalidateDropsSnapshot(t *testing.T) {
	ctx := context.Background()
	snaps := newFakeSnapshots()

	c := newHistoryCache()
	c.snapshots = snaps
	c.put(ctx, 1, emptyHistoryResult(), time.Now())
	c.invalidate(ctx, 1)

	if _, ok := c.lastGood(ctx, 1); ok {
		t.Error("invalidate must clear the snapshot tier too")
	}
}
