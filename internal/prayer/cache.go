package prayer

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/minaret-app/minaret/internal/model"
	redisclient "github.com/minaret-app/minaret/internal/redis"
)

// DateGroup collects one day's prayers inside the history view.
type DateGroup struct {
	IsToday bool                 `json:"is_today"`
	Prayers []model.PrayerRecord `json:"prayers"`
}

// HistoryResult is the triple served to the UI and the progress aggregator.
type HistoryResult struct {
	History       []model.PrayerRecord `json:"history"`
	PendingByDate map[string]DateGroup `json:"pending_by_date"`
	MissedByDate  map[string]DateGroup `json:"missed_by_date"`
}

func emptyHistoryResult() HistoryResult {
	return HistoryResult{
		History:       []model.PrayerRecord{},
		PendingByDate: map[string]DateGroup{},
		MissedByDate:  map[string]DateGroup{},
	}
}

const (
	// freshness window for the in-memory tier; the Redis snapshot tier is
	// trusted for twice as long (stale-while-revalidate)
	cacheFreshFor = 5 * time.Minute

	// burst absorption for UI-triggered calls (app resume + visibility
	// change firing together)
	throttleInterval = 5 * time.Second

	snapshotKeyFormat = "prayerhistory:%d"
)

type cacheEntry struct {
	result    HistoryResult
	fetchedAt time.Time
	hash      uint64
}

// snapshot is the persisted form of a cache entry.
type snapshot struct {
	Result    HistoryResult `json:"result"`
	FetchedAt time.Time     `json:"fetched_at"`
}

// snapshotStore is the persistence seam for the second cache tier.
type snapshotStore interface {
	write(ctx context.Context, userID int, payload []byte, ttl time.Duration)
	read(ctx context.Context, userID int) (string, bool)
	drop(ctx context.Context, userID int)
}

// redisSnapshots keeps snapshots in Redis, best-effort like every other
// Redis use in this codebase.
type redisSnapshots struct{}

func (redisSnapshots) write(ctx context.Context, userID int, payload []byte, ttl time.Duration) {
	redisclient.Set(ctx, fmt.Sprintf(snapshotKeyFormat, userID), payload, ttl)
}

func (redisSnapshots) read(ctx context.Context, userID int) (string, bool) {
	return redisclient.Get(ctx, fmt.Sprintf(snapshotKeyFormat, userID))
}

func (redisSnapshots) drop(ctx context.Context, userID int) {
	redisclient.Del(ctx, fmt.Sprintf(snapshotKeyFormat, userID))
}

// historyCache is the two-tier cache in front of the record store: a
// process-memory entry per user plus a Redis snapshot surviving restarts.
// One instance is owned by the Service; all mutable state lives here behind
// a mutex, never in package globals.
type historyCache struct {
	mu          sync.Mutex
	entries     map[int]cacheEntry
	lastFetch   map[int]time.Time
	lastRefresh map[int]time.Time

	snapshots snapshotStore
}

func newHistoryCache() *historyCache {
	return &historyCache{
		entries:     make(map[int]cacheEntry),
		lastFetch:   make(map[int]time.Time),
		lastRefresh: make(map[int]time.Time),
		snapshots:   redisSnapshots{},
	}
}

// get returns the in-memory entry and whether it is still fresh.
func (c *historyCache) get(userID int, now time.Time) (cacheEntry, bool, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[userID]
	if !ok {
		return cacheEntry{}, false, false
	}
	return e, true, now.Sub(e.fetchedAt) < cacheFreshFor
}

// put atomically replaces a user's cached triple and persists the snapshot.
// Returns the content hash and whether it differs from the previous entry
// (callers suppress downstream updates on an unchanged hash).
func (c *historyCache) put(ctx context.Context, userID int, res HistoryResult, now time.Time) (uint64, bool) {
	h := contentHash(res)

	c.mu.Lock()
	prev, had := c.entries[userID]
	c.entries[userID] = cacheEntry{result: res, fetchedAt: now, hash: h}
	c.mu.Unlock()

	if payload, err := json.Marshal(snapshot{Result: res, FetchedAt: now}); err == nil {
		c.snapshots.write(ctx, userID, payload, 2*cacheFreshFor)
	} else {
		log.Error().Err(err).Int("user_id", userID).Msg("failed to marshal history snapshot")
	}

	return h, !had || prev.hash != h
}

// hydrate loads the persisted snapshot, if one exists and is younger than
// twice the freshness window, into the memory tier.
func (c *historyCache) hydrate(ctx context.Context, userID int, now time.Time) (cacheEntry, bool) {
	raw, ok := c.snapshots.read(ctx, userID)
	if !ok {
		return cacheEntry{}, false
	}

	var snap snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		log.Error().Err(err).Int("user_id", userID).Msg("corrupt history snapshot, dropping")
		c.snapshots.drop(ctx, userID)
		return cacheEntry{}, false
	}
	if now.Sub(snap.FetchedAt) >= 2*cacheFreshFor {
		return cacheEntry{}, false
	}

	e := cacheEntry{result: snap.Result, fetchedAt: snap.FetchedAt, hash: contentHash(snap.Result)}
	c.mu.Lock()
	c.entries[userID] = e
	c.mu.Unlock()
	return e, true
}

// lastGood returns the persisted snapshot regardless of age: the final
// fallback when the record store is unreachable.
func (c *historyCache) lastGood(ctx context.Context, userID int) (HistoryResult, bool) {
	raw, ok := c.snapshots.read(ctx, userID)
	if !ok {
		return HistoryResult{}, false
	}
	var snap snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return HistoryResult{}, false
	}
	return snap.Result, true
}

// invalidate clears both tiers; the next read refetches.
func (c *historyCache) invalidate(ctx context.Context, userID int) {
	c.mu.Lock()
	delete(c.entries, userID)
	delete(c.lastFetch, userID)
	delete(c.lastRefresh, userID)
	c.mu.Unlock()

	c.snapshots.drop(ctx, userID)
}

// allowFetch rate-limits the remote read path per user.
func (c *historyCache) allowFetch(userID int, now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if last, ok := c.lastFetch[userID]; ok && now.Sub(last) < throttleInterval {
		return false
	}
	c.lastFetch[userID] = now
	return true
}

// allowRefresh rate-limits status recomputation per user.
func (c *historyCache) allowRefresh(userID int, now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if last, ok := c.lastRefresh[userID]; ok && now.Sub(last) < throttleInterval {
		return false
	}
	c.lastRefresh[userID] = now
	return true
}

// contentHash is a stable fingerprint over (date, prayer, status) triples.
// Two fetches returning identical content hash identically regardless of
// record order, so redundant downstream updates can be suppressed.
func contentHash(res HistoryResult) uint64 {
	keys := make([]string, 0, len(res.History))
	for _, r := range res.History {
		keys = append(keys, r.Date+"|"+string(r.PrayerName)+"|"+string(r.Status))
	}
	sort.Strings(keys)

	h := fnv.New64a()
	for _, k := range keys {
		h.Write([]byte(k))
		h.Write([]byte{0})
	}
	return h.Sum64()
}
