package prayer

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/minaret-app/minaret/internal/db"
	"github.com/minaret-app/minaret/internal/model"
	"github.com/minaret-app/minaret/internal/timetable"
)

var (
	// ErrNoLocation is returned when prayer records cannot be created
	// because the user has not shared a location yet.
	ErrNoLocation = errors.New("user has no location set")
	// ErrOngoingPeriod is returned when a second ongoing excused period
	// would be created.
	ErrOngoingPeriod = errors.New("an ongoing excused period already exists")
	// ErrInvalidRange is returned when an excused period would end before
	// it starts.
	ErrInvalidRange = errors.New("excused period end precedes its start")
	// ErrInvalidMark is returned when a status cannot be set by user action.
	ErrInvalidMark = errors.New("status cannot be set explicitly")
)

// Clock abstracts time.Now so reconciliation tests can pin the wall clock.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

const (
	// rolling pre-population window, matching the mobile clients
	windowDays = 30

	fetchAttempts     = 3
	fetchRetryBackoff = 250 * time.Millisecond
)

// Service owns the prayer history lifecycle: lazy record creation, cached
// reads, status reconciliation, explicit marks and excused periods. One
// instance exists per process; all of its mutable state lives in the cache
// it owns.
type Service struct {
	store     db.Store
	timetable timetable.Provider
	cache     *historyCache
	clock     Clock

	// onChange is notified after a refresh whose content hash differs from
	// the previous emission (the progress aggregator hook).
	onChange func(userID int, res HistoryResult)
}

func NewService(store db.Store, provider timetable.Provider) *Service {
	return &Service{
		store:     store,
		timetable: provider,
		cache:     newHistoryCache(),
		clock:     systemClock{},
	}
}

// SetChangeListener registers the consumer of reconciled history (badge
// progress aggregation). Call before serving traffic.
func (s *Service) SetChangeListener(fn func(userID int, res HistoryResult)) {
	s.onChange = fn
}

// History serves the {history, pendingByDate, missedByDate} triple.
//
// Read path: fresh memory entry → served as-is; younger-than-2x snapshot →
// served stale while a background refresh runs; otherwise a synchronous
// fetch with bounded retry, degrading to the last persisted snapshot and
// finally to an empty triple. A zero userID (logged out) short-circuits to
// an empty result: that is a steady state, not an error.
func (s *Service) History(ctx context.Context, userID int, tzOffset int) (HistoryResult, error) {
	if userID == 0 {
		return emptyHistoryResult(), nil
	}
	now := s.clock.Now()

	if e, ok, fresh := s.cache.get(userID, now); ok && fresh {
		return e.result, nil
	}

	if e, ok := s.cache.hydrate(ctx, userID, now); ok {
		if s.cache.allowFetch(userID, now) {
			go s.backgroundRefresh(userID, tzOffset)
		}
		return e.result, nil
	}

	if !s.cache.allowFetch(userID, now) {
		if e, ok, _ := s.cache.get(userID, now); ok {
			return e.result, nil
		}
		return emptyHistoryResult(), nil
	}

	res, err := s.refresh(ctx, userID, tzOffset)
	if err != nil {
		log.Error().Err(err).Int("user_id", userID).Msg("history refresh failed, serving fallback")
		if last, ok := s.cache.lastGood(ctx, userID); ok {
			return last, nil
		}
		// with the snapshot tier gone too, any-age memory beats empty
		if e, ok, _ := s.cache.get(userID, now); ok {
			return e.result, nil
		}
		return emptyHistoryResult(), nil
	}
	return res, nil
}

// RecomputeStatuses is the periodic reconciliation entry point, throttled
// per user so bursty callers collapse into one pass.
func (s *Service) RecomputeStatuses(ctx context.Context, userID int, tzOffset int) error {
	if userID == 0 {
		return nil
	}
	if !s.cache.allowRefresh(userID, s.clock.Now()) {
		return nil
	}
	_, err := s.refresh(ctx, userID, tzOffset)
	return err
}

// SaveStatus applies an explicit user mark. It always wins over automatic
// reconciliation; the record is created lazily if today's set does not
// exist yet. Any write invalidates the cache.
func (s *Service) SaveStatus(ctx context.Context, userID int, date string, name model.PrayerName, status model.PrayerStatus, tzOffset int) error {
	if userID == 0 {
		return nil
	}
	switch status {
	case model.StatusOnTime, model.StatusLate, model.StatusExcused, model.StatusMissed:
	case model.StatusNone, model.StatusUpcoming, model.StatusPending:
		return ErrInvalidMark
	default:
		return ErrInvalidMark
	}

	err := s.store.SetPrayerStatus(userID, date, name, status)
	if errors.Is(err, db.ErrRecordNotFound) {
		if err := s.ensureDate(ctx, userID, date, tzOffset); err != nil {
			return err
		}
		err = s.store.SetPrayerStatus(userID, date, name, status)
	}
	if err != nil {
		return err
	}

	s.cache.invalidate(ctx, userID)
	return nil
}

// EnsureToday lazily creates today's five records.
func (s *Service) EnsureToday(ctx context.Context, userID int, tzOffset int) error {
	if userID == 0 {
		return nil
	}
	return s.ensureDate(ctx, userID, LocalDate(s.clock.Now(), tzOffset), tzOffset)
}

// EnsureWindow pre-populates records for the rolling window starting today.
func (s *Service) EnsureWindow(ctx context.Context, userID int, tzOffset int) error {
	if userID == 0 {
		return nil
	}
	zone := time.FixedZone("local", tzOffset*60)
	start := s.clock.Now().In(zone)
	for i := 0; i < windowDays; i++ {
		date := start.AddDate(0, 0, i).Format("2006-01-02")
		if err := s.ensureDate(ctx, userID, date, tzOffset); err != nil {
			return err
		}
	}
	return nil
}

// StartExcusedPeriod opens an open-ended excused period and immediately
// re-reconciles history so already-missed prayers inside it flip to
// excused. Confirmed statuses are untouched. At most one ongoing period
// may exist per user.
func (s *Service) StartExcusedPeriod(ctx context.Context, userID int, startDate string, startPrayer model.PrayerName, tzOffset int) (*model.ExcusedPeriod, error) {
	if userID == 0 {
		return nil, nil
	}

	ongoing, err := s.store.GetOngoingExcusedPeriod(userID)
	if err != nil {
		return nil, err
	}
	if ongoing != nil {
		return nil, ErrOngoingPeriod
	}

	p := model.ExcusedPeriod{
		ID:          uuid.New(),
		UserID:      userID,
		StartDate:   startDate,
		StartPrayer: startPrayer,
		Status:      model.PeriodOngoing,
	}
	if err := s.store.CreateExcusedPeriod(p); err != nil {
		return nil, err
	}

	s.cache.invalidate(ctx, userID)
	if _, err := s.refresh(ctx, userID, tzOffset); err != nil {
		// period exists; the flip happens on the next reconciliation tick
		log.Error().Err(err).Int("user_id", userID).Msg("post-start reconciliation failed")
	}
	return &p, nil
}

// EndExcusedPeriod closes an ongoing period with a partial-day-aware bound.
func (s *Service) EndExcusedPeriod(ctx context.Context, userID int, periodID uuid.UUID, endDate string, endPrayer model.PrayerName, tzOffset int) error {
	if userID == 0 {
		return nil
	}

	p, err := s.store.GetExcusedPeriod(periodID)
	if err != nil {
		return err
	}
	if p.UserID != userID {
		return db.ErrPeriodNotFound
	}
	if endDate < p.StartDate || (endDate == p.StartDate && endPrayer.Index() < p.StartPrayer.Index()) {
		return ErrInvalidRange
	}

	if err := s.store.CompleteExcusedPeriod(periodID, endDate, endPrayer); err != nil {
		return err
	}

	s.cache.invalidate(ctx, userID)
	if _, err := s.refresh(ctx, userID, tzOffset); err != nil {
		log.Error().Err(err).Int("user_id", userID).Msg("post-end reconciliation failed")
	}
	return nil
}

// ExcusedPeriods lists the user's excuse timeline.
func (s *Service) ExcusedPeriods(ctx context.Context, userID int) ([]model.ExcusedPeriod, error) {
	if userID == 0 {
		return nil, nil
	}
	return s.store.ListExcusedPeriods(userID)
}

// InvalidateCache forces the next read to bypass both cache tiers.
func (s *Service) InvalidateCache(ctx context.Context, userID int) {
	s.cache.invalidate(ctx, userID)
}

// refresh is the fetch-reconcile-commit cycle. The reconciliation batch is
// written to the store first; the cache only commits after that write
// succeeds, so a failed batch leaves no partially-applied local state.
func (s *Service) refresh(ctx context.Context, userID int, tzOffset int) (HistoryResult, error) {
	now := s.clock.Now()

	records, err := s.loadOpenRecords(ctx, userID)
	if err != nil {
		return HistoryResult{}, err
	}
	periods, err := s.store.ListExcusedPeriods(userID)
	if err != nil {
		return HistoryResult{}, err
	}

	changes := Reconcile(now, tzOffset, records, periods)
	if len(changes) > 0 {
		updates := make([]db.StatusUpdate, 0, len(changes))
		for _, ch := range changes {
			updates = append(updates, db.StatusUpdate{RecordID: ch.Record.ID, Status: ch.NewStatus})
		}
		if err := s.store.ApplyStatusUpdates(updates); err != nil {
			return HistoryResult{}, err
		}

		byID := make(map[int]model.PrayerStatus, len(changes))
		for _, ch := range changes {
			byID[ch.Record.ID] = ch.NewStatus
		}
		for i := range records {
			if st, ok := byID[records[i].ID]; ok {
				records[i].Status = st
			}
		}
	}

	res := buildResult(records, now, tzOffset)
	if _, changed := s.cache.put(ctx, userID, res, now); changed && s.onChange != nil {
		s.onChange(userID, res)
	}
	return res, nil
}

func (s *Service) backgroundRefresh(userID int, tzOffset int) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if _, err := s.refresh(ctx, userID, tzOffset); err != nil {
		log.Error().Err(err).Int("user_id", userID).Msg("background history refresh failed")
	}
}

func (s *Service) loadOpenRecords(ctx context.Context, userID int) ([]model.PrayerRecord, error) {
	var lastErr error
	backoff := fetchRetryBackoff
	for attempt := 1; attempt <= fetchAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			backoff *= 2
		}
		records, err := s.store.ListOpenPrayerRecords(userID)
		if err == nil {
			return records, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// ensureDate creates the five records for one date if they do not exist.
// Requires the user to have a location for the time-table lookup.
func (s *Service) ensureDate(ctx context.Context, userID int, date string, tzOffset int) error {
	user, err := s.store.GetUserByID(userID)
	if err != nil {
		return err
	}
	if !user.HasLocation() {
		return ErrNoLocation
	}

	zone := time.FixedZone("local", tzOffset*60)
	day, err := time.ParseInLocation("2006-01-02", date, zone)
	if err != nil {
		return err
	}

	timings, err := s.timetable.GetTimings(ctx, *user.Latitude, *user.Longitude, day)
	if err != nil {
		return err
	}

	records := make([]model.PrayerRecord, 0, len(model.PrayerOrder))
	for _, name := range model.PrayerOrder {
		records = append(records, model.PrayerRecord{
			UserID:         userID,
			Date:           date,
			PrayerName:     name,
			ScheduledTime:  timings[name],
			TimezoneOffset: tzOffset,
			Status:         model.StatusUpcoming,
		})
	}
	return s.store.CreatePrayerRecords(records)
}

// buildResult groups reconciled records into the history triple. Pending
// groups sort chronologically, missed groups reverse-chronologically.
func buildResult(records []model.PrayerRecord, now time.Time, tzOffset int) HistoryResult {
	res := emptyHistoryResult()
	today := LocalDate(now, tzOffset)

	for _, r := range records {
		switch r.Status {
		case model.StatusPending:
			if now.Before(scheduledInstant(r, now)) {
				continue
			}
			res.History = append(res.History, r)
			g := res.PendingByDate[r.Date]
			g.IsToday = r.Date == today
			g.Prayers = append(g.Prayers, r)
			res.PendingByDate[r.Date] = g
		case model.StatusMissed:
			res.History = append(res.History, r)
			g := res.MissedByDate[r.Date]
			g.Prayers = append(g.Prayers, r)
			res.MissedByDate[r.Date] = g
		case model.StatusNone, model.StatusUpcoming, model.StatusOnTime, model.StatusLate, model.StatusExcused:
			// not part of the pending/missed view
		}
	}

	for date, g := range res.PendingByDate {
		sort.Slice(g.Prayers, func(i, j int) bool {
			return g.Prayers[i].ScheduledTime < g.Prayers[j].ScheduledTime
		})
		res.PendingByDate[date] = g
	}
	for date, g := range res.MissedByDate {
		sort.Slice(g.Prayers, func(i, j int) bool {
			return g.Prayers[i].ScheduledTime > g.Prayers[j].ScheduledTime
		})
		res.MissedByDate[date] = g
	}
	return res
}
