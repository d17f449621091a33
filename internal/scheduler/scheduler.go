package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/minaret-app/minaret/internal/db"
	"github.com/minaret-app/minaret/internal/model"
	"github.com/minaret-app/minaret/internal/notify"
	"github.com/minaret-app/minaret/internal/prayer"
	redisclient "github.com/minaret-app/minaret/internal/redis"
)

const (
	// reminders fire when a prayer is due within this window
	reminderWindow = 15 * time.Minute

	// dedupe marker lifetime; one reminder per (user, date, prayer)
	reminderMarkerTTL = 24 * time.Hour

	jobTimeout = 60 * time.Second
)

// Scheduler drives the background jobs: periodic status reconciliation,
// daily record initialization and prayer reminders.
type Scheduler struct {
	cronEngine *cron.Cron
	prayers    *prayer.Service
	store      db.Store
	publisher  *notify.Publisher // nil disables reminders

	specReconcile string // e.g. "*/5 * * * *"
	specDailyInit string // e.g. "0 3 * * *"
	specReminder  string // e.g. "* * * * *"
}

func NewScheduler(
	prayers *prayer.Service,
	store db.Store,
	publisher *notify.Publisher,
	specReconcile string,
	specDailyInit string,
	specReminder string,
) *Scheduler {
	return &Scheduler{
		cronEngine:    cron.New(cron.WithLocation(time.Local)),
		prayers:       prayers,
		store:         store,
		publisher:     publisher,
		specReconcile: specReconcile,
		specDailyInit: specDailyInit,
		specReminder:  specReminder,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cronEngine.AddFunc(s.specReconcile, s.reconcileTick); err != nil {
		return fmt.Errorf("add reconcile job: %w", err)
	}
	if _, err := s.cronEngine.AddFunc(s.specDailyInit, s.dailyInit); err != nil {
		return fmt.Errorf("add daily init job: %w", err)
	}
	if s.publisher != nil {
		if _, err := s.cronEngine.AddFunc(s.specReminder, s.reminderCheck); err != nil {
			return fmt.Errorf("add reminder job: %w", err)
		}
	}

	s.cronEngine.Start()
	log.Info().Msg("scheduler started")
	return nil
}

func (s *Scheduler) Stop() {
	ctx := s.cronEngine.Stop()
	<-ctx.Done()
	log.Info().Msg("scheduler stopped")
}

// reconcileTick finalizes overdue statuses for every user. Each user's
// presumed current UTC offset is the offset stored on their most recent
// record; a user with no records has nothing to reconcile.
func (s *Scheduler) reconcileTick() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	userIDs, err := s.store.ListUserIDs()
	if err != nil {
		log.Error().Err(err).Msg("reconcile tick: list users failed")
		return
	}

	for _, uid := range userIDs {
		offset, ok := s.presumedOffset(uid)
		if !ok {
			continue
		}
		if err := s.prayers.RecomputeStatuses(ctx, uid, offset); err != nil {
			log.Error().Err(err).Int("user_id", uid).Msg("reconcile tick failed for user")
		}
	}
}

// dailyInit lazily creates today's records for every located user.
func (s *Scheduler) dailyInit() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	userIDs, err := s.store.ListUserIDs()
	if err != nil {
		log.Error().Err(err).Msg("daily init: list users failed")
		return
	}

	for _, uid := range userIDs {
		offset, _ := s.presumedOffset(uid)
		err := s.prayers.EnsureToday(ctx, uid, offset)
		if errors.Is(err, prayer.ErrNoLocation) {
			continue
		}
		if err != nil {
			log.Error().Err(err).Int("user_id", uid).Msg("daily init failed for user")
		}
	}
}

// reminderCheck publishes a reminder for each prayer due within the window.
// A Redis marker keyed by (user, date, prayer) keeps reminders single-shot.
func (s *Scheduler) reminderCheck() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	userIDs, err := s.store.ListUserIDs()
	if err != nil {
		log.Error().Err(err).Msg("reminder check: list users failed")
		return
	}

	now := time.Now()
	for _, uid := range userIDs {
		offset, ok := s.presumedOffset(uid)
		if !ok {
			continue
		}
		today := prayer.LocalDate(now, offset)

		records, err := s.store.ListPrayerRecords(uid, today, today)
		if err != nil {
			continue
		}
		for _, r := range records {
			if r.Status != model.StatusUpcoming {
				continue
			}
			due, err := prayer.ScheduledAt(r)
			if err != nil {
				continue
			}
			until := due.Sub(now)
			if until <= 0 || until > reminderWindow {
				continue
			}

			marker := fmt.Sprintf("reminded:%d:%s:%s", uid, r.Date, r.PrayerName)
			if _, sent := redisclient.Get(ctx, marker); sent {
				continue
			}
			if err := s.publisher.PublishPrayerReminder(uid, r); err != nil {
				log.Error().Err(err).Int("user_id", uid).Str("prayer", string(r.PrayerName)).Msg("reminder publish failed")
				continue
			}
			redisclient.Set(ctx, marker, "1", reminderMarkerTTL)
		}
	}
}

// presumedOffset infers a user's current UTC offset from their most recent
// prayer record.
func (s *Scheduler) presumedOffset(userID int) (int, bool) {
	records, err := s.store.ListOpenPrayerRecords(userID)
	if err != nil || len(records) == 0 {
		return 0, false
	}
	latest := records[len(records)-1]
	return latest.TimezoneOffset, true
}
