package badge

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/minaret-app/minaret/internal/db"
	"github.com/minaret-app/minaret/internal/model"
)

// how far back streak computation looks; longer streaks saturate the
// highest badge level anyway
const streakHorizonDays = 90

// Service is the progress aggregator: it recomputes track counters from the
// underlying histories and awards badges whose requirement is met.
type Service struct {
	store db.Store

	// onAward is notified for each newly earned badge.
	onAward func(userID int, b model.Badge)
}

func NewService(store db.Store) *Service {
	return &Service{store: store}
}

// SetAwardListener registers the consumer of award events (the reminder
// publisher). Call before serving traffic.
func (s *Service) SetAwardListener(fn func(userID int, b model.Badge)) {
	s.onAward = fn
}

// UpdatePrayerProgress recomputes the prayer streak tracks for a user.
// Called whenever reconciled history changes.
func (s *Service) UpdatePrayerProgress(userID int, today string) {
	day, err := time.Parse("2006-01-02", today)
	if err != nil {
		log.Error().Str("date", today).Msg("UpdatePrayerProgress: bad date")
		return
	}
	from := day.AddDate(0, 0, -streakHorizonDays).Format("2006-01-02")

	records, err := s.store.ListPrayerRecords(userID, from, today)
	if err != nil {
		log.Error().Err(err).Int("user_id", userID).Msg("UpdatePrayerProgress: list records failed")
		return
	}

	s.setProgress(userID, model.TrackPrayerStreak, PrayerStreak(records, today))
	s.setProgress(userID, model.TrackOnTimeFajr, FajrStreak(records, today))
}

// UpdateQuranProgress recomputes the reading tracks after a session is logged.
func (s *Service) UpdateQuranProgress(userID int, today string) {
	minutes, err := s.store.ReadingMinutesForDate(userID, today)
	if err == nil {
		s.setProgress(userID, model.TrackDailyReading, minutes)
	}
	juz, err := s.store.CountJuzDone(userID)
	if err == nil {
		s.setProgress(userID, model.TrackJuzCompletion, juz)
	}
}

// UpdateJournalProgress recomputes the journaling tracks after an entry is
// written.
func (s *Service) UpdateJournalProgress(userID int, today string) {
	entries, err := s.store.ListJournalEntries(userID)
	if err != nil {
		log.Error().Err(err).Int("user_id", userID).Msg("UpdateJournalProgress: list entries failed")
		return
	}

	dates := make([]string, 0, len(entries))
	for _, e := range entries {
		dates = append(dates, e.EntryDate)
	}
	s.setProgress(userID, model.TrackJournalEntries, len(entries))
	s.setProgress(userID, model.TrackJournalStreak, JournalStreak(dates, today))
}

// setProgress persists a counter and awards any badge it now satisfies.
func (s *Service) setProgress(userID int, track model.BadgeTrack, value int) {
	if err := s.store.UpsertBadgeProgress(userID, track, value); err != nil {
		return
	}

	for _, b := range ByTrack(track) {
		if value < b.Requirement {
			continue
		}
		earned, err := s.store.AwardBadge(userID, b.ID)
		if err != nil || !earned {
			continue
		}
		log.Info().Int("user_id", userID).Str("badge_id", b.ID).Msg("badge earned")
		if s.onAward != nil {
			s.onAward(userID, b)
		}
	}
}

// Progress returns the user's counters and earned badges for the API.
func (s *Service) Progress(userID int) ([]model.BadgeProgress, []model.EarnedBadge, error) {
	progress, err := s.store.ListBadgeProgress(userID)
	if err != nil {
		return nil, nil, err
	}
	earned, err := s.store.ListEarnedBadges(userID)
	if err != nil {
		return nil, nil, err
	}
	return progress, earned, nil
}
