package db

import (
	"github.com/rs/zerolog/log"

	"github.com/minaret-app/minaret/internal/model"
)

func (s *pgStore) UpsertBadgeProgress(userID int, track model.BadgeTrack, value int) error {
	const q = `
	INSERT INTO badge_progress (user_id, track, value, updated_at)
	VALUES ($1, $2, $3, now())
	ON CONFLICT (user_id, track)
	DO UPDATE SET value = EXCLUDED.value, updated_at = now();`
	_, err := s.db.Exec(q, userID, track, value)
	if err != nil {
		log.Error().Err(err).Int("user_id", userID).Str("track", string(track)).Msg("UpsertBadgeProgress failed")
	}
	return err
}

func (s *pgStore) ListBadgeProgress(userID int) ([]model.BadgeProgress, error) {
	var out []model.BadgeProgress
	const q = `
	SELECT user_id, track, value, updated_at
	  FROM badge_progress
	 WHERE user_id = $1;`
	if err := s.db.Select(&out, q, userID); err != nil {
		log.Error().Err(err).Int("user_id", userID).Msg("ListBadgeProgress failed")
		return nil, err
	}
	return out, nil
}

// AwardBadge records an earned badge. Returns true when the badge was newly
// awarded, false when the user already had it.
func (s *pgStore) AwardBadge(userID int, badgeID string) (bool, error) {
	res, err := s.db.Exec(`
	INSERT INTO earned_badges (user_id, badge_id, earned_at)
	VALUES ($1, $2, now())
	ON CONFLICT DO NOTHING;`, userID, badgeID)
	if err != nil {
		log.Error().Err(err).Int("user_id", userID).Str("badge_id", badgeID).Msg("AwardBadge failed")
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *pgStore) ListEarnedBadges(userID int) ([]model.EarnedBadge, error) {
	var out []model.EarnedBadge
	const q = `
	SELECT user_id, badge_id, earned_at
	  FROM earned_badges
	 WHERE user_id = $1
	 ORDER BY earned_at;`
	if err := s.db.Select(&out, q, userID); err != nil {
		log.Error().Err(err).Int("user_id", userID).Msg("ListEarnedBadges failed")
		return nil, err
	}
	return out, nil
}
