package db

import (
	"github.com/rs/zerolog/log"

	"github.com/minaret-app/minaret/internal/model"
)

func (s *pgStore) CreateQuranSession(q model.QuranSession) error {
	const stmt = `
	INSERT INTO quran_sessions (id, user_id, session_date, minutes, surah, juz_done, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, now());`
	_, err := s.db.Exec(stmt, q.ID, q.UserID, q.SessionDate, q.Minutes, q.Surah, q.JuzDone)
	if err != nil {
		log.Error().Err(err).Int("user_id", q.UserID).Msg("CreateQuranSession failed")
	}
	return err
}

func (s *pgStore) ListQuranSessions(userID int) ([]model.QuranSession, error) {
	var out []model.QuranSession
	const q = `
	SELECT id, user_id, session_date, minutes, surah, juz_done, created_at
	  FROM quran_sessions
	 WHERE user_id = $1
	 ORDER BY session_date DESC, created_at DESC;`
	if err := s.db.Select(&out, q, userID); err != nil {
		log.Error().Err(err).Int("user_id", userID).Msg("ListQuranSessions failed")
		return nil, err
	}
	return out, nil
}

func (s *pgStore) ReadingMinutesForDate(userID int, date string) (int, error) {
	var minutes int
	const q = `
	SELECT COALESCE(SUM(minutes), 0)
	  FROM quran_sessions
	 WHERE user_id = $1 AND session_date = $2;`
	if err := s.db.Get(&minutes, q, userID, date); err != nil {
		log.Error().Err(err).Int("user_id", userID).Msg("ReadingMinutesForDate failed")
		return 0, err
	}
	return minutes, nil
}

func (s *pgStore) CountJuzDone(userID int) (int, error) {
	var count int
	const q = `
	SELECT COUNT(DISTINCT juz_done)
	  FROM quran_sessions
	 WHERE user_id = $1 AND juz_done IS NOT NULL;`
	if err := s.db.Get(&count, q, userID); err != nil {
		log.Error().Err(err).Int("user_id", userID).Msg("CountJuzDone failed")
		return 0, err
	}
	return count, nil
}
