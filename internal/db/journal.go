package db

import (
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/minaret-app/minaret/internal/model"
)

var ErrEntryNotFound = errors.New("journal entry not found")

func (s *pgStore) CreateJournalEntry(e model.JournalEntry) error {
	const q = `
	INSERT INTO journal_entries
	  (id, user_id, entry_date, title, body, mood, photo_url, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now());`
	_, err := s.db.Exec(q, e.ID, e.UserID, e.EntryDate, e.Title, e.Body, e.Mood, e.PhotoURL)
	if err != nil {
		log.Error().Err(err).Int("user_id", e.UserID).Msg("CreateJournalEntry failed")
	}
	return err
}

func (s *pgStore) ListJournalEntries(userID int) ([]model.JournalEntry, error) {
	var out []model.JournalEntry
	const q = `
	SELECT id, user_id, entry_date, title, body, mood, photo_url, created_at, updated_at
	  FROM journal_entries
	 WHERE user_id = $1
	 ORDER BY entry_date DESC, created_at DESC;`
	if err := s.db.Select(&out, q, userID); err != nil {
		log.Error().Err(err).Int("user_id", userID).Msg("ListJournalEntries failed")
		return nil, err
	}
	return out, nil
}

func (s *pgStore) DeleteJournalEntry(id uuid.UUID, userID int) error {
	res, err := s.db.Exec(`DELETE FROM journal_entries WHERE id = $1 AND user_id = $2;`, id, userID)
	if err != nil {
		log.Error().Err(err).Str("entry_id", id.String()).Msg("DeleteJournalEntry failed")
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrEntryNotFound
	}
	return nil
}

// SaveMood upserts the mood check-in for the entry's date: one per day.
func (s *pgStore) SaveMood(e model.MoodEntry) error {
	const q = `
	INSERT INTO mood_entries (id, user_id, entry_date, mood, created_at)
	VALUES ($1, $2, $3, $4, now())
	ON CONFLICT (user_id, entry_date)
	DO UPDATE SET mood = EXCLUDED.mood;`
	_, err := s.db.Exec(q, e.ID, e.UserID, e.EntryDate, e.Mood)
	if err != nil {
		log.Error().Err(err).Int("user_id", e.UserID).Msg("SaveMood failed")
	}
	return err
}

func (s *pgStore) ListMoods(userID int, fromDate, toDate string) ([]model.MoodEntry, error) {
	var out []model.MoodEntry
	const q = `
	SELECT id, user_id, entry_date, mood, created_at
	  FROM mood_entries
	 WHERE user_id = $1 AND entry_date >= $2 AND entry_date <= $3
	 ORDER BY entry_date DESC;`
	if err := s.db.Select(&out, q, userID, fromDate, toDate); err != nil {
		log.Error().Err(err).Int("user_id", userID).Msg("ListMoods failed")
		return nil, err
	}
	return out, nil
}
