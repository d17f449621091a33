package db

import (
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/minaret-app/minaret/internal/model"
)

var ErrPeriodNotFound = errors.New("excused period not found")

const periodColumns = `
	id, user_id, start_date, start_prayer, end_date, end_prayer, status, created_at, updated_at`

func (s *pgStore) CreateExcusedPeriod(p model.ExcusedPeriod) error {
	const q = `
	INSERT INTO excused_periods
	  (id, user_id, start_date, start_prayer, end_date, end_prayer, status, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now());`
	_, err := s.db.Exec(q, p.ID, p.UserID, p.StartDate, p.StartPrayer, p.EndDate, p.EndPrayer, p.Status)
	if err != nil {
		log.Error().Err(err).Int("user_id", p.UserID).Msg("CreateExcusedPeriod failed")
	}
	return err
}

func (s *pgStore) GetExcusedPeriod(id uuid.UUID) (*model.ExcusedPeriod, error) {
	var p model.ExcusedPeriod
	q := `SELECT` + periodColumns + ` FROM excused_periods WHERE id = $1;`
	if err := s.db.Get(&p, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPeriodNotFound
		}
		log.Error().Err(err).Str("period_id", id.String()).Msg("GetExcusedPeriod failed")
		return nil, err
	}
	return &p, nil
}

func (s *pgStore) ListExcusedPeriods(userID int) ([]model.ExcusedPeriod, error) {
	var out []model.ExcusedPeriod
	q := `
	SELECT` + periodColumns + `
	  FROM excused_periods
	 WHERE user_id = $1
	 ORDER BY start_date;`
	if err := s.db.Select(&out, q, userID); err != nil {
		log.Error().Err(err).Int("user_id", userID).Msg("ListExcusedPeriods failed")
		return nil, err
	}
	return out, nil
}

func (s *pgStore) GetOngoingExcusedPeriod(userID int) (*model.ExcusedPeriod, error) {
	var p model.ExcusedPeriod
	q := `
	SELECT` + periodColumns + `
	  FROM excused_periods
	 WHERE user_id = $1 AND status = 'ongoing';`
	if err := s.db.Get(&p, q, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		log.Error().Err(err).Int("user_id", userID).Msg("GetOngoingExcusedPeriod failed")
		return nil, err
	}
	return &p, nil
}

func (s *pgStore) CompleteExcusedPeriod(id uuid.UUID, endDate string, endPrayer model.PrayerName) error {
	res, err := s.db.Exec(`
	UPDATE excused_periods
	   SET end_date = $2, end_prayer = $3, status = 'completed', updated_at = now()
	 WHERE id = $1 AND status = 'ongoing';`, id, endDate, endPrayer)
	if err != nil {
		log.Error().Err(err).Str("period_id", id.String()).Msg("CompleteExcusedPeriod failed")
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrPeriodNotFound
	}
	return nil
}
