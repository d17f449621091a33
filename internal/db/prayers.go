package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/minaret-app/minaret/internal/model"
)

// is returned when a (user, date, prayer) record does not exist yet.
var ErrRecordNotFound = errors.New("prayer record not found")

const prayerColumns = `
	id, user_id, prayer_date, prayer_name, scheduled_time, timezone_offset, status, created_at, updated_at`

func (s *pgStore) GetPrayerRecord(userID int, date string, name model.PrayerName) (*model.PrayerRecord, error) {
	var r model.PrayerRecord
	q := `
	SELECT` + prayerColumns + `
	  FROM prayer_records
	 WHERE user_id = $1 AND prayer_date = $2 AND prayer_name = $3;`
	if err := s.db.Get(&r, q, userID, date, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		log.Error().Err(err).Int("user_id", userID).Str("date", date).Msg("GetPrayerRecord failed")
		return nil, err
	}
	return &r, nil
}

func (s *pgStore) ListPrayerRecords(userID int, fromDate, toDate string) ([]model.PrayerRecord, error) {
	var out []model.PrayerRecord
	q := `
	SELECT` + prayerColumns + `
	  FROM prayer_records
	 WHERE user_id = $1 AND prayer_date >= $2 AND prayer_date <= $3
	 ORDER BY prayer_date, scheduled_time;`
	if err := s.db.Select(&out, q, userID, fromDate, toDate); err != nil {
		log.Error().Err(err).Int("user_id", userID).Msg("ListPrayerRecords failed")
		return nil, err
	}
	return out, nil
}

// ListOpenPrayerRecords returns every record automatic reconciliation may
// still touch, plus missed records (the history view groups both).
func (s *pgStore) ListOpenPrayerRecords(userID int) ([]model.PrayerRecord, error) {
	var out []model.PrayerRecord
	q := `
	SELECT` + prayerColumns + `
	  FROM prayer_records
	 WHERE user_id = $1 AND status IN ('none', 'upcoming', 'pending', 'missed')
	 ORDER BY prayer_date, scheduled_time;`
	if err := s.db.Select(&out, q, userID); err != nil {
		log.Error().Err(err).Int("user_id", userID).Msg("ListOpenPrayerRecords failed")
		return nil, err
	}
	return out, nil
}

// CreatePrayerRecords inserts lazily-created records. Existing
// (user, date, prayer) rows are left untouched, so the call is idempotent.
func (s *pgStore) CreatePrayerRecords(records []model.PrayerRecord) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("begin create batch: %w", err)
	}
	defer tx.Rollback()

	const q = `
	INSERT INTO prayer_records
	  (user_id, prayer_date, prayer_name, scheduled_time, timezone_offset, status, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, now(), now())
	ON CONFLICT (user_id, prayer_date, prayer_name) DO NOTHING;`
	for _, r := range records {
		if _, err := tx.Exec(q, r.UserID, r.Date, r.PrayerName, r.ScheduledTime, r.TimezoneOffset, r.Status); err != nil {
			log.Error().Err(err).Str("date", r.Date).Str("prayer", string(r.PrayerName)).Msg("CreatePrayerRecords failed")
			return err
		}
	}
	return tx.Commit()
}

// ApplyStatusUpdates writes a reconciliation batch in one transaction.
// The conditional WHERE keeps a concurrent user confirmation from being
// clobbered: automatic writes never touch confirmed rows.
func (s *pgStore) ApplyStatusUpdates(updates []StatusUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("begin status batch: %w", err)
	}
	defer tx.Rollback()

	const q = `
	UPDATE prayer_records
	   SET status = $2, updated_at = now()
	 WHERE id = $1
	   AND status NOT IN ('ontime', 'late', 'excused');`
	for _, u := range updates {
		if _, err := tx.Exec(q, u.RecordID, u.Status); err != nil {
			log.Error().Err(err).Int("record_id", u.RecordID).Msg("ApplyStatusUpdates failed")
			return err
		}
	}
	return tx.Commit()
}

// SetPrayerStatus is the explicit user mark: it always wins over automatic
// reconciliation, so no status guard here.
func (s *pgStore) SetPrayerStatus(userID int, date string, name model.PrayerName, status model.PrayerStatus) error {
	res, err := s.db.Exec(`
	UPDATE prayer_records
	   SET status = $4, updated_at = now()
	 WHERE user_id = $1 AND prayer_date = $2 AND prayer_name = $3;`, userID, date, name, status)
	if err != nil {
		log.Error().Err(err).Int("user_id", userID).Str("date", date).Msg("SetPrayerStatus failed")
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRecordNotFound
	}
	return nil
}
