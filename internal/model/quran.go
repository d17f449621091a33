package model

import (
	"time"

	"github.com/google/uuid"
)

// QuranSession records one reading session.
type QuranSession struct {
	ID          uuid.UUID `db:"id"           json:"id"`
	UserID      int       `db:"user_id"      json:"user_id"`
	SessionDate string    `db:"session_date" json:"session_date"` // YYYY-MM-DD
	Minutes     int       `db:"minutes"      json:"minutes"`
	Surah       *string   `db:"surah"        json:"surah"`
	JuzDone     *int      `db:"juz_done"     json:"juz_done"` // juz number finished in this session, if any
	CreatedAt   time.Time `db:"created_at"   json:"created_at"`
}
