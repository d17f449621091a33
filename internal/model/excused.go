package model

import (
	"time"

	"github.com/google/uuid"
)

// ExcusedPeriodStatus tracks whether a period is still open-ended.
type ExcusedPeriodStatus string

const (
	PeriodOngoing   ExcusedPeriodStatus = "ongoing"
	PeriodCompleted ExcusedPeriodStatus = "completed"
)

// ExcusedPeriod is a user-declared span during which missed prayers are
// forgiven (travel, illness). EndDate and EndPrayer are nil while the
// period is ongoing. At most one ongoing period exists per user; the
// service layer enforces that, not the store.
type ExcusedPeriod struct {
	ID          uuid.UUID           `db:"id"           json:"id"`
	UserID      int                 `db:"user_id"      json:"user_id"`
	StartDate   string              `db:"start_date"   json:"start_date"` // YYYY-MM-DD
	StartPrayer PrayerName          `db:"start_prayer" json:"start_prayer"`
	EndDate     *string             `db:"end_date"     json:"end_date"`
	EndPrayer   *PrayerName         `db:"end_prayer"   json:"end_prayer"`
	Status      ExcusedPeriodStatus `db:"status"       json:"status"`
	CreatedAt   time.Time           `db:"created_at"   json:"created_at"`
	UpdatedAt   time.Time           `db:"updated_at"   json:"updated_at"`
}
