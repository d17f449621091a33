package model

import (
	"fmt"
	"time"
)

// PrayerName is one of the five daily prayers. The order of the set is
// meaningful: excused periods reference it for partial-day boundaries.
type PrayerName string

const (
	Fajr    PrayerName = "fajr"
	Dhuhr   PrayerName = "dhuhr"
	Asr     PrayerName = "asr"
	Maghrib PrayerName = "maghrib"
	Isha    PrayerName = "isha"
)

// PrayerOrder lists the prayers in their fixed daily order.
var PrayerOrder = []PrayerName{Fajr, Dhuhr, Asr, Maghrib, Isha}

// Index returns the position of the prayer within the daily order,
// or -1 for an unknown name.
func (p PrayerName) Index() int {
	for i, name := range PrayerOrder {
		if name == p {
			return i
		}
	}
	return -1
}

func (p PrayerName) Valid() bool { return p.Index() >= 0 }

// ParsePrayerName validates a prayer name coming from the API or the store.
func ParsePrayerName(s string) (PrayerName, error) {
	p := PrayerName(s)
	if !p.Valid() {
		return "", fmt.Errorf("unknown prayer name %q", s)
	}
	return p, nil
}

// PrayerStatus is the lifecycle state of a single prayer record.
type PrayerStatus string

const (
	StatusNone     PrayerStatus = "none"
	StatusUpcoming PrayerStatus = "upcoming"
	StatusPending  PrayerStatus = "pending"
	StatusOnTime   PrayerStatus = "ontime"
	StatusLate     PrayerStatus = "late"
	StatusMissed   PrayerStatus = "missed"
	StatusExcused  PrayerStatus = "excused"
)

func (s PrayerStatus) Valid() bool {
	switch s {
	case StatusNone, StatusUpcoming, StatusPending, StatusOnTime, StatusLate, StatusMissed, StatusExcused:
		return true
	}
	return false
}

// Confirmed reports whether the status was set by an explicit user action.
// Confirmed statuses are never overwritten by automatic reconciliation.
func (s PrayerStatus) Confirmed() bool {
	switch s {
	case StatusOnTime, StatusLate, StatusExcused:
		return true
	case StatusNone, StatusUpcoming, StatusPending, StatusMissed:
		return false
	}
	return false
}

// Reconcilable reports whether automatic reconciliation may touch the record.
func (s PrayerStatus) Reconcilable() bool {
	switch s {
	case StatusNone, StatusUpcoming, StatusPending:
		return true
	case StatusOnTime, StatusLate, StatusMissed, StatusExcused:
		return false
	}
	return false
}

// ParsePrayerStatus validates a status value coming from the API.
func ParsePrayerStatus(s string) (PrayerStatus, error) {
	st := PrayerStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown prayer status %q", s)
	}
	return st, nil
}

// PrayerRecord is one row per (user, date, prayer name).
type PrayerRecord struct {
	ID             int          `db:"id"              json:"id"`
	UserID         int          `db:"user_id"         json:"user_id"`
	Date           string       `db:"prayer_date"     json:"date"`           // local calendar date, YYYY-MM-DD
	PrayerName     PrayerName   `db:"prayer_name"     json:"prayer_name"`
	ScheduledTime  string       `db:"scheduled_time"  json:"scheduled_time"` // 24h wall clock, HH:MM
	TimezoneOffset int          `db:"timezone_offset" json:"timezone_offset"` // minutes east of UTC at creation
	Status         PrayerStatus `db:"status"          json:"status"`
	CreatedAt      time.Time    `db:"created_at"      json:"created_at"`
	UpdatedAt      time.Time    `db:"updated_at"      json:"updated_at"`
}

// Key identifies a record within a user's history.
func (r PrayerRecord) Key() string {
	return r.Date + "-" + string(r.PrayerName)
}
