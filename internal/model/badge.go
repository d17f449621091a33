package model

import "time"

// BadgeTrack names a progress counter the badge subsystem follows.
type BadgeTrack string

const (
	TrackPrayerStreak   BadgeTrack = "streak"
	TrackOnTimeFajr     BadgeTrack = "ontime_fajr"
	TrackDailyReading   BadgeTrack = "daily_reading"
	TrackJuzCompletion  BadgeTrack = "juz_completion"
	TrackJournalEntries BadgeTrack = "journal_entries"
	TrackJournalStreak  BadgeTrack = "journal_streak"
)

// Badge is a static achievement definition.
type Badge struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Level       int        `json:"level"`
	Category    string     `json:"category"`
	Track       BadgeTrack `json:"track"`
	Requirement int        `json:"requirement"`
}

// BadgeProgress is the current counter value for one user and track.
type BadgeProgress struct {
	UserID    int        `db:"user_id"    json:"user_id"`
	Track     BadgeTrack `db:"track"      json:"track"`
	Value     int        `db:"value"      json:"value"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// EarnedBadge marks a badge a user has been awarded. Never revoked.
type EarnedBadge struct {
	UserID   int       `db:"user_id"  json:"user_id"`
	BadgeID  string    `db:"badge_id" json:"badge_id"`
	EarnedAt time.Time `db:"earned_at" json:"earned_at"`
}
