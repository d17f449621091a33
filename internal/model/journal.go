package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Mood is the self-reported feeling attached to a reflection.
type Mood string

const (
	MoodGrateful   Mood = "grateful"
	MoodPeaceful   Mood = "peaceful"
	MoodHopeful    Mood = "hopeful"
	MoodAnxious    Mood = "anxious"
	MoodStruggling Mood = "struggling"
)

func (m Mood) Valid() bool {
	switch m {
	case MoodGrateful, MoodPeaceful, MoodHopeful, MoodAnxious, MoodStruggling:
		return true
	}
	return false
}

func ParseMood(s string) (Mood, error) {
	m := Mood(s)
	if !m.Valid() {
		return "", fmt.Errorf("unknown mood %q", s)
	}
	return m, nil
}

// JournalEntry is a dated reflection, optionally with a mood and a photo.
type JournalEntry struct {
	ID        uuid.UUID `db:"id"         json:"id"`
	UserID    int       `db:"user_id"    json:"user_id"`
	EntryDate string    `db:"entry_date" json:"entry_date"` // YYYY-MM-DD
	Title     string    `db:"title"      json:"title"`
	Body      string    `db:"body"       json:"body"`
	Mood      *Mood     `db:"mood"       json:"mood"`
	PhotoURL  *string   `db:"photo_url"  json:"photo_url"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// MoodEntry is a standalone mood check-in, at most one per day per user.
type MoodEntry struct {
	ID        uuid.UUID `db:"id"         json:"id"`
	UserID    int       `db:"user_id"    json:"user_id"`
	EntryDate string    `db:"entry_date" json:"entry_date"`
	Mood      Mood      `db:"mood"       json:"mood"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
