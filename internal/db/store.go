// exposes a Store interface that is passed to services and API modules
package db

import (
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/minaret-app/minaret/internal/model"
)

// StatusUpdate is one reconciliation write: record ID plus the status the
// reconciler derived for it.
type StatusUpdate struct {
	RecordID int
	Status   model.PrayerStatus
}

type Store interface {
	// user functions
	CreateUser(email, hashedPassword string, name *string) (int, error)
	GetUserByEmail(email string) (*model.User, error)
	GetUserByID(id int) (*model.User, error)
	UpdateUserProfile(id int, email string, name *string) error
	UpdateUserLocation(id int, latitude, longitude float64) error
	ListUserIDs() ([]int, error)

	// prayer record functions
	GetPrayerRecord(userID int, date string, name model.PrayerName) (*model.PrayerRecord, error)
	ListPrayerRecords(userID int, fromDate, toDate string) ([]model.PrayerRecord, error)
	ListOpenPrayerRecords(userID int) ([]model.PrayerRecord, error)
	CreatePrayerRecords(records []model.PrayerRecord) error
	ApplyStatusUpdates(updates []StatusUpdate) error
	SetPrayerStatus(userID int, date string, name model.PrayerName, status model.PrayerStatus) error

	// excused period functions
	CreateExcusedPeriod(p model.ExcusedPeriod) error
	GetExcusedPeriod(id uuid.UUID) (*model.ExcusedPeriod, error)
	ListExcusedPeriods(userID int) ([]model.ExcusedPeriod, error)
	GetOngoingExcusedPeriod(userID int) (*model.ExcusedPeriod, error)
	CompleteExcusedPeriod(id uuid.UUID, endDate string, endPrayer model.PrayerName) error

	// journal and mood functions
	CreateJournalEntry(e model.JournalEntry) error
	ListJournalEntries(userID int) ([]model.JournalEntry, error)
	DeleteJournalEntry(id uuid.UUID, userID int) error
	SaveMood(e model.MoodEntry) error
	ListMoods(userID int, fromDate, toDate string) ([]model.MoodEntry, error)

	// quran reading functions
	CreateQuranSession(s model.QuranSession) error
	ListQuranSessions(userID int) ([]model.QuranSession, error)
	ReadingMinutesForDate(userID int, date string) (int, error)
	CountJuzDone(userID int) (int, error)

	// badge functions
	UpsertBadgeProgress(userID int, track model.BadgeTrack, value int) error
	ListBadgeProgress(userID int) ([]model.BadgeProgress, error)
	AwardBadge(userID int, badgeID string) (bool, error)
	ListEarnedBadges(userID int) ([]model.EarnedBadge, error)
}

type pgStore struct {
	db *sqlx.DB
}

// compile-time check that pgStore implements Store
// required so linter doesn't complain
var _ Store = (*pgStore)(nil)

func NewStore(database *sqlx.DB) Store {
	return &pgStore{db: database}
}
