package db

import (
	"errors"
	"os"
	"testing"

	"github.com/minaret-app/minaret/internal/model"
)

// integration tests run only against a real database; set TEST_DATABASE_URL
// to enable them
func integrationStore(t *testing.T) Store {
	t.Helper()
	if os.Getenv("TEST_DATABASE_URL") == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	if TestStore == nil {
		if err := InitTestDB("../../migrations"); err != nil {
			t.Fatalf("init test db: %v", err)
		}
	}
	return TestStore
}

func createTestUser(t *testing.T, store Store, email string) int {
	t.Helper()
	id, err := store.CreateUser(email, "x", nil)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return id
}

func TestApplyStatusUpdatesSkipsConfirmed(t *testing.T) {
	store := integrationStore(t)
	userID := createTestUser(t, store, "reconcile-test@example.com")

	records := []model.PrayerRecord{
		{UserID: userID, Date: "2026-03-11", PrayerName: model.Fajr, ScheduledTime: "05:10", TimezoneOffset: 180, Status: model.StatusUpcoming},
		{UserID: userID, Date: "2026-03-11", PrayerName: model.Dhuhr, ScheduledTime: "12:45", TimezoneOffset: 180, Status: model.StatusUpcoming},
	}
	if err := store.CreatePrayerRecords(records); err != nil {
		t.Fatal(err)
	}

	// confirm fajr by hand
	if err := store.SetPrayerStatus(userID, "2026-03-11", model.Fajr, model.StatusOnTime); err != nil {
		t.Fatal(err)
	}

	stored, err := store.ListPrayerRecords(userID, "2026-03-11", "2026-03-11")
	if err != nil {
		t.Fatal(err)
	}
	updates := make([]StatusUpdate, 0, len(stored))
	for _, r := range stored {
		updates = append(updates, StatusUpdate{RecordID: r.ID, Status: model.StatusMissed})
	}

	// the batch targets both rows but must only land on the unconfirmed one
	if err := store.ApplyStatusUpdates(updates); err != nil {
		t.Fatal(err)
	}

	fajr, err := store.GetPrayerRecord(userID, "2026-03-11", model.Fajr)
	if err != nil {
		t.Fatal(err)
	}
	if fajr.Status != model.StatusOnTime {
		t.Errorf("confirmed row must survive the batch, got %s", fajr.Status)
	}
	dhuhr, err := store.GetPrayerRecord(userID, "2026-03-11", model.Dhuhr)
	if err != nil {
		t.Fatal(err)
	}
	if dhuhr.Status != model.StatusMissed {
		t.Errorf("unconfirmed row must take the batch status, got %s", dhuhr.Status)
	}
}

func TestCreatePrayerRecordsIsIdempotent(t *testing.T) {
	store := integrationStore(t)
	userID := createTestUser(t, store, "idempotent-test@example.com")

	records := []model.PrayerRecord{
		{UserID: userID, Date: "2026-03-12", PrayerName: model.Fajr, ScheduledTime: "05:10", TimezoneOffset: 180, Status: model.StatusUpcoming},
	}
	if err := store.CreatePrayerRecords(records); err != nil {
		t.Fatal(err)
	}

	// same day again with a different scheduled time: the original row wins
	records[0].ScheduledTime = "05:20"
	if err := store.CreatePrayerRecords(records); err != nil {
		t.Fatal(err)
	}

	got, err := store.GetPrayerRecord(userID, "2026-03-12", model.Fajr)
	if err != nil {
		t.Fatal(err)
	}
	if got.ScheduledTime != "05:10" {
		t.Errorf("re-creation must not overwrite, got %s", got.ScheduledTime)
	}
}

func TestSetPrayerStatusMissingRow(t *testing.T) {
	store := integrationStore(t)
	userID := createTestUser(t, store, "missing-row-test@example.com")

	err := store.SetPrayerStatus(userID, "2099-01-01", model.Fajr, model.StatusOnTime)
	if !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("want ErrRecordNotFound, got %v", err)
	}
}
