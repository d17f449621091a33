package prayer

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/minaret-app/minaret/internal/model"
)

// offsetUTC3 is a fixed +03:00 caller offset used across reconciliation
// tests, in minutes.
const offsetUTC3 = 180

func record(id int, date string, name model.PrayerName, at string, status model.PrayerStatus) model.PrayerRecord {
	return model.PrayerRecord{
		ID:             id,
		UserID:         1,
		Date:           date,
		PrayerName:     name,
		ScheduledTime:  at,
		TimezoneOffset: offsetUTC3,
		Status:         status,
	}
}

// 2026-03-12 14:00 at UTC+3
var testNow = time.Date(2026, 3, 12, 11, 0, 0, 0, time.UTC)

func findChange(t *testing.T, changes []Change, id int) Change {
	t.Helper()
	for _, ch := range changes {
		if ch.Record.ID == id {
			return ch
		}
	}
	t.Fatalf("no change for record %d", id)
	return Change{}
}

func TestReconcileDerivesStatuses(t *testing.T) {
	records := []model.PrayerRecord{
		record(1, "2026-03-12", model.Fajr, "05:10", model.StatusUpcoming),  // due today
		record(2, "2026-03-12", model.Isha, "20:30", model.StatusNone),     // not yet due
		record(3, "2026-03-11", model.Maghrib, "18:00", model.StatusNone),  // past day
		record(4, "2026-03-12", model.Dhuhr, "12:45", model.StatusPending), // already pending
	}

	changes := Reconcile(testNow, offsetUTC3, records, nil)

	if got := findChange(t, changes, 1).NewStatus; got != model.StatusPending {
		t.Errorf("due today: want pending, got %s", got)
	}
	if got := findChange(t, changes, 2).NewStatus; got != model.StatusUpcoming {
		t.Errorf("not due yet: want upcoming, got %s", got)
	}
	if got := findChange(t, changes, 3).NewStatus; got != model.StatusMissed {
		t.Errorf("past day: want missed, got %s", got)
	}
	// record 4 already holds its derived status, so it must not reappear
	for _, ch := range changes {
		if ch.Record.ID == 4 {
			t.Error("unchanged record must not produce a change")
		}
	}
}

func TestReconcileNeverTouchesConfirmed(t *testing.T) {
	records := []model.PrayerRecord{
		record(1, "2026-03-01", model.Fajr, "05:10", model.StatusOnTime),
		record(2, "2026-03-01", model.Dhuhr, "12:45", model.StatusLate),
		record(3, "2026-03-01", model.Asr, "16:00", model.StatusExcused),
		record(4, "2026-03-01", model.Maghrib, "18:00", model.StatusMissed),
	}

	if changes := Reconcile(testNow, offsetUTC3, records, nil); len(changes) != 0 {
		t.Fatalf("confirmed or final statuses must never change, got %d changes", len(changes))
	}
}

func TestReconcileExcusedBeatsMissed(t *testing.T) {
	periods := []model.ExcusedPeriod{{
		ID:          uuid.New(),
		UserID:      1,
		StartDate:   "2026-03-10",
		StartPrayer: model.Dhuhr,
		Status:      model.PeriodOngoing,
	}}
	records := []model.PrayerRecord{
		record(1, "2026-03-10", model.Fajr, "05:10", model.StatusNone),  // before the period
		record(2, "2026-03-10", model.Dhuhr, "12:45", model.StatusNone), // in the period
		record(3, "2026-03-11", model.Fajr, "05:10", model.StatusNone),  // interior day
	}

	changes := Reconcile(testNow, offsetUTC3, records, periods)

	if got := findChange(t, changes, 1).NewStatus; got != model.StatusMissed {
		t.Errorf("prayer before period start: want missed, got %s", got)
	}
	if got := findChange(t, changes, 2).NewStatus; got != model.StatusExcused {
		t.Errorf("prayer inside period: want excused, got %s", got)
	}
	if got := findChange(t, changes, 3).NewStatus; got != model.StatusExcused {
		t.Errorf("interior day: want excused, got %s", got)
	}
}

func TestReconcileMissedFlipsOnlyToExcused(t *testing.T) {
	periods := []model.ExcusedPeriod{{
		ID:          uuid.New(),
		UserID:      1,
		StartDate:   "2026-03-11",
		StartPrayer: model.Fajr,
		Status:      model.PeriodOngoing,
	}}
	records := []model.PrayerRecord{
		record(1, "2026-03-11", model.Fajr, "05:10", model.StatusMissed),
		record(2, "2026-03-10", model.Isha, "20:30", model.StatusMissed), // outside the period
	}

	changes := Reconcile(testNow, offsetUTC3, records, periods)

	if got := findChange(t, changes, 1).NewStatus; got != model.StatusExcused {
		t.Errorf("missed inside a later period: want excused, got %s", got)
	}
	for _, ch := range changes {
		if ch.Record.ID == 2 {
			t.Error("missed outside any period must stay missed")
		}
	}
}

// running reconciliation twice at the same instant must be a no-op the
// second time
func TestReconcileIdempotent(t *testing.T) {
	records := []model.PrayerRecord{
		record(1, "2026-03-12", model.Fajr, "05:10", model.StatusUpcoming),
		record(2, "2026-03-11", model.Isha, "20:30", model.StatusNone),
	}

	changes := Reconcile(testNow, offsetUTC3, records, nil)
	for _, ch := range changes {
		for i := range records {
			if records[i].ID == ch.Record.ID {
				records[i].Status = ch.NewStatus
			}
		}
	}

	if again := Reconcile(testNow, offsetUTC3, records, nil); len(again) != 0 {
		t.Fatalf("second pass at the same instant produced %d changes", len(again))
	}
}

// a record created in one timezone stays anchored there even when the
// caller has moved
func TestReconcileHonorsStoredOffset(t *testing.T) {
	r := record(1, "2026-03-12", model.Isha, "20:30", model.StatusUpcoming)
	r.TimezoneOffset = -300 // created at UTC-5; 20:30 there is 01:30 UTC next day

	// 23:00 UTC on the 12th: past due in +03:00 terms, still upcoming in -05:00
	now := time.Date(2026, 3, 12, 23, 0, 0, 0, time.UTC)
	if changes := Reconcile(now, offsetUTC3, []model.PrayerRecord{r}, nil); len(changes) != 0 {
		t.Fatalf("record is not yet due in its own zone, got %d changes", len(changes))
	}
}

func TestLocalDateCrossesMidnight(t *testing.T) {
	// 22:30 UTC is already the next day at +03:00
	now := time.Date(2026, 3, 12, 22, 30, 0, 0, time.UTC)
	if got := LocalDate(now, 180); got != "2026-03-13" {
		t.Errorf("want 2026-03-13, got %s", got)
	}
	if got := LocalDate(now, -300); got != "2026-03-12" {
		t.Errorf("want 2026-03-12, got %s", got)
	}
}

func TestScheduledAt(t *testing.T) {
	r := record(1, "2026-03-12", model.Fajr, "05:10", model.StatusUpcoming)
	at, err := ScheduledAt(r)
	if err != nil {
		t.Fatal(err)
	}
	if want := time.Date(2026, 3, 12, 2, 10, 0, 0, time.UTC); !at.Equal(want) {
		t.Errorf("want %s, got %s", want, at)
	}

	r.ScheduledTime = "not-a-time"
	if _, err := ScheduledAt(r); err == nil {
		t.Error("malformed time must error")
	}
}
