package badge

import (
	"time"

	"github.com/minaret-app/minaret/internal/model"
)

// completedDay reports whether a day's prayers all ended in a state that
// keeps a streak alive: ontime, late or excused.
func completedDay(prayers []model.PrayerRecord) bool {
	if len(prayers) != len(model.PrayerOrder) {
		return false
	}
	for _, p := range prayers {
		switch p.Status {
		case model.StatusOnTime, model.StatusLate, model.StatusExcused:
		case model.StatusNone, model.StatusUpcoming, model.StatusPending, model.StatusMissed:
			return false
		}
	}
	return true
}

// PrayerStreak counts consecutive fully-completed days ending today.
// An incomplete today breaks the streak immediately.
func PrayerStreak(records []model.PrayerRecord, today string) int {
	byDate := make(map[string][]model.PrayerRecord)
	for _, r := range records {
		byDate[r.Date] = append(byDate[r.Date], r)
	}

	streak := 0
	day, err := time.Parse("2006-01-02", today)
	if err != nil {
		return 0
	}
	for {
		date := day.Format("2006-01-02")
		if !completedDay(byDate[date]) {
			break
		}
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

// FajrStreak counts consecutive days with Fajr prayed on time (or excused).
// Today is skipped when its Fajr has not been marked yet, so an unmarked
// morning does not break an ongoing streak.
func FajrStreak(records []model.PrayerRecord, today string) int {
	fajrByDate := make(map[string]model.PrayerRecord)
	for _, r := range records {
		if r.PrayerName == model.Fajr {
			fajrByDate[r.Date] = r
		}
	}

	counts := func(r model.PrayerRecord, ok bool) bool {
		return ok && (r.Status == model.StatusOnTime || r.Status == model.StatusExcused)
	}

	day, err := time.Parse("2006-01-02", today)
	if err != nil {
		return 0
	}
	if r, ok := fajrByDate[today]; !counts(r, ok) {
		day = day.AddDate(0, 0, -1)
	}

	streak := 0
	for {
		r, ok := fajrByDate[day.Format("2006-01-02")]
		if !counts(r, ok) {
			break
		}
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

// JournalStreak counts consecutive days with at least one entry, ending
// today or yesterday (an entry-less today does not break the run).
func JournalStreak(entryDates []string, today string) int {
	seen := make(map[string]bool, len(entryDates))
	for _, d := range entryDates {
		seen[d] = true
	}

	day, err := time.Parse("2006-01-02", today)
	if err != nil {
		return 0
	}
	if !seen[today] {
		day = day.AddDate(0, 0, -1)
	}

	streak := 0
	for seen[day.Format("2006-01-02")] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}
