package badge

import "github.com/minaret-app/minaret/internal/model"

// Definitions lists every awardable badge, three levels per track.
var Definitions = []model.Badge{
	// prayer streaks
	{ID: "prayer_streak_1", Name: "Prayer Guardian I", Description: "Complete all daily prayers for 3 consecutive days", Level: 1, Category: "prayer", Track: model.TrackPrayerStreak, Requirement: 3},
	{ID: "prayer_streak_2", Name: "Prayer Guardian II", Description: "Complete all daily prayers for 7 consecutive days", Level: 2, Category: "prayer", Track: model.TrackPrayerStreak, Requirement: 7},
	{ID: "prayer_streak_3", Name: "Prayer Guardian III", Description: "Complete all daily prayers for 30 consecutive days", Level: 3, Category: "prayer", Track: model.TrackPrayerStreak, Requirement: 30},

	// on-time Fajr streaks
	{ID: "prayer_ontime_1", Name: "Early Riser I", Description: "Pray Fajr on time for 3 consecutive days", Level: 1, Category: "prayer", Track: model.TrackOnTimeFajr, Requirement: 3},
	{ID: "prayer_ontime_2", Name: "Early Riser II", Description: "Pray Fajr on time for 7 consecutive days", Level: 2, Category: "prayer", Track: model.TrackOnTimeFajr, Requirement: 7},
	{ID: "prayer_ontime_3", Name: "Early Riser III", Description: "Pray Fajr on time for 30 consecutive days", Level: 3, Category: "prayer", Track: model.TrackOnTimeFajr, Requirement: 30},

	// quran reading
	{ID: "quran_reading_1", Name: "Devoted Reader I", Description: "Read Quran for 15 minutes in a day", Level: 1, Category: "quran", Track: model.TrackDailyReading, Requirement: 15},
	{ID: "quran_reading_2", Name: "Devoted Reader II", Description: "Read Quran for 30 minutes in a day", Level: 2, Category: "quran", Track: model.TrackDailyReading, Requirement: 30},
	{ID: "quran_reading_3", Name: "Devoted Reader III", Description: "Read Quran for 60 minutes in a day", Level: 3, Category: "quran", Track: model.TrackDailyReading, Requirement: 60},
	{ID: "quran_juz_1", Name: "Juz Journey I", Description: "Complete your first juz", Level: 1, Category: "quran", Track: model.TrackJuzCompletion, Requirement: 1},
	{ID: "quran_juz_2", Name: "Juz Journey II", Description: "Complete 10 juz", Level: 2, Category: "quran", Track: model.TrackJuzCompletion, Requirement: 10},
	{ID: "quran_juz_3", Name: "Juz Journey III", Description: "Complete all 30 juz", Level: 3, Category: "quran", Track: model.TrackJuzCompletion, Requirement: 30},

	// journaling
	{ID: "journal_entries_1", Name: "Reflective Soul I", Description: "Write 5 journal entries", Level: 1, Category: "journal", Track: model.TrackJournalEntries, Requirement: 5},
	{ID: "journal_entries_2", Name: "Reflective Soul II", Description: "Write 20 journal entries", Level: 2, Category: "journal", Track: model.TrackJournalEntries, Requirement: 20},
	{ID: "journal_entries_3", Name: "Reflective Soul III", Description: "Write 50 journal entries", Level: 3, Category: "journal", Track: model.TrackJournalEntries, Requirement: 50},
	{ID: "journal_streak_1", Name: "Daily Reflection I", Description: "Journal for 3 consecutive days", Level: 1, Category: "journal", Track: model.TrackJournalStreak, Requirement: 3},
	{ID: "journal_streak_2", Name: "Daily Reflection II", Description: "Journal for 7 consecutive days", Level: 2, Category: "journal", Track: model.TrackJournalStreak, Requirement: 7},
	{ID: "journal_streak_3", Name: "Daily Reflection III", Description: "Journal for 30 consecutive days", Level: 3, Category: "journal", Track: model.TrackJournalStreak, Requirement: 30},
}

// ByTrack returns the definitions for one progress track, lowest level first.
func ByTrack(track model.BadgeTrack) []model.Badge {
	var out []model.Badge
	for _, b := range Definitions {
		if b.Track == track {
			out = append(out, b)
		}
	}
	return out
}

// ByID looks up one definition.
func ByID(id string) (model.Badge, bool) {
	for _, b := range Definitions {
		if b.ID == id {
			return b, true
		}
	}
	return model.Badge{}, false
}
