package prayer

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/minaret-app/minaret/internal/model"
)

// Change is one status transition derived by reconciliation.
type Change struct {
	Record    model.PrayerRecord
	NewStatus model.PrayerStatus
}

// Reconcile derives up-to-date statuses for every record automatic
// reconciliation may touch, relative to now. currentOffset is the caller's
// UTC offset in minutes, which may differ from the offset stored on a record
// if the user has traveled since it was created.
//
// Records in {none, upcoming, pending} are fully re-derived and missed
// records may flip to excused; a confirmed status is never changed, for
// any now. The returned set contains only
// records whose status actually changes, so callers can write a minimal
// batch. Pure: no I/O, no clock reads.
//
// Policy for due-but-unconfirmed records: they hold "pending" for the
// remainder of their calendar day and are finalized to "missed" by the
// first reconciliation on a later day.
func Reconcile(now time.Time, currentOffset int, records []model.PrayerRecord, periods []model.ExcusedPeriod) []Change {
	today := LocalDate(now, currentOffset)

	var changes []Change
	for _, r := range records {
		// a missed record has exactly one way back: a later-created excused
		// period covering it
		if r.Status == model.StatusMissed {
			if IsExcused(r.Date, r.PrayerName, periods) {
				changes = append(changes, Change{Record: r, NewStatus: model.StatusExcused})
			}
			continue
		}
		if !r.Status.Reconcilable() {
			continue
		}

		want := deriveStatus(now, today, r, periods)
		if want != r.Status {
			changes = append(changes, Change{Record: r, NewStatus: want})
		}
	}
	return changes
}

func deriveStatus(now time.Time, today string, r model.PrayerRecord, periods []model.ExcusedPeriod) model.PrayerStatus {
	due := scheduledInstant(r, now)
	if now.Before(due) {
		return model.StatusUpcoming
	}

	if IsExcused(r.Date, r.PrayerName, periods) {
		return model.StatusExcused
	}
	if r.Date == today {
		// grace window: due today, still confirmable
		return model.StatusPending
	}
	return model.StatusMissed
}

// scheduledInstant resolves a record's (date, wall-clock time) pair into an
// absolute instant, anchored in the timezone that was in effect when the
// record was created. Malformed stored values are logged and defaulted to
// now rather than failing the pass: reconciliation must not crash on bad
// historical data.
func scheduledInstant(r model.PrayerRecord, now time.Time) time.Time {
	t, err := parseDateTime(r.Date, r.ScheduledTime, r.TimezoneOffset)
	if err != nil {
		log.Error().Err(err).
			Str("date", r.Date).
			Str("time", r.ScheduledTime).
			Str("prayer", string(r.PrayerName)).
			Msg("unparseable scheduled time, defaulting to now")
		return now
	}
	return t
}

// ScheduledAt resolves a record's (date, wall-clock time) pair into an
// absolute instant without the fallback behavior of scheduledInstant.
func ScheduledAt(r model.PrayerRecord) (time.Time, error) {
	return parseDateTime(r.Date, r.ScheduledTime, r.TimezoneOffset)
}

func parseDateTime(date, clock string, offsetMinutes int) (time.Time, error) {
	zone := time.FixedZone("record", offsetMinutes*60)
	t, err := time.ParseInLocation("2006-01-02 15:04", date+" "+clock, zone)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse scheduled instant: %w", err)
	}
	return t, nil
}

// LocalDate formats now as YYYY-MM-DD in the zone given by a UTC offset in
// minutes.
func LocalDate(now time.Time, offsetMinutes int) string {
	zone := time.FixedZone("local", offsetMinutes*60)
	return now.In(zone).Format("2006-01-02")
}
