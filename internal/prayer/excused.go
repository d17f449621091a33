package prayer

import "github.com/minaret-app/minaret/internal/model"

// IsExcused reports whether (date, name) falls inside any excused period.
//
// A period matches a date when startDate <= date and either the period is
// open-ended or date <= endDate. On the boundary days the prayer ordering
// narrows the match: the start day covers prayers from startPrayer onward,
// the end day covers prayers up to endPrayer. Interior days cover all five.
func IsExcused(date string, name model.PrayerName, periods []model.ExcusedPeriod) bool {
	idx := name.Index()
	if idx < 0 {
		return false
	}

	for _, p := range periods {
		if date < p.StartDate {
			continue
		}
		if p.EndDate != nil && date > *p.EndDate {
			continue
		}

		if date == p.StartDate && idx < p.StartPrayer.Index() {
			continue
		}
		if p.EndDate != nil && date == *p.EndDate && p.EndPrayer != nil && idx > p.EndPrayer.Index() {
			continue
		}
		return true
	}
	return false
}
