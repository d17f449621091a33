package packets

// MarkPrayerRequest confirms a single prayer record. Status must be one of
// ontime, late, excused, missed; the reconciler owns every other value.
type MarkPrayerRequest struct {
	Date       string `json:"date" binding:"required"`
	PrayerName string `json:"prayer_name" binding:"required"`
	Status     string `json:"status" binding:"required"`
	TzOffset   int    `json:"tz_offset"`
}

type InitDaysRequest struct {
	TzOffset int  `json:"tz_offset"`
	Window   bool `json:"window"`
}

type StartExcusedPeriodRequest struct {
	StartDate   string `json:"start_date" binding:"required"`
	StartPrayer string `json:"start_prayer" binding:"required"`
	TzOffset    int    `json:"tz_offset"`
}

type EndExcusedPeriodRequest struct {
	EndDate   string `json:"end_date" binding:"required"`
	EndPrayer string `json:"end_prayer" binding:"required"`
	TzOffset  int    `json:"tz_offset"`
}
