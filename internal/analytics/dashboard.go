package analytics

// Dashboard bundles the front-desk home screen numbers for one day.
type Dashboard struct {
	TodayTotal   int            `json:"todayTotal"`
	TodayDone    int            `json:"todayDone"`
	TodayRevenue int64          `json:"todayRevenue"`
	Health       HealthReport   `json:"health"`
	Timeline     []TimelineSlot `json:"timeline"`
}
