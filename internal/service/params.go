package service

import "time"

// Period is a calendar window used for statistics and cache keys.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week" // ISO week, Monday first
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// Dashboard names accepted by SnapshotQuery.Dashboard.
const (
	DashboardWeather = "weather"
	DashboardSolar   = "solar"
)

// SnapshotQuery selects which dashboard snapshot to build.
type SnapshotQuery struct {
	Dashboard string // "" or "weather" | "solar"
	History   bool   // when true, Timestamp selects the day
	Timestamp int64  // epoch seconds
}

// RebuildResult reports what a cache rebuild touched.
type RebuildResult struct {
	Metrics  int           `json:"metrics"`
	Duration time.Duration `json:"duration_ns"`
}
