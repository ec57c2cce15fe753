package models

// TrendPoint is one [epoch seconds, value] pair of a daily trend.
type TrendPoint [2]float64

// MetricSummary is everything a dashboard reads for one metric.
// Latest is nil when the metric has no readings yet.
type MetricSummary struct {
	Latest     *float64     `json:"latest"`
	DailyMin   float64      `json:"daily_min"`
	DailyMax   float64      `json:"daily_max"`
	MonthlyMin float64      `json:"monthly_min"`
	MonthlyMax float64      `json:"monthly_max"`
	YearlyMin  float64      `json:"yearly_min"`
	YearlyMax  float64      `json:"yearly_max"`
	Day        *float64     `json:"day,omitempty"`   // accumulated Wh, solar only
	Week       *float64     `json:"week,omitempty"`  // accumulated Wh, solar only
	Month      *float64     `json:"month,omitempty"` // accumulated Wh, solar only
	DailyTrend []TrendPoint `json:"daily_trend"`
}

// Snapshot is the body of GET /dataajax/: metric name to summary.
type Snapshot map[string]MetricSummary
