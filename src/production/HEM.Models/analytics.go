package hemmodels

import "time"

// EnergyHistoryPoint is one row of the time-bounded energy history.
type EnergyHistoryPoint struct {
	Timestamp   time.Time `json:"timestamp"`
	Power       float64   `json:"power"`
	EnergyTotal float64   `json:"energy_total"`
	Cost        float64   `json:"cost"`
}

// PeriodTotals holds energy and cost consumed over one calendar day.
type PeriodTotals struct {
	Energy float64 `json:"energy"`
	Cost   float64 `json:"cost"`
}

// PeakPower is the highest power sample of the trailing 24 hours. Time is
// nil when no samples exist.
type PeakPower struct {
	Power float64    `json:"power"`
	Time  *time.Time `json:"time"`
}

// ConsumptionAnalytics is the consolidated consumption report.
type ConsumptionAnalytics struct {
	Today            PeriodTotals `json:"today"`
	Yesterday        PeriodTotals `json:"yesterday"`
	AveragePower     float64      `json:"average_power"`
	Peak             PeakPower    `json:"peak"`
	PotentialSavings float64      `json:"potential_savings"`
	MonthlyEstimate  float64      `json:"monthly_estimate"`
}

// HourlyStat aggregates power per hour of day over the trailing 24 hours.
type HourlyStat struct {
	Hour     string  `json:"hour"`
	AvgPower float64 `json:"avg_power"`
	MaxPower float64 `json:"max_power"`
	MinPower float64 `json:"min_power"`
}

// DailyStat aggregates consumption per calendar day over the trailing week.
type DailyStat struct {
	Day      string  `json:"day"`
	Energy   float64 `json:"energy"`
	Cost     float64 `json:"cost"`
	AvgPower float64 `json:"avg_power"`
}

// ActivityEntry is one row of the consolidated recent-activity feed.
type ActivityEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Category  string    `json:"category"`
	DeviceID  string    `json:"device_id"`
	Details   string    `json:"details"`
}
