package model

import "time"

// Summary holds the headline metrics shown above the chart.
type Summary struct {
	Records int `json:"records"`

	// CurrentKg is nil until at least one weight has been logged.
	CurrentKg   *float64 `json:"current_kg,omitempty"`
	TotalLossKg *float64 `json:"total_loss_kg,omitempty"`
	// Progress is loss / target loss, nil when there is no loss to report.
	Progress *float64 `json:"progress,omitempty"`

	GoalKg       float64 `json:"goal_kg"`
	WeeklyLossKg float64 `json:"weekly_loss_kg"`

	DoneCount   int `json:"done_count"`
	MissedCount int `json:"missed_count"`
	// Adherence is done / (done + missed), 0 when nothing was marked.
	Adherence float64 `json:"adherence"`
}

// WeeklyStats aggregates the records of one ISO week.
type WeeklyStats struct {
	WeekStart time.Time `json:"week_start"`
	Days      int       `json:"days"`

	// AvgWeightKg averages weighed days only; nil when none were weighed.
	AvgWeightKg *float64 `json:"avg_weight_kg,omitempty"`
	AvgCalories float64  `json:"avg_calories"`
	AvgSteps    float64  `json:"avg_steps"`
	DoneCount   int      `json:"done_count"`
}
