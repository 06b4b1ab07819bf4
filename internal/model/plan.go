package model

import "time"

// Plan setting bounds.
const (
	MinStartWeightKg = 30.0
	MaxStartWeightKg = 300.0
	MinTargetLossKg  = 1.0
	MaxTargetLossKg  = 100.0
	MinWeeklyLossKg  = 0.1
	MaxWeeklyLossKg  = 3.0
)

// PlanSettings are the four scalars the projection curve is computed from.
type PlanSettings struct {
	StartDate     time.Time `json:"start_date"`
	StartWeightKg float64   `json:"start_weight_kg"`
	TargetLossKg  float64   `json:"target_loss_kg"`
	WeeklyLossKg  float64   `json:"weekly_loss_kg"`
}

// DefaultPlan returns the out-of-the-box plan.
func DefaultPlan() PlanSettings {
	return PlanSettings{
		StartDate:     time.Date(2025, 7, 27, 0, 0, 0, 0, time.UTC),
		StartWeightKg: 83.0,
		TargetLossKg:  30.0,
		WeeklyLossKg:  0.75,
	}
}

// GoalWeight is the weight at which the plan flattens out.
func (p PlanSettings) GoalWeight() float64 {
	return p.StartWeightKg - p.TargetLossKg
}

// Clamp forces every setting into its allowed range.
func (p PlanSettings) Clamp() PlanSettings {
	p.StartDate = Day(p.StartDate)
	p.StartWeightKg = clamp(p.StartWeightKg, MinStartWeightKg, MaxStartWeightKg)
	p.TargetLossKg = clamp(p.TargetLossKg, MinTargetLossKg, MaxTargetLossKg)
	p.WeeklyLossKg = clamp(p.WeeklyLossKg, MinWeeklyLossKg, MaxWeeklyLossKg)
	return p
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// PlanPoint is one day of the projection curve.
type PlanPoint struct {
	Date        time.Time `json:"date"`
	ProjectedKg float64   `json:"projected_kg"`
}

// ChartPoint joins a plan point with the actual weight logged that day.
type ChartPoint struct {
	Date      time.Time `json:"date"`
	PlannedKg float64   `json:"planned_kg"`
	ActualKg  *float64  `json:"actual_kg,omitempty"`
}
