// Package forecast generates the projected weight curve.
package forecast

import (
	"math"
	"time"

	"github.com/theirongolddev/scalelog/internal/model"
)

const (
	// DefaultDays is the length of the curve drawn on the dashboard.
	DefaultDays = 400

	// floorKg is the lowest default goal weight.
	floorKg = 30.0
	// defaultSpanKg is how far below the start weight the default goal sits.
	defaultSpanKg = 100.0
)

// DefaultGoal is the floor used when no goal weight is configured.
func DefaultGoal(startWeight float64) float64 {
	return math.Max(floorKg, startWeight-defaultSpanKg)
}

// Series returns days daily points starting at start. The projection drops
// weeklyLoss/7 kg per day and is floored at goal (DefaultGoal when nil).
// A goal above startWeight is lowered to startWeight: the curve stays flat
// at the start weight, below that goal, so day 0 always equals startWeight.
// FromSettings never passes such a goal since target loss is at least 1 kg.
func Series(start time.Time, startWeight, weeklyLoss float64, days int, goal *float64) []model.PlanPoint {
	if days <= 0 {
		return nil
	}
	floor := DefaultGoal(startWeight)
	if goal != nil {
		floor = *goal
	}
	floor = math.Min(floor, startWeight)
	if weeklyLoss < 0 {
		weeklyLoss = 0
	}

	start = model.Day(start)
	daily := weeklyLoss / 7.0

	points := make([]model.PlanPoint, days)
	for i := range points {
		points[i] = model.PlanPoint{
			Date:        start.AddDate(0, 0, i),
			ProjectedKg: math.Max(startWeight-daily*float64(i), floor),
		}
	}
	return points
}

// FromSettings builds the dashboard curve, floored at the plan's goal weight.
func FromSettings(p model.PlanSettings, days int) []model.PlanPoint {
	goal := p.GoalWeight()
	return Series(p.StartDate, p.StartWeightKg, p.WeeklyLossKg, days, &goal)
}

// At returns the projected weight on a given date, or false when the date
// falls outside the series.
func At(points []model.PlanPoint, day time.Time) (float64, bool) {
	if len(points) == 0 {
		return 0, false
	}
	idx := int(model.Day(day).Sub(points[0].Date).Hours() / 24)
	if idx < 0 || idx >= len(points) {
		return 0, false
	}
	return points[idx].ProjectedKg, true
}
