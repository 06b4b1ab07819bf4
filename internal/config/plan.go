package config

import (
	"fmt"

	"github.com/theirongolddev/scalelog/internal/model"
)

// PlanConfig is the [plan] section. The start date is kept as text so the
// file stays readable.
type PlanConfig struct {
	StartDate     string  `toml:"start_date"`
	StartWeightKg float64 `toml:"start_weight_kg"`
	TargetLossKg  float64 `toml:"target_loss_kg"`
	WeeklyLossKg  float64 `toml:"weekly_loss_kg"`
}

// DefaultPlanConfig mirrors model.DefaultPlan.
func DefaultPlanConfig() PlanConfig {
	return PlanConfigFrom(model.DefaultPlan())
}

// PlanConfigFrom converts plan settings to their file form.
func PlanConfigFrom(p model.PlanSettings) PlanConfig {
	return PlanConfig{
		StartDate:     p.StartDate.Format(model.DateLayout),
		StartWeightKg: p.StartWeightKg,
		TargetLossKg:  p.TargetLossKg,
		WeeklyLossKg:  p.WeeklyLossKg,
	}
}

// Settings parses the section into plan settings.
func (p PlanConfig) Settings() (model.PlanSettings, error) {
	start, err := model.ParseDay(p.StartDate)
	if err != nil {
		return model.PlanSettings{}, fmt.Errorf("plan.start_date: %w", err)
	}
	return model.PlanSettings{
		StartDate:     start,
		StartWeightKg: p.StartWeightKg,
		TargetLossKg:  p.TargetLossKg,
		WeeklyLossKg:  p.WeeklyLossKg,
	}.Clamp(), nil
}

func (p *PlanConfig) clamp() error {
	if p.StartDate == "" {
		p.StartDate = DefaultPlanConfig().StartDate
	}
	s, err := p.Settings()
	if err != nil {
		return err
	}
	*p = PlanConfigFrom(s)
	return nil
}
