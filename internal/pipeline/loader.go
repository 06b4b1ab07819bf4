package pipeline

import (
	"context"
	"fmt"

	"github.com/theirongolddev/scalelog/internal/forecast"
	"github.com/theirongolddev/scalelog/internal/model"
	"github.com/theirongolddev/scalelog/internal/store"
)

// LoadResult is everything the dashboard views render from.
type LoadResult struct {
	Records []model.DailyRecord
	Plan    []model.PlanPoint
	Chart   []model.ChartPoint
	Summary model.Summary
}

// Load reads every record from st and derives the plan, chart and summary.
// days <= 0 uses forecast.DefaultDays.
func Load(ctx context.Context, st store.Store, p model.PlanSettings, days int) (*LoadResult, error) {
	records, err := st.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading records: %w", err)
	}
	return Build(records, p, days), nil
}

// Build derives a LoadResult from records already in memory.
func Build(records []model.DailyRecord, p model.PlanSettings, days int) *LoadResult {
	if days <= 0 {
		days = forecast.DefaultDays
	}
	plan := forecast.FromSettings(p, days)
	return &LoadResult{
		Records: records,
		Plan:    plan,
		Chart:   Compare(plan, records),
		Summary: Summarize(records, p),
	}
}
