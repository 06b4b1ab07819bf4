package pipeline

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/scalelog/internal/forecast"
	"github.com/theirongolddev/scalelog/internal/model"
	"github.com/theirongolddev/scalelog/internal/store"
)

func day(s string) time.Time {
	t, err := time.Parse(model.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func approx(t *testing.T, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestSummarize_UsesLastWeighedRecord(t *testing.T) {
	p := model.DefaultPlan()
	records := []model.DailyRecord{
		{Date: day("2025-07-27"), WeightKg: 83.0, Done: model.CompletionDone},
		{Date: day("2025-08-03"), WeightKg: 80.0, Done: model.CompletionMissed},
		{Date: day("2025-08-04"), Done: model.CompletionDone},
	}

	s := Summarize(records, p)
	require.NotNil(t, s.CurrentKg)
	approx(t, *s.CurrentKg, 80.0)
	approx(t, *s.TotalLossKg, 3.0)
	approx(t, *s.Progress, 0.1)
	approx(t, s.GoalKg, 53.0)
	approx(t, s.WeeklyLossKg, 0.75)
	assert.Equal(t, 3, s.Records)
	assert.Equal(t, 2, s.DoneCount)
	assert.Equal(t, 1, s.MissedCount)
	approx(t, s.Adherence, 2.0/3.0)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil, model.DefaultPlan())
	assert.Nil(t, s.CurrentKg)
	assert.Nil(t, s.TotalLossKg)
	assert.Nil(t, s.Progress)
	assert.Zero(t, s.Adherence)
	approx(t, s.GoalKg, 53.0)
}

func TestCompare_LeftJoin(t *testing.T) {
	p := model.DefaultPlan()
	plan := forecast.FromSettings(p, 10)
	records := []model.DailyRecord{
		{Date: day("2025-07-28"), WeightKg: 82.7},
		{Date: day("2025-07-30")},                  // not weighed
		{Date: day("2025-09-01"), WeightKg: 80.1}, // outside the plan window
	}

	chart := Compare(plan, records)
	require.Len(t, chart, 10)
	for i, pt := range chart {
		assert.True(t, pt.Date.Equal(plan[i].Date))
		assert.Equal(t, plan[i].ProjectedKg, pt.PlannedKg)
		if i == 1 {
			require.NotNil(t, pt.ActualKg)
			approx(t, *pt.ActualKg, 82.7)
			continue
		}
		assert.Nil(t, pt.ActualKg, "day %d", i)
	}
}

func TestRecent(t *testing.T) {
	var records []model.DailyRecord
	start := day("2025-08-01")
	for i := 0; i < 15; i++ {
		records = append(records, model.DailyRecord{Date: start.AddDate(0, 0, i)})
	}

	got := Recent(records, 0)
	require.Len(t, got, DefaultRecent)
	assert.True(t, got[0].Date.Equal(day("2025-08-15")))
	assert.True(t, got[9].Date.Equal(day("2025-08-06")))
	assert.True(t, records[0].Date.Equal(start), "input must not be reordered")

	assert.Len(t, Recent(records[:3], 5), 3)
}

func TestFilterByTime(t *testing.T) {
	records := []model.DailyRecord{
		{Date: day("2025-08-01")},
		{Date: day("2025-08-02")},
		{Date: day("2025-08-03")},
	}
	got := FilterByTime(records, day("2025-08-02"), day("2025-08-03"))
	require.Len(t, got, 1)
	assert.True(t, got[0].Date.Equal(day("2025-08-02")))
	assert.Len(t, FilterByTime(records, time.Time{}, time.Time{}), 3)
}

func TestAggregateWeeks(t *testing.T) {
	records := []model.DailyRecord{
		{Date: day("2025-07-27"), WeightKg: 83.0, Calories: 2000, Steps: 5000}, // Sunday
		{Date: day("2025-07-28"), WeightKg: 82.0, Calories: 1800, Steps: 9000, Done: model.CompletionDone},
		{Date: day("2025-07-29"), Calories: 1600, Steps: 11000},
	}

	weeks := AggregateWeeks(records)
	require.Len(t, weeks, 2)
	assert.True(t, weeks[0].WeekStart.Equal(day("2025-07-21")))
	assert.Equal(t, 1, weeks[0].Days)
	assert.True(t, weeks[1].WeekStart.Equal(day("2025-07-28")))
	assert.Equal(t, 2, weeks[1].Days)
	require.NotNil(t, weeks[1].AvgWeightKg)
	approx(t, *weeks[1].AvgWeightKg, 82.0)
	approx(t, weeks[1].AvgCalories, 1700)
	approx(t, weeks[1].AvgSteps, 10000)
	assert.Equal(t, 1, weeks[1].DoneCount)
}

type failingStore struct{ store.Store }

func (failingStore) List(context.Context) ([]model.DailyRecord, error) {
	return nil, errors.New("boom")
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	require.NoError(t, st.Upsert(ctx, model.DailyRecord{Date: day("2025-07-27"), WeightKg: 83.0}))

	res, err := Load(ctx, st, model.DefaultPlan(), 0)
	require.NoError(t, err)
	assert.Len(t, res.Plan, forecast.DefaultDays)
	assert.Len(t, res.Chart, forecast.DefaultDays)
	require.NotNil(t, res.Chart[0].ActualKg)
	assert.Equal(t, 1, res.Summary.Records)

	_, err = Load(ctx, failingStore{}, model.DefaultPlan(), 10)
	require.Error(t, err)
}
