// Package pipeline derives summary metrics and chart data from journal records.
package pipeline

import (
	"sort"
	"time"

	"github.com/theirongolddev/scalelog/internal/model"
)

// DefaultRecent is how many entries the "latest entries" table shows.
const DefaultRecent = 10

// Summarize computes the headline metrics for records under plan p.
// Records must be sorted by date ascending.
func Summarize(records []model.DailyRecord, p model.PlanSettings) model.Summary {
	s := model.Summary{
		Records:      len(records),
		GoalKg:       p.GoalWeight(),
		WeeklyLossKg: p.WeeklyLossKg,
	}

	for i := len(records) - 1; i >= 0; i-- {
		if records[i].HasWeight() {
			cur := records[i].WeightKg
			loss := p.StartWeightKg - cur
			s.CurrentKg = &cur
			s.TotalLossKg = &loss
			if p.TargetLossKg > 0 {
				progress := loss / p.TargetLossKg
				s.Progress = &progress
			}
			break
		}
	}

	for _, r := range records {
		switch r.Done {
		case model.CompletionDone:
			s.DoneCount++
		case model.CompletionMissed:
			s.MissedCount++
		}
	}
	if marked := s.DoneCount + s.MissedCount; marked > 0 {
		s.Adherence = float64(s.DoneCount) / float64(marked)
	}

	return s
}

// Compare left-joins the plan with the weights logged on the same dates.
// Every plan point appears once; days without a weighed record have a nil
// ActualKg.
func Compare(plan []model.PlanPoint, records []model.DailyRecord) []model.ChartPoint {
	actual := make(map[time.Time]float64, len(records))
	for _, r := range records {
		if r.HasWeight() {
			actual[model.Day(r.Date)] = r.WeightKg
		}
	}

	out := make([]model.ChartPoint, len(plan))
	for i, pt := range plan {
		out[i] = model.ChartPoint{Date: pt.Date, PlannedKg: pt.ProjectedKg}
		if w, ok := actual[model.Day(pt.Date)]; ok {
			out[i].ActualKg = &w
		}
	}
	return out
}

// Recent returns up to n records, newest first. n <= 0 means DefaultRecent.
func Recent(records []model.DailyRecord, n int) []model.DailyRecord {
	if n <= 0 {
		n = DefaultRecent
	}
	sorted := make([]model.DailyRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// FilterByTime returns records whose date falls within [since, until).
// A zero bound is open.
func FilterByTime(records []model.DailyRecord, since, until time.Time) []model.DailyRecord {
	var out []model.DailyRecord
	for _, r := range records {
		if !since.IsZero() && r.Date.Before(since) {
			continue
		}
		if !until.IsZero() && !r.Date.Before(until) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// AggregateWeeks groups records by ISO week (Monday start), oldest first.
func AggregateWeeks(records []model.DailyRecord) []model.WeeklyStats {
	type acc struct {
		stats     model.WeeklyStats
		weightSum float64
		weighed   int
		kcalSum   int
		stepSum   int
	}
	weeks := make(map[time.Time]*acc)

	for _, r := range records {
		start := weekStart(r.Date)
		a, ok := weeks[start]
		if !ok {
			a = &acc{stats: model.WeeklyStats{WeekStart: start}}
			weeks[start] = a
		}
		a.stats.Days++
		a.kcalSum += r.Calories
		a.stepSum += r.Steps
		if r.HasWeight() {
			a.weightSum += r.WeightKg
			a.weighed++
		}
		if r.Done == model.CompletionDone {
			a.stats.DoneCount++
		}
	}

	out := make([]model.WeeklyStats, 0, len(weeks))
	for _, a := range weeks {
		ws := a.stats
		ws.AvgCalories = float64(a.kcalSum) / float64(ws.Days)
		ws.AvgSteps = float64(a.stepSum) / float64(ws.Days)
		if a.weighed > 0 {
			avg := a.weightSum / float64(a.weighed)
			ws.AvgWeightKg = &avg
		}
		out = append(out, ws)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].WeekStart.Before(out[j].WeekStart)
	})
	return out
}

func weekStart(t time.Time) time.Time {
	d := model.Day(t)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}
