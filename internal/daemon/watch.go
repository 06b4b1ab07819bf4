package daemon

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/theirongolddev/scalelog/internal/config"
	"github.com/theirongolddev/scalelog/internal/model"
)

// reloadDebounce collapses the burst of events an editor save produces.
const reloadDebounce = 250 * time.Millisecond

// watchConfig reloads the plan whenever the config file changes. The parent
// directory is watched because editors often replace the file by rename.
func (s *Service) watchConfig(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating config watcher: %w", err)
	}
	defer func() { _ = w.Close() }()

	path := filepath.Clean(s.cfg.ConfigPath)
	if err := w.Add(filepath.Dir(path)); err != nil {
		// A missing config dir is not fatal: the daemon runs on defaults.
		s.log.Warn("config watch disabled", zap.String("path", path), zap.Error(err))
		<-ctx.Done()
		return nil
	}
	s.log.Info("watching config", zap.String("path", path))

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != path || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(reloadDebounce)
			} else {
				timer.Reset(reloadDebounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			_ = s.reloadConfig()

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.log.Warn("config watcher error", zap.Error(err))
		}
	}
}

// reloadConfig reads the plan from the config file and publishes it when it
// changed. A broken file keeps the previous plan.
func (s *Service) reloadConfig() error {
	plan, err := loadPlan(s.cfg.ConfigPath)
	s.metrics.ObserveReload(err)
	if err != nil {
		s.log.Warn("config reload failed, keeping previous plan", zap.Error(err))
		return err
	}
	if plan == s.Plan() {
		return nil
	}

	s.log.Info("plan reloaded",
		zap.Time("start_date", plan.StartDate),
		zap.Float64("start_weight_kg", plan.StartWeightKg),
		zap.Float64("target_loss_kg", plan.TargetLossKg),
		zap.Float64("weekly_loss_kg", plan.WeeklyLossKg))
	s.setPlan(plan)
	return nil
}

func loadPlan(path string) (model.PlanSettings, error) {
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return model.PlanSettings{}, err
	}
	return cfg.Plan.Settings()
}
