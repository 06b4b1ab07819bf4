// Package daemon provides the long-running local HTTP API over the journal.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/theirongolddev/scalelog/internal/logger"
	"github.com/theirongolddev/scalelog/internal/metrics"
	"github.com/theirongolddev/scalelog/internal/model"
	"github.com/theirongolddev/scalelog/internal/pipeline"
	"github.com/theirongolddev/scalelog/internal/store"
)

// Event types published on the stream.
const (
	EventSnapshot         = "snapshot"
	EventRecordUpserted   = "record_upserted"
	EventRecordDeleted    = "record_deleted"
	EventSettingsReloaded = "settings_reloaded"
)

// Config controls the daemon runtime behavior.
type Config struct {
	Addr         string
	EventsBuffer int
	// ConfigPath is watched for plan changes; empty disables reloading.
	ConfigPath string
	// StorageName describes the backend in /v1/status.
	StorageName string
	// StoreTimeout bounds each storage call.
	StoreTimeout time.Duration
}

// Event is emitted whenever the journal or the plan changes.
type Event struct {
	ID        int64               `json:"id"`
	Type      string              `json:"type"`
	Timestamp time.Time           `json:"timestamp"`
	Date      string              `json:"date,omitempty"`
	Record    *model.DailyRecord  `json:"record,omitempty"`
	Plan      *model.PlanSettings `json:"plan,omitempty"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time          `json:"started_at"`
	Storage         string             `json:"storage"`
	Plan            model.PlanSettings `json:"plan"`
	LastError       string             `json:"last_error,omitempty"`
	LastErrorAt     *time.Time         `json:"last_error_at,omitempty"`
	EventCount      int                `json:"event_count"`
	SubscriberCount int                `json:"subscriber_count"`
	ConfigPath      string             `json:"config_path,omitempty"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg     Config
	store   store.Store
	log     *zap.Logger
	metrics *metrics.Metrics

	mu          sync.RWMutex
	startedAt   time.Time
	plan        model.PlanSettings
	lastError   string
	lastErrorAt time.Time
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new daemon service over st. A nil logger or metrics set is
// replaced by a no-op logger and a fresh registry.
func New(cfg Config, st store.Store, plan model.PlanSettings, log *zap.Logger, m *metrics.Metrics) *Service {
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8765"
	}
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = 30 * time.Second
	}
	if m == nil {
		m = metrics.New()
	}

	return &Service{
		cfg:       cfg,
		store:     st,
		log:       logger.OrNop(log),
		metrics:   m,
		startedAt: time.Now(),
		plan:      plan,
		subs:      make(map[int]chan Event),
	}
}

// Run serves the HTTP API, and watches the config file when one is set,
// until ctx is canceled or either fails.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.Info("listening", zap.String("addr", s.cfg.Addr), zap.String("storage", s.cfg.StorageName))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("daemon http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.log.Info("shutting down")
		return server.Shutdown(shutdownCtx)
	})

	if s.cfg.ConfigPath != "" {
		g.Go(func() error {
			return s.watchConfig(gctx)
		})
	}

	return g.Wait()
}

// Plan returns the plan settings currently in effect.
func (s *Service) Plan() model.PlanSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.plan
}

func (s *Service) setPlan(p model.PlanSettings) {
	s.mu.Lock()
	s.plan = p
	s.mu.Unlock()
	s.publish(Event{Type: EventSettingsReloaded, Plan: &p})
}

func (s *Service) recordError(op string, err error) {
	s.mu.Lock()
	s.lastError = err.Error()
	s.lastErrorAt = time.Now()
	s.mu.Unlock()
	s.log.Warn("storage error", zap.String("op", op), zap.Error(err))
}

// storeCall runs fn with the store timeout and records its outcome.
func (s *Service) storeCall(ctx context.Context, op string, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	start := time.Now()
	err := fn(ctx)
	s.metrics.ObserveStore(op, err, time.Since(start))
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		s.recordError(op, err)
	}
	return err
}

// publish stamps ev with the next ID, appends it to the ring buffer, and
// fans it out to subscribers without blocking.
func (s *Service) publish(ev Event) Event {
	s.mu.Lock()
	s.nextEventID++
	ev.ID = s.nextEventID
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
	return ev
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Status{
		StartedAt:       s.startedAt,
		Storage:         s.cfg.StorageName,
		Plan:            s.plan,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
		ConfigPath:      s.cfg.ConfigPath,
	}
	if !s.lastErrorAt.IsZero() {
		at := s.lastErrorAt
		st.LastErrorAt = &at
	}
	return st
}

// load lists every record and derives plan, chart, and summary.
func (s *Service) load(ctx context.Context, days int) (*pipeline.LoadResult, error) {
	var res *pipeline.LoadResult
	err := s.storeCall(ctx, "list", func(ctx context.Context) error {
		var err error
		res, err = pipeline.Load(ctx, s.store, s.Plan(), days)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.Records.Set(float64(len(res.Records)))
	if res.Summary.CurrentKg != nil {
		s.metrics.CurrentWeightKg.Set(*res.Summary.CurrentKg)
	}
	if res.Summary.Progress != nil {
		s.metrics.ProgressRatio.Set(*res.Summary.Progress)
	}
	return res, nil
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	s.metrics.Subscribers.Set(float64(len(s.subs)))
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
	s.metrics.Subscribers.Set(float64(len(s.subs)))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorBody{Error: err.Error()})
}
