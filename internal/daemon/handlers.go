package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/theirongolddev/scalelog/internal/forecast"
	"github.com/theirongolddev/scalelog/internal/model"
	"github.com/theirongolddev/scalelog/internal/pipeline"
	"github.com/theirongolddev/scalelog/internal/store"
)

// maxBodyBytes caps PUT bodies; a record is well under 1 KiB.
const maxBodyBytes = 64 << 10

// Handler returns the daemon's HTTP routes.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	s.route(mux, "GET /healthz", s.handleHealth)
	s.route(mux, "GET /v1/status", s.handleStatus)
	s.route(mux, "GET /v1/records", s.handleListRecords)
	s.route(mux, "GET /v1/records/{date}", s.handleGetRecord)
	s.route(mux, "PUT /v1/records/{date}", s.handlePutRecord)
	s.route(mux, "DELETE /v1/records/{date}", s.handleDeleteRecord)
	s.route(mux, "GET /v1/plan", s.handlePlan)
	s.route(mux, "GET /v1/summary", s.handleSummary)
	s.route(mux, "GET /v1/chart", s.handleChart)
	s.route(mux, "GET /v1/weeks", s.handleWeeks)
	s.route(mux, "GET /v1/events", s.handleEvents)
	s.route(mux, "GET /v1/stream", s.handleStream)
	mux.Handle("GET /metrics", s.metrics.Handler())
	return mux
}

// route registers h under pattern and records its latency by pattern.
func (s *Service) route(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		h(sw, r)
		d := time.Since(start)
		s.metrics.ObserveHTTP(r.Method, pattern, sw.status, d)
		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", sw.status),
			zap.Duration("took", d))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// storageStatus maps a store error to an HTTP status.
func storageStatus(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrInvalidRecord):
		return http.StatusBadRequest
	}
	return http.StatusBadGateway
}

func pathDay(r *http.Request) (time.Time, error) {
	day, err := model.ParseDay(r.PathValue("date"))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", model.ErrInvalidRecord, err)
	}
	return day, nil
}

func queryDays(r *http.Request) (int, error) {
	v := r.URL.Query().Get("days")
	if v == "" {
		return forecast.DefaultDays, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 || n > 5000 {
		return 0, fmt.Errorf("days must be 1-5000, got %q", v)
	}
	return n, nil
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

func (s *Service) handleListRecords(w http.ResponseWriter, r *http.Request) {
	var records []model.DailyRecord
	err := s.storeCall(r.Context(), "list", func(ctx context.Context) error {
		var err error
		records, err = s.store.List(ctx)
		return err
	})
	if err != nil {
		writeError(w, storageStatus(err), err)
		return
	}
	if records == nil {
		records = []model.DailyRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Service) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	day, err := pathDay(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var rec model.DailyRecord
	err = s.storeCall(r.Context(), "get", func(ctx context.Context) error {
		var err error
		rec, err = s.store.Get(ctx, day)
		return err
	})
	if err != nil {
		writeError(w, storageStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// recordBody is the PUT payload. The date comes from the path; a date in
// the body, if any, must match it.
type recordBody struct {
	model.DailyRecord
	Date string `json:"date"`
}

func (s *Service) handlePutRecord(w http.ResponseWriter, r *http.Request) {
	day, err := pathDay(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var body recordBody
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decoding record: %w", err))
		return
	}
	if body.Date != "" {
		bodyDay, err := model.ParseDay(body.Date)
		if err != nil || !bodyDay.Equal(day) {
			writeError(w, http.StatusBadRequest, fmt.Errorf("body date %q does not match %s", body.Date, day.Format(model.DateLayout)))
			return
		}
	}

	rec := body.DailyRecord
	rec.Date = day
	rec = rec.Normalize()
	if err := rec.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.storeCall(r.Context(), "upsert", func(ctx context.Context) error {
		return s.store.Upsert(ctx, rec)
	}); err != nil {
		writeError(w, storageStatus(err), err)
		return
	}

	s.log.Info("record upserted", zap.String("date", rec.Key()), zap.Float64("weight_kg", rec.WeightKg))
	s.publish(Event{Type: EventRecordUpserted, Date: rec.Key(), Record: &rec})
	writeJSON(w, http.StatusOK, rec)
}

func (s *Service) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	day, err := pathDay(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.storeCall(r.Context(), "delete", func(ctx context.Context) error {
		return s.store.Delete(ctx, day)
	}); err != nil {
		writeError(w, storageStatus(err), err)
		return
	}

	key := day.Format(model.DateLayout)
	s.log.Info("record deleted", zap.String("date", key))
	s.publish(Event{Type: EventRecordDeleted, Date: key})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) handlePlan(w http.ResponseWriter, r *http.Request) {
	days, err := queryDays(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, forecast.FromSettings(s.Plan(), days))
}

func (s *Service) handleSummary(w http.ResponseWriter, r *http.Request) {
	res, err := s.load(r.Context(), 0)
	if err != nil {
		writeError(w, storageStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, res.Summary)
}

func (s *Service) handleChart(w http.ResponseWriter, r *http.Request) {
	days, err := queryDays(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	res, err := s.load(r.Context(), days)
	if err != nil {
		writeError(w, storageStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, res.Chart)
}

func (s *Service) handleWeeks(w http.ResponseWriter, r *http.Request) {
	res, err := s.load(r.Context(), 0)
	if err != nil {
		writeError(w, storageStatus(err), err)
		return
	}
	weeks := pipeline.AggregateWeeks(res.Records)
	if weeks == nil {
		weeks = []model.WeeklyStats{}
	}
	writeJSON(w, http.StatusOK, weeks)
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send the current plan immediately so clients know the stream is live.
	plan := s.Plan()
	writeSSE(w, Event{Type: EventSnapshot, Timestamp: time.Now(), Plan: &plan})
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if ev.ID > 0 {
		_, _ = fmt.Fprintf(w, "id: %d\n", ev.ID)
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}
