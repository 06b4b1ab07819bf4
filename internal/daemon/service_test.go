package daemon

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/scalelog/internal/config"
	"github.com/theirongolddev/scalelog/internal/metrics"
	"github.com/theirongolddev/scalelog/internal/model"
	"github.com/theirongolddev/scalelog/internal/sheets"
	"github.com/theirongolddev/scalelog/internal/store"
)

func day(s string) time.Time {
	d, err := model.ParseDay(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newTestService(t *testing.T, st store.Store) (*Service, *httptest.Server) {
	t.Helper()
	s := New(Config{StorageName: "memory"}, st, model.DefaultPlan(), nil, metrics.New())
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return s, srv
}

func do(t *testing.T, method, url, body string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var sb strings.Builder
	_, _ = bufio.NewReader(resp.Body).WriteTo(&sb)
	return resp, sb.String()
}

// failingStore fails every call with err.
type failingStore struct {
	store.Store
	err error
}

func (f failingStore) List(context.Context) ([]model.DailyRecord, error) { return nil, f.err }
func (f failingStore) Get(context.Context, time.Time) (model.DailyRecord, error) {
	return model.DailyRecord{}, f.err
}
func (f failingStore) Upsert(context.Context, model.DailyRecord) error { return f.err }
func (f failingStore) Delete(context.Context, time.Time) error         { return f.err }

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(Config{EventsBuffer: 2}, store.NewMemory(), model.DefaultPlan(), nil, nil)

	s.publish(Event{Type: EventRecordDeleted})
	s.publish(Event{Type: EventRecordDeleted})
	s.publish(Event{Type: EventRecordDeleted})

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	if s.events[0].ID != 2 || s.events[1].ID != 3 {
		t.Fatalf("events ring contains IDs [%d, %d], want [2, 3]", s.events[0].ID, s.events[1].ID)
	}
}

func TestPutThenGet_Upserts(t *testing.T) {
	st := store.NewMemory()
	_, srv := newTestService(t, st)

	resp, body := do(t, http.MethodPut, srv.URL+"/v1/records/2025-08-01",
		`{"weight_kg": 82.5, "calories": 1800, "workout": "Rest", "done": "done"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)

	// Same date again replaces, never duplicates.
	resp, body = do(t, http.MethodPut, srv.URL+"/v1/records/2025-08-01",
		`{"date": "2025-08-01", "weight_kg": 82.1}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)

	records, err := st.List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 82.1, records[0].WeightKg)
	assert.Equal(t, 0, records[0].Calories)

	resp, body = do(t, http.MethodGet, srv.URL+"/v1/records/2025-08-01", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got model.DailyRecord
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	assert.Equal(t, 82.1, got.WeightKg)
	assert.True(t, got.Date.Equal(day("2025-08-01")))
}

func TestPut_Validation(t *testing.T) {
	_, srv := newTestService(t, store.NewMemory())

	cases := map[string]struct{ path, body string }{
		"bad date":       {"/v1/records/01.08.2025", `{}`},
		"weight range":   {"/v1/records/2025-08-01", `{"weight_kg": 900}`},
		"date mismatch":  {"/v1/records/2025-08-01", `{"date": "2025-08-02"}`},
		"unknown field":  {"/v1/records/2025-08-01", `{"mood": "great"}`},
		"bad completion": {"/v1/records/2025-08-01", `{"done": "maybe"}`},
		"not json":       {"/v1/records/2025-08-01", `weight=80`},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			resp, body := do(t, http.MethodPut, srv.URL+tc.path, tc.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
			assert.Contains(t, body, `"error"`)
		})
	}
}

func TestGetAndDelete_Missing(t *testing.T) {
	_, srv := newTestService(t, store.NewMemory())

	resp, _ := do(t, http.MethodGet, srv.URL+"/v1/records/2025-08-01", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = do(t, http.MethodDelete, srv.URL+"/v1/records/2025-08-01", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDelete_PublishesEvent(t *testing.T) {
	st := store.NewMemory()
	require.NoError(t, st.Upsert(context.Background(), model.DailyRecord{Date: day("2025-08-01"), WeightKg: 80}))
	_, srv := newTestService(t, st)

	resp, _ := do(t, http.MethodDelete, srv.URL+"/v1/records/2025-08-01", "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	_, body := do(t, http.MethodGet, srv.URL+"/v1/events", "")
	var events []Event
	require.NoError(t, json.Unmarshal([]byte(body), &events))
	require.Len(t, events, 1)
	assert.Equal(t, EventRecordDeleted, events[0].Type)
	assert.Equal(t, "2025-08-01", events[0].Date)
}

func TestStorageErrors_Return502AndRecordLastError(t *testing.T) {
	st := failingStore{err: sheets.ErrUnauthorized}
	s, srv := newTestService(t, st)

	for _, path := range []string{"/v1/records", "/v1/summary", "/v1/chart", "/v1/records/2025-08-01"} {
		resp, body := do(t, http.MethodGet, srv.URL+path, "")
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode, path)
		assert.Contains(t, body, "unauthorized", path)
	}

	status := s.snapshotStatus()
	assert.Contains(t, status.LastError, "unauthorized")
	require.NotNil(t, status.LastErrorAt)
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.StoreOperations.WithLabelValues("get", "error")))
}

func TestSummaryAndChart(t *testing.T) {
	st := store.NewMemory()
	ctx := context.Background()
	require.NoError(t, st.Upsert(ctx, model.DailyRecord{Date: day("2025-07-27"), WeightKg: 83}))
	require.NoError(t, st.Upsert(ctx, model.DailyRecord{Date: day("2025-08-03"), WeightKg: 81.5}))
	s, srv := newTestService(t, st)

	resp, body := do(t, http.MethodGet, srv.URL+"/v1/summary", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var sum model.Summary
	require.NoError(t, json.Unmarshal([]byte(body), &sum))
	require.NotNil(t, sum.CurrentKg)
	assert.Equal(t, 81.5, *sum.CurrentKg)
	assert.Equal(t, 53.0, sum.GoalKg)
	assert.Equal(t, 2.0, testutil.ToFloat64(s.metrics.Records))

	resp, body = do(t, http.MethodGet, srv.URL+"/v1/chart?days=10", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var chart []model.ChartPoint
	require.NoError(t, json.Unmarshal([]byte(body), &chart))
	require.Len(t, chart, 10)
	require.NotNil(t, chart[7].ActualKg)
	assert.Equal(t, 81.5, *chart[7].ActualKg)
	assert.Nil(t, chart[1].ActualKg)
}

func TestPlan(t *testing.T) {
	_, srv := newTestService(t, store.NewMemory())

	resp, body := do(t, http.MethodGet, srv.URL+"/v1/plan?days=3", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var plan []model.PlanPoint
	require.NoError(t, json.Unmarshal([]byte(body), &plan))
	require.Len(t, plan, 3)
	assert.Equal(t, 83.0, plan[0].ProjectedKg)
	assert.Less(t, plan[2].ProjectedKg, plan[1].ProjectedKg)

	for _, q := range []string{"days=0", "days=abc", "days=9999"} {
		resp, _ := do(t, http.MethodGet, srv.URL+"/v1/plan?"+q, "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, q)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	_, srv := newTestService(t, store.NewMemory())

	resp, body := do(t, http.MethodGet, srv.URL+"/healthz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok\n", body)

	resp, body = do(t, http.MethodGet, srv.URL+"/metrics", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `scalelog_http_request_duration_seconds_count{method="GET",route="GET /healthz",status="200"} 1`)

	resp, _ = do(t, http.MethodPost, srv.URL+"/v1/records", "")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestStream_DeliversUpserts(t *testing.T) {
	s, srv := newTestService(t, store.NewMemory())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/v1/stream", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	r := bufio.NewReader(resp.Body)
	next := func() string {
		for {
			line, err := r.ReadString('\n')
			require.NoError(t, err)
			if strings.HasPrefix(line, "event: ") {
				return strings.TrimSpace(strings.TrimPrefix(line, "event: "))
			}
		}
	}

	require.Equal(t, EventSnapshot, next())
	assert.Equal(t, 1, s.snapshotStatus().SubscriberCount)

	put, _ := do(t, http.MethodPut, srv.URL+"/v1/records/2025-08-01", `{"weight_kg": 80}`)
	require.Equal(t, http.StatusOK, put.StatusCode)
	assert.Equal(t, EventRecordUpserted, next())
}

func TestReloadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	s := New(Config{ConfigPath: path}, store.NewMemory(), model.DefaultPlan(), nil, nil)

	cfg := config.DefaultConfig()
	cfg.Plan.WeeklyLossKg = 1.25
	require.NoError(t, config.SaveTo(path, cfg))

	require.NoError(t, s.reloadConfig())
	assert.Equal(t, 1.25, s.Plan().WeeklyLossKg)

	s.mu.RLock()
	require.Len(t, s.events, 1)
	assert.Equal(t, EventSettingsReloaded, s.events[0].Type)
	s.mu.RUnlock()

	// Unchanged file: no new event.
	require.NoError(t, s.reloadConfig())
	assert.Equal(t, 1, s.snapshotStatus().EventCount)

	// Broken file keeps the previous plan.
	require.NoError(t, os.WriteFile(path, []byte("[plan\n"), 0o600))
	assert.Error(t, s.reloadConfig())
	assert.Equal(t, 1.25, s.Plan().WeeklyLossKg)
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.ConfigReloads.WithLabelValues("error")))
}

func TestWatchConfig_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, config.SaveTo(path, config.DefaultConfig()))
	s := New(Config{ConfigPath: path}, store.NewMemory(), model.DefaultPlan(), nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.watchConfig(ctx) }()
	defer func() {
		cancel()
		require.NoError(t, <-done)
	}()

	cfg := config.DefaultConfig()
	cfg.Plan.StartWeightKg = 90
	// The watcher may not be registered yet; keep writing until it reacts.
	require.Eventually(t, func() bool {
		_ = config.SaveTo(path, cfg)
		return s.Plan().StartWeightKg == 90
	}, 5*time.Second, 300*time.Millisecond)
}

func TestStorageStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, storageStatus(store.ErrNotFound))
	assert.Equal(t, http.StatusBadRequest, storageStatus(model.ErrInvalidRecord))
	assert.Equal(t, http.StatusBadGateway, storageStatus(sheets.ErrRateLimited))
	assert.Equal(t, http.StatusBadGateway, storageStatus(errors.New("dial tcp: refused")))
}
