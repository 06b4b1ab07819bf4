package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveStore(t *testing.T) {
	m := New()
	m.ObserveStore("upsert", nil, 5*time.Millisecond)
	m.ObserveStore("upsert", nil, 5*time.Millisecond)
	m.ObserveStore("list", errors.New("down"), time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.StoreOperations.WithLabelValues("upsert", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StoreOperations.WithLabelValues("list", "error")))
}

func TestObserveReload(t *testing.T) {
	m := New()
	m.ObserveReload(nil)
	m.ObserveReload(errors.New("bad toml"))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ConfigReloads.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ConfigReloads.WithLabelValues("error")))
}

func TestHandler_ServesRegistry(t *testing.T) {
	m := New()
	m.Records.Set(3)
	m.ObserveHTTP("GET", "/v1/records", 200, 2*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "scalelog_records 3")
	assert.Contains(t, string(body), `scalelog_http_request_duration_seconds_count{method="GET",route="/v1/records",status="200"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestNew_Independent(t *testing.T) {
	a, b := New(), New()
	a.Records.Set(5)
	assert.Equal(t, 0.0, testutil.ToFloat64(b.Records))
}
