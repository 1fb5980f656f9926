package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_Counters(t *testing.T) {
	r := New()

	r.TickerScreened("ok", 120*time.Millisecond)
	r.TickerScreened("ok", 80*time.Millisecond)
	r.TickerScreened("failed", time.Second)
	r.SourceFailure("finviz", "not_found")
	r.Flag("adr", "info")
	r.BatchFinished("success")

	assert.Equal(t, 2.0, testutil.ToFloat64(r.tickers.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.tickers.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.sourceFailures.WithLabelValues("finviz", "not_found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.flags.WithLabelValues("adr", "info")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.batches.WithLabelValues("success")))
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.TickerScreened("ok", time.Second)
		r.SourceFailure("yahoo", "network")
		r.Flag("low_float", "warning")
		r.BatchFinished("all_failed")
		r.HTTPRequest("/health", "GET", 200, time.Millisecond)
	})
}

func TestRecorder_Handler(t *testing.T) {
	r := New()
	r.HTTPRequest("/api/v1/screen/{ticker}", "GET", 200, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `supersignal_http_requests_total{method="GET",route="/api/v1/screen/{ticker}",status="200"} 1`))
	assert.Contains(t, body, "go_goroutines")
}
