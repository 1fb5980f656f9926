package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/supersignal/internal/api/handlers"
	"github.com/wonny/supersignal/internal/batch"
	"github.com/wonny/supersignal/internal/contracts"
	"github.com/wonny/supersignal/internal/provider"
	"github.com/wonny/supersignal/internal/report"
	"github.com/wonny/supersignal/internal/risk"
	"github.com/wonny/supersignal/internal/scheduler"
	"github.com/wonny/supersignal/internal/scheduler/jobs"
	"github.com/wonny/supersignal/internal/screenconfig"
	"github.com/wonny/supersignal/pkg/logger"
	"github.com/wonny/supersignal/pkg/metrics"
)

// tickerStub answers known tickers with an ADR report and the rest with not_found
type tickerStub struct{}

func (tickerStub) Screen(_ context.Context, ticker string) contracts.TickerResult {
	switch ticker {
	case "BABA":
		rec := &contracts.CanonicalRecord{
			Ticker:         ticker,
			SecurityFields: contracts.SecurityFields{IsADR: contracts.Ptr(true)},
			Provenance:     map[contracts.Field]contracts.Source{contracts.FieldIsADR: contracts.SourceFinviz},
		}
		flags := []contracts.RiskFlag{{Kind: contracts.FlagADR, Severity: contracts.SeverityInfo, Message: "adr", Rank: 4}}
		return contracts.TickerResult{Ticker: ticker, Report: report.Assemble(ticker, rec, flags, time.Now())}
	case "SLOW":
		return contracts.TickerResult{Ticker: ticker, SourceErrors: []error{
			provider.NewFetchError(contracts.SourceYahoo, ticker, provider.KindRateLimited, nil),
		}, Err: assert.AnError}
	default:
		return contracts.TickerResult{Ticker: ticker, Err: assert.AnError, SourceErrors: []error{
			provider.NewFetchError(contracts.SourceYahoo, ticker, provider.KindNotFound, nil),
			provider.NewFetchError(contracts.SourceFinviz, ticker, provider.KindNotFound, nil),
		}}
	}
}

func newTestRouter(t *testing.T, rec *metrics.Recorder) http.Handler {
	t.Helper()
	coord := batch.NewCoordinator(func(*risk.Engine) contracts.TickerScreener { return tickerStub{} },
		batch.Config{Workers: 2}, logger.Nop())
	h := handlers.NewScreenHandler(coord, screenconfig.Default(), "deadbeef", logger.Nop())
	return NewRouter(h, nil, rec, logger.Nop())
}

func get(t *testing.T, h http.Handler, url string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, url, nil))
	return rr
}

func TestHealth(t *testing.T) {
	rr := get(t, newTestRouter(t, nil), "/health")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"status":"ok"`)
}

func TestScreenTicker(t *testing.T) {
	router := newTestRouter(t, nil)

	tests := []struct {
		name   string
		url    string
		status int
	}{
		{"report", "/api/v1/screen/baba", http.StatusOK},
		{"not found everywhere", "/api/v1/screen/ZZZZ", http.StatusNotFound},
		{"rate limited", "/api/v1/screen/SLOW", http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := get(t, router, tt.url)
			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
		})
	}

	rr := get(t, router, "/api/v1/screen/baba")
	var body struct {
		Ticker string `json:"ticker"`
		Report struct {
			Overall string `json:"overall_severity"`
		} `json:"report"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "BABA", body.Ticker)
	assert.Equal(t, "info", body.Report.Overall)
}

func TestScreenBatch(t *testing.T) {
	router := newTestRouter(t, nil)

	rr := get(t, router, "/api/v1/screen?tickers=baba,zzzz,BABA")
	require.Equal(t, http.StatusOK, rr.Code)

	var res struct {
		Outcome string `json:"outcome"`
		Results []struct {
			Ticker string `json:"ticker"`
			Error  string `json:"error"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	assert.Equal(t, "success", res.Outcome)
	require.Len(t, res.Results, 2)
	assert.Equal(t, "BABA", res.Results[0].Ticker)
	assert.Equal(t, "ZZZZ", res.Results[1].Ticker)
	assert.NotEmpty(t, res.Results[1].Error)
}

func TestScreenBatch_CSV(t *testing.T) {
	rr := get(t, newTestRouter(t, nil), "/api/v1/screen?tickers=BABA&format=csv")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rr.Body.String(), "ticker,name,"))
}

func TestScreenBatch_BadRequests(t *testing.T) {
	router := newTestRouter(t, nil)

	many := make([]string, handlers.MaxBatchTickers+1)
	for i := range many {
		many[i] = "T" + string(rune('A'+i%26)) + string(rune('A'+i/26))
	}

	for _, url := range []string{
		"/api/v1/screen",
		"/api/v1/screen?tickers=,,",
		"/api/v1/screen?tickers=BABA&format=xml",
		"/api/v1/screen?tickers=" + strings.Join(many, ","),
	} {
		rr := get(t, router, url)
		assert.Equal(t, http.StatusBadRequest, rr.Code, url)
	}
}

func TestThresholds(t *testing.T) {
	rr := get(t, newTestRouter(t, nil), "/api/v1/thresholds")
	require.Equal(t, http.StatusOK, rr.Code)

	var body handlers.ThresholdsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "deadbeef", body.ConfigHash)
	assert.Equal(t, int64(3_000_000), body.Thresholds.MinFreeFloat)
	require.Len(t, body.Rules, 5)
	assert.Equal(t, contracts.FlagNonUSIncorporation, body.Rules[0].Kind)
	assert.Equal(t, contracts.SeverityCritical, body.Rules[1].Severity)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := metrics.New()
	router := newTestRouter(t, rec)

	get(t, router, "/api/v1/screen/BABA")
	rr := get(t, router, "/metrics")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `route="/api/v1/screen/{ticker}"`)

	assert.Equal(t, http.StatusNotFound, get(t, newTestRouter(t, nil), "/metrics").Code)
}

func TestJobsEndpoint(t *testing.T) {
	sched := scheduler.New(logger.Nop())
	coord := batch.NewCoordinator(func(*risk.Engine) contracts.TickerScreener { return tickerStub{} },
		batch.Config{}, logger.Nop())
	require.NoError(t, sched.AddJob(jobs.NewWarmCacheJob(coord, []string{"BABA"}, risk.DefaultThresholds(), "@hourly", logger.Nop())))
	_, err := sched.RunJobNow("warm_cache")
	require.NoError(t, err)

	router := NewRouter(
		handlers.NewScreenHandler(coord, screenconfig.Default(), "", logger.Nop()),
		handlers.NewJobsHandler(sched),
		nil, logger.Nop(),
	)

	rr := get(t, router, "/api/v1/jobs")
	require.Equal(t, http.StatusOK, rr.Code)

	var stats map[string]scheduler.JobStats
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats["warm_cache"].TotalRuns)
	assert.Equal(t, 1.0, stats["warm_cache"].SuccessRate)

	assert.Equal(t, http.StatusNotFound, get(t, newTestRouter(t, nil), "/api/v1/jobs").Code)
}
