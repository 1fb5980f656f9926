package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/wonny/supersignal/internal/batch"
	"github.com/wonny/supersignal/internal/contracts"
	"github.com/wonny/supersignal/internal/provider"
	"github.com/wonny/supersignal/internal/render"
	"github.com/wonny/supersignal/internal/risk"
	"github.com/wonny/supersignal/internal/screenconfig"
	"github.com/wonny/supersignal/pkg/logger"
)

// MaxBatchTickers caps GET /api/v1/screen
const MaxBatchTickers = 50

// Screener runs a batch; *batch.Coordinator implements it
type Screener interface {
	Screen(ctx context.Context, tickers []string, th risk.Thresholds) (*contracts.BatchResult, error)
}

// ScreenHandler handles screening endpoints
// ⭐ SSOT: 스크리닝 API 핸들러는 이 구조체에서만
type ScreenHandler struct {
	screener Screener
	cfg      *screenconfig.Config
	cfgHash  string
	logger   *logger.Logger
}

// NewScreenHandler creates a new screen handler
func NewScreenHandler(s Screener, cfg *screenconfig.Config, cfgHash string, log *logger.Logger) *ScreenHandler {
	return &ScreenHandler{
		screener: s,
		cfg:      cfg,
		cfgHash:  cfgHash,
		logger:   log.Module("api"),
	}
}

// GetTicker screens a single ticker
// GET /api/v1/screen/{ticker}
func (h *ScreenHandler) GetTicker(w http.ResponseWriter, r *http.Request) {
	tickers := batch.NormalizeTickers(mux.Vars(r)["ticker"])
	if len(tickers) != 1 {
		respondError(w, http.StatusBadRequest, "Exactly one ticker is required")
		return
	}

	res, err := h.screener.Screen(r.Context(), tickers, h.cfg.Thresholds)
	if err != nil {
		if isClientError(err) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.WithError(err).Error("Screen failed")
		respondError(w, http.StatusInternalServerError, "Screening failed")
		return
	}

	result := res.Results[0]
	if result.OK() {
		respondJSON(w, http.StatusOK, result)
		return
	}
	respondJSON(w, failureStatus(result), result)
}

// GetBatch screens a comma-separated ticker list
// GET /api/v1/screen?tickers=AAPL,BABA&format=json|csv|text
func (h *ScreenHandler) GetBatch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tickers := batch.NormalizeTickers(q["tickers"]...)
	if len(tickers) == 0 {
		respondError(w, http.StatusBadRequest, "Query parameter 'tickers' is required")
		return
	}
	if len(tickers) > MaxBatchTickers {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("At most %d tickers per request", MaxBatchTickers))
		return
	}

	format := q.Get("format")
	if format == "" {
		format = render.FormatJSON
	}
	f, err := render.New(format)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.screener.Screen(r.Context(), tickers, h.cfg.Thresholds)
	if err != nil {
		if isClientError(err) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.WithError(err).Error("Batch screen failed")
		respondError(w, http.StatusInternalServerError, "Screening failed")
		return
	}

	var buf bytes.Buffer
	if err := f.Format(&buf, res); err != nil {
		h.logger.WithError(err).Error("Format failed")
		respondError(w, http.StatusInternalServerError, "Formatting failed")
		return
	}

	w.Header().Set("Content-Type", contentType(format))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// ThresholdsResponse describes the active screening configuration
type ThresholdsResponse struct {
	Thresholds     risk.Thresholds             `json:"thresholds"`
	SourcePriority screenconfig.SourcePriority `json:"source_priority"`
	Rules          []RuleInfo                  `json:"rules"`
	ConfigHash     string                      `json:"config_hash"`
}

// RuleInfo is one catalogue entry
type RuleInfo struct {
	Kind     contracts.FlagKind `json:"kind"`
	Severity contracts.Severity `json:"severity"`
	Rank     int                `json:"rank"`
}

// GetThresholds returns the thresholds, source priority and rule catalogue
// GET /api/v1/thresholds
func (h *ScreenHandler) GetThresholds(w http.ResponseWriter, r *http.Request) {
	rules := risk.DefaultRules()
	info := make([]RuleInfo, len(rules))
	for i, rule := range rules {
		info[i] = RuleInfo{Kind: rule.Kind, Severity: rule.Severity, Rank: i + 1}
	}

	respondJSON(w, http.StatusOK, ThresholdsResponse{
		Thresholds:     h.cfg.Thresholds,
		SourcePriority: h.cfg.SourcePriority,
		Rules:          info,
		ConfigHash:     h.cfgHash,
	})
}

// failureStatus maps a failed ticker to an HTTP status
func failureStatus(r contracts.TickerResult) int {
	if r.Incomplete() {
		return http.StatusGatewayTimeout
	}
	if len(r.SourceErrors) == 0 {
		return http.StatusBadGateway
	}
	for _, e := range r.SourceErrors {
		kind, _ := provider.KindOf(e)
		if kind != provider.KindNotFound {
			if kind == provider.KindRateLimited {
				return http.StatusTooManyRequests
			}
			return http.StatusBadGateway
		}
	}
	return http.StatusNotFound
}

func contentType(format string) string {
	switch strings.ToLower(format) {
	case render.FormatCSV:
		return "text/csv; charset=utf-8"
	case render.FormatText:
		return "text/plain; charset=utf-8"
	default:
		return "application/json"
	}
}

// isClientError reports whether err came from bad input rather than a failure
func isClientError(err error) bool {
	var ce *risk.ConfigError
	return errors.As(err, &ce) || errors.Is(err, batch.ErrNoTickers)
}
