package contracts

import (
	"encoding/json"
	"errors"
	"time"
)

// ErrIncomplete marks tickers not finished before the batch deadline
var ErrIncomplete = errors.New("not completed before batch timeout")

// BatchOutcome summarizes a batch run
type BatchOutcome string

const (
	OutcomeSuccess    BatchOutcome = "success"    // at least one report
	OutcomeAllFailed  BatchOutcome = "all_failed" // no reports
	OutcomeIncomplete BatchOutcome = "incomplete" // batch timeout fired
)

// TickerResult is the outcome for one input ticker: a report, an error, or both
// (a report built from a subset of sources keeps the failed sources' errors).
type TickerResult struct {
	Ticker       string
	Report       *RiskReport
	Err          error
	SourceErrors []error
	Duration     time.Duration
}

// OK reports whether a report was produced
func (r TickerResult) OK() bool {
	return r.Report != nil
}

// Incomplete reports whether the ticker was cut off by the batch timeout
func (r TickerResult) Incomplete() bool {
	return errors.Is(r.Err, ErrIncomplete)
}

type tickerResultJSON struct {
	Ticker       string      `json:"ticker"`
	Report       *RiskReport `json:"report,omitempty"`
	Error        string      `json:"error,omitempty"`
	SourceErrors []string    `json:"source_errors,omitempty"`
	DurationMs   int64       `json:"duration_ms"`
}

// MarshalJSON renders errors as strings
func (r TickerResult) MarshalJSON() ([]byte, error) {
	out := tickerResultJSON{
		Ticker:     r.Ticker,
		Report:     r.Report,
		DurationMs: r.Duration.Milliseconds(),
	}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	for _, e := range r.SourceErrors {
		out.SourceErrors = append(out.SourceErrors, e.Error())
	}
	return json.Marshal(out)
}

// BatchResult holds one TickerResult per input ticker, in input order
type BatchResult struct {
	RunID      string         `json:"run_id"`
	Outcome    BatchOutcome   `json:"outcome"`
	Results    []TickerResult `json:"results"`
	ConfigHash string         `json:"config_hash,omitempty"`
	VIX        *float64       `json:"vix,omitempty"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
}

// Reports returns the successful reports in input order
func (b *BatchResult) Reports() []*RiskReport {
	var out []*RiskReport
	for _, r := range b.Results {
		if r.Report != nil {
			out = append(out, r.Report)
		}
	}
	return out
}
