package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/supersignal/internal/contracts"
	"github.com/wonny/supersignal/internal/risk"
	"github.com/wonny/supersignal/pkg/logger"
	"github.com/wonny/supersignal/pkg/metrics"
)

// ErrNoTickers is returned when a batch has nothing to screen
var ErrNoTickers = errors.New("no tickers to screen")

// DefaultWorkers is the pool size when Config.Workers is not set
const DefaultWorkers = 4

// Config holds coordinator configuration
type Config struct {
	Workers      int           // Number of concurrent ticker pipelines
	BatchTimeout time.Duration // 0 = none
}

// ScreenerFactory builds a ticker screener evaluating with the given engine
type ScreenerFactory func(engine *risk.Engine) contracts.TickerScreener

// VIXSource supplies the market volatility index shown alongside a batch
type VIXSource interface {
	FetchVIX(ctx context.Context) (float64, error)
}

// Coordinator fans tickers out to a bounded worker pool and returns
// results in input order.
// ⭐ SSOT: batch 실행은 여기서만
type Coordinator struct {
	build      ScreenerFactory
	cfg        Config
	vix        VIXSource
	configHash string
	metrics    *metrics.Recorder
	logger     *logger.Logger
	now        func() time.Time
}

// Option configures a Coordinator
type Option func(*Coordinator)

// WithVIX attaches a VIX quote to every batch. Failures are logged, never fatal.
func WithVIX(src VIXSource) Option {
	return func(c *Coordinator) { c.vix = src }
}

// WithConfigHash stamps batches with the hash of the screening config
func WithConfigHash(hash string) Option {
	return func(c *Coordinator) { c.configHash = hash }
}

// WithMetrics records batch outcomes
func WithMetrics(rec *metrics.Recorder) Option {
	return func(c *Coordinator) { c.metrics = rec }
}

// NewCoordinator creates a Coordinator
func NewCoordinator(build ScreenerFactory, cfg Config, log *logger.Logger, opts ...Option) *Coordinator {
	if cfg.Workers < 1 {
		cfg.Workers = DefaultWorkers
	}
	c := &Coordinator{
		build:  build,
		cfg:    cfg,
		logger: log.Module("batch"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Screen validates thresholds, then screens tickers.
// A *risk.ConfigError is returned before any pipeline runs.
func (c *Coordinator) Screen(ctx context.Context, tickers []string, th risk.Thresholds) (*contracts.BatchResult, error) {
	if len(tickers) == 0 {
		return nil, ErrNoTickers
	}
	engine, err := risk.NewEngine(th)
	if err != nil {
		return nil, err
	}
	return c.Run(ctx, tickers, c.build(engine)), nil
}

type job struct {
	index  int
	ticker string
}

type indexedResult struct {
	index  int
	result contracts.TickerResult
}

// Run screens tickers with s. Results are placed by input index; tickers
// not finished before the batch timeout carry an ErrIncomplete marker.
func (c *Coordinator) Run(ctx context.Context, tickers []string, s contracts.TickerScreener) *contracts.BatchResult {
	out := &contracts.BatchResult{
		RunID:      uuid.NewString(),
		ConfigHash: c.configHash,
		StartedAt:  c.now(),
		Results:    make([]contracts.TickerResult, len(tickers)),
	}
	log := c.logger.WithField("run_id", out.RunID)

	workers := c.cfg.Workers
	if workers > len(tickers) {
		workers = len(tickers)
	}

	log.WithFields(map[string]interface{}{
		"tickers": len(tickers),
		"workers": workers,
	}).Info("Starting batch")

	var (
		batchCtx context.Context
		cancel   context.CancelFunc
	)
	if c.cfg.BatchTimeout > 0 {
		batchCtx, cancel = context.WithTimeout(ctx, c.cfg.BatchTimeout)
	} else {
		batchCtx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	// both channels are sized to the batch so workers never block
	// on a collector that stopped at the deadline
	jobCh := make(chan job, len(tickers))
	resultCh := make(chan indexedResult, len(tickers))

	for i, t := range tickers {
		jobCh <- job{index: i, ticker: t}
	}
	close(jobCh)

	for i := 0; i < workers; i++ {
		go c.worker(batchCtx, s, jobCh, resultCh)
	}

	filled := make([]bool, len(tickers))
	place := func(r indexedResult) {
		// a failure seen after the deadline is the cutoff's doing: leave it incomplete
		if !r.result.OK() && batchCtx.Err() != nil {
			return
		}
		out.Results[r.index] = r.result
		filled[r.index] = true
	}

	received := 0
collect:
	for received < len(tickers) {
		select {
		case r := <-resultCh:
			place(r)
			received++
		case <-batchCtx.Done():
			break collect
		}
	}

	// keep whatever finished just before the deadline
	for drained := false; !drained; {
		select {
		case r := <-resultCh:
			place(r)
		default:
			drained = true
		}
	}

	incomplete := 0
	for i, ok := range filled {
		if ok {
			continue
		}
		incomplete++
		out.Results[i] = contracts.TickerResult{
			Ticker: tickers[i],
			Err:    fmt.Errorf("%s: %w: %v", tickers[i], contracts.ErrIncomplete, batchCtx.Err()),
		}
		c.metrics.TickerScreened("incomplete", 0)
	}

	out.Outcome = outcome(out.Results, incomplete)
	out.VIX = c.fetchVIX(ctx, log)
	out.FinishedAt = c.now()
	c.metrics.BatchFinished(string(out.Outcome))

	log.WithFields(map[string]interface{}{
		"outcome":     string(out.Outcome),
		"reports":     len(out.Reports()),
		"incomplete":  incomplete,
		"duration_ms": out.FinishedAt.Sub(out.StartedAt).Milliseconds(),
	}).Info("Batch completed")

	return out
}

// worker processes jobs until the channel is drained.
// Jobs picked up after the deadline are reported as incomplete.
func (c *Coordinator) worker(ctx context.Context, s contracts.TickerScreener, jobCh <-chan job, resultCh chan<- indexedResult) {
	for j := range jobCh {
		select {
		case <-ctx.Done():
			resultCh <- indexedResult{index: j.index, result: contracts.TickerResult{
				Ticker: j.ticker,
				Err:    fmt.Errorf("%s: %w: %v", j.ticker, contracts.ErrIncomplete, ctx.Err()),
			}}
			continue
		default:
		}

		resultCh <- indexedResult{index: j.index, result: c.screenOne(ctx, s, j.ticker)}
	}
}

// screenOne isolates a misbehaving screener from the rest of the batch
func (c *Coordinator) screenOne(ctx context.Context, s contracts.TickerScreener, ticker string) (res contracts.TickerResult) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.WithField("ticker", ticker).Errorf("Screener panic: %v", r)
			res = contracts.TickerResult{Ticker: ticker, Err: fmt.Errorf("screen %s: panic: %v", ticker, r)}
		}
	}()

	res = s.Screen(ctx, ticker)
	res.Ticker = ticker
	return res
}

func (c *Coordinator) fetchVIX(ctx context.Context, log *logger.Logger) *float64 {
	if c.vix == nil || ctx.Err() != nil {
		return nil
	}
	v, err := c.vix.FetchVIX(ctx)
	if err != nil {
		log.WithError(err).Warn("VIX unavailable")
		return nil
	}
	return &v
}

func outcome(results []contracts.TickerResult, incomplete int) contracts.BatchOutcome {
	if incomplete > 0 {
		return contracts.OutcomeIncomplete
	}
	for _, r := range results {
		if r.OK() {
			return contracts.OutcomeSuccess
		}
	}
	return contracts.OutcomeAllFailed
}
