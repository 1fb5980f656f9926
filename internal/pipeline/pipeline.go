package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/wonny/supersignal/internal/contracts"
	"github.com/wonny/supersignal/internal/merge"
	"github.com/wonny/supersignal/internal/provider"
	"github.com/wonny/supersignal/internal/report"
	"github.com/wonny/supersignal/internal/risk"
	"github.com/wonny/supersignal/pkg/logger"
	"github.com/wonny/supersignal/pkg/metrics"
)

// Pipeline screens one ticker: fetch from every adapter in parallel,
// merge, evaluate rules, assemble the report.
// ⭐ SSOT: ticker 단위 처리 흐름은 여기서만
type Pipeline struct {
	adapters     []provider.Adapter
	merger       *merge.Merger
	engine       *risk.Engine
	fetchTimeout time.Duration
	metrics      *metrics.Recorder
	logger       *logger.Logger
	now          func() time.Time
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithMetrics records per-ticker metrics
func WithMetrics(rec *metrics.Recorder) Option {
	return func(p *Pipeline) { p.metrics = rec }
}

// WithClock overrides the report timestamp source
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// New creates a Pipeline. fetchTimeout bounds each adapter call; 0 means no bound.
func New(adapters []provider.Adapter, merger *merge.Merger, engine *risk.Engine, fetchTimeout time.Duration, log *logger.Logger, opts ...Option) (*Pipeline, error) {
	if len(adapters) == 0 {
		return nil, errors.New("pipeline: at least one adapter is required")
	}
	if merger == nil || engine == nil {
		return nil, errors.New("pipeline: merger and engine are required")
	}

	p := &Pipeline{
		adapters:     adapters,
		merger:       merger,
		engine:       engine,
		fetchTimeout: fetchTimeout,
		logger:       log.Module("pipeline"),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// WithEngine returns a copy of the pipeline evaluating with e
func (p *Pipeline) WithEngine(e *risk.Engine) *Pipeline {
	cp := *p
	cp.engine = e
	return &cp
}

// Engine returns the active risk engine
func (p *Pipeline) Engine() *risk.Engine {
	return p.engine
}

type fetchOutcome struct {
	set *contracts.RawFieldSet
	err error
}

// Screen implements contracts.TickerScreener
func (p *Pipeline) Screen(ctx context.Context, ticker string) contracts.TickerResult {
	start := time.Now()
	log := p.logger.WithField("ticker", ticker)

	// slots are indexed by adapter so the merge input never depends on completion order
	outcomes := make([]fetchOutcome, len(p.adapters))
	var wg sync.WaitGroup
	for i, a := range p.adapters {
		wg.Add(1)
		go func(i int, a provider.Adapter) {
			defer wg.Done()
			set, err := provider.Call(ctx, a, ticker, p.fetchTimeout)
			outcomes[i] = fetchOutcome{set: set, err: err}
		}(i, a)
	}
	wg.Wait()

	var (
		sets      []*contracts.RawFieldSet
		srcErrors []error
	)
	for _, o := range outcomes {
		if o.err != nil {
			srcErrors = append(srcErrors, o.err)
			p.recordFailure(log, o.err)
			continue
		}
		sets = append(sets, o.set)
	}

	result := contracts.TickerResult{
		Ticker:       ticker,
		SourceErrors: srcErrors,
	}

	rec, err := p.merger.Merge(ticker, sets, srcErrors...)
	if err != nil {
		result.Err = fmt.Errorf("screen %s: %w", ticker, err)
		result.Duration = time.Since(start)
		p.metrics.TickerScreened("failed", result.Duration)
		log.WithError(err).Warn("No report produced")
		return result
	}

	flags := p.engine.Evaluate(rec)
	result.Report = report.Assemble(ticker, rec, flags, p.now())
	result.Duration = time.Since(start)

	for _, f := range result.Report.Flags {
		p.metrics.Flag(string(f.Kind), f.Severity.String())
	}
	p.metrics.TickerScreened("ok", result.Duration)

	log.WithFields(map[string]interface{}{
		"flags":         len(flags),
		"overall":       result.Report.Overall.String(),
		"source_errors": len(srcErrors),
		"duration_ms":   result.Duration.Milliseconds(),
	}).Debug("Ticker screened")

	return result
}

func (p *Pipeline) recordFailure(log *logger.Logger, err error) {
	var fe *provider.FetchError
	if !errors.As(err, &fe) {
		return
	}
	p.metrics.SourceFailure(string(fe.Source), string(fe.Kind))
	log.WithFields(map[string]interface{}{
		"source": string(fe.Source),
		"kind":   string(fe.Kind),
	}).WithError(fe.Err).Warn("Source fetch failed")
}
