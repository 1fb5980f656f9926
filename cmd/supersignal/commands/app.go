package commands

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/time/rate"

	"github.com/wonny/supersignal/internal/batch"
	"github.com/wonny/supersignal/internal/cache"
	"github.com/wonny/supersignal/internal/contracts"
	"github.com/wonny/supersignal/internal/external/finviz"
	"github.com/wonny/supersignal/internal/external/yahoo"
	"github.com/wonny/supersignal/internal/merge"
	"github.com/wonny/supersignal/internal/pipeline"
	"github.com/wonny/supersignal/internal/provider"
	"github.com/wonny/supersignal/internal/risk"
	"github.com/wonny/supersignal/internal/screenconfig"
	"github.com/wonny/supersignal/pkg/config"
	"github.com/wonny/supersignal/pkg/database"
	"github.com/wonny/supersignal/pkg/httputil"
	"github.com/wonny/supersignal/pkg/logger"
	"github.com/wonny/supersignal/pkg/metrics"
	"github.com/wonny/supersignal/pkg/redis"
)

const keyPrefix = "supersignal"

// app holds everything a command needs to screen tickers
type app struct {
	cfg         *config.Config
	log         *logger.Logger
	screenCfg   *screenconfig.Config
	configHash  string
	metrics     *metrics.Recorder
	store       cache.Store
	coordinator *batch.Coordinator

	closers []func()
}

// appOptions are per-command overrides of the environment config
type appOptions struct {
	screenConfig string
	noCache      bool
}

// newApp wires config, logging, cache, providers and the batch coordinator
func newApp(ctx context.Context, cfg *config.Config, opts appOptions) (*app, error) {
	a := &app{cfg: cfg, log: logger.New(cfg)}

	path := cfg.Screen.ConfigFile
	if opts.screenConfig != "" {
		path = opts.screenConfig
	}
	screenCfg, _, err := screenconfig.Load(path)
	if err != nil {
		return nil, err
	}
	a.screenCfg = screenCfg

	if a.configHash, err = screenconfig.Hash(screenCfg); err != nil {
		return nil, fmt.Errorf("hash screening config: %w", err)
	}

	if cfg.MetricsEnabled {
		a.metrics = metrics.New()
	}

	rc, err := redis.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() { _ = rc.Close() })

	backend := cfg.Cache.Backend
	if opts.noCache {
		backend = "none"
	}
	if a.store, err = a.newStore(ctx, backend, rc); err != nil {
		a.Close()
		return nil, err
	}

	var (
		adapters []provider.Adapter
		vix      batch.VIXSource
	)
	if cfg.Yahoo.Enabled {
		hc := httputil.New(cfg.HTTP, a.log).WithLimiter(newLimiter(rc, "yahoo", cfg.Yahoo))
		yc := yahoo.NewClient(hc, a.log, cfg.Yahoo, cfg.Screen.DirectorsLimit)
		adapters = append(adapters, cache.WrapAdapter(yc, a.store, cfg.Cache.TTL, a.log))
		vix = cache.WrapVIX(yc, a.store, redis.TTLShort)
	}
	if cfg.Finviz.Enabled {
		hc := httputil.New(cfg.HTTP, a.log).WithLimiter(newLimiter(rc, "finviz", cfg.Finviz))
		fc := finviz.NewClient(hc, a.log, cfg.Finviz)
		adapters = append(adapters, cache.WrapAdapter(fc, a.store, cfg.Cache.TTL, a.log))
	}

	policy, err := screenCfg.Policy()
	if err != nil {
		a.Close()
		return nil, err
	}
	merger, err := merge.New(policy)
	if err != nil {
		a.Close()
		return nil, err
	}
	engine, err := risk.NewEngine(screenCfg.Thresholds)
	if err != nil {
		a.Close()
		return nil, err
	}

	p, err := pipeline.New(adapters, merger, engine, cfg.Screen.FetchTimeout, a.log, pipeline.WithMetrics(a.metrics))
	if err != nil {
		a.Close()
		return nil, err
	}

	coordOpts := []batch.Option{
		batch.WithConfigHash(a.configHash),
		batch.WithMetrics(a.metrics),
	}
	if vix != nil {
		coordOpts = append(coordOpts, batch.WithVIX(vix))
	}
	a.coordinator = batch.NewCoordinator(
		func(e *risk.Engine) contracts.TickerScreener { return p.WithEngine(e) },
		batch.Config{Workers: cfg.Screen.Workers, BatchTimeout: cfg.Screen.BatchTimeout},
		a.log,
		coordOpts...,
	)

	a.log.WithFields(map[string]interface{}{
		"providers":   len(adapters),
		"cache":       backend,
		"workers":     cfg.Screen.Workers,
		"config_hash": a.configHash[:12],
	}).Debug("Screener ready")

	return a, nil
}

func (a *app) newStore(ctx context.Context, backend string, rc *redis.Client) (cache.Store, error) {
	switch strings.ToLower(backend) {
	case "memory":
		return cache.NewMemoryStore(), nil
	case "redis":
		return redis.NewCache(rc, keyPrefix), nil
	case "postgres":
		db, err := database.New(ctx, a.cfg.Database)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		return cache.NewPostgresStore(ctx, db.Pool)
	default:
		return cache.NopStore{}, nil
	}
}

// newLimiter shares the provider budget through Redis when it is available
func newLimiter(rc *redis.Client, name string, p config.ProviderConfig) httputil.Limiter {
	if rc.Enabled() {
		return redis.NewRateLimiter(rc, keyPrefix).Bind(redis.PerSecond(name, int(p.RatePerSec)))
	}
	burst := p.Burst
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(p.RatePerSec), burst)
}

// Close releases connections in reverse order
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
