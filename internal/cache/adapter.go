package cache

import (
	"context"
	"strings"
	"time"

	"github.com/wonny/supersignal/internal/contracts"
	"github.com/wonny/supersignal/internal/provider"
	"github.com/wonny/supersignal/pkg/logger"
	"github.com/wonny/supersignal/pkg/redis"
)

// CachedAdapter serves field sets from a Store and fills it on a miss.
// Failed fetches are never cached.
type CachedAdapter struct {
	inner  provider.Adapter
	store  Store
	ttl    time.Duration
	logger *logger.Logger
}

// WrapAdapter decorates a provider adapter with a cache
func WrapAdapter(inner provider.Adapter, store Store, ttl time.Duration, log *logger.Logger) *CachedAdapter {
	return &CachedAdapter{
		inner:  inner,
		store:  store,
		ttl:    ttl,
		logger: log.Module("cache"),
	}
}

// Name implements provider.Adapter
func (c *CachedAdapter) Name() contracts.Source {
	return c.inner.Name()
}

// Fetch implements provider.Adapter
func (c *CachedAdapter) Fetch(ctx context.Context, ticker string) (*contracts.RawFieldSet, error) {
	key := redis.FieldSetKey(string(c.inner.Name()), strings.ToUpper(ticker))

	var cached contracts.RawFieldSet
	found, err := c.store.Get(ctx, key, &cached)
	if err != nil {
		// a broken cache must not break screening
		c.logger.WithError(err).WithField("key", key).Warn("Cache read failed")
	}
	if found {
		c.logger.WithField("key", key).Debug("Cache hit")
		return &cached, nil
	}

	set, err := c.inner.Fetch(ctx, ticker)
	if err != nil {
		return nil, err
	}

	if err := c.store.Set(ctx, key, set, c.ttl); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Cache write failed")
	}
	return set, nil
}

// Invalidate drops the cached field set for ticker
func (c *CachedAdapter) Invalidate(ctx context.Context, ticker string) error {
	return c.store.Delete(ctx, redis.FieldSetKey(string(c.inner.Name()), strings.ToUpper(ticker)))
}

// VIXSource fetches the current VIX level
type VIXSource interface {
	FetchVIX(ctx context.Context) (float64, error)
}

// CachedVIX shares one VIX quote across batches for the TTL
type CachedVIX struct {
	src   VIXSource
	store Store
	ttl   time.Duration
}

// WrapVIX decorates a VIX source with a cache
func WrapVIX(src VIXSource, store Store, ttl time.Duration) *CachedVIX {
	return &CachedVIX{src: src, store: store, ttl: ttl}
}

// FetchVIX implements VIXSource
func (c *CachedVIX) FetchVIX(ctx context.Context) (float64, error) {
	return GetOrSet(ctx, c.store, "vix", c.ttl, func() (float64, error) {
		return c.src.FetchVIX(ctx)
	})
}
