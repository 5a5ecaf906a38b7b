package repository

import (
	"context"
	"errors"
	"time"

	"PerfScope/internal/domain/models"
	domrepo "PerfScope/internal/domain/repository"
	"PerfScope/pkg/cache"
	applogger "PerfScope/pkg/logger"
	xutil "PerfScope/pkg/util"
)

// CachedPriceProvider serves DailyCloses from a cache and falls through to the
// wrapped provider on a miss. Only successful fetches are cached; cache
// failures are logged and never fail the fetch.
type CachedPriceProvider struct {
	next  domrepo.PriceProvider
	cache cache.Service
	ttl   time.Duration
	l     *applogger.Logger
}

// NewCachedPriceProvider wraps next with c.
func NewCachedPriceProvider(next domrepo.PriceProvider, c cache.Service, ttl time.Duration, l *applogger.Logger) *CachedPriceProvider {
	if l == nil {
		l = applogger.NewNop()
	}
	return &CachedPriceProvider{next: next, cache: c, ttl: ttl, l: l}
}

func closesKey(ticker string, start, end time.Time) string {
	return cache.GenerateKeyWithParams("closes", ticker,
		start.Format(xutil.DateLayout), end.Format(xutil.DateLayout))
}

// DailyCloses implements domrepo.PriceProvider.
func (p *CachedPriceProvider) DailyCloses(ctx context.Context, ticker string, start, end time.Time) (models.PriceSeries, error) {
	key := closesKey(ticker, start, end)

	var cached models.PriceSeries
	err := p.cache.Get(ctx, key, &cached)
	switch {
	case err == nil && len(cached) > 0:
		p.l.Debug("price cache hit", applogger.String("key", key))
		return cached, nil
	case err != nil && !errors.Is(err, cache.ErrCacheMiss):
		p.l.Warn("price cache read failed", applogger.String("key", key), applogger.Error(err))
	}

	series, err := p.next.DailyCloses(ctx, ticker, start, end)
	if err != nil {
		return nil, err
	}

	if err := p.cache.Set(ctx, key, series, p.ttl); err != nil {
		p.l.Warn("price cache write failed", applogger.String("key", key), applogger.Error(err))
	}
	return series, nil
}
