// Package yahoo fetches daily closing prices from Yahoo Finance through go-yfinance.
package yahoo

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"PerfScope/internal/domain/models"
	"PerfScope/internal/service/ratelimit"
	"PerfScope/pkg/logger"
	xutil "PerfScope/pkg/util"

	"github.com/sony/gobreaker"
	yfclient "github.com/wnjoon/go-yfinance/pkg/client"
	yfmodels "github.com/wnjoon/go-yfinance/pkg/models"
	"github.com/wnjoon/go-yfinance/pkg/ticker"
)

// go-yfinance sends every chart request to this host.
const limiterKey = "query2.finance.yahoo.com"

var errAttemptTimeout = errors.New("attempt timed out")

// HistorySource returns daily bars for symbol in [start, end) together with
// the exchange GMT offset in seconds.
type HistorySource interface {
	History(symbol string, start, end time.Time, adjusted bool) ([]yfmodels.Bar, int, error)
	Close()
}

// Client implements repository.PriceProvider on top of a HistorySource.
// Failed attempts are retried with doubling backoff; a missing symbol or an
// empty chart ends the fetch immediately as no data.
type Client struct {
	source      HistorySource
	userAgent   string
	maxAttempts int
	backoff     time.Duration
	adjusted    bool
	timeout     time.Duration
	limiter     *ratelimit.Limiter
	breaker     *gobreaker.CircuitBreaker
	log         *logger.Logger
}

// Option configures Client.
type Option func(*Client)

// New creates a Yahoo client. Without WithSource it uses go-yfinance.
func New(opts ...Option) (*Client, error) {
	c := &Client{
		maxAttempts: 3,
		backoff:     500 * time.Millisecond,
		adjusted:    true,
		timeout:     15 * time.Second,
		limiter:     ratelimit.New(2, 4),
		log:         logger.NewNop(),
	}

	for _, opt := range opts {
		opt(c)
	}
	if c.breaker == nil {
		c.breaker = c.newBreaker(5, 30*time.Second)
	}
	if c.source == nil {
		src, err := newTickerSource(c.userAgent, c.timeout)
		if err != nil {
			return nil, fmt.Errorf("yahoo client: %w", err)
		}
		c.source = src
	}
	return c, nil
}

// WithSource replaces the go-yfinance history source.
func WithSource(src HistorySource) Option {
	return func(c *Client) {
		if src != nil {
			c.source = src
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithTimeout sets the per-attempt timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRetry sets the number of attempts and the base backoff between them.
// The backoff doubles after every attempt.
func WithRetry(maxAttempts int, backoff time.Duration) Option {
	return func(c *Client) {
		if maxAttempts > 0 {
			c.maxAttempts = maxAttempts
		}
		c.backoff = backoff
	}
}

// WithRateLimit limits chart requests.
func WithRateLimit(perSec float64, burst int) Option {
	return func(c *Client) {
		c.limiter = ratelimit.New(perSec, burst)
	}
}

// WithBreaker opens the circuit after maxFailures consecutive upstream
// failures and keeps it open for openTimeout.
func WithBreaker(maxFailures uint32, openTimeout time.Duration) Option {
	return func(c *Client) {
		if maxFailures == 0 {
			maxFailures = 5
		}
		c.breaker = c.newBreaker(maxFailures, openTimeout)
	}
}

// WithAdjusted selects split/dividend adjusted closes.
func WithAdjusted(adjusted bool) Option {
	return func(c *Client) {
		c.adjusted = adjusted
	}
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// Close releases the history source.
func (c *Client) Close() {
	c.source.Close()
}

// DailyCloses returns daily closes for symbol with dates in [start, end).
func (c *Client) DailyCloses(ctx context.Context, symbol string, start, end time.Time) (models.PriceSeries, error) {
	if !end.After(start) {
		return nil, fmt.Errorf("%w: end %s is not after start %s", models.ErrInvalidRange,
			end.Format(xutil.DateLayout), start.Format(xutil.DateLayout))
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", models.ErrUpstreamFetch, symbol, err)
	}

	res, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetch(ctx, symbol, start, end)
	})
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNoDataAvailable), errors.Is(err, models.ErrUpstreamFetch):
			return nil, err
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			return nil, fmt.Errorf("%w: %s: circuit %v", models.ErrUpstreamFetch, symbol, err)
		default:
			return nil, fmt.Errorf("%w: %s: %v", models.ErrUpstreamFetch, symbol, err)
		}
	}
	return res.(models.PriceSeries), nil
}

func (c *Client) fetch(ctx context.Context, symbol string, start, end time.Time) (models.PriceSeries, error) {
	var lastErr error
	delay := c.backoff

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		bars, offset, err := c.history(ctx, symbol, start, end)
		if err == nil {
			return toSeries(symbol, bars, offset, start, end)
		}
		if isNoData(err) {
			return nil, fmt.Errorf("%w: %s", models.ErrNoDataAvailable, symbol)
		}
		if ctxErr := callerErr(ctx, err); ctxErr != nil {
			return nil, fmt.Errorf("%w: %s: %w", models.ErrUpstreamFetch, symbol, ctxErr)
		}
		lastErr = err
		c.log.Warn("yahoo request failed",
			logger.String("ticker", symbol),
			logger.Int("attempt", attempt),
			logger.Error(err),
		)

		if attempt < c.maxAttempts && delay > 0 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %s: %w", models.ErrUpstreamFetch, symbol, ctx.Err())
			case <-time.After(delay):
			}
			delay *= 2
		}
	}

	return nil, fmt.Errorf("%w: %s: %v", models.ErrUpstreamFetch, symbol, lastErr)
}

type historyResult struct {
	bars   []yfmodels.Bar
	offset int
	err    error
}

// history runs one blocking go-yfinance call bounded by ctx and the
// per-attempt timeout.
func (c *Client) history(ctx context.Context, symbol string, start, end time.Time) ([]yfmodels.Bar, int, error) {
	if err := c.limiter.Wait(ctx, limiterKey); err != nil {
		if ctx.Err() != nil {
			return nil, 0, ctx.Err()
		}
		// rate.Limiter refuses waits that would outlive the deadline.
		return nil, 0, fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
	}

	done := make(chan historyResult, 1)
	go func() {
		bars, offset, err := c.source.History(symbol, start, end, c.adjusted)
		done <- historyResult{bars: bars, offset: offset, err: err}
	}()

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil, 0, ctx.Err()
	case <-timer.C:
		return nil, 0, fmt.Errorf("%w after %s", errAttemptTimeout, c.timeout)
	case r := <-done:
		return r.bars, r.offset, r.err
	}
}

// toSeries keeps positive closes whose exchange-local day falls in [start, end).
func toSeries(symbol string, bars []yfmodels.Bar, offset int, start, end time.Time) (models.PriceSeries, error) {
	shift := time.Duration(offset) * time.Second
	series := make(models.PriceSeries, 0, len(bars))

	for _, b := range bars {
		if b.Close <= 0 || math.IsNaN(b.Close) || math.IsInf(b.Close, 0) {
			continue
		}
		d := b.Date.Add(shift).UTC().Truncate(24 * time.Hour)
		if d.Before(start) || !d.Before(end) {
			continue
		}
		if n := len(series); n > 0 && !d.After(series[n-1].Date) {
			if d.Equal(series[n-1].Date) {
				series[n-1].Value = b.Close
			}
			continue
		}
		series = append(series, models.Point{Date: d, Value: b.Close})
	}

	if len(series) == 0 {
		return nil, fmt.Errorf("%w: %s", models.ErrNoDataAvailable, symbol)
	}
	return series, nil
}

func isNoData(err error) bool {
	if yfclient.IsNotFoundError(err) || yfclient.IsNoDataError(err) || yfclient.IsInvalidSymbolError(err) {
		return true
	}
	// Chart errors reach us as plain "API error: <description>" strings.
	return strings.Contains(err.Error(), "No data found")
}

// callerErr returns the caller's context error when err came from ctx ending
// rather than from Yahoo.
func callerErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}

func (c *Client) newBreaker(maxFailures uint32, openTimeout time.Duration) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:          "yahoo",
		Timeout:       openTimeout,
		ReadyToTrip:   tripAfter(maxFailures),
		IsSuccessful:  isSuccessful,
		OnStateChange: c.onStateChange,
	})
}

func (c *Client) onStateChange(name string, from, to gobreaker.State) {
	c.log.Warn("circuit breaker state changed",
		logger.String("breaker", name),
		logger.String("from", from.String()),
		logger.String("to", to.String()),
	)
}

func tripAfter(n uint32) func(gobreaker.Counts) bool {
	return func(counts gobreaker.Counts) bool {
		return counts.ConsecutiveFailures >= n
	}
}

// Missing symbols and callers giving up say nothing about Yahoo's health.
func isSuccessful(err error) bool {
	return err == nil ||
		errors.Is(err, models.ErrNoDataAvailable) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

type tickerSource struct {
	client *yfclient.Client
}

func newTickerSource(userAgent string, timeout time.Duration) (*tickerSource, error) {
	secs := int(math.Ceil(timeout.Seconds()))
	if secs < 1 {
		secs = 1
	}
	opts := []yfclient.ClientOption{yfclient.WithTimeout(secs)}
	if userAgent != "" {
		opts = append(opts, yfclient.WithUserAgent(userAgent))
	}
	client, err := yfclient.New(opts...)
	if err != nil {
		return nil, err
	}
	return &tickerSource{client: client}, nil
}

func (s *tickerSource) History(symbol string, start, end time.Time, adjusted bool) ([]yfmodels.Bar, int, error) {
	t, err := ticker.New(symbol, ticker.WithClient(s.client))
	if err != nil {
		return nil, 0, err
	}
	defer t.Close()

	bars, err := t.History(yfmodels.HistoryParams{
		Start:      &start,
		End:        &end,
		Interval:   "1d",
		AutoAdjust: adjusted,
	})
	if err != nil {
		return nil, 0, err
	}

	offset := 0
	if meta := t.GetHistoryMetadata(); meta != nil {
		offset = meta.GMTOffset
	}
	return bars, offset, nil
}

func (s *tickerSource) Close() {
	s.client.Close()
}
