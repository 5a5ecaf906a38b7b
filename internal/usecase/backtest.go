package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"PerfScope/internal/domain/models"
	domrepo "PerfScope/internal/domain/repository"
	"PerfScope/internal/services/performance"
	"PerfScope/pkg/logger"
	xutil "PerfScope/pkg/util"
)

// BacktestConfig bounds one batch.
type BacktestConfig struct {
	Workers    int
	MaxTickers int
	Timeout    time.Duration
}

// BatchRequest is one backtest over a list of tickers and a date range.
type BatchRequest struct {
	Tickers       []string
	Start         time.Time
	End           time.Time
	IncludeSeries bool
}

// Backtester fetches prices for every requested ticker and runs the metrics
// engine on each. Per-ticker failures become warnings; only request-level
// problems fail the whole batch.
type Backtester struct {
	provider  domrepo.PriceProvider
	publisher domrepo.ReportPublisher
	metrics   domrepo.Metrics
	log       *logger.Logger
	cfg       BacktestConfig
}

// NewBacktester creates a Backtester. publisher and metrics may be nil.
func NewBacktester(provider domrepo.PriceProvider, cfg BacktestConfig, publisher domrepo.ReportPublisher, metrics domrepo.Metrics, l *logger.Logger) *Backtester {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.MaxTickers < 1 {
		cfg.MaxTickers = 25
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if l == nil {
		l = logger.NewNop()
	}
	return &Backtester{provider: provider, publisher: publisher, metrics: metrics, log: l, cfg: cfg}
}

type outcome struct {
	report *models.MetricsReport
	err    error
}

// Run executes the batch. Reports and warnings keep the order of the
// normalized ticker list.
func (b *Backtester) Run(ctx context.Context, req BatchRequest) (*models.BatchResult, error) {
	began := time.Now()
	defer func() { b.metrics.RecordLatency("batch", time.Since(began).Seconds()) }()

	start, end := xutil.TruncateDay(req.Start), xutil.TruncateDay(req.End)
	if !start.Before(end) {
		b.metrics.RecordError(models.KindInvalidRange)
		return nil, fmt.Errorf("%w: start %s must be before end %s", models.ErrInvalidRange,
			start.Format(xutil.DateLayout), end.Format(xutil.DateLayout))
	}

	tickers := ParseTickers(req.Tickers...)
	switch {
	case len(tickers) == 0:
		b.metrics.RecordError("no_tickers")
		return nil, models.ErrNoTickers
	case len(tickers) > b.cfg.MaxTickers:
		b.metrics.RecordError("too_many_tickers")
		return nil, fmt.Errorf("%w: %d > %d", models.ErrTooManyTickers, len(tickers), b.cfg.MaxTickers)
	}

	if b.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.cfg.Timeout)
		defer cancel()
	}

	outcomes := make([]outcome, len(tickers))
	valid := make([]int, 0, len(tickers))
	for i, t := range tickers {
		if err := ValidateTicker(t); err != nil {
			outcomes[i].err = &models.TickerError{Ticker: t, Err: err}
			continue
		}
		valid = append(valid, i)
	}

	opts := performance.Options{IncludeSeries: req.IncludeSeries}
	b.process(ctx, tickers, valid, outcomes, start, end, opts)

	res := &models.BatchResult{
		Start:    start,
		End:      end,
		Reports:  make([]*models.MetricsReport, 0, len(valid)),
		Warnings: make([]models.Warning, 0),
	}
	upstreamFailures := 0
	for i, o := range outcomes {
		if o.err != nil {
			w := models.NewWarning(tickers[i], o.err)
			if w.Kind == models.KindUpstreamFetch {
				upstreamFailures++
			}
			res.Warnings = append(res.Warnings, w)
			b.metrics.RecordWarning(w.Kind)
			b.log.Warn("ticker skipped",
				logger.String("ticker", tickers[i]),
				logger.String("kind", w.Kind),
				logger.Error(o.err),
			)
			continue
		}
		res.Reports = append(res.Reports, o.report)
		b.metrics.RecordReport(o.report.Ticker)
		b.metrics.RecordLastPrice(o.report.Ticker, o.report.LastPrice)
	}

	if len(valid) > 0 && upstreamFailures == len(valid) {
		b.metrics.RecordError(models.KindUpstreamFetch)
		return nil, fmt.Errorf("%w: all %d tickers failed to fetch", models.ErrUpstreamFetch, len(valid))
	}

	b.publish(ctx, res.Reports)

	b.log.Info("backtest finished",
		logger.Strings("tickers", tickers),
		logger.String("start", start.Format(xutil.DateLayout)),
		logger.String("end", end.Format(xutil.DateLayout)),
		logger.Int("reports", len(res.Reports)),
		logger.Int("warnings", len(res.Warnings)),
		logger.Duration("duration_ms", time.Since(began)),
	)
	return res, nil
}

// process fans valid tickers out to a bounded pool of workers. Each worker
// writes only its own outcome slot.
func (b *Backtester) process(ctx context.Context, tickers []string, valid []int, outcomes []outcome, start, end time.Time, opts performance.Options) {
	if len(valid) == 0 {
		return
	}
	workers := b.cfg.Workers
	if workers > len(valid) {
		workers = len(valid)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				report, err := b.analyze(ctx, tickers[i], start, end, opts)
				outcomes[i] = outcome{report: report, err: err}
			}
		}()
	}
	for _, i := range valid {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
}

func (b *Backtester) analyze(ctx context.Context, ticker string, start, end time.Time, opts performance.Options) (*models.MetricsReport, error) {
	fetchStart := time.Now()
	prices, err := b.provider.DailyCloses(ctx, ticker, start, end)
	b.metrics.RecordLatency("fetch", time.Since(fetchStart).Seconds())
	if err != nil {
		if models.WarningKind(err) == models.KindInternal {
			err = fmt.Errorf("%w: %v", models.ErrUpstreamFetch, err)
		}
		return nil, &models.TickerError{Ticker: ticker, Err: err}
	}

	analyzeStart := time.Now()
	report, err := performance.Analyze(ticker, prices, start, end, opts)
	b.metrics.RecordLatency("analyze", time.Since(analyzeStart).Seconds())
	if err != nil {
		return nil, &models.TickerError{Ticker: ticker, Err: err}
	}
	return report, nil
}

func (b *Backtester) publish(ctx context.Context, reports []*models.MetricsReport) {
	if b.publisher == nil {
		return
	}
	for _, r := range reports {
		if err := b.publisher.Publish(ctx, r); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			b.metrics.RecordError("publish")
			b.log.Error("publish report failed", logger.String("ticker", r.Ticker), logger.Error(err))
		}
	}
}

type nopMetrics struct{}

func (nopMetrics) RecordReport(string)             {}
func (nopMetrics) RecordWarning(string)            {}
func (nopMetrics) RecordError(string)              {}
func (nopMetrics) RecordLastPrice(string, float64) {}
func (nopMetrics) RecordLatency(string, float64)   {}
