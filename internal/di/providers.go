package di

import (
	"context"
	"fmt"

	"PerfScope/internal/domain/repository"
	"PerfScope/internal/handler/api"
	internalrepo "PerfScope/internal/repository"
	"PerfScope/internal/service/yahoo"
	"PerfScope/internal/usecase"
	"PerfScope/pkg/cache"
	pkgch "PerfScope/pkg/clickhouse"
	"PerfScope/pkg/config"
	xhttp "PerfScope/pkg/http"
	pkgkafka "PerfScope/pkg/kafka"
	applogger "PerfScope/pkg/logger"
	"PerfScope/pkg/metrics"
	"PerfScope/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder on the default registry.
func ProvideMetrics() repository.Metrics {
	return metrics.New(nil)
}

// ProvideCache creates the price cache: in-memory, or memory in front of
// Redis when Redis is enabled. Returns nil when caching is disabled.
func ProvideCache(cfg *config.Config, l *applogger.Logger) (cache.Service, func(), error) {
	if !cfg.Cache.Enabled {
		return nil, func() {}, nil
	}

	if !cfg.Cache.Redis.Enabled {
		mc := cache.NewMemoryCache(
			cache.WithMemoryMaxSize(cfg.Cache.MemoryMaxSize),
			cache.WithMemoryCleanup(cfg.Cache.CleanupInterval),
		)
		return mc, func() { _ = mc.Close() }, nil
	}

	rc, err := cache.NewRedisCache(
		cache.WithRedisHost(cfg.Cache.Redis.Host),
		cache.WithRedisPort(cfg.Cache.Redis.Port),
		cache.WithRedisPassword(cfg.Cache.Redis.Password),
		cache.WithRedisDB(cfg.Cache.Redis.DB),
		cache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("redis cache: %w", err)
	}
	lc := cache.NewLayeredCache(rc,
		cache.WithLayeredMemorySize(cfg.Cache.MemoryMaxSize),
		cache.WithLayeredMemoryTTL(cfg.Cache.TTL),
	)
	l.Info("redis cache connected",
		applogger.String("host", cfg.Cache.Redis.Host),
		applogger.Int("port", cfg.Cache.Redis.Port),
	)
	return lc, func() { _ = lc.Close() }, nil
}

// ProvideClickHouseClient creates a ClickHouse client for the clickhouse
// provider and returns nil otherwise.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, func(), error) {
	if cfg.Provider.Type != "clickhouse" {
		return nil, func() {}, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, func() { _ = client.Close() }, nil
}

// ProvidePriceProvider selects the configured price source and wraps it with
// the cache when one is available.
func ProvidePriceProvider(cfg *config.Config, l *applogger.Logger, ch *pkgch.Client, c cache.Service) (repository.PriceProvider, func(), error) {
	var provider repository.PriceProvider
	cleanup := func() {}

	switch cfg.Provider.Type {
	case "clickhouse":
		store, err := internalrepo.NewCHPriceStore(ch, cfg.ClickHouse.Database+"."+cfg.ClickHouse.Table)
		if err != nil {
			return nil, nil, err
		}
		store.SetLogger(l)
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ClickHouse.DialTimeout)
		defer cancel()
		if err := ch.InitSchema(ctx, store.SchemaStatements()); err != nil {
			return nil, nil, fmt.Errorf("clickhouse schema: %w", err)
		}
		provider = store
	default:
		yc, err := yahoo.New(
			yahoo.WithUserAgent(cfg.Yahoo.UserAgent),
			yahoo.WithTimeout(cfg.Yahoo.Timeout),
			yahoo.WithRetry(cfg.Yahoo.MaxAttempts, cfg.Yahoo.Backoff),
			yahoo.WithRateLimit(cfg.Yahoo.RatePerSec, cfg.Yahoo.Burst),
			yahoo.WithBreaker(cfg.Yahoo.Breaker.MaxFailures, cfg.Yahoo.Breaker.OpenTimeout),
			yahoo.WithAdjusted(cfg.Yahoo.Adjusted),
			yahoo.WithLogger(l),
		)
		if err != nil {
			return nil, nil, err
		}
		provider = yc
		cleanup = yc.Close
	}

	if c == nil {
		return provider, cleanup, nil
	}
	return internalrepo.NewCachedPriceProvider(provider, c, cfg.Cache.TTL, l), cleanup, nil
}

// ProvideReportPublisher creates the Kafka report publisher when Kafka is
// enabled and returns nil otherwise.
func ProvideReportPublisher(cfg *config.Config) (repository.ReportPublisher, func(), error) {
	if !cfg.Kafka.Enabled {
		return nil, func() {}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithTopic(cfg.Kafka.Topic),
		pkgkafka.WithAutoCreateTopic(cfg.Kafka.AutoCreateTopic),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	pub := internalrepo.NewKafkaReportPublisher(producer)
	return pub, func() { _ = pub.Close() }, nil
}

// ProvideBacktester creates the batch backtest use case.
func ProvideBacktester(
	cfg *config.Config,
	provider repository.PriceProvider,
	pub repository.ReportPublisher,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.Backtester {
	return usecase.NewBacktester(provider, usecase.BacktestConfig{
		Workers:    cfg.Engine.Workers,
		MaxTickers: cfg.Engine.MaxTickers,
		Timeout:    cfg.Engine.Timeout,
	}, pub, m, l)
}

// ProvideHTTPHandler creates the echo route handler.
func ProvideHTTPHandler(l *applogger.Logger, bt *usecase.Backtester) xhttp.Handler {
	return api.NewBacktestEchoHandler(l, bt)
}

// ProvideApp creates the application server.
func ProvideApp(cfg *config.Config, l *applogger.Logger, bt *usecase.Backtester, h xhttp.Handler) *server.App {
	return server.New(cfg, l, bt, h)
}
