package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"PerfScope/internal/domain/models"
	"PerfScope/internal/usecase"
	"PerfScope/pkg/config"
	xhttp "PerfScope/pkg/http"
	applogger "PerfScope/pkg/logger"
)

// App encapsulates the application lifecycle.
type App struct {
	cfg         *config.Config
	log         *applogger.Logger
	backtester  *usecase.Backtester
	httpHandler xhttp.Handler
	httpServer  *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(cfg *config.Config, l *applogger.Logger, bt *usecase.Backtester, h xhttp.Handler) *App {
	return &App{
		cfg:         cfg,
		log:         l,
		backtester:  bt,
		httpHandler: h,
	}
}

// Logger returns the application logger.
func (a *App) Logger() *applogger.Logger { return a.log }

// Backtest runs a single batch outside the HTTP server.
func (a *App) Backtest(ctx context.Context, req usecase.BatchRequest) (*models.BatchResult, error) {
	return a.backtester.Run(ctx, req)
}

// Run starts the HTTP server and blocks until interrupted.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.Serve(ctx)
}

// Serve starts the HTTP server and blocks until ctx is done.
func (a *App) Serve(ctx context.Context) error {
	a.httpServer = xhttp.NewServer(a.httpHandler, a.log,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithSlowThreshold(a.cfg.Server.SlowThreshold),
		xhttp.WithMetrics(a.cfg.Metrics.Enabled, a.cfg.Metrics.Path),
	)

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("perfscope started",
		applogger.String("env", a.cfg.Environment),
		applogger.String("provider", a.cfg.Provider.Type),
		applogger.Int("workers", a.cfg.Engine.Workers),
	)

	<-ctx.Done()
	a.log.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown gracefully stops the HTTP server. Infrastructure clients are
// closed by the cleanup returned from the injector.
func (a *App) shutdown() error {
	if err := a.httpServer.Stop(context.Background()); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
		return err
	}
	a.log.Info("shutdown complete")
	return nil
}
