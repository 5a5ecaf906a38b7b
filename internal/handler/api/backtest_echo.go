package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"PerfScope/internal/domain/models"
	"PerfScope/internal/usecase"
	xhttp "PerfScope/pkg/http"
	xlogger "PerfScope/pkg/logger"
	xutil "PerfScope/pkg/util"

	"github.com/labstack/echo/v4"
)

// BatchRunner runs one backtest batch.
type BatchRunner interface {
	Run(ctx context.Context, req usecase.BatchRequest) (*models.BatchResult, error)
}

// BacktestEchoHandler serves the backtest API.
type BacktestEchoHandler struct {
	logger *xlogger.Logger
	runner BatchRunner
	now    func() time.Time
}

func NewBacktestEchoHandler(logger *xlogger.Logger, runner BatchRunner) *BacktestEchoHandler {
	return &BacktestEchoHandler{logger: logger, runner: runner, now: time.Now}
}

func (h *BacktestEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/backtest", h.Backtest)
	g.POST("/backtest", h.Backtest)
}

// Backtest runs a batch for the tickers in the query or JSON body. Missing
// dates default to the ten years before today; end is exclusive.
func (h *BacktestEchoHandler) Backtest(c echo.Context) error {
	req := &models.BacktestRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	defStart, defEnd := xutil.DefaultRange(h.now())
	end, err := xutil.ParseDateDefault(req.End, defEnd)
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_DATETIME", "end", err.Error(), http.StatusBadRequest))
	}
	start := defStart
	if req.Start != "" {
		if start, err = xutil.ParseDate(req.Start); err != nil {
			return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_DATETIME", "start", err.Error(), http.StatusBadRequest))
		}
	} else if req.End != "" {
		start = end.AddDate(-10, 0, 0)
	}

	res, err := h.runner.Run(c.Request().Context(), usecase.BatchRequest{
		Tickers:       []string{req.Tickers},
		Start:         start,
		End:           end,
		IncludeSeries: req.IncludeSeries,
	})
	if err != nil {
		appErr := toAppError(err)
		if appErr.Status >= http.StatusInternalServerError {
			h.logger.Error("backtest usecase error", xlogger.Error(err))
		}
		return xhttp.AppErrorResponse(c, appErr)
	}

	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=300")
	return xhttp.SuccessResponse(c, res)
}

func toAppError(err error) *xhttp.AppError {
	switch {
	case errors.Is(err, models.ErrInvalidRange):
		return xhttp.NewAppError("ERR_INVALID_RANGE", "start", "start must be before end", http.StatusBadRequest).WithError(err)
	case errors.Is(err, models.ErrNoTickers):
		return xhttp.NewAppError("ERR_NO_TICKERS", "tickers", "at least one ticker is required", http.StatusBadRequest).WithError(err)
	case errors.Is(err, models.ErrTooManyTickers):
		return xhttp.NewAppError("ERR_TOO_MANY_TICKERS", "tickers", err.Error(), http.StatusBadRequest).WithError(err)
	case errors.Is(err, models.ErrUpstreamFetch):
		return xhttp.BadGatewayError("price data provider unavailable").WithError(err)
	default:
		return xhttp.InternalError("backtest failed").WithError(err)
	}
}
