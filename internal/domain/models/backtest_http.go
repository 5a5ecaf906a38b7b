package models

// Requests for backtest HTTP endpoints. Dates are calendar days (YYYY-MM-DD);
// empty dates fall back to the last ten years ending today.

type BacktestRequest struct {
	Tickers       string `query:"tickers" json:"tickers" default:"SPY" validate:"required,max=512"`
	Start         string `query:"start" json:"start" validate:"omitempty,datetime=2006-01-02"`
	End           string `query:"end" json:"end" validate:"omitempty,datetime=2006-01-02"`
	IncludeSeries bool   `query:"include_series" json:"include_series"`
}
