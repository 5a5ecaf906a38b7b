package models

import "time"

// Recovery describes when price first returned to the peak preceding the trough.
type Recovery struct {
	Date time.Time `json:"date"`
	Days int       `json:"days"`
}

// MetricsReport is the per-instrument result of one backtest request.
// It is built once and never mutated afterwards.
type MetricsReport struct {
	Ticker       string    `json:"ticker"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	Observations int       `json:"observations"`
	FirstPrice   float64   `json:"first_price"`
	LastPrice    float64   `json:"last_price"`
	TotalReturn  float64   `json:"total_return"`

	CAGR                 float64 `json:"cagr"`
	AnnualizedVolatility float64 `json:"annualized_volatility"`

	MaxDrawdown     float64    `json:"max_drawdown"`
	MaxDrawdownDate time.Time  `json:"max_drawdown_date"`
	PeakDate        time.Time  `json:"peak_date"`
	RecoveryDate    *time.Time `json:"recovery_date,omitempty"`
	RecoveryDays    *int       `json:"recovery_days,omitempty"`
	RecoveryMonths  *float64   `json:"recovery_months,omitempty"`

	AnnualReturns  []PeriodReturn         `json:"annual_returns"`
	MonthlyReturns []PeriodReturn         `json:"monthly_returns"`
	Seasonality    map[time.Month]float64 `json:"seasonality"`

	Prices   PriceSeries    `json:"prices,omitempty"`
	Drawdown DrawdownSeries `json:"drawdown,omitempty"`
}

// Recovered reports whether the max drawdown has been recovered.
func (r *MetricsReport) Recovered() bool { return r.RecoveryDate != nil }

// Warning is a human-readable, non-fatal per-ticker notice.
type Warning struct {
	Ticker  string `json:"ticker"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// NewWarning builds a warning from a per-ticker error.
func NewWarning(ticker string, err error) Warning {
	return Warning{Ticker: ticker, Kind: WarningKind(err), Message: err.Error()}
}

// BatchResult collects every report and warning of one request.
type BatchResult struct {
	Start    time.Time        `json:"start"`
	End      time.Time        `json:"end"`
	Reports  []*MetricsReport `json:"reports"`
	Warnings []Warning        `json:"warnings"`
}
