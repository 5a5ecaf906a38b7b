package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(&Config{Level: "loud", Output: "stdout"})
	assert.Error(t, err)
}

func TestFieldsAreWritten(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf).With(String("component", "backtest"))

	l.Warn("ticker skipped",
		String("ticker", "SPY"),
		Int("points", 1),
		Float64("cagr", 0.07),
		Bool("recovered", false),
		Duration("elapsed", 1500*time.Millisecond),
		Strings("tickers", []string{"SPY", "QQQ"}),
		Error(errors.New("no data available")),
	)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "ticker skipped", entry["message"])
	assert.Equal(t, "backtest", entry["component"])
	assert.Equal(t, "SPY", entry["ticker"])
	assert.Equal(t, float64(1), entry["points"])
	assert.Equal(t, 0.07, entry["cagr"])
	assert.Equal(t, false, entry["recovered"])
	assert.Equal(t, float64(1500), entry["elapsed"])
	assert.Equal(t, "SPY, QQQ", entry["tickers"])
	assert.Equal(t, "no data available", entry["error"])
}

func TestNopDiscards(t *testing.T) {
	assert.NotPanics(t, func() {
		NewNop().Error("ignored", String("k", "v"))
	})
}
