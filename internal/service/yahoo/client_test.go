package yahoo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"PerfScope/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	yfclient "github.com/wnjoon/go-yfinance/pkg/client"
	yfmodels "github.com/wnjoon/go-yfinance/pkg/models"
)

// New York session opens, UTC-5.
const nyOffset = -18000

type fakeSource struct {
	mu       sync.Mutex
	bars     []yfmodels.Bar
	offset   int
	errs     []error
	block    chan struct{}
	calls    int
	adjusted []bool
	closed   bool
}

func (f *fakeSource) History(_ string, _, _ time.Time, adjusted bool) ([]yfmodels.Bar, int, error) {
	f.mu.Lock()
	f.calls++
	f.adjusted = append(f.adjusted, adjusted)
	var err error
	if len(f.errs) > 0 {
		err = f.errs[0]
		if len(f.errs) > 1 {
			f.errs = f.errs[1:]
		}
	}
	block := f.block
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	if err != nil {
		return nil, 0, err
	}
	return f.bars, f.offset, nil
}

func (f *fakeSource) Close() { f.closed = true }

func (f *fakeSource) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func spyBars() []yfmodels.Bar {
	return []yfmodels.Bar{
		{Date: time.Unix(1577975400, 0).UTC(), Close: 300.1}, // 2020-01-02 09:30 EST
		{Date: time.Unix(1578061800, 0).UTC(), Close: 298.0},
		{Date: time.Unix(1578321000, 0).UTC(), Close: 0},
		{Date: time.Unix(1578407400, 0).UTC(), Close: 298.5},
	}
}

func newTestClient(t *testing.T, src *fakeSource, opts ...Option) *Client {
	t.Helper()
	base := []Option{WithSource(src), WithRetry(1, 0), WithRateLimit(0, 1)}
	c, err := New(append(base, opts...)...)
	require.NoError(t, err)
	return c
}

func TestDailyCloses_ExchangeLocalDays(t *testing.T) {
	src := &fakeSource{bars: spyBars(), offset: nyOffset}
	c := newTestClient(t, src)

	series, err := c.DailyCloses(t.Context(), "SPY", day(2020, 1, 1), day(2020, 2, 1))
	require.NoError(t, err)

	// zero close skipped
	require.Len(t, series, 3)
	assert.Equal(t, day(2020, 1, 2), series[0].Date)
	assert.Equal(t, 300.1, series[0].Value)
	assert.Equal(t, day(2020, 1, 3), series[1].Date)
	assert.Equal(t, day(2020, 1, 7), series[2].Date)
	assert.NoError(t, series.Validate())
	assert.Equal(t, []bool{true}, src.adjusted)
}

func TestDailyCloses_RawCloses(t *testing.T) {
	src := &fakeSource{bars: spyBars(), offset: nyOffset}
	c := newTestClient(t, src, WithAdjusted(false))

	_, err := c.DailyCloses(t.Context(), "SPY", day(2020, 1, 1), day(2020, 2, 1))
	require.NoError(t, err)
	assert.Equal(t, []bool{false}, src.adjusted)
}

func TestDailyCloses_EndIsExclusive(t *testing.T) {
	c := newTestClient(t, &fakeSource{bars: spyBars(), offset: nyOffset})

	series, err := c.DailyCloses(t.Context(), "SPY", day(2020, 1, 1), day(2020, 1, 7))
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.Equal(t, day(2020, 1, 3), series[1].Date)
}

func TestDailyCloses_SameDayKeepsLastBar(t *testing.T) {
	bars := []yfmodels.Bar{
		{Date: day(2020, 1, 2).Add(14 * time.Hour), Close: 10},
		{Date: day(2020, 1, 2).Add(20 * time.Hour), Close: 11},
		{Date: day(2020, 1, 3).Add(14 * time.Hour), Close: 12},
	}
	c := newTestClient(t, &fakeSource{bars: bars})

	series, err := c.DailyCloses(t.Context(), "SPY", day(2020, 1, 1), day(2020, 2, 1))
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.Equal(t, 11.0, series[0].Value)
}

func TestDailyCloses_NoData(t *testing.T) {
	tests := map[string]*fakeSource{
		"not found":      {errs: []error{fmt.Errorf("failed to fetch history: %w", yfclient.WrapNotFoundError("NOPE"))}},
		"chart error":    {errs: []error{errors.New("API error: No data found, symbol may be delisted")}},
		"empty chart":    {bars: []yfmodels.Bar{}},
		"all bars zero":  {bars: []yfmodels.Bar{{Date: day(2020, 1, 2)}}},
		"outside range":  {bars: []yfmodels.Bar{{Date: day(2019, 6, 3), Close: 5}}},
		"invalid symbol": {errs: []error{yfclient.WrapInvalidSymbolError("$$")}},
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, src)
			_, err := c.DailyCloses(t.Context(), "NOPE", day(2020, 1, 1), day(2020, 2, 1))
			assert.ErrorIs(t, err, models.ErrNoDataAvailable)
		})
	}
}

func TestDailyCloses_RetriesThenSucceeds(t *testing.T) {
	src := &fakeSource{
		bars: spyBars(),
		errs: []error{yfclient.WrapRateLimitError(), nil},
	}
	c := newTestClient(t, src, WithRetry(3, time.Millisecond))

	series, err := c.DailyCloses(t.Context(), "SPY", day(2020, 1, 1), day(2020, 2, 1))
	require.NoError(t, err)
	assert.NotEmpty(t, series)
	assert.Equal(t, 2, src.Calls())
}

func TestDailyCloses_RetriesThenFails(t *testing.T) {
	src := &fakeSource{errs: []error{yfclient.HTTPStatusToError(500, "")}}
	c := newTestClient(t, src, WithRetry(3, time.Millisecond))

	_, err := c.DailyCloses(t.Context(), "SPY", day(2020, 1, 1), day(2020, 2, 1))
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrUpstreamFetch)
	assert.Equal(t, 3, src.Calls())
}

func TestDailyCloses_AttemptTimeout(t *testing.T) {
	src := &fakeSource{block: make(chan struct{})}
	defer close(src.block)
	c := newTestClient(t, src, WithTimeout(20*time.Millisecond))

	_, err := c.DailyCloses(t.Context(), "SPY", day(2020, 1, 1), day(2020, 2, 1))
	require.ErrorIs(t, err, models.ErrUpstreamFetch)
	assert.Contains(t, err.Error(), "timed out")
}

func TestDailyCloses_BreakerOpens(t *testing.T) {
	src := &fakeSource{errs: []error{yfclient.HTTPStatusToError(502, "")}}
	c := newTestClient(t, src, WithBreaker(2, time.Minute))

	for i := 0; i < 2; i++ {
		_, err := c.DailyCloses(t.Context(), "SPY", day(2020, 1, 1), day(2020, 2, 1))
		require.ErrorIs(t, err, models.ErrUpstreamFetch)
	}

	_, err := c.DailyCloses(t.Context(), "SPY", day(2020, 1, 1), day(2020, 2, 1))
	require.ErrorIs(t, err, models.ErrUpstreamFetch)
	assert.True(t, strings.Contains(err.Error(), "circuit"))
	assert.Equal(t, 2, src.Calls())
}

func TestDailyCloses_NoDataDoesNotTripBreaker(t *testing.T) {
	src := &fakeSource{errs: []error{yfclient.WrapNotFoundError("NOPE")}}
	c := newTestClient(t, src, WithBreaker(1, time.Minute))

	for i := 0; i < 3; i++ {
		_, err := c.DailyCloses(t.Context(), "NOPE", day(2020, 1, 1), day(2020, 2, 1))
		assert.ErrorIs(t, err, models.ErrNoDataAvailable)
	}
	assert.Equal(t, 3, src.Calls())
}

func TestDailyCloses_CancelledCallersDoNotTripBreaker(t *testing.T) {
	src := &fakeSource{bars: spyBars(), offset: nyOffset}
	c := newTestClient(t, src, WithBreaker(1, time.Minute))

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	for i := 0; i < 5; i++ {
		_, err := c.DailyCloses(cancelled, "SPY", day(2020, 1, 1), day(2020, 2, 1))
		require.ErrorIs(t, err, models.ErrUpstreamFetch)
		assert.ErrorIs(t, err, context.Canceled)
	}

	series, err := c.DailyCloses(context.Background(), "SPY", day(2020, 1, 1), day(2020, 2, 1))
	require.NoError(t, err)
	assert.Len(t, series, 3)
}

func TestDailyCloses_DeadlineMidFetchDoesNotTripBreaker(t *testing.T) {
	src := &fakeSource{bars: spyBars(), offset: nyOffset, block: make(chan struct{})}
	c := newTestClient(t, src, WithBreaker(1, time.Minute), WithTimeout(time.Minute))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := c.DailyCloses(ctx, "SPY", day(2020, 1, 1), day(2020, 2, 1))
	require.ErrorIs(t, err, models.ErrUpstreamFetch)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(src.block)
	src.mu.Lock()
	src.block = nil
	src.mu.Unlock()

	series, err := c.DailyCloses(context.Background(), "SPY", day(2020, 1, 1), day(2020, 2, 1))
	require.NoError(t, err)
	assert.Len(t, series, 3)
}

func TestDailyCloses_InvalidRange(t *testing.T) {
	src := &fakeSource{}
	c := newTestClient(t, src)
	_, err := c.DailyCloses(t.Context(), "SPY", day(2020, 2, 1), day(2020, 1, 1))
	assert.ErrorIs(t, err, models.ErrInvalidRange)
	assert.Zero(t, src.Calls())
}

func TestClose_ClosesSource(t *testing.T) {
	src := &fakeSource{}
	c := newTestClient(t, src)
	c.Close()
	assert.True(t, src.closed)
}
