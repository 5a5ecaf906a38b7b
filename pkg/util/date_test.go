package util

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeRFC3339(t *testing.T) {
	s := "2024-10-10T10:10:10Z"
	got, ok := ParseTime(s)
	require.True(t, ok)
	assert.Equal(t, s, got.UTC().Format(time.RFC3339))
}

func TestParseTimeUnix(t *testing.T) {
	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
	got, ok := ParseTime(strconv.FormatInt(ts, 10))
	require.True(t, ok)
	assert.Equal(t, ts, got.Unix())
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{in: "2015-03-31", want: time.Date(2015, 3, 31, 0, 0, 0, 0, time.UTC)},
		{in: "2015-03-31T22:15:00-05:00", want: time.Date(2015, 4, 1, 0, 0, 0, 0, time.UTC)},
		{in: "31/03/2015", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %s", got)
		})
	}
}

func TestParseDateDefault(t *testing.T) {
	def := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)
	got, err := ParseDateDefault("", def)
	require.NoError(t, err)
	assert.True(t, got.Equal(def))
}

func TestDefaultRange(t *testing.T) {
	now := time.Date(2026, 10, 19, 15, 4, 5, 0, time.UTC)
	start, end := DefaultRange(now)
	assert.True(t, end.Equal(time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)))
	assert.True(t, start.Equal(time.Date(2016, 10, 19, 0, 0, 0, 0, time.UTC)))
}
