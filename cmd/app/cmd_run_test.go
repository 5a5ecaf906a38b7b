package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveRange(t *testing.T) {
	now := time.Date(2025, 6, 15, 18, 30, 0, 0, time.UTC)

	start, end, err := resolveRange("", "", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2015, 6, 15, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), end)

	start, end, err = resolveRange("", "2020-01-01", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), end)

	start, _, err = resolveRange("2018-03-05", "", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2018, 3, 5, 0, 0, 0, 0, time.UTC), start)

	_, _, err = resolveRange("03/05/2018", "", now)
	assert.Error(t, err)
}
