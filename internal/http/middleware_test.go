package http

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiterDropsIdleBuckets(t *testing.T) {
	l := newLimiter(60)
	require.NotNil(t, l)

	clock := time.Date(2024, 9, 2, 8, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return clock }
	l.lastSweep = clock

	for i := 0; i < 100; i++ {
		l.get(fmt.Sprintf("P-%d", i))
	}
	assert.Equal(t, 100, l.size())

	// P-active keeps coming back, the rest go quiet
	clock = clock.Add(6 * time.Minute)
	l.get("P-active")
	clock = clock.Add(6 * time.Minute)
	l.get("P-active")

	assert.Equal(t, 1, l.size())
}

func TestLimiterKeepsStateForActiveKeys(t *testing.T) {
	l := newLimiter(1)
	require.NotNil(t, l)

	clock := time.Date(2024, 9, 2, 8, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return clock }
	l.lastSweep = clock

	first := l.get("P-1")
	clock = clock.Add(limiterIdle)
	assert.Same(t, first, l.get("P-1"), "a bucket used within the idle window survives the sweep")
}

func TestNewLimiterDisabled(t *testing.T) {
	assert.Nil(t, newLimiter(0))
}
