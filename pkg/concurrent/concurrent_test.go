package concurrent

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForEachVisitsEveryIndex(t *testing.T) {
	items := make([]int, 64)
	for i := range items {
		items[i] = i * 2
	}
	out := make([]int, len(items))

	err := ForEach(context.Background(), items, 4, func(_ context.Context, idx int, v int) error {
		out[idx] = v + 1
		return nil
	})
	require.NoError(t, err)
	for i := range items {
		assert.Equal(t, items[i]+1, out[i])
	}
}

func TestForEachRespectsLimit(t *testing.T) {
	var inFlight, peak atomic.Int32
	var mu sync.Mutex
	items := make([]struct{}, 32)

	err := ForEach(context.Background(), items, 3, func(context.Context, int, struct{}) error {
		n := inFlight.Add(1)
		mu.Lock()
		if n > peak.Load() {
			peak.Store(n)
		}
		mu.Unlock()
		inFlight.Add(-1)
		return nil
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestForEachReturnsFirstError(t *testing.T) {
	boom := errors.New("boom")
	err := ForEach(context.Background(), []int{1, 2, 3}, 1, func(_ context.Context, _ int, v int) error {
		if v == 2 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
}

func TestForEachCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := ForEach(ctx, []int{1}, 1, func(context.Context, int, int) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestLimitDefaultsToProcs(t *testing.T) {
	assert.Positive(t, Limit(0))
	assert.Equal(t, 5, Limit(5))
}
