package ratelimit

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGateSpacesSequentialCalls(t *testing.T) {
	g := NewGate(20 * time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 4; i++ {
		require.NoError(t, g.Wait(ctx))
	}

	// first call passes immediately, the next three wait one interval each
	assert.GreaterOrEqual(t, time.Since(start), 55*time.Millisecond)
}

func TestGateSerializesConcurrentCallers(t *testing.T) {
	interval := 15 * time.Millisecond
	g := NewGate(interval)
	ctx := context.Background()

	var (
		mu    sync.Mutex
		times []time.Time
		wg    sync.WaitGroup
	)
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			require.NoError(t, g.Wait(ctx))
			mu.Lock()
			times = append(times, time.Now())
			mu.Unlock()
		}()
	}
	wg.Wait()

	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })
	total := times[len(times)-1].Sub(times[0])
	assert.GreaterOrEqual(t, total, 5*interval-5*time.Millisecond)
}

func TestGateHonorsContext(t *testing.T) {
	g := NewGate(time.Hour)
	require.NoError(t, g.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	assert.Error(t, g.Wait(ctx))
}

func TestNewGateDefaultsInterval(t *testing.T) {
	assert.Equal(t, DefaultInterval, NewGate(0).Interval())
}
