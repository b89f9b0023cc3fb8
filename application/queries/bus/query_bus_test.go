package bus

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type echoQuery struct {
	Value string
}

func (q echoQuery) Validate() error {
	if q.Value == "" {
		return errors.New("value is required")
	}
	return nil
}

type mapCache struct {
	entries    map[string]interface{}
	generation uint64
}

func (c *mapCache) Get(ctx context.Context, key string) (interface{}, bool) {
	v, ok := c.entries[key]
	return v, ok
}

func (c *mapCache) Generation() uint64 { return c.generation }

func (c *mapCache) SetIfGeneration(ctx context.Context, generation uint64, key string, value interface{}, ttl int) bool {
	if generation != c.generation {
		return false
	}
	c.entries[key] = value
	return true
}

func (c *mapCache) clear() {
	c.entries = map[string]interface{}{}
	c.generation++
}

type countingMetrics struct {
	counts map[string]int
	timers int
}

type noopTimer struct{ m *countingMetrics }

func (t noopTimer) Stop() { t.m.timers++ }

func (m *countingMetrics) StartTimer(metric, label string) Timer { return noopTimer{m} }

func (m *countingMetrics) Increment(metric, label string) { m.counts[metric+":"+label]++ }

func TestQueryBus_CachingMiddleware(t *testing.T) {
	ctx := context.Background()
	cache := &mapCache{entries: map[string]interface{}{}}
	calls := 0

	b := NewQueryBus(NewCachingMiddleware(cache, 60).Wrap, LoggingMiddleware(zap.NewNop().Sugar()))
	require.NoError(t, b.Register(echoQuery{}, QueryHandlerFunc(func(ctx context.Context, q Query) (interface{}, error) {
		calls++
		return q.(echoQuery).Value, nil
	})))

	for i := 0; i < 3; i++ {
		result, err := b.Ask(ctx, echoQuery{Value: "a"})
		require.NoError(t, err)
		assert.Equal(t, "a", result)
	}
	_, err := b.Ask(ctx, echoQuery{Value: "b"})
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
	assert.Contains(t, cache.entries, CacheKey(echoQuery{Value: "a"}))
}

func TestQueryBus_CachingMiddleware_SkipsResultReadBeforeClear(t *testing.T) {
	ctx := context.Background()
	cache := &mapCache{entries: map[string]interface{}{}}
	calls := 0

	b := NewQueryBus(NewCachingMiddleware(cache, 60).Wrap)
	require.NoError(t, b.Register(echoQuery{}, QueryHandlerFunc(func(ctx context.Context, q Query) (interface{}, error) {
		calls++
		if calls == 1 {
			// a write commits and invalidates while this read is in flight
			cache.clear()
			return "stale", nil
		}
		return q.(echoQuery).Value, nil
	})))

	result, err := b.Ask(ctx, echoQuery{Value: "fresh"})
	require.NoError(t, err)
	assert.Equal(t, "stale", result)
	assert.Empty(t, cache.entries)

	result, err = b.Ask(ctx, echoQuery{Value: "fresh"})
	require.NoError(t, err)
	assert.Equal(t, "fresh", result)
	assert.Equal(t, 2, calls)
	assert.Contains(t, cache.entries, CacheKey(echoQuery{Value: "fresh"}))
}

func TestQueryBus_MetricsMiddleware(t *testing.T) {
	ctx := context.Background()
	metrics := &countingMetrics{counts: map[string]int{}}

	b := NewQueryBus(NewMetricsMiddleware(metrics).Wrap)
	require.NoError(t, b.Register(echoQuery{}, QueryHandlerFunc(func(ctx context.Context, q Query) (interface{}, error) {
		if q.(echoQuery).Value == "bad" {
			return nil, errors.New("bad")
		}
		return "ok", nil
	})))

	_, err := b.Ask(ctx, echoQuery{Value: "good"})
	require.NoError(t, err)
	_, err = b.Ask(ctx, echoQuery{Value: "bad"})
	require.Error(t, err)

	assert.Equal(t, 2, metrics.counts["query_count:echoQuery"])
	assert.Equal(t, 1, metrics.counts["query_success:echoQuery"])
	assert.Equal(t, 1, metrics.counts["query_errors:echoQuery"])
	assert.Equal(t, 2, metrics.timers)
}

func TestQueryBus_Errors(t *testing.T) {
	b := NewQueryBus()

	_, err := b.Ask(context.Background(), echoQuery{})
	assert.ErrorContains(t, err, "value is required")

	_, err = b.Ask(context.Background(), echoQuery{Value: "x"})
	assert.ErrorIs(t, err, ErrHandlerNotFound)
}
