package messaging

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"recipebook/domain/events"
)

type countingPublisher struct {
	calls int
	err   error
}

func (p *countingPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	p.calls++
	return p.err
}

func (p *countingPublisher) PublishBatch(ctx context.Context, domainEvents []events.DomainEvent) error {
	p.calls++
	return p.err
}

func TestBreakerPublisher_OpensAfterFailures(t *testing.T) {
	inner := &countingPublisher{err: errors.New("throttled")}
	core, logs := observer.New(zap.WarnLevel)
	config := DefaultBreakerConfig("eventbridge")
	config.MinRequests = 3
	config.Timeout = time.Hour
	p := NewBreakerPublisher(inner, config, zap.New(core))

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		assert.ErrorContains(t, p.Publish(ctx, createdEvents(1)[0]), "throttled")
	}
	assert.Equal(t, gobreaker.StateOpen, p.State())

	err := p.PublishBatch(ctx, createdEvents(2))
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 3, inner.calls)

	entries := logs.FilterMessage("Circuit breaker state changed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "open", entries[0].ContextMap()["to"])
}

func TestBreakerPublisher_StaysClosedOnSuccess(t *testing.T) {
	inner := &countingPublisher{}
	p := NewBreakerPublisher(inner, DefaultBreakerConfig("eventbridge"), zap.NewNop())

	for i := 0; i < 10; i++ {
		require.NoError(t, p.PublishBatch(context.Background(), createdEvents(1)))
	}
	assert.Equal(t, gobreaker.StateClosed, p.State())
	assert.Equal(t, 10, inner.calls)
}
