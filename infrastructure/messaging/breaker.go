package messaging

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"recipebook/application/ports"
	"recipebook/domain/events"
)

// BreakerConfig holds configuration for the publisher circuit breaker
type BreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultBreakerConfig returns the settings used for the event bus
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:             name,
		MaxRequests:      1,
		Interval:         30 * time.Second,
		Timeout:          30 * time.Second,
		FailureThreshold: 0.5,
		MinRequests:      5,
	}
}

// BreakerPublisher stops calling a failing publisher until it has had time
// to recover. While open, publishing fails immediately with gobreaker.ErrOpenState.
type BreakerPublisher struct {
	inner ports.EventPublisher
	cb    *gobreaker.CircuitBreaker
}

var _ ports.EventPublisher = (*BreakerPublisher)(nil)

// NewBreakerPublisher wraps inner with a circuit breaker
func NewBreakerPublisher(inner ports.EventPublisher, config BreakerConfig, logger *zap.Logger) *BreakerPublisher {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        config.Name,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < config.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= config.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &BreakerPublisher{inner: inner, cb: cb}
}

// Publish sends a single event through the breaker
func (p *BreakerPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	_, err := p.cb.Execute(func() (interface{}, error) {
		return nil, p.inner.Publish(ctx, event)
	})
	return err
}

// PublishBatch sends events through the breaker as one call
func (p *BreakerPublisher) PublishBatch(ctx context.Context, domainEvents []events.DomainEvent) error {
	_, err := p.cb.Execute(func() (interface{}, error) {
		return nil, p.inner.PublishBatch(ctx, domainEvents)
	})
	return err
}

// State reports the current breaker state
func (p *BreakerPublisher) State() gobreaker.State {
	return p.cb.State()
}
