package hermes

import (
	"log/slog"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
)

type BreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
}

func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:             "hermes-publish",
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}

// BreakerClient stops calling the wrapped client after repeated publish
// failures and lets a single probe through once the timeout elapses.
type BreakerClient struct {
	next Client
	cb   *gobreaker.CircuitBreaker[struct{}]
}

func NewBreakerClient(next Client, cfg BreakerConfig, logger *slog.Logger) *BreakerClient {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	}
	return &BreakerClient{next: next, cb: gobreaker.NewCircuitBreaker[struct{}](settings)}
}

// Publish returns gobreaker.ErrOpenState without touching the connection
// while the breaker is open.
func (b *BreakerClient) Publish(subject string, data interface{}) error {
	_, err := b.cb.Execute(func() (struct{}, error) {
		return struct{}{}, b.next.Publish(subject, data)
	})
	return err
}

func (b *BreakerClient) State() string { return b.cb.State().String() }

func (b *BreakerClient) Close() { b.next.Close() }
