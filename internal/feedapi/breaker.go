package feedapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/glabrego/memefeed-cli/internal/logging"
)

type BreakerSettings struct {
	// MaxFailures is the number of consecutive transport failures that opens
	// the circuit.
	MaxFailures uint32
	// OpenTimeout is how long the circuit stays open before a probe request
	// is let through.
	OpenTimeout time.Duration
}

func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{MaxFailures: 5, OpenTimeout: 30 * time.Second}
}

// BreakerClient guards a Client with a circuit breaker. It never retries;
// while open, calls fail fast with a TransportError wrapping
// gobreaker.ErrOpenState. Image fetches bypass the breaker.
type BreakerClient struct {
	client *Client
	cb     *gobreaker.CircuitBreaker[any]
}

func NewBreakerClient(client *Client, settings BreakerSettings) *BreakerClient {
	if settings.MaxFailures == 0 {
		settings.MaxFailures = DefaultBreakerSettings().MaxFailures
	}
	if settings.OpenTimeout <= 0 {
		settings.OpenTimeout = DefaultBreakerSettings().OpenTimeout
	}
	maxFailures := settings.MaxFailures

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        "feed-api",
		MaxRequests: 1,
		Timeout:     settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
		},
		IsSuccessful: func(err error) bool {
			return !countsAsOutage(err)
		},
	})
	return &BreakerClient{client: client, cb: cb}
}

func (b *BreakerClient) State() gobreaker.State {
	return b.cb.State()
}

func (b *BreakerClient) Status(ctx context.Context) (Status, error) {
	out, err := b.execute("status", func() (any, error) {
		return b.client.Status(ctx)
	})
	if err != nil {
		return Status{}, err
	}
	return out.(Status), nil
}

func (b *BreakerClient) Recommend(ctx context.Context) ([]Recommendation, error) {
	out, err := b.execute("recommend", func() (any, error) {
		return b.client.Recommend(ctx)
	})
	if err != nil {
		return nil, err
	}
	return out.([]Recommendation), nil
}

func (b *BreakerClient) SendFeedback(ctx context.Context, index int, action Action) (Ack, error) {
	out, err := b.execute("feedback", func() (any, error) {
		return b.client.SendFeedback(ctx, index, action)
	})
	if err != nil {
		return Ack{}, err
	}
	return out.(Ack), nil
}

func (b *BreakerClient) ImageURL(index int) string {
	return b.client.ImageURL(index)
}

func (b *BreakerClient) FetchImage(ctx context.Context, index int) ([]byte, error) {
	return b.client.FetchImage(ctx, index)
}

// countsAsOutage reports whether err says the service itself is unhealthy:
// the request never completed, or the service answered 5xx.
func countsAsOutage(err error) bool {
	if err == nil {
		return false
	}
	var te *TransportError
	if !errors.As(err, &te) {
		return false
	}
	return te.StatusCode == 0 || te.StatusCode >= http.StatusInternalServerError
}

func (b *BreakerClient) execute(op string, fn func() (any, error)) (any, error) {
	out, err := b.cb.Execute(fn)
	if err == nil {
		return out, nil
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("feed service unavailable: %w", err)}
	}
	return nil, err
}
