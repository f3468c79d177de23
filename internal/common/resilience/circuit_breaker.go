package resilience

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/AlibekovAA/blog-backend/internal/common/clock"
	commonerrors "github.com/AlibekovAA/blog-backend/internal/common/errors"
	"github.com/AlibekovAA/blog-backend/internal/common/logger"
	"github.com/AlibekovAA/blog-backend/internal/observability/metrics"
)

var ErrCircuitOpen = commonerrors.NewDomainError(
	"SERVICE_UNAVAILABLE",
	commonerrors.CategoryExternal,
	http.StatusServiceUnavailable,
	"service temporarily unavailable",
)

type CircuitBreakerConfig struct {
	Name       string
	Threshold  int
	Timeout    time.Duration
	ResetAfter time.Duration
	// Ignore reports errors that say nothing about the dependency's health,
	// such as a missing object.
	Ignore func(error) bool
	Clock  clock.Clock
	Logger *logger.Logger
}

// CircuitBreaker opens after Threshold consecutive failures and rejects
// calls until ResetAfter has passed since the last one.
type CircuitBreaker struct {
	mu          sync.Mutex
	failures    int
	lastFailure time.Time

	cfg CircuitBreakerConfig
}

func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	if cfg.Threshold <= 0 {
		cfg.Threshold = 5
	}
	if cfg.ResetAfter <= 0 {
		cfg.ResetAfter = 30 * time.Second
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.NewRealClock()
	}
	cb := &CircuitBreaker{cfg: cfg}
	cb.setState(0)
	return cb
}

func (cb *CircuitBreaker) IsOpen() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.openLocked()
}

func (cb *CircuitBreaker) openLocked() bool {
	if cb.failures < cb.cfg.Threshold {
		return false
	}
	if cb.cfg.Clock.Now().Sub(cb.lastFailure) > cb.cfg.ResetAfter {
		cb.failures = 0
		cb.setState(0)
		return false
	}
	return true
}

func (cb *CircuitBreaker) Call(ctx context.Context, fn func(context.Context) error) error {
	cb.mu.Lock()
	open := cb.openLocked()
	cb.mu.Unlock()

	if open {
		if cb.cfg.Logger != nil {
			cb.cfg.Logger.Warnf("circuit breaker [%s]: circuit is open, rejecting request", cb.cfg.Name)
		}
		return ErrCircuitOpen
	}

	callCtx := ctx
	if cb.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, cb.cfg.Timeout)
		defer cancel()
	}

	err := fn(callCtx)
	switch {
	case err == nil:
		cb.recordSuccess()
	case errors.Is(err, context.Canceled) && ctx.Err() != nil:
		// the caller gave up
	case cb.cfg.Ignore != nil && cb.cfg.Ignore(err):
		cb.recordSuccess()
	default:
		cb.recordFailure()
	}
	return err
}

func (cb *CircuitBreaker) recordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failures = 0
	cb.setState(0)
}

func (cb *CircuitBreaker) recordFailure() {
	cb.mu.Lock()
	cb.failures++
	cb.lastFailure = cb.cfg.Clock.Now()
	tripped := cb.failures == cb.cfg.Threshold
	cb.mu.Unlock()

	metrics.CircuitBreakerFailures.WithLabelValues(cb.cfg.Name).Inc()
	if tripped {
		cb.setState(1)
		if cb.cfg.Logger != nil {
			cb.cfg.Logger.Warnf("circuit breaker [%s]: opened after %d failures", cb.cfg.Name, cb.cfg.Threshold)
		}
	}
}

func (cb *CircuitBreaker) setState(state float64) {
	metrics.CircuitBreakerState.WithLabelValues(cb.cfg.Name).Set(state)
}
