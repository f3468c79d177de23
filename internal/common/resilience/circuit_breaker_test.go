package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/AlibekovAA/blog-backend/internal/common/clock"
)

var errDown = errors.New("dependency down")

func newTestBreaker(clk clock.Clock, ignore func(error) bool) *CircuitBreaker {
	return NewCircuitBreaker(CircuitBreakerConfig{
		Name:       "test",
		Threshold:  2,
		ResetAfter: time.Minute,
		Ignore:     ignore,
		Clock:      clk,
	})
}

func fail(context.Context) error    { return errDown }
func succeed(context.Context) error { return nil }

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	cb := newTestBreaker(clock.NewMockClock(time.Unix(1_700_000_000, 0)), nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := cb.Call(ctx, fail); !errors.Is(err, errDown) {
			t.Fatalf("call %d: expected dependency error, got %v", i, err)
		}
	}

	called := false
	err := cb.Call(ctx, func(context.Context) error { called = true; return nil })
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
	if called {
		t.Error("open circuit must not invoke the operation")
	}
}

func TestCircuitBreaker_ClosesAfterResetWindow(t *testing.T) {
	clk := clock.NewMockClock(time.Unix(1_700_000_000, 0))
	cb := newTestBreaker(clk, nil)
	ctx := context.Background()

	_ = cb.Call(ctx, fail)
	_ = cb.Call(ctx, fail)
	if !cb.IsOpen() {
		t.Fatal("expected circuit to be open")
	}

	clk.Advance(2 * time.Minute)
	if err := cb.Call(ctx, succeed); err != nil {
		t.Fatalf("expected call to pass after reset window, got %v", err)
	}
	if cb.IsOpen() {
		t.Error("expected circuit to be closed")
	}
}

func TestCircuitBreaker_SuccessResetsCount(t *testing.T) {
	cb := newTestBreaker(clock.NewMockClock(time.Unix(1_700_000_000, 0)), nil)
	ctx := context.Background()

	_ = cb.Call(ctx, fail)
	_ = cb.Call(ctx, succeed)
	_ = cb.Call(ctx, fail)

	if cb.IsOpen() {
		t.Error("non-consecutive failures must not open the circuit")
	}
}

func TestCircuitBreaker_IgnoredErrors(t *testing.T) {
	errMissing := errors.New("missing")
	cb := newTestBreaker(clock.NewMockClock(time.Unix(1_700_000_000, 0)), func(err error) bool {
		return errors.Is(err, errMissing)
	})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_ = cb.Call(ctx, func(context.Context) error { return errMissing })
	}
	if cb.IsOpen() {
		t.Error("ignored errors must not open the circuit")
	}
}
