package storage

import (
	"context"
	"errors"
	"io"

	"github.com/AlibekovAA/blog-backend/internal/common/resilience"
)

// Guarded routes every backend call through a circuit breaker so that an
// unreachable object store fails fast.
type Guarded struct {
	next    Storage
	breaker *resilience.CircuitBreaker
}

func NewGuarded(next Storage, cfg resilience.CircuitBreakerConfig) *Guarded {
	cfg.Ignore = func(err error) bool { return errors.Is(err, ErrObjectNotFound) }
	if cfg.Name == "" {
		cfg.Name = "uploads_" + next.Driver()
	}
	return &Guarded{next: next, breaker: resilience.NewCircuitBreaker(cfg)}
}

func (g *Guarded) Driver() string {
	return g.next.Driver()
}

func (g *Guarded) Save(ctx context.Context, name, contentType string, size int64, r io.Reader) error {
	return g.breaker.Call(ctx, func(ctx context.Context) error {
		return g.next.Save(ctx, name, contentType, size, r)
	})
}

// Open is not bounded by the breaker timeout: the returned body is read
// after the call returns.
func (g *Guarded) Open(ctx context.Context, name string) (Object, error) {
	var obj Object
	err := g.breaker.Call(context.WithoutCancel(ctx), func(context.Context) error {
		var err error
		obj, err = g.next.Open(ctx, name)
		return err
	})
	return obj, err
}

func (g *Guarded) Ping(ctx context.Context) error {
	return g.next.Ping(ctx)
}
