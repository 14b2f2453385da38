package password

import (
	"context"
	"time"

	"github.com/ecommerce-platform/identity-service/internal/api/metrics"
)

const defaultPoolSize = 8

// Pool bounds the number of concurrently executing bcrypt operations.
// Hashing is CPU-bound; without a bound a burst of logins can starve the
// request-handling goroutines. Callers block (context-aware) when all slots
// are busy.
type Pool struct {
	hasher Hasher
	slots  chan struct{}
}

// NewPool wraps hasher with a pool of size slots. If size <= 0,
// defaultPoolSize is used.
func NewPool(hasher Hasher, size int) *Pool {
	if size <= 0 {
		size = defaultPoolSize
	}
	return &Pool{
		hasher: hasher,
		slots:  make(chan struct{}, size),
	}
}

// Hash runs Hasher.Hash on a pool slot.
func (p *Pool) Hash(ctx context.Context, plaintext string) (string, error) {
	start := time.Now()
	defer metrics.HashDuration.WithLabelValues("hash").Observe(time.Since(start).Seconds())

	if err := p.acquire(ctx); err != nil {
		return "", err
	}
	defer p.release()

	return p.hasher.Hash(plaintext)
}

// Verify runs Hasher.Verify on a pool slot. The error is non-nil only when
// ctx is cancelled before a slot frees up; a mismatch is (false, nil).
func (p *Pool) Verify(ctx context.Context, plaintext, digest string) (bool, error) {
	start := time.Now()
	defer metrics.HashDuration.WithLabelValues("verify").Observe(time.Since(start).Seconds())

	if err := p.acquire(ctx); err != nil {
		return false, err
	}
	defer p.release()

	return p.hasher.Verify(plaintext, digest), nil
}

func (p *Pool) acquire(ctx context.Context) error {
	select {
	case p.slots <- struct{}{}:
		metrics.HasherInFlight.Inc()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pool) release() {
	metrics.HasherInFlight.Dec()
	<-p.slots
}
