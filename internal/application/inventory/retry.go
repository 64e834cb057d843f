package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/flota-api/internal/domain"
)

// RetryPolicy reintentos de lote completo ante conflictos de concurrencia.
// Nunca se reintenta una línea individual.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
}

// DefaultRetryPolicy tres intentos con espera lineal de 50ms.
var DefaultRetryPolicy = RetryPolicy{MaxAttempts: 3, Backoff: 50 * time.Millisecond}

// run ejecuta fn hasta MaxAttempts veces mientras el error sea reintentable.
func (p RetryPolicy) run(ctx context.Context, fn func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn()
		if err == nil || !domain.IsRetryable(err) || attempt == attempts {
			return err
		}
		select {
		case <-ctx.Done():
			return err
		case <-time.After(p.Backoff * time.Duration(attempt)):
		}
	}
	return err
}
