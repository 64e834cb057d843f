package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/flota-api/internal/application/inventory"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool        *pgxpool.Pool
	lockTimeout time.Duration
}

// NewTxRunner construye el runner con el pool. lockTimeout se aplica con SET LOCAL
// a cada transacción (0 = sin límite propio).
func NewTxRunner(pool *pgxpool.Pool, lockTimeout time.Duration) *TxRunner {
	return &TxRunner{pool: pool, lockTimeout: lockTimeout}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Timeout de bloqueo, fallas de serialización y deadlocks se devuelven como
// domain.ConcurrencyConflictError.
func (r *TxRunner) Run(ctx context.Context, fn func(ctx context.Context, repos inventory.Repositories) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return asConflict("begin", fmt.Errorf("begin transaction: %w", err))
	}
	defer func() { _ = tx.Rollback(context.WithoutCancel(ctx)) }()

	if r.lockTimeout > 0 {
		if _, err := tx.Exec(ctx, "SELECT set_config('lock_timeout', $1, true)",
			fmt.Sprintf("%dms", r.lockTimeout.Milliseconds())); err != nil {
			return asConflict("lock_timeout", fmt.Errorf("set lock_timeout: %w", err))
		}
	}

	if err := fn(ctx, Repositories(tx)); err != nil {
		return asConflict("transaction", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return asConflict("commit", fmt.Errorf("commit transaction: %w", err))
	}
	return nil
}

// Repositories repositorios del kardex atados a q (pool o tx).
func Repositories(q Querier) inventory.Repositories {
	return inventory.Repositories{
		Items:              NewInventoryItemRepository(q),
		Movements:          NewInventoryMovementRepository(q),
		Tickets:            NewTicketRepository(q),
		PurchaseOrderItems: NewPurchaseOrderItemRepository(q),
		Idempotency:        NewIdempotencyRepository(q),
	}
}
