package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jhoicas/flota-api/internal/domain"
	"github.com/jhoicas/flota-api/internal/domain/repository"
)

var _ repository.IdempotencyRepository = (*IdempotencyRepo)(nil)

// IdempotencyRepo llaves de idempotencia; se usa siempre dentro de la tx del lote.
type IdempotencyRepo struct {
	q Querier
}

// NewIdempotencyRepository construye el adaptador.
func NewIdempotencyRepository(q Querier) *IdempotencyRepo {
	return &IdempotencyRepo{q: q}
}

// Reserve inserta la llave. Si otra tx la tiene reservada sin confirmar, el INSERT
// espera a que termine (acotado por lock_timeout).
func (r *IdempotencyRepo) Reserve(ctx context.Context, tenantID, scope, key string) (bool, json.RawMessage, error) {
	tag, err := r.q.Exec(ctx, `
		INSERT INTO idempotency_keys (tenant_id, scope, key, created_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (tenant_id, scope, key) DO NOTHING`, tenantID, scope, key)
	if err != nil {
		return false, nil, asConflict("reserve key", fmt.Errorf("reserve idempotency key: %w", err))
	}
	if tag.RowsAffected() == 1 {
		return true, nil, nil
	}

	var stored []byte
	err = r.q.QueryRow(ctx, `SELECT response FROM idempotency_keys WHERE tenant_id = $1 AND scope = $2 AND key = $3`,
		tenantID, scope, key).Scan(&stored)
	if err != nil {
		return false, nil, fmt.Errorf("read idempotency key: %w", err)
	}
	if stored == nil {
		return false, nil, &domain.ConcurrencyConflictError{Op: "idempotency key in progress"}
	}
	return false, stored, nil
}

// Complete guarda la respuesta del lote.
func (r *IdempotencyRepo) Complete(ctx context.Context, tenantID, scope, key string, response json.RawMessage) error {
	tag, err := r.q.Exec(ctx, `UPDATE idempotency_keys SET response = $4 WHERE tenant_id = $1 AND scope = $2 AND key = $3`,
		tenantID, scope, key, []byte(response))
	if err != nil {
		return fmt.Errorf("complete idempotency key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
