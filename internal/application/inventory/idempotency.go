package inventory

import (
	"context"
	"encoding/json"
	"fmt"
)

// withIdempotency ejecuta fn una sola vez por llave dentro de la transacción del lote.
// Si la llave ya fue usada devuelve la respuesta almacenada y replayed=true.
// Sin llave el lote no es idempotente: reenviarlo genera movimientos adicionales.
func withIdempotency[T any](
	ctx context.Context,
	repos Repositories,
	tenantID, scope, key string,
	fn func() (T, error),
) (result T, replayed bool, err error) {
	if key == "" {
		result, err = fn()
		return result, false, err
	}
	reserved, stored, err := repos.Idempotency.Reserve(ctx, tenantID, scope, key)
	if err != nil {
		return result, false, fmt.Errorf("reservar llave de idempotencia: %w", err)
	}
	if !reserved {
		if err := json.Unmarshal(stored, &result); err != nil {
			return result, false, fmt.Errorf("decodificar respuesta almacenada: %w", err)
		}
		return result, true, nil
	}
	result, err = fn()
	if err != nil {
		return result, false, err
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return result, false, fmt.Errorf("codificar respuesta: %w", err)
	}
	if err := repos.Idempotency.Complete(ctx, tenantID, scope, key, raw); err != nil {
		return result, false, fmt.Errorf("completar llave de idempotencia: %w", err)
	}
	return result, false, nil
}
