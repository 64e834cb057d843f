package repository

import (
	"context"
	"encoding/json"
)

// IdempotencyRepository tabla persistida de llaves de idempotencia de lotes.
// Se usa dentro de la misma transacción del lote.
type IdempotencyRepository interface {
	// Reserve inserta la llave; reserved=false si ya existía y en ese caso
	// devuelve la respuesta almacenada.
	Reserve(ctx context.Context, tenantID, scope, key string) (reserved bool, stored json.RawMessage, err error)
	// Complete guarda la respuesta del lote para la llave reservada.
	Complete(ctx context.Context, tenantID, scope, key string, response json.RawMessage) error
}
