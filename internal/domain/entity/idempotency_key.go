package entity

import (
	"encoding/json"
	"time"
)

// Ámbitos de llaves de idempotencia.
const (
	IdempotencyScopeConsumption = "CONSUMPTION"
	IdempotencyScopeReceipt     = "RECEIPT"
	IdempotencyScopeMovement    = "MOVEMENT"
)

// ConsumptionScope ámbito de consumo acotado al ticket: la misma llave en otro
// ticket es un lote distinto.
func ConsumptionScope(ticketID string) string {
	return IdempotencyScopeConsumption + ":" + ticketID
}

// IdempotencyKey registro persistido que asocia una llave de lote a su respuesta.
// Único por (TenantID, Scope, Key).
type IdempotencyKey struct {
	TenantID  string
	Scope     string
	Key       string
	Response  json.RawMessage
	CreatedAt time.Time
}
