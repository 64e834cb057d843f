package entity

import "github.com/shopspring/decimal"

// Part vista de solo lectura del catálogo maestro de repuestos.
// ReferencePrice es nil cuando el catálogo no mantiene precio de referencia.
type Part struct {
	ID             string
	TenantID       string
	SKU            string
	Name           string
	ReferencePrice *decimal.Decimal
}
