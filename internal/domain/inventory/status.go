package inventory

import (
	"github.com/shopspring/decimal"
	"github.com/jhoicas/flota-api/internal/domain/entity"
)

// ResolveStatus deriva el estado del ítem: OUT_OF_STOCK en cero,
// LOW_STOCK si stock <= mínimo, ACTIVE en otro caso.
func ResolveStatus(quantity, minStock decimal.Decimal) string {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return entity.ItemStatusOutOfStock
	}
	if quantity.LessThanOrEqual(minStock) {
		return entity.ItemStatusLowStock
	}
	return entity.ItemStatusActive
}
