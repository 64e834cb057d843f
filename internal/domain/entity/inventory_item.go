package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un ítem de inventario (derivados de cantidad vs stock mínimo).
const (
	ItemStatusActive     = "ACTIVE"
	ItemStatusLowStock   = "LOW_STOCK"
	ItemStatusOutOfStock = "OUT_OF_STOCK"
)

// InventoryItem stock y costo promedio de un repuesto en una bodega de un tenant.
// Identidad lógica (TenantID, WarehouseID, PartID); ID es la llave de bloqueo.
// Solo se modifica aplicando movimientos; nunca se elimina.
type InventoryItem struct {
	ID          string
	TenantID    string
	WarehouseID string
	PartID      string
	Quantity    decimal.Decimal
	MinStock    decimal.Decimal
	MaxStock    *decimal.Decimal
	AverageCost decimal.Decimal // costo promedio móvil
	TotalValue  decimal.Decimal // Quantity * AverageCost, redondeado a moneda
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ItemSpec identifica el ítem a crear en la primera recepción.
type ItemSpec struct {
	TenantID    string
	WarehouseID string
	PartID      string
	MinStock    decimal.Decimal
	MaxStock    *decimal.Decimal
}
