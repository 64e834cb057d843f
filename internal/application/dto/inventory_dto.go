package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReceiptLineRequest una línea de recepción. reference_* opcional (ej. ítem de OC).
type ReceiptLineRequest struct {
	WarehouseID   string           `json:"warehouse_id" validate:"required"`
	PartID        string           `json:"part_id" validate:"required"`
	Quantity      decimal.Decimal  `json:"quantity"`
	UnitCost      decimal.Decimal  `json:"unit_cost"`
	MinStock      decimal.Decimal  `json:"min_stock"`
	MaxStock      *decimal.Decimal `json:"max_stock,omitempty"`
	ReferenceType string           `json:"reference_type,omitempty"`
	ReferenceID   string           `json:"reference_id,omitempty"`
}

// ReceiveBatchRequest body para POST /api/inventory/receipts/batch.
type ReceiveBatchRequest struct {
	ReferenceType string               `json:"reference_type,omitempty"`
	ReferenceID   string               `json:"reference_id,omitempty"`
	Lines         []ReceiptLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// RecordMovementRequest body para POST /api/inventory/movements.
// unit_cost solo aplica a entradas; en salidas se ignora y se usa el costo promedio.
type RecordMovementRequest struct {
	ItemID        string           `json:"item_id" validate:"required"`
	Reason        string           `json:"reason" validate:"required"`
	Quantity      decimal.Decimal  `json:"quantity"`
	UnitCost      *decimal.Decimal `json:"unit_cost,omitempty"`
	ReferenceType string           `json:"reference_type,omitempty"`
	ReferenceID   string           `json:"reference_id,omitempty"`
}

// TransferRequest body para POST /api/inventory/transfers.
type TransferRequest struct {
	ItemID        string          `json:"item_id" validate:"required"`
	ToWarehouseID string          `json:"to_warehouse_id" validate:"required"`
	Quantity      decimal.Decimal `json:"quantity"`
	ReferenceID   string          `json:"reference_id,omitempty"`
}

// ConsumptionLineRequest repuesto consumido por el ticket.
type ConsumptionLineRequest struct {
	ItemID   string          `json:"item_id" validate:"required"`
	Quantity decimal.Decimal `json:"quantity"`
}

// ConsumeRequest body para POST /api/tickets/:id/parts.
type ConsumeRequest struct {
	Lines []ConsumptionLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// MovementResponse fila del kardex.
type MovementResponse struct {
	ID              string          `json:"id"`
	TransactionID   string          `json:"transaction_id"`
	ItemID          string          `json:"item_id"`
	Reason          string          `json:"reason"`
	Direction       string          `json:"direction"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	TotalCost       decimal.Decimal `json:"total_cost"`
	PreviousStock   decimal.Decimal `json:"previous_stock"`
	NewStock        decimal.Decimal `json:"new_stock"`
	PreviousAvgCost decimal.Decimal `json:"previous_avg_cost"`
	NewAvgCost      decimal.Decimal `json:"new_avg_cost"`
	ReferenceType   string          `json:"reference_type,omitempty"`
	ReferenceID     string          `json:"reference_id,omitempty"`
	ActorID         string          `json:"actor_id,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// BatchResponse resultado de un lote (recepción o consumo).
type BatchResponse struct {
	Movements []MovementResponse `json:"movements"`
	TotalCost decimal.Decimal    `json:"total_cost"`
}

// TransferResponse par de movimientos de un traslado.
type TransferResponse struct {
	Out MovementResponse `json:"out"`
	In  MovementResponse `json:"in"`
}

// MovementListResponse listado paginado de movimientos.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// ItemResponse stock y costo de un repuesto en una bodega.
type ItemResponse struct {
	ID          string           `json:"id"`
	WarehouseID string           `json:"warehouse_id"`
	PartID      string           `json:"part_id"`
	Quantity    decimal.Decimal  `json:"quantity"`
	MinStock    decimal.Decimal  `json:"min_stock"`
	MaxStock    *decimal.Decimal `json:"max_stock,omitempty"`
	AverageCost decimal.Decimal  `json:"average_cost"`
	TotalValue  decimal.Decimal  `json:"total_value"`
	Status      string           `json:"status"`
	UpdatedAt   time.Time        `json:"updated_at"`
}
