package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction sentido del movimiento: ENTRY suma stock, EXIT lo resta.
type Direction string

const (
	DirectionEntry Direction = "ENTRY"
	DirectionExit  Direction = "EXIT"
)

// MovementReason motivo del movimiento (conjunto cerrado).
type MovementReason string

const (
	ReasonPurchaseReceipt  MovementReason = "PURCHASE_RECEIPT"
	ReasonAdjustmentIn     MovementReason = "ADJUSTMENT_IN"
	ReasonAdjustmentOut    MovementReason = "ADJUSTMENT_OUT"
	ReasonTransferIn       MovementReason = "TRANSFER_IN"
	ReasonTransferOut      MovementReason = "TRANSFER_OUT"
	ReasonReturnToStock    MovementReason = "RETURN_TO_STOCK"
	ReasonReturnToSupplier MovementReason = "RETURN_TO_SUPPLIER"
	ReasonConsumption      MovementReason = "CONSUMPTION"
	ReasonDamage           MovementReason = "DAMAGE"
	ReasonCountAdjustment  MovementReason = "COUNT_ADJUSTMENT"
)

// reasonDirections mapea cada motivo a exactamente una dirección.
var reasonDirections = map[MovementReason]Direction{
	ReasonPurchaseReceipt:  DirectionEntry,
	ReasonAdjustmentIn:     DirectionEntry,
	ReasonTransferIn:       DirectionEntry,
	ReasonReturnToStock:    DirectionEntry,
	ReasonAdjustmentOut:    DirectionExit,
	ReasonTransferOut:      DirectionExit,
	ReasonReturnToSupplier: DirectionExit,
	ReasonConsumption:      DirectionExit,
	ReasonDamage:           DirectionExit,
	ReasonCountAdjustment:  DirectionExit,
}

// Direction devuelve la dirección del motivo; ok=false si el motivo no existe.
func (r MovementReason) Direction() (Direction, bool) {
	d, ok := reasonDirections[r]
	return d, ok
}

// Tipos de referencia del objeto de negocio que origina un movimiento.
const (
	ReferenceTicket            = "TICKET"
	ReferencePurchaseOrder     = "PURCHASE_ORDER"
	ReferencePurchaseOrderItem = "PURCHASE_ORDER_ITEM"
	ReferenceWorkOrder         = "WORK_ORDER"
	ReferenceTransfer          = "TRANSFER"
	ReferenceManual            = "MANUAL"
	ReferenceStockCount        = "STOCK_COUNT"
)

// Reference tipo + id del objeto de negocio que disparó el movimiento.
type Reference struct {
	Type string
	ID   string
}

// InventoryMovement fila inmutable del kardex. Se crea una vez por evento,
// nunca se actualiza ni se borra.
type InventoryMovement struct {
	ID              string
	TransactionID   string // agrupa los movimientos de un mismo lote o traslado
	TenantID        string
	ItemID          string
	Reason          MovementReason
	Direction       Direction
	Quantity        decimal.Decimal // magnitud, siempre positiva
	UnitCost        decimal.Decimal
	TotalCost       decimal.Decimal
	PreviousStock   decimal.Decimal
	NewStock        decimal.Decimal
	PreviousAvgCost decimal.Decimal
	NewAvgCost      decimal.Decimal
	ReferenceType   string
	ReferenceID     string
	ActorID         string
	CreatedAt       time.Time
}
