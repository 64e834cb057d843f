package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ticket ticket de reparación (vista mínima). WorkOrderID es opcional.
type Ticket struct {
	ID          string
	TenantID    string
	VehicleID   string
	WorkOrderID *string
}

// TicketPartEntry línea de repuesto consumido por un ticket.
// MovementID permite reconstruir el costo sin reprocesar el kardex.
type TicketPartEntry struct {
	ID         string
	TenantID   string
	TicketID   string
	ItemID     string
	Quantity   decimal.Decimal
	UnitCost   decimal.Decimal
	TotalCost  decimal.Decimal
	MovementID string
	CreatedAt  time.Time
	CreatedBy  string
}
