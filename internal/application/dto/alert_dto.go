package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// PriceCheckRequest body para POST /api/watchdog/price-check (propuesta de OC).
type PriceCheckRequest struct {
	PartID            string          `json:"part_id" validate:"required"`
	ProposedUnitPrice decimal.Decimal `json:"proposed_unit_price"`
	WorkOrderID       string          `json:"work_order_id,omitempty"`
}

// PriceCheckResponse resultado del chequeo. Checked=false cuando el repuesto no
// tiene precio de referencia (o el chequeo no pudo completarse).
type PriceCheckResponse struct {
	Checked          bool             `json:"checked"`
	ReferencePrice   *decimal.Decimal `json:"reference_price,omitempty"`
	DeviationPercent int64            `json:"deviation_percent"`
	ExceedsThreshold bool             `json:"exceeds_threshold"`
	AlertID          string           `json:"alert_id,omitempty"`
}

// AlertResponse alerta financiera.
type AlertResponse struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Severity    string          `json:"severity"`
	Message     string          `json:"message"`
	Details     json.RawMessage `json:"details,omitempty"`
	MovementID  *string         `json:"movement_id,omitempty"`
	ExpenseID   *string         `json:"expense_id,omitempty"`
	WorkOrderID *string         `json:"work_order_id,omitempty"`
	PartID      *string         `json:"part_id,omitempty"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
}

// AlertListResponse listado paginado de alertas.
type AlertListResponse struct {
	Items []AlertResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}
