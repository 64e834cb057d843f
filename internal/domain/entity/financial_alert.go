package entity

import (
	"encoding/json"
	"time"
)

// Tipos de alerta financiera.
const (
	AlertTypePriceDeviation = "PRICE_DEVIATION"
	AlertTypeBudgetOverrun  = "BUDGET_OVERRUN"
)

// Severidades.
const (
	AlertSeverityMedium   = "MEDIUM"
	AlertSeverityHigh     = "HIGH"
	AlertSeverityCritical = "CRITICAL"
)

// AlertStatusPending único estado que crea el core; la resolución es externa.
const AlertStatusPending = "PENDING"

// FinancialAlert anotación creada por el watchdog. No altera la operación que la originó.
type FinancialAlert struct {
	ID          string
	TenantID    string
	Type        string
	Severity    string
	Message     string
	Details     json.RawMessage
	MovementID  *string
	ExpenseID   *string
	WorkOrderID *string
	PartID      *string
	Status      string
	CreatedAt   time.Time
}
