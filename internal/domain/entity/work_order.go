package entity

import "github.com/shopspring/decimal"

// WorkOrder orden de trabajo (vista mínima). EstimatedBudget nil = sin presupuesto.
type WorkOrder struct {
	ID              string
	TenantID        string
	EstimatedBudget *decimal.Decimal
}
