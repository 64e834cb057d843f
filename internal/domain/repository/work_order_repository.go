package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/flota-api/internal/domain/entity"
)

// WorkOrderRepository lectura de órdenes de trabajo (presupuesto estimado).
type WorkOrderRepository interface {
	GetByID(ctx context.Context, tenantID, id string) (*entity.WorkOrder, error)
}

// ExpenseRepository lectura de gastos registrados por orden de trabajo.
type ExpenseRepository interface {
	SumByWorkOrder(ctx context.Context, tenantID, workOrderID string) (decimal.Decimal, error)
}
