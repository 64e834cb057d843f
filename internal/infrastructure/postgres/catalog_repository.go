package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/flota-api/internal/domain/entity"
	"github.com/jhoicas/flota-api/internal/domain/repository"
)

var (
	_ repository.PartCatalog         = (*CatalogRepo)(nil)
	_ repository.WorkOrderRepository = (*WorkOrderRepo)(nil)
	_ repository.ExpenseRepository   = (*ExpenseRepo)(nil)
)

// CatalogRepo lectura del catálogo maestro de repuestos.
type CatalogRepo struct {
	q Querier
}

// NewCatalogRepository construye el adaptador.
func NewCatalogRepository(q Querier) *CatalogRepo {
	return &CatalogRepo{q: q}
}

// GetPart nil si el repuesto no existe para el tenant.
func (r *CatalogRepo) GetPart(ctx context.Context, tenantID, partID string) (*entity.Part, error) {
	query := `SELECT id, tenant_id, sku, name, reference_price FROM parts WHERE tenant_id = $1 AND id = $2`
	var p entity.Part
	err := r.q.QueryRow(ctx, query, tenantID, partID).Scan(&p.ID, &p.TenantID, &p.SKU, &p.Name, &p.ReferencePrice)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get part: %w", err)
	}
	return &p, nil
}

// WorkOrderRepo lectura de órdenes de trabajo.
type WorkOrderRepo struct {
	q Querier
}

// NewWorkOrderRepository construye el adaptador.
func NewWorkOrderRepository(q Querier) *WorkOrderRepo {
	return &WorkOrderRepo{q: q}
}

// GetByID nil si la orden no existe para el tenant.
func (r *WorkOrderRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.WorkOrder, error) {
	var wo entity.WorkOrder
	err := r.q.QueryRow(ctx, `SELECT id, tenant_id, estimated_budget FROM work_orders WHERE tenant_id = $1 AND id = $2`,
		tenantID, id).Scan(&wo.ID, &wo.TenantID, &wo.EstimatedBudget)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get work order: %w", err)
	}
	return &wo, nil
}

// ExpenseRepo gastos por orden de trabajo.
type ExpenseRepo struct {
	q Querier
}

// NewExpenseRepository construye el adaptador.
func NewExpenseRepository(q Querier) *ExpenseRepo {
	return &ExpenseRepo{q: q}
}

// SumByWorkOrder total de gastos registrados (0 si no hay).
func (r *ExpenseRepo) SumByWorkOrder(ctx context.Context, tenantID, workOrderID string) (decimal.Decimal, error) {
	var sum *decimal.Decimal
	err := r.q.QueryRow(ctx, `SELECT SUM(amount) FROM expenses WHERE tenant_id = $1 AND work_order_id = $2`,
		tenantID, workOrderID).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum expenses: %w", err)
	}
	return decimalOrZero(sum), nil
}
