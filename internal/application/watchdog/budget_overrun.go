package watchdog

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/flota-api/internal/domain"
	"github.com/jhoicas/flota-api/internal/domain/entity"
)

// criticalOverrunFactor sobre este múltiplo del presupuesto la alerta es CRITICAL.
var criticalOverrunFactor = decimal.RequireFromString("1.20")

// BudgetCheckInput nuevo gasto imputado a una orden de trabajo.
type BudgetCheckInput struct {
	TenantID         string
	WorkOrderID      string
	NewExpenseAmount decimal.Decimal
	ExpenseID        string
	MovementID       string
}

// BudgetOverrunResult resultado del chequeo de presupuesto.
type BudgetOverrunResult struct {
	Budget       decimal.Decimal `json:"budget"`
	Spent        decimal.Decimal `json:"spent"`
	Projected    decimal.Decimal `json:"projected"`
	Exceeded     bool            `json:"exceeded"`
	Deduplicated bool            `json:"deduplicated"` // había una alerta pendiente; no se creó otra
	AlertID      string          `json:"alert_id,omitempty"`
}

// CheckBudgetOverrun suma los gastos registrados de la orden más el nuevo monto y
// lo compara con el presupuesto estimado. Crea como máximo una alerta
// BUDGET_OVERRUN pendiente por orden de trabajo. Sin presupuesto no hay chequeo.
// Los errores se registran y se descartan (nil).
func (w *FinancialWatchdog) CheckBudgetOverrun(ctx context.Context, in BudgetCheckInput) *BudgetOverrunResult {
	ctx, cancel := w.checkContext(ctx)
	defer cancel()

	res, err := w.checkBudgetOverrun(ctx, in)
	if err != nil {
		w.log.Warn().Err(err).
			Str("tenant_id", in.TenantID).
			Str("work_order_id", in.WorkOrderID).
			Msg("chequeo de presupuesto descartado")
		return nil
	}
	return res
}

func (w *FinancialWatchdog) checkBudgetOverrun(ctx context.Context, in BudgetCheckInput) (*BudgetOverrunResult, error) {
	wo, err := w.workOrders.GetByID(ctx, in.TenantID, in.WorkOrderID)
	if err != nil {
		return nil, fmt.Errorf("leer orden de trabajo: %w", err)
	}
	if wo == nil || wo.EstimatedBudget == nil {
		return nil, nil
	}
	spent, err := w.expenses.SumByWorkOrder(ctx, in.TenantID, in.WorkOrderID)
	if err != nil {
		return nil, fmt.Errorf("sumar gastos: %w", err)
	}

	budget := *wo.EstimatedBudget
	res := &BudgetOverrunResult{
		Budget:    budget,
		Spent:     spent,
		Projected: spent.Add(in.NewExpenseAmount),
	}
	res.Exceeded = res.Projected.GreaterThan(budget)
	if !res.Exceeded {
		return res, nil
	}

	exists, err := w.alerts.ExistsUnresolved(ctx, in.TenantID, entity.AlertTypeBudgetOverrun, in.WorkOrderID)
	if err != nil {
		return nil, fmt.Errorf("consultar alertas pendientes: %w", err)
	}
	if exists {
		res.Deduplicated = true
		return res, nil
	}

	severity := entity.AlertSeverityHigh
	if res.Projected.GreaterThan(budget.Mul(criticalOverrunFactor)) {
		severity = entity.AlertSeverityCritical
	}
	overrun := res.Projected.Sub(budget)
	alert, err := w.newAlert(in.TenantID, entity.AlertTypeBudgetOverrun, severity,
		fmt.Sprintf("Orden de trabajo %s excede su presupuesto en %s (%s de %s)",
			in.WorkOrderID, overrun.StringFixed(2), res.Projected.StringFixed(2), budget.StringFixed(2)),
		map[string]any{
			"work_order_id":  in.WorkOrderID,
			"budget":         budget,
			"spent":          spent,
			"new_expense":    in.NewExpenseAmount,
			"projected":      res.Projected,
			"overrun_amount": overrun,
		})
	if err != nil {
		return nil, fmt.Errorf("construir alerta: %w", err)
	}
	alert.WorkOrderID = optional(in.WorkOrderID)
	alert.ExpenseID = optional(in.ExpenseID)
	alert.MovementID = optional(in.MovementID)
	if err := w.alerts.Create(ctx, alert); err != nil {
		// Otra petición concurrente creó la alerta pendiente primero.
		if errors.Is(err, domain.ErrDuplicate) {
			res.Deduplicated = true
			return res, nil
		}
		return nil, fmt.Errorf("crear alerta de presupuesto: %w", err)
	}
	res.AlertID = alert.ID

	w.log.Info().
		Str("tenant_id", in.TenantID).
		Str("work_order_id", in.WorkOrderID).
		Str("projected", res.Projected.String()).
		Str("alert_id", alert.ID).
		Msg("alerta de sobrecosto creada")
	return res, nil
}
