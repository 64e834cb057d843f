package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/flota-api/internal/domain"
	"github.com/jhoicas/flota-api/internal/domain/entity"
	"github.com/jhoicas/flota-api/internal/domain/repository"
)

var _ repository.AlertRepository = (*AlertRepo)(nil)

// AlertRepo almacén de alertas financieras.
type AlertRepo struct {
	q Querier
}

// NewAlertRepository construye el adaptador.
func NewAlertRepository(q Querier) *AlertRepo {
	return &AlertRepo{q: q}
}

// Create inserta la alerta. El índice único parcial ux_alerts_budget_pending
// rechaza una segunda BUDGET_OVERRUN pendiente para la misma orden.
func (r *AlertRepo) Create(ctx context.Context, a *entity.FinancialAlert) error {
	query := `
		INSERT INTO financial_alerts (id, tenant_id, type, severity, message, details, movement_id, expense_id, work_order_id, part_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	details := a.Details
	if len(details) == 0 {
		details = []byte("{}")
	}
	_, err := r.q.Exec(ctx, query, a.ID, a.TenantID, a.Type, a.Severity, a.Message, []byte(details),
		a.MovementID, a.ExpenseID, a.WorkOrderID, a.PartID, a.Status, a.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create alert: %w", err)
	}
	return nil
}

// ExistsUnresolved indica si hay una alerta pendiente del tipo para la orden de trabajo.
func (r *AlertRepo) ExistsUnresolved(ctx context.Context, tenantID, alertType, workOrderID string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM financial_alerts
			WHERE tenant_id = $1 AND type = $2 AND work_order_id = $3 AND status = $4
		)`, tenantID, alertType, workOrderID, entity.AlertStatusPending).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("exists unresolved alert: %w", err)
	}
	return exists, nil
}

// List alertas del tenant, más recientes primero.
func (r *AlertRepo) List(ctx context.Context, f repository.AlertFilter) ([]*entity.FinancialAlert, error) {
	query := `
		SELECT id, tenant_id, type, severity, message, details, movement_id, expense_id, work_order_id, part_id, status, created_at
		FROM financial_alerts WHERE tenant_id = $1`
	args := []any{f.TenantID}
	pos := 2
	if f.Type != "" {
		query += fmt.Sprintf(" AND type = $%d", pos)
		args = append(args, f.Type)
		pos++
	}
	if f.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", pos)
		args = append(args, f.Status)
		pos++
	}
	if f.WorkOrderID != "" {
		query += fmt.Sprintf(" AND work_order_id = $%d", pos)
		args = append(args, f.WorkOrderID)
		pos++
	}
	query += " ORDER BY created_at DESC"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", pos)
		args = append(args, f.Limit)
		pos++
	}
	if f.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", pos)
		args = append(args, f.Offset)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()
	list := []*entity.FinancialAlert{}
	for rows.Next() {
		var (
			a       entity.FinancialAlert
			details []byte
		)
		if err := rows.Scan(&a.ID, &a.TenantID, &a.Type, &a.Severity, &a.Message, &details,
			&a.MovementID, &a.ExpenseID, &a.WorkOrderID, &a.PartID, &a.Status, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		a.Details = details
		list = append(list, &a)
	}
	return list, rows.Err()
}
