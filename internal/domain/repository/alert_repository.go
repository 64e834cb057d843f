package repository

import (
	"context"

	"github.com/jhoicas/flota-api/internal/domain/entity"
)

// AlertFilter filtro tipado de alertas financieras.
type AlertFilter struct {
	TenantID    string
	Type        string
	Status      string
	WorkOrderID string
	Limit       int
	Offset      int
}

// AlertRepository almacén de alertas; el envío de notificaciones es externo.
type AlertRepository interface {
	// Create inserta la alerta. Para BUDGET_OVERRUN devuelve domain.ErrDuplicate
	// si ya existe una pendiente para la misma orden de trabajo.
	Create(ctx context.Context, alert *entity.FinancialAlert) error
	ExistsUnresolved(ctx context.Context, tenantID, alertType, workOrderID string) (bool, error)
	List(ctx context.Context, filter AlertFilter) ([]*entity.FinancialAlert, error)
}
