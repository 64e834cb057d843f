package watchdog

import (
	"context"

	"github.com/jhoicas/flota-api/internal/domain"
	"github.com/jhoicas/flota-api/internal/domain/entity"
	"github.com/jhoicas/flota-api/internal/domain/repository"
)

// MaxAlertPage tamaño máximo (y por defecto) de página de alertas.
const MaxAlertPage = 200

// ListAlerts lista las alertas del tenant, más recientes primero.
func (w *FinancialWatchdog) ListAlerts(ctx context.Context, filter repository.AlertFilter) ([]*entity.FinancialAlert, error) {
	if filter.TenantID == "" {
		return nil, domain.NewValidationError("tenant_id", "requerido")
	}
	if filter.Limit < 0 || filter.Offset < 0 {
		return nil, domain.NewValidationError("limit", "paginación inválida")
	}
	if filter.Limit == 0 || filter.Limit > MaxAlertPage {
		filter.Limit = MaxAlertPage
	}
	switch filter.Type {
	case "", entity.AlertTypePriceDeviation, entity.AlertTypeBudgetOverrun:
	default:
		return nil, domain.NewValidationError("type", "tipo de alerta desconocido")
	}
	return w.alerts.List(ctx, filter)
}
