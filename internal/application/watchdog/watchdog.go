// Package watchdog detecta anomalías financieras (desviación de precio y
// sobrecosto de presupuesto) después de que la operación que las origina ya
// confirmó su transacción. Es estrictamente best-effort: nunca devuelve errores
// al llamador ni puede revertir la operación observada.
package watchdog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/flota-api/internal/domain/entity"
	"github.com/jhoicas/flota-api/internal/domain/repository"
	"github.com/jhoicas/flota-api/pkg/logger"
)

// PriceToleranceFactor precio propuesto máximo = referencia * 1.10.
var PriceToleranceFactor = decimal.RequireFromString("1.10")

// PriceTolerancePercent tolerancia expresada en porcentaje (para detalles de la alerta).
const PriceTolerancePercent = 10

var hundred = decimal.NewFromInt(100)

// FinancialWatchdog detector no bloqueante. Solo lee y, a lo sumo, crea una alerta.
type FinancialWatchdog struct {
	catalog    repository.PartCatalog
	workOrders repository.WorkOrderRepository
	expenses   repository.ExpenseRepository
	alerts     repository.AlertRepository
	log        *logger.Logger
	timeout    time.Duration
	now        func() time.Time
}

// NewFinancialWatchdog construye el detector. timeout acota cada chequeo (0 = sin límite propio).
func NewFinancialWatchdog(
	catalog repository.PartCatalog,
	workOrders repository.WorkOrderRepository,
	expenses repository.ExpenseRepository,
	alerts repository.AlertRepository,
	log *logger.Logger,
	timeout time.Duration,
) *FinancialWatchdog {
	return &FinancialWatchdog{
		catalog:    catalog,
		workOrders: workOrders,
		expenses:   expenses,
		alerts:     alerts,
		log:        log.Component("watchdog"),
		timeout:    timeout,
		now:        time.Now,
	}
}

// checkContext desacopla el chequeo de la cancelación del request ya respondido
// y le aplica su propio timeout.
func (w *FinancialWatchdog) checkContext(ctx context.Context) (context.Context, context.CancelFunc) {
	base := context.WithoutCancel(ctx)
	if w.timeout <= 0 {
		return base, func() {}
	}
	return context.WithTimeout(base, w.timeout)
}

func (w *FinancialWatchdog) newAlert(tenantID, alertType, severity, message string, details any) (*entity.FinancialAlert, error) {
	raw, err := json.Marshal(details)
	if err != nil {
		return nil, err
	}
	return &entity.FinancialAlert{
		ID:        uuid.New().String(),
		TenantID:  tenantID,
		Type:      alertType,
		Severity:  severity,
		Message:   message,
		Details:   raw,
		Status:    entity.AlertStatusPending,
		CreatedAt: w.now(),
	}, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
