package inventory

import (
	"context"

	"github.com/jhoicas/flota-api/internal/application/watchdog"
	"github.com/jhoicas/flota-api/internal/domain/entity"
	"github.com/jhoicas/flota-api/internal/domain/repository"
)

// Repositories repositorios atados a una misma transacción.
type Repositories struct {
	Items              repository.InventoryItemRepository
	Movements          repository.InventoryMovementRepository
	Tickets            repository.TicketRepository
	PurchaseOrderItems repository.PurchaseOrderItemRepository
	Idempotency        repository.IdempotencyRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad para el kardex: Commit si fn devuelve nil, Rollback en otro caso.
// Si el bloqueo o la transacción no completan a tiempo devuelve domain.ConcurrencyConflictError.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}

// Watchdog detector de anomalías invocado después del commit.
type Watchdog interface {
	CheckPriceDeviation(ctx context.Context, in watchdog.PriceCheckInput) *watchdog.PriceDeviationResult
	CheckBudgetOverrun(ctx context.Context, in watchdog.BudgetCheckInput) *watchdog.BudgetOverrunResult
}

// KardexPDFGenerator genera la representación PDF del kardex de un ítem.
type KardexPDFGenerator interface {
	GenerateKardexPDF(ctx context.Context, item *entity.InventoryItem, part *entity.Part, movements []*entity.InventoryMovement) ([]byte, error)
}
