package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/flota-api/internal/application/watchdog"
	"github.com/jhoicas/flota-api/internal/domain"
	"github.com/jhoicas/flota-api/internal/domain/entity"
	"github.com/jhoicas/flota-api/pkg/logger"
)

// ConsumptionCoordinator flujo de salida multi-línea: los repuestos consumidos por
// un ticket de reparación se descuentan todos o ninguno.
type ConsumptionCoordinator struct {
	txRunner TxRunner
	ledger   *MovementLedger
	watchdog Watchdog
	retry    RetryPolicy
	log      *logger.Logger
}

// NewConsumptionCoordinator construye el coordinador de consumos.
func NewConsumptionCoordinator(txRunner TxRunner, ledger *MovementLedger, wd Watchdog, retry RetryPolicy, log *logger.Logger) *ConsumptionCoordinator {
	return &ConsumptionCoordinator{
		txRunner: txRunner,
		ledger:   ledger,
		watchdog: wd,
		retry:    retry,
		log:      log.Component("consumption"),
	}
}

// ConsumptionLine ítem y cantidad a consumir.
type ConsumptionLine struct {
	ItemID   string
	Quantity decimal.Decimal
}

// ConsumeInput lote de consumo de un ticket.
type ConsumeInput struct {
	TenantID       string
	ActorID        string
	TicketID       string
	Lines          []ConsumptionLine
	IdempotencyKey string
}

// ConsumeResult movimientos (en el orden de las líneas) y costo total a sumar
// en el acumulado del ticket.
type ConsumeResult struct {
	Movements []*entity.InventoryMovement
	TotalCost decimal.Decimal
}

// ConsumeForTicket registra una salida CONSUMPTION por línea. Si cualquier línea
// falla (stock insuficiente, ítem inexistente o de otro tenant) se revierte el
// lote completo; el primer error gana y no se intentan más líneas.
func (c *ConsumptionCoordinator) ConsumeForTicket(ctx context.Context, in ConsumeInput) (*ConsumeResult, error) {
	if in.TenantID == "" || in.TicketID == "" {
		return nil, domain.NewValidationError("ticket_id", "tenant y ticket son requeridos")
	}
	if len(in.Lines) == 0 {
		return nil, domain.NewValidationError("lines", "se requiere al menos una línea")
	}
	in.Lines = append([]ConsumptionLine(nil), in.Lines...)
	for i, line := range in.Lines {
		if line.ItemID == "" {
			return nil, domain.NewValidationError(fmt.Sprintf("lines[%d].item_id", i), "requerido")
		}
		qty, err := normalizeQuantity(line.Quantity)
		if err != nil {
			return nil, domain.NewValidationError(fmt.Sprintf("lines[%d].quantity", i), "debe ser mayor que cero")
		}
		in.Lines[i].Quantity = qty
	}

	var (
		result   ConsumeResult
		ticket   *entity.Ticket
		replayed bool
	)
	err := c.retry.run(ctx, func() error {
		return c.txRunner.Run(ctx, func(ctx context.Context, repos Repositories) error {
			var err error
			ticket, err = repos.Tickets.GetByID(ctx, in.TenantID, in.TicketID)
			if err != nil {
				return err
			}
			if ticket == nil {
				return domain.ErrNotFound
			}
			result, replayed, err = withIdempotency(ctx, repos, in.TenantID, entity.ConsumptionScope(in.TicketID), in.IdempotencyKey,
				func() (ConsumeResult, error) { return c.consumeInTx(ctx, repos, in) })
			return err
		})
	})
	if err != nil {
		return nil, err
	}

	c.log.Debug().
		Str("tenant_id", in.TenantID).
		Str("ticket_id", in.TicketID).
		Int("lines", len(in.Lines)).
		Bool("replayed", replayed).
		Str("total_cost", result.TotalCost.String()).
		Msg("consumo confirmado")

	if !replayed && ticket.WorkOrderID != nil && result.TotalCost.IsPositive() {
		c.watchdog.CheckBudgetOverrun(ctx, watchdog.BudgetCheckInput{
			TenantID:         in.TenantID,
			WorkOrderID:      *ticket.WorkOrderID,
			NewExpenseAmount: result.TotalCost,
		})
	}
	return &result, nil
}

func (c *ConsumptionCoordinator) consumeInTx(ctx context.Context, repos Repositories, in ConsumeInput) (ConsumeResult, error) {
	// 1) Bloquear todos los ítems en orden ascendente de id; valida existencia y tenant
	ids := make([]string, len(in.Lines))
	for i, line := range in.Lines {
		ids[i] = line.ItemID
	}
	if _, err := lockItems(ctx, repos, in.TenantID, ids); err != nil {
		return ConsumeResult{}, err
	}

	// 2) Una salida por línea en el orden recibido, con back-reference al movimiento
	now := c.ledger.now()
	txID := uuid.New().String()
	ref := entity.Reference{Type: entity.ReferenceTicket, ID: in.TicketID}
	result := ConsumeResult{Movements: make([]*entity.InventoryMovement, 0, len(in.Lines)), TotalCost: decimal.Zero}
	for _, line := range in.Lines {
		mov, err := c.ledger.RecordInTx(ctx, repos, RecordInput{
			TenantID:  in.TenantID,
			ActorID:   in.ActorID,
			ItemID:    line.ItemID,
			Reason:    entity.ReasonConsumption,
			Quantity:  line.Quantity,
			Reference: ref,
		}, now, txID)
		if err != nil {
			return ConsumeResult{}, err
		}
		if err := repos.Tickets.CreatePartEntry(ctx, &entity.TicketPartEntry{
			ID:         uuid.New().String(),
			TenantID:   in.TenantID,
			TicketID:   in.TicketID,
			ItemID:     line.ItemID,
			Quantity:   mov.Quantity,
			UnitCost:   mov.UnitCost,
			TotalCost:  mov.TotalCost,
			MovementID: mov.ID,
			CreatedAt:  now,
			CreatedBy:  in.ActorID,
		}); err != nil {
			return ConsumeResult{}, err
		}
		result.Movements = append(result.Movements, mov)
		result.TotalCost = result.TotalCost.Add(mov.TotalCost)
	}
	return result, nil
}
