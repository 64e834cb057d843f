package inventory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/flota-api/internal/application/watchdog"
	"github.com/jhoicas/flota-api/internal/domain"
	"github.com/jhoicas/flota-api/internal/domain/entity"
	"github.com/jhoicas/flota-api/internal/domain/repository"
	"github.com/jhoicas/flota-api/pkg/logger"
)

// ReceivingCoordinator flujo de entrada: crea el ítem en la primera recepción y
// delega el movimiento PURCHASE_RECEIPT al kardex.
type ReceivingCoordinator struct {
	txRunner TxRunner
	ledger   *MovementLedger
	catalog  repository.PartCatalog
	watchdog Watchdog
	retry    RetryPolicy
	log      *logger.Logger
}

// NewReceivingCoordinator construye el coordinador de recepciones.
func NewReceivingCoordinator(
	txRunner TxRunner,
	ledger *MovementLedger,
	catalog repository.PartCatalog,
	wd Watchdog,
	retry RetryPolicy,
	log *logger.Logger,
) *ReceivingCoordinator {
	return &ReceivingCoordinator{
		txRunner: txRunner,
		ledger:   ledger,
		catalog:  catalog,
		watchdog: wd,
		retry:    retry,
		log:      log.Component("receiving"),
	}
}

// ReceiptLine una línea de recepción. Reference opcional (ej. ítem de OC);
// si está vacía se usa la referencia del lote.
type ReceiptLine struct {
	WarehouseID string
	PartID      string
	MinStock    decimal.Decimal
	MaxStock    *decimal.Decimal
	Quantity    decimal.Decimal
	UnitCost    decimal.Decimal
	Reference   entity.Reference
}

// ReceiveInput recepción de una sola línea.
type ReceiveInput struct {
	TenantID       string
	ActorID        string
	Line           ReceiptLine
	IdempotencyKey string
}

// ReceiveBatchInput recepción de varias líneas, todo o nada.
type ReceiveBatchInput struct {
	TenantID       string
	ActorID        string
	Reference      entity.Reference
	Lines          []ReceiptLine
	IdempotencyKey string
}

// ReceiveResult movimientos generados (en el orden de las líneas) y costo total.
type ReceiveResult struct {
	Movements []*entity.InventoryMovement
	TotalCost decimal.Decimal
}

// Receive registra la entrada de una línea. Si el ítem (tenant, bodega, repuesto)
// no existe se crea con stock 0 y costo 0 antes de aplicar la entrada.
func (c *ReceivingCoordinator) Receive(ctx context.Context, in ReceiveInput) (*entity.InventoryMovement, error) {
	res, err := c.ReceiveBatch(ctx, ReceiveBatchInput{
		TenantID:       in.TenantID,
		ActorID:        in.ActorID,
		Reference:      in.Line.Reference,
		Lines:          []ReceiptLine{in.Line},
		IdempotencyKey: in.IdempotencyKey,
	})
	if err != nil {
		return nil, err
	}
	return res.Movements[0], nil
}

// ReceiveBatch registra todas las líneas en una transacción. Cualquier fallo
// revierte el lote completo. Después del commit se verifica la desviación de precio.
func (c *ReceivingCoordinator) ReceiveBatch(ctx context.Context, in ReceiveBatchInput) (*ReceiveResult, error) {
	if err := c.validateBatch(ctx, in); err != nil {
		return nil, err
	}

	var (
		result   ReceiveResult
		replayed bool
	)
	err := c.retry.run(ctx, func() error {
		return c.txRunner.Run(ctx, func(ctx context.Context, repos Repositories) error {
			var err error
			result, replayed, err = withIdempotency(ctx, repos, in.TenantID, entity.IdempotencyScopeReceipt, in.IdempotencyKey,
				func() (ReceiveResult, error) { return c.receiveInTx(ctx, repos, in) })
			return err
		})
	})
	if err != nil {
		return nil, err
	}

	c.log.Debug().
		Str("tenant_id", in.TenantID).
		Int("lines", len(in.Lines)).
		Bool("replayed", replayed).
		Str("total_cost", result.TotalCost.String()).
		Msg("recepción confirmada")

	if !replayed {
		for i, mov := range result.Movements {
			c.watchdog.CheckPriceDeviation(ctx, watchdog.PriceCheckInput{
				TenantID:          in.TenantID,
				PartID:            in.Lines[i].PartID,
				ProposedUnitPrice: mov.UnitCost,
				MovementID:        mov.ID,
				Source:            "RECEIPT",
			})
		}
	}
	return &result, nil
}

func (c *ReceivingCoordinator) validateBatch(ctx context.Context, in ReceiveBatchInput) error {
	if in.TenantID == "" {
		return domain.NewValidationError("tenant_id", "requerido")
	}
	if len(in.Lines) == 0 {
		return domain.NewValidationError("lines", "se requiere al menos una línea")
	}
	for i, line := range in.Lines {
		if line.WarehouseID == "" || line.PartID == "" {
			return domain.NewValidationError(fmt.Sprintf("lines[%d]", i), "bodega y repuesto son requeridos")
		}
		if !line.Quantity.IsPositive() {
			return domain.NewValidationError(fmt.Sprintf("lines[%d].quantity", i), "debe ser mayor que cero")
		}
		if line.UnitCost.IsNegative() {
			return domain.NewValidationError(fmt.Sprintf("lines[%d].unit_cost", i), "no puede ser negativo")
		}
		if line.MinStock.IsNegative() || (line.MaxStock != nil && line.MaxStock.LessThan(line.MinStock)) {
			return domain.NewValidationError(fmt.Sprintf("lines[%d].min_stock", i), "rango de stock inválido")
		}
		// Catálogo maestro: el repuesto debe existir para el tenant
		part, err := c.catalog.GetPart(ctx, in.TenantID, line.PartID)
		if err != nil {
			return fmt.Errorf("leer repuesto %s: %w", line.PartID, err)
		}
		if part == nil {
			return domain.ErrNotFound
		}
	}
	return nil
}

func (c *ReceivingCoordinator) receiveInTx(ctx context.Context, repos Repositories, in ReceiveBatchInput) (ReceiveResult, error) {
	// 1) Asegurar que cada ítem exista (estado base stock 0, costo 0). Los INSERT
	// también toman bloqueos (llave única), así que van en orden (bodega, repuesto).
	type slot struct{ warehouseID, partID string }
	specs := make(map[slot]entity.ItemSpec, len(in.Lines))
	order := make([]slot, 0, len(in.Lines))
	for _, line := range in.Lines {
		k := slot{line.WarehouseID, line.PartID}
		if _, ok := specs[k]; ok {
			continue
		}
		specs[k] = entity.ItemSpec{
			TenantID:    in.TenantID,
			WarehouseID: line.WarehouseID,
			PartID:      line.PartID,
			MinStock:    line.MinStock,
			MaxStock:    line.MaxStock,
		}
		order = append(order, k)
	}
	sort.Slice(order, func(i, j int) bool {
		if order[i].warehouseID != order[j].warehouseID {
			return order[i].warehouseID < order[j].warehouseID
		}
		return order[i].partID < order[j].partID
	})
	ensured := make(map[slot]string, len(order))
	for _, k := range order {
		item, created, err := repos.Items.Ensure(ctx, specs[k])
		if err != nil {
			return ReceiveResult{}, err
		}
		if created {
			c.log.Debug().Str("item_id", item.ID).Str("part_id", k.partID).Msg("ítem creado en primera recepción")
		}
		ensured[k] = item.ID
	}
	itemIDs := make([]string, len(in.Lines))
	for i, line := range in.Lines {
		itemIDs[i] = ensured[slot{line.WarehouseID, line.PartID}]
	}

	// 2) Bloquear en orden determinista
	if _, err := lockItems(ctx, repos, in.TenantID, itemIDs); err != nil {
		return ReceiveResult{}, err
	}

	// 3) Una entrada por línea, en el orden recibido
	now := c.ledger.now()
	txID := uuid.New().String()
	result := ReceiveResult{Movements: make([]*entity.InventoryMovement, 0, len(in.Lines)), TotalCost: decimal.Zero}
	for i, line := range in.Lines {
		ref := line.Reference
		if ref.Type == "" {
			ref = in.Reference
		}
		cost := line.UnitCost
		mov, err := c.ledger.RecordInTx(ctx, repos, RecordInput{
			TenantID:  in.TenantID,
			ActorID:   in.ActorID,
			ItemID:    itemIDs[i],
			Reason:    entity.ReasonPurchaseReceipt,
			Quantity:  line.Quantity,
			UnitCost:  &cost,
			Reference: ref,
		}, now, txID)
		if err != nil {
			return ReceiveResult{}, err
		}
		if ref.Type == entity.ReferencePurchaseOrderItem && ref.ID != "" {
			if err := repos.PurchaseOrderItems.AttachMovement(ctx, in.TenantID, ref.ID, mov.ID); err != nil {
				return ReceiveResult{}, err
			}
		}
		result.Movements = append(result.Movements, mov)
		result.TotalCost = result.TotalCost.Add(mov.TotalCost)
	}
	return result, nil
}
