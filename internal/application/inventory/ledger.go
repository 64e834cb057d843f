package inventory

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/flota-api/internal/domain"
	"github.com/jhoicas/flota-api/internal/domain/entity"
	costing "github.com/jhoicas/flota-api/internal/domain/inventory"
	"github.com/jhoicas/flota-api/pkg/logger"
)

// MovementLedger registra movimientos de inventario de forma transaccional:
// bloqueo de fila (SELECT FOR UPDATE), cálculo de costo, actualización del ítem
// y fila inmutable del kardex en una sola unidad de trabajo.
type MovementLedger struct {
	txRunner TxRunner
	retry    RetryPolicy
	log      *logger.Logger
	now      func() time.Time
}

// NewMovementLedger construye el kardex.
func NewMovementLedger(txRunner TxRunner, retry RetryPolicy, log *logger.Logger) *MovementLedger {
	return &MovementLedger{
		txRunner: txRunner,
		retry:    retry,
		log:      log.Component("ledger"),
		now:      time.Now,
	}
}

// RecordInput entrada para registrar un movimiento sobre un ítem existente.
// UnitCost es obligatorio en PURCHASE_RECEIPT; en otras entradas, si es nil, se
// usa el costo promedio vigente. En salidas se ignora.
type RecordInput struct {
	TenantID       string
	ActorID        string
	ItemID         string
	Reason         entity.MovementReason
	Quantity       decimal.Decimal
	UnitCost       *decimal.Decimal
	Reference      entity.Reference
	IdempotencyKey string
}

// TransferInput traslado de stock de un ítem a otra bodega del mismo tenant.
type TransferInput struct {
	TenantID      string
	ActorID       string
	ItemID        string
	ToWarehouseID string
	Quantity      decimal.Decimal
	Reference     entity.Reference
}

// TransferResult par de movimientos generados por un traslado.
type TransferResult struct {
	Out *entity.InventoryMovement
	In  *entity.InventoryMovement
}

// Record abre una transacción, bloquea el ítem, aplica el movimiento y hace Commit o Rollback.
func (l *MovementLedger) Record(ctx context.Context, in RecordInput) (*entity.InventoryMovement, error) {
	direction, err := validateRecord(&in)
	if err != nil {
		return nil, err
	}
	if in.ItemID == "" {
		return nil, domain.NewValidationError("item_id", "requerido")
	}

	var mov *entity.InventoryMovement
	err = l.retry.run(ctx, func() error {
		return l.txRunner.Run(ctx, func(ctx context.Context, repos Repositories) error {
			var err error
			mov, _, err = withIdempotency(ctx, repos, in.TenantID, entity.IdempotencyScopeMovement, in.IdempotencyKey,
				func() (*entity.InventoryMovement, error) {
					return l.recordValidated(ctx, repos, in, direction, uuid.New().String())
				})
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	l.log.Debug().
		Str("tenant_id", in.TenantID).
		Str("item_id", in.ItemID).
		Str("reason", string(in.Reason)).
		Str("movement_id", mov.ID).
		Msg("movimiento registrado")
	return mov, nil
}

// RecordInTx registra un movimiento usando los repositorios proporcionados (misma transacción del caller).
// transactionID agrupa los movimientos del lote. El caller ya tiene el ítem bloqueado
// y now debe tomarse después de ese bloqueo.
func (l *MovementLedger) RecordInTx(
	ctx context.Context,
	repos Repositories,
	in RecordInput,
	now time.Time,
	transactionID string,
) (*entity.InventoryMovement, error) {
	direction, err := validateRecord(&in)
	if err != nil {
		return nil, err
	}
	item, err := repos.Items.GetForUpdate(ctx, in.TenantID, in.ItemID)
	if err != nil {
		return nil, err
	}
	return l.apply(ctx, repos, item, in, direction, now, transactionID)
}

func (l *MovementLedger) recordValidated(
	ctx context.Context,
	repos Repositories,
	in RecordInput,
	direction entity.Direction,
	transactionID string,
) (*entity.InventoryMovement, error) {
	// Bloquea la fila del ítem para evitar actualizaciones perdidas
	item, err := repos.Items.GetForUpdate(ctx, in.TenantID, in.ItemID)
	if err != nil {
		return nil, err
	}
	// La fecha se toma con el bloqueo ya adquirido: el kardex se ordena por created_at
	return l.apply(ctx, repos, item, in, direction, l.now(), transactionID)
}

// apply calcula y persiste el movimiento sobre un ítem ya bloqueado por el caller.
func (l *MovementLedger) apply(
	ctx context.Context,
	repos Repositories,
	item *entity.InventoryItem,
	in RecordInput,
	direction entity.Direction,
	now time.Time,
	transactionID string,
) (*entity.InventoryMovement, error) {
	unitCost := item.AverageCost
	if direction == entity.DirectionEntry && in.UnitCost != nil {
		unitCost = *in.UnitCost
	}

	res, err := costing.ApplyMovement(
		costing.State{Stock: item.Quantity, AvgCost: item.AverageCost},
		costing.Request{Direction: direction, Quantity: in.Quantity, UnitCost: unitCost},
	)
	if err != nil {
		var stockErr *domain.InsufficientStockError
		if errors.As(err, &stockErr) {
			stockErr.ItemID = item.ID
		}
		return nil, err
	}
	p := costing.Round(res)

	mov := &entity.InventoryMovement{
		ID:              uuid.New().String(),
		TransactionID:   transactionID,
		TenantID:        item.TenantID,
		ItemID:          item.ID,
		Reason:          in.Reason,
		Direction:       direction,
		Quantity:        in.Quantity,
		UnitCost:        p.MovementUnitCost,
		TotalCost:       p.MovementTotalCost,
		PreviousStock:   item.Quantity,
		NewStock:        p.NewStock,
		PreviousAvgCost: item.AverageCost,
		NewAvgCost:      p.NewAvgCost,
		ReferenceType:   in.Reference.Type,
		ReferenceID:     in.Reference.ID,
		ActorID:         in.ActorID,
		CreatedAt:       now,
	}

	item.Quantity = p.NewStock
	item.AverageCost = p.NewAvgCost
	item.TotalValue = p.NewTotalValue
	item.Status = costing.ResolveStatus(p.NewStock, item.MinStock)
	item.UpdatedAt = now
	if err := repos.Items.Update(ctx, item); err != nil {
		return nil, err
	}
	if err := repos.Movements.Create(ctx, mov); err != nil {
		return nil, err
	}
	return mov, nil
}

// Transfer resta del ítem origen (TRANSFER_OUT al costo promedio) y suma en el ítem
// destino del mismo repuesto (TRANSFER_IN a ese costo), en la misma transacción.
// El destino se crea si no existe. Ambos ítems se bloquean en orden ascendente de id.
func (l *MovementLedger) Transfer(ctx context.Context, in TransferInput) (*TransferResult, error) {
	if in.TenantID == "" || in.ItemID == "" || in.ToWarehouseID == "" {
		return nil, domain.NewValidationError("transfer", "tenant, ítem y bodega destino son requeridos")
	}
	qty, err := normalizeQuantity(in.Quantity)
	if err != nil {
		return nil, err
	}
	in.Quantity = qty
	if in.Reference.Type == "" {
		in.Reference = entity.Reference{Type: entity.ReferenceTransfer}
	}

	var result *TransferResult
	err = l.retry.run(ctx, func() error {
		return l.txRunner.Run(ctx, func(ctx context.Context, repos Repositories) error {
			src, err := repos.Items.GetByID(ctx, in.TenantID, in.ItemID)
			if err != nil {
				return err
			}
			if src == nil {
				return domain.ErrNotFound
			}
			if src.WarehouseID == in.ToWarehouseID {
				return domain.NewValidationError("to_warehouse_id", "la bodega destino debe ser distinta a la de origen")
			}
			dst, _, err := repos.Items.Ensure(ctx, entity.ItemSpec{
				TenantID:    in.TenantID,
				WarehouseID: in.ToWarehouseID,
				PartID:      src.PartID,
			})
			if err != nil {
				return err
			}

			locked, err := lockItems(ctx, repos, in.TenantID, []string{src.ID, dst.ID})
			if err != nil {
				return err
			}
			src, dst = locked[src.ID], locked[dst.ID]

			now := l.now()
			txID := uuid.New().String()
			out, err := l.apply(ctx, repos, src, RecordInput{
				TenantID:  in.TenantID,
				ActorID:   in.ActorID,
				ItemID:    src.ID,
				Reason:    entity.ReasonTransferOut,
				Quantity:  in.Quantity,
				Reference: in.Reference,
			}, entity.DirectionExit, now, txID)
			if err != nil {
				return err
			}
			cost := out.UnitCost
			inMov, err := l.apply(ctx, repos, dst, RecordInput{
				TenantID:  in.TenantID,
				ActorID:   in.ActorID,
				ItemID:    dst.ID,
				Reason:    entity.ReasonTransferIn,
				Quantity:  in.Quantity,
				UnitCost:  &cost,
				Reference: in.Reference,
			}, entity.DirectionEntry, now, txID)
			if err != nil {
				return err
			}
			result = &TransferResult{Out: out, In: inMov}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// lockItems bloquea los ítems en orden ascendente de id (orden determinista
// para que dos lotes solapados no se bloqueen mutuamente).
func lockItems(ctx context.Context, repos Repositories, tenantID string, ids []string) (map[string]*entity.InventoryItem, error) {
	unique := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	sort.Strings(unique)

	locked := make(map[string]*entity.InventoryItem, len(unique))
	for _, id := range unique {
		item, err := repos.Items.GetForUpdate(ctx, tenantID, id)
		if err != nil {
			return nil, err
		}
		locked[id] = item
	}
	return locked, nil
}

// validateRecord valida y normaliza la entrada antes de tocar almacenamiento.
// Un motivo desconocido es error fatal de integración.
func validateRecord(in *RecordInput) (entity.Direction, error) {
	direction, ok := in.Reason.Direction()
	if !ok {
		return "", &domain.InvalidMovementTypeError{Reason: string(in.Reason)}
	}
	if in.TenantID == "" {
		return "", domain.NewValidationError("tenant_id", "requerido")
	}
	qty, err := normalizeQuantity(in.Quantity)
	if err != nil {
		return "", err
	}
	in.Quantity = qty
	if direction == entity.DirectionEntry {
		if in.UnitCost == nil && in.Reason == entity.ReasonPurchaseReceipt {
			return "", domain.NewValidationError("unit_cost", "obligatorio en recepción de compra")
		}
		if in.UnitCost != nil {
			if in.UnitCost.IsNegative() {
				return "", domain.NewValidationError("unit_cost", "no puede ser negativo")
			}
			cost := in.UnitCost.Round(costing.CostScale)
			in.UnitCost = &cost
		}
	}
	return direction, nil
}

// normalizeQuantity redondea a la escala de persistencia y exige cantidad positiva.
func normalizeQuantity(q decimal.Decimal) (decimal.Decimal, error) {
	q = q.Round(costing.QuantityScale)
	if !q.IsPositive() {
		return decimal.Zero, domain.NewValidationError("quantity", "debe ser mayor que cero")
	}
	return q, nil
}
