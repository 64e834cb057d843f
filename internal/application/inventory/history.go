package inventory

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/flota-api/internal/domain"
	"github.com/jhoicas/flota-api/internal/domain/entity"
	costing "github.com/jhoicas/flota-api/internal/domain/inventory"
	"github.com/jhoicas/flota-api/internal/domain/repository"
)

// HistoryUseCase consultas de solo lectura sobre ítems y kardex.
type HistoryUseCase struct {
	items     repository.InventoryItemRepository
	movements repository.InventoryMovementRepository
	catalog   repository.PartCatalog
	pdf       KardexPDFGenerator
}

// NewHistoryUseCase construye el caso de uso.
func NewHistoryUseCase(
	items repository.InventoryItemRepository,
	movements repository.InventoryMovementRepository,
	catalog repository.PartCatalog,
	pdf KardexPDFGenerator,
) *HistoryUseCase {
	return &HistoryUseCase{items: items, movements: movements, catalog: catalog, pdf: pdf}
}

// CostAudit compara el costo almacenado contra el obtenido reprocesando el kardex.
type CostAudit struct {
	ItemID           string          `json:"item_id"`
	Movements        int             `json:"movements"`
	StoredQuantity   decimal.Decimal `json:"stored_quantity"`
	ReplayedQuantity decimal.Decimal `json:"replayed_quantity"`
	StoredAvgCost    decimal.Decimal `json:"stored_avg_cost"`
	ReplayedAvgCost  decimal.Decimal `json:"replayed_avg_cost"`
	Consistent       bool            `json:"consistent"`
}

// GetItem devuelve el ítem del tenant; ErrNotFound si no existe o es de otro tenant.
func (uc *HistoryUseCase) GetItem(ctx context.Context, tenantID, itemID string) (*entity.InventoryItem, error) {
	item, err := uc.items.GetByID(ctx, tenantID, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

// ListMovements kardex del ítem en orden cronológico.
func (uc *HistoryUseCase) ListMovements(ctx context.Context, filter repository.MovementFilter) ([]*entity.InventoryMovement, error) {
	if _, err := uc.GetItem(ctx, filter.TenantID, filter.ItemID); err != nil {
		return nil, err
	}
	if filter.Limit < 0 || filter.Offset < 0 {
		return nil, domain.NewValidationError("limit", "paginación inválida")
	}
	return uc.movements.List(ctx, filter)
}

// ListByReference movimientos originados por un objeto de negocio (trazabilidad).
func (uc *HistoryUseCase) ListByReference(ctx context.Context, tenantID string, ref entity.Reference) ([]*entity.InventoryMovement, error) {
	if ref.Type == "" || ref.ID == "" {
		return nil, domain.NewValidationError("reference", "tipo e id son requeridos")
	}
	return uc.movements.ListByReference(ctx, tenantID, ref)
}

// AuditItemCost reprocesa todo el kardex del ítem y verifica que reproduzca
// exactamente el costo promedio y la cantidad almacenados.
func (uc *HistoryUseCase) AuditItemCost(ctx context.Context, tenantID, itemID string) (*CostAudit, error) {
	item, err := uc.GetItem(ctx, tenantID, itemID)
	if err != nil {
		return nil, err
	}
	movs, err := uc.movements.List(ctx, repository.MovementFilter{TenantID: tenantID, ItemID: itemID})
	if err != nil {
		return nil, err
	}
	state, err := costing.Replay(movs)
	if err != nil {
		return nil, fmt.Errorf("auditar costo de %s: %w", itemID, err)
	}
	return &CostAudit{
		ItemID:           itemID,
		Movements:        len(movs),
		StoredQuantity:   item.Quantity,
		ReplayedQuantity: state.Stock,
		StoredAvgCost:    item.AverageCost,
		ReplayedAvgCost:  state.AvgCost,
		Consistent:       state.AvgCost.Equal(item.AverageCost) && state.Stock.Equal(item.Quantity),
	}, nil
}

// KardexPDF genera el PDF del kardex completo del ítem.
func (uc *HistoryUseCase) KardexPDF(ctx context.Context, tenantID, itemID string) ([]byte, error) {
	item, err := uc.GetItem(ctx, tenantID, itemID)
	if err != nil {
		return nil, err
	}
	movs, err := uc.movements.List(ctx, repository.MovementFilter{TenantID: tenantID, ItemID: itemID})
	if err != nil {
		return nil, err
	}
	part, err := uc.catalog.GetPart(ctx, tenantID, item.PartID)
	if err != nil {
		return nil, err
	}
	if part == nil {
		part = &entity.Part{ID: item.PartID, TenantID: tenantID}
	}
	return uc.pdf.GenerateKardexPDF(ctx, item, part, movs)
}
