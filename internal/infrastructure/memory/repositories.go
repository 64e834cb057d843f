package memory

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/flota-api/internal/domain"
	"github.com/jhoicas/flota-api/internal/domain/entity"
	"github.com/jhoicas/flota-api/internal/domain/repository"
)

// Verificación de cumplimiento de interfaces
var (
	_ repository.InventoryItemRepository     = (*ItemRepository)(nil)
	_ repository.InventoryMovementRepository = (*MovementRepository)(nil)
	_ repository.TicketRepository            = (*TicketRepository)(nil)
	_ repository.PurchaseOrderItemRepository = (*PurchaseOrderItemRepository)(nil)
	_ repository.PartCatalog                 = (*CatalogRepository)(nil)
	_ repository.WorkOrderRepository         = (*WorkOrderRepository)(nil)
	_ repository.ExpenseRepository           = (*ExpenseRepository)(nil)
	_ repository.AlertRepository             = (*AlertRepository)(nil)
	_ repository.IdempotencyRepository       = (*IdempotencyRepository)(nil)
)

// ItemRepository ítems de inventario en memoria.
type ItemRepository struct{ view }

func (r *ItemRepository) GetByID(ctx context.Context, tenantID, id string) (*entity.InventoryItem, error) {
	var out *entity.InventoryItem
	err := r.read(func(st *state) error {
		if it, ok := st.items[id]; ok && it.TenantID == tenantID {
			cp := *it
			out = &cp
		}
		return nil
	})
	return out, err
}

func (r *ItemRepository) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.InventoryItem, error) {
	item, err := r.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

func (r *ItemRepository) Ensure(ctx context.Context, spec entity.ItemSpec) (*entity.InventoryItem, bool, error) {
	var (
		out     *entity.InventoryItem
		created bool
	)
	err := r.write(ctx, func(st *state) error {
		k := key(spec.TenantID, spec.WarehouseID, spec.PartID)
		if id, ok := st.itemKeys[k]; ok {
			cp := *st.items[id]
			out = &cp
			return nil
		}
		now := time.Now()
		it := &entity.InventoryItem{
			ID:          uuid.New().String(),
			TenantID:    spec.TenantID,
			WarehouseID: spec.WarehouseID,
			PartID:      spec.PartID,
			Quantity:    decimal.Zero,
			MinStock:    spec.MinStock,
			MaxStock:    spec.MaxStock,
			AverageCost: decimal.Zero,
			TotalValue:  decimal.Zero,
			Status:      entity.ItemStatusOutOfStock,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		st.items[it.ID] = it
		st.itemKeys[k] = it.ID
		cp := *it
		out, created = &cp, true
		return nil
	})
	return out, created, err
}

func (r *ItemRepository) Update(ctx context.Context, item *entity.InventoryItem) error {
	return r.write(ctx, func(st *state) error {
		cur, ok := st.items[item.ID]
		if !ok || cur.TenantID != item.TenantID {
			return domain.ErrNotFound
		}
		cp := *item
		st.items[item.ID] = &cp
		return nil
	})
}

// FindByKey busca el ítem por su identidad lógica.
func (r *ItemRepository) FindByKey(tenantID, warehouseID, partID string) *entity.InventoryItem {
	var out *entity.InventoryItem
	_ = r.read(func(st *state) error {
		if id, ok := st.itemKeys[key(tenantID, warehouseID, partID)]; ok {
			cp := *st.items[id]
			out = &cp
		}
		return nil
	})
	return out
}

// MovementRepository kardex en memoria, solo inserción.
type MovementRepository struct{ view }

func (r *MovementRepository) Create(ctx context.Context, m *entity.InventoryMovement) error {
	return r.write(ctx, func(st *state) error {
		cp := *m
		st.movements = append(st.movements, &cp)
		return nil
	})
}

func (r *MovementRepository) GetByID(ctx context.Context, tenantID, id string) (*entity.InventoryMovement, error) {
	var out *entity.InventoryMovement
	err := r.read(func(st *state) error {
		for _, m := range st.movements {
			if m.ID == id && m.TenantID == tenantID {
				cp := *m
				out = &cp
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *MovementRepository) List(ctx context.Context, f repository.MovementFilter) ([]*entity.InventoryMovement, error) {
	out := []*entity.InventoryMovement{}
	err := r.read(func(st *state) error {
		for _, m := range st.movements {
			if m.TenantID != f.TenantID || m.ItemID != f.ItemID {
				continue
			}
			if f.From != nil && m.CreatedAt.Before(*f.From) {
				continue
			}
			if f.To != nil && m.CreatedAt.After(*f.To) {
				continue
			}
			cp := *m
			out = append(out, &cp)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	// Orden de inserción = orden cronológico; el sort estable solo cubre relojes no monótonos
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return paginate(out, f.Offset, f.Limit), nil
}

func (r *MovementRepository) ListByReference(ctx context.Context, tenantID string, ref entity.Reference) ([]*entity.InventoryMovement, error) {
	out := []*entity.InventoryMovement{}
	err := r.read(func(st *state) error {
		for _, m := range st.movements {
			if m.TenantID == tenantID && m.ReferenceType == ref.Type && m.ReferenceID == ref.ID {
				cp := *m
				out = append(out, &cp)
			}
		}
		return nil
	})
	return out, err
}

func paginate[T any](rows []T, offset, limit int) []T {
	if offset >= len(rows) {
		return rows[:0]
	}
	rows = rows[offset:]
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}

// TicketRepository tickets y líneas de repuestos consumidos.
type TicketRepository struct{ view }

func (r *TicketRepository) GetByID(ctx context.Context, tenantID, id string) (*entity.Ticket, error) {
	var out *entity.Ticket
	err := r.read(func(st *state) error {
		if t, ok := st.tickets[id]; ok && t.TenantID == tenantID {
			cp := *t
			out = &cp
		}
		return nil
	})
	return out, err
}

func (r *TicketRepository) CreatePartEntry(ctx context.Context, e *entity.TicketPartEntry) error {
	return r.write(ctx, func(st *state) error {
		cp := *e
		st.partEntries = append(st.partEntries, &cp)
		return nil
	})
}

func (r *TicketRepository) ListPartEntries(ctx context.Context, tenantID, ticketID string) ([]*entity.TicketPartEntry, error) {
	out := []*entity.TicketPartEntry{}
	err := r.read(func(st *state) error {
		for _, e := range st.partEntries {
			if e.TenantID == tenantID && e.TicketID == ticketID {
				cp := *e
				out = append(out, &cp)
			}
		}
		return nil
	})
	return out, err
}

// PurchaseOrderItemRepository ítems de orden de compra (solo enlace con el movimiento).
type PurchaseOrderItemRepository struct{ view }

func (r *PurchaseOrderItemRepository) AttachMovement(ctx context.Context, tenantID, poItemID, movementID string) error {
	return r.write(ctx, func(st *state) error {
		it, ok := st.poItems[poItemID]
		if !ok || it.TenantID != tenantID {
			return domain.ErrNotFound
		}
		it.MovementID = movementID
		return nil
	})
}

// CatalogRepository catálogo de repuestos.
type CatalogRepository struct{ view }

func (r *CatalogRepository) GetPart(ctx context.Context, tenantID, partID string) (*entity.Part, error) {
	var out *entity.Part
	err := r.read(func(st *state) error {
		if p, ok := st.parts[partID]; ok && p.TenantID == tenantID {
			cp := *p
			out = &cp
		}
		return nil
	})
	return out, err
}

// WorkOrderRepository órdenes de trabajo.
type WorkOrderRepository struct{ view }

func (r *WorkOrderRepository) GetByID(ctx context.Context, tenantID, id string) (*entity.WorkOrder, error) {
	var out *entity.WorkOrder
	err := r.read(func(st *state) error {
		if wo, ok := st.workOrders[id]; ok && wo.TenantID == tenantID {
			cp := *wo
			out = &cp
		}
		return nil
	})
	return out, err
}

// ExpenseRepository gastos acumulados por orden de trabajo.
type ExpenseRepository struct{ view }

func (r *ExpenseRepository) SumByWorkOrder(ctx context.Context, tenantID, workOrderID string) (decimal.Decimal, error) {
	sum := decimal.Zero
	err := r.read(func(st *state) error {
		if v, ok := st.expenses[key(tenantID, workOrderID)]; ok {
			sum = v
		}
		return nil
	})
	return sum, err
}

// AlertRepository alertas financieras.
type AlertRepository struct{ view }

func (r *AlertRepository) Create(ctx context.Context, a *entity.FinancialAlert) error {
	return r.write(ctx, func(st *state) error {
		if a.Type == entity.AlertTypeBudgetOverrun && a.WorkOrderID != nil {
			for _, cur := range st.alerts {
				if unresolvedFor(cur, a.TenantID, a.Type, *a.WorkOrderID) {
					return domain.ErrDuplicate
				}
			}
		}
		cp := *a
		st.alerts = append(st.alerts, &cp)
		return nil
	})
}

func (r *AlertRepository) ExistsUnresolved(ctx context.Context, tenantID, alertType, workOrderID string) (bool, error) {
	found := false
	err := r.read(func(st *state) error {
		for _, cur := range st.alerts {
			if unresolvedFor(cur, tenantID, alertType, workOrderID) {
				found = true
				return nil
			}
		}
		return nil
	})
	return found, err
}

func (r *AlertRepository) List(ctx context.Context, f repository.AlertFilter) ([]*entity.FinancialAlert, error) {
	out := []*entity.FinancialAlert{}
	err := r.read(func(st *state) error {
		// Más recientes primero
		for i := len(st.alerts) - 1; i >= 0; i-- {
			a := st.alerts[i]
			if a.TenantID != f.TenantID {
				continue
			}
			if f.Type != "" && a.Type != f.Type {
				continue
			}
			if f.Status != "" && a.Status != f.Status {
				continue
			}
			if f.WorkOrderID != "" && (a.WorkOrderID == nil || *a.WorkOrderID != f.WorkOrderID) {
				continue
			}
			cp := *a
			out = append(out, &cp)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paginate(out, f.Offset, f.Limit), nil
}

func unresolvedFor(a *entity.FinancialAlert, tenantID, alertType, workOrderID string) bool {
	return a.TenantID == tenantID && a.Type == alertType && a.Status == entity.AlertStatusPending &&
		a.WorkOrderID != nil && *a.WorkOrderID == workOrderID
}

// IdempotencyRepository llaves de idempotencia de lotes.
type IdempotencyRepository struct{ view }

func (r *IdempotencyRepository) Reserve(ctx context.Context, tenantID, scope, k string) (bool, json.RawMessage, error) {
	var (
		reserved bool
		stored   json.RawMessage
	)
	err := r.write(ctx, func(st *state) error {
		id := key(tenantID, scope, k)
		if cur, ok := st.idempotency[id]; ok {
			stored = cur.Response
			return nil
		}
		st.idempotency[id] = &entity.IdempotencyKey{TenantID: tenantID, Scope: scope, Key: k, CreatedAt: time.Now()}
		reserved = true
		return nil
	})
	return reserved, stored, err
}

func (r *IdempotencyRepository) Complete(ctx context.Context, tenantID, scope, k string, response json.RawMessage) error {
	return r.write(ctx, func(st *state) error {
		cur, ok := st.idempotency[key(tenantID, scope, k)]
		if !ok {
			return domain.ErrNotFound
		}
		cur.Response = append(json.RawMessage(nil), response...)
		return nil
	})
}
