package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/flota-api/internal/domain"
	"github.com/jhoicas/flota-api/internal/domain/entity"
	"github.com/jhoicas/flota-api/internal/domain/repository"
)

var _ repository.InventoryItemRepository = (*InventoryItemRepo)(nil)

const itemColumns = `id, tenant_id, warehouse_id, part_id, quantity, min_stock, max_stock,
	average_cost, total_value, status, created_at, updated_at`

// InventoryItemRepo implementación sobre PostgreSQL (usable con pool o tx).
type InventoryItemRepo struct {
	q Querier
}

// NewInventoryItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryItemRepository(q Querier) *InventoryItemRepo {
	return &InventoryItemRepo{q: q}
}

func scanItem(row pgx.Row) (*entity.InventoryItem, error) {
	var it entity.InventoryItem
	err := row.Scan(&it.ID, &it.TenantID, &it.WarehouseID, &it.PartID, &it.Quantity, &it.MinStock, &it.MaxStock,
		&it.AverageCost, &it.TotalValue, &it.Status, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// GetByID lectura sin bloqueo.
func (r *InventoryItemRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.InventoryItem, error) {
	query := `SELECT ` + itemColumns + ` FROM inventory_items WHERE tenant_id = $1 AND id = $2`
	it, err := scanItem(r.q.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get inventory item: %w", err)
	}
	return it, nil
}

// GetForUpdate obtiene el ítem y bloquea la fila para update (SELECT FOR UPDATE).
func (r *InventoryItemRepo) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.InventoryItem, error) {
	query := `SELECT ` + itemColumns + ` FROM inventory_items WHERE tenant_id = $1 AND id = $2 FOR UPDATE`
	it, err := scanItem(r.q.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, asConflict("lock item", fmt.Errorf("get inventory item for update: %w", err))
	}
	return it, nil
}

// Ensure inserta el ítem con estado base; ON CONFLICT DO NOTHING no bloquea la fila existente.
func (r *InventoryItemRepo) Ensure(ctx context.Context, spec entity.ItemSpec) (*entity.InventoryItem, bool, error) {
	now := time.Now()
	insert := `
		INSERT INTO inventory_items (id, tenant_id, warehouse_id, part_id, quantity, min_stock, max_stock,
			average_cost, total_value, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 0, $5, $6, 0, 0, $7, $8, $8)
		ON CONFLICT (tenant_id, warehouse_id, part_id) DO NOTHING
		RETURNING ` + itemColumns
	it, err := scanItem(r.q.QueryRow(ctx, insert,
		uuid.New().String(), spec.TenantID, spec.WarehouseID, spec.PartID,
		spec.MinStock, spec.MaxStock, entity.ItemStatusOutOfStock, now,
	))
	if err == nil {
		return it, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, asConflict("ensure item", fmt.Errorf("insert inventory item: %w", err))
	}

	query := `SELECT ` + itemColumns + ` FROM inventory_items WHERE tenant_id = $1 AND warehouse_id = $2 AND part_id = $3`
	it, err = scanItem(r.q.QueryRow(ctx, query, spec.TenantID, spec.WarehouseID, spec.PartID))
	if err != nil {
		return nil, false, fmt.Errorf("get inventory item by key: %w", err)
	}
	return it, false, nil
}

// Update persiste cantidad, costo promedio, valor y estado.
func (r *InventoryItemRepo) Update(ctx context.Context, item *entity.InventoryItem) error {
	query := `
		UPDATE inventory_items
		SET quantity = $3, average_cost = $4, total_value = $5, status = $6, updated_at = $7
		WHERE tenant_id = $1 AND id = $2`
	tag, err := r.q.Exec(ctx, query, item.TenantID, item.ID,
		item.Quantity, item.AverageCost, item.TotalValue, item.Status, item.UpdatedAt)
	if err != nil {
		return asConflict("update item", fmt.Errorf("update inventory item: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// decimalOrZero para columnas NUMERIC agregadas que pueden venir NULL.
func decimalOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
