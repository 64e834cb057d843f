package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/flota-api/internal/domain/entity"
	"github.com/jhoicas/flota-api/internal/domain/repository"
)

var _ repository.InventoryMovementRepository = (*InventoryMovementRepo)(nil)

const movementColumns = `id, transaction_id, tenant_id, item_id, reason, direction, quantity, unit_cost, total_cost,
	previous_stock, new_stock, previous_avg_cost, new_avg_cost, reference_type, reference_id, actor_id, created_at`

// InventoryMovementRepo kardex sobre PostgreSQL (solo inserción).
type InventoryMovementRepo struct {
	q Querier
}

// NewInventoryMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryMovementRepository(q Querier) *InventoryMovementRepo {
	return &InventoryMovementRepo{q: q}
}

// Create persiste un movimiento de inventario.
func (r *InventoryMovementRepo) Create(ctx context.Context, m *entity.InventoryMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	query := `
		INSERT INTO inventory_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.TransactionID, m.TenantID, m.ItemID, string(m.Reason), string(m.Direction),
		m.Quantity, m.UnitCost, m.TotalCost,
		m.PreviousStock, m.NewStock, m.PreviousAvgCost, m.NewAvgCost,
		m.ReferenceType, m.ReferenceID, m.ActorID, m.CreatedAt,
	)
	if err != nil {
		return asConflict("create movement", fmt.Errorf("create inventory movement: %w", err))
	}
	return nil
}

func scanMovement(row pgx.Row) (*entity.InventoryMovement, error) {
	var (
		m                 entity.InventoryMovement
		reason, direction string
	)
	err := row.Scan(&m.ID, &m.TransactionID, &m.TenantID, &m.ItemID, &reason, &direction,
		&m.Quantity, &m.UnitCost, &m.TotalCost,
		&m.PreviousStock, &m.NewStock, &m.PreviousAvgCost, &m.NewAvgCost,
		&m.ReferenceType, &m.ReferenceID, &m.ActorID, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	m.Reason = entity.MovementReason(reason)
	m.Direction = entity.Direction(direction)
	return &m, nil
}

// GetByID obtiene un movimiento por ID; nil si no existe para el tenant.
func (r *InventoryMovementRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.InventoryMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM inventory_movements WHERE tenant_id = $1 AND id = $2`
	m, err := scanMovement(r.q.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return m, nil
}

// List kardex de un ítem en orden cronológico (seq desempata movimientos del mismo instante).
func (r *InventoryMovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.InventoryMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM inventory_movements WHERE tenant_id = $1 AND item_id = $2`
	args := []any{f.TenantID, f.ItemID}
	pos := 3
	if f.From != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", pos)
		args = append(args, *f.From)
		pos++
	}
	if f.To != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", pos)
		args = append(args, *f.To)
		pos++
	}
	query += " ORDER BY created_at ASC, seq ASC"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", pos)
		args = append(args, f.Limit)
		pos++
	}
	if f.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", pos)
		args = append(args, f.Offset)
	}
	return r.list(ctx, "list movements", query, args...)
}

// ListByReference movimientos originados por un objeto de negocio.
func (r *InventoryMovementRepo) ListByReference(ctx context.Context, tenantID string, ref entity.Reference) ([]*entity.InventoryMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM inventory_movements
		WHERE tenant_id = $1 AND reference_type = $2 AND reference_id = $3
		ORDER BY created_at ASC, seq ASC`
	return r.list(ctx, "list movements by reference", query, tenantID, ref.Type, ref.ID)
}

func (r *InventoryMovementRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.InventoryMovement, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()
	list := []*entity.InventoryMovement{}
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}
