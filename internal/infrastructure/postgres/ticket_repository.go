package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/flota-api/internal/domain"
	"github.com/jhoicas/flota-api/internal/domain/entity"
	"github.com/jhoicas/flota-api/internal/domain/repository"
)

var (
	_ repository.TicketRepository            = (*TicketRepo)(nil)
	_ repository.PurchaseOrderItemRepository = (*PurchaseOrderItemRepo)(nil)
)

// TicketRepo tickets de reparación y repuestos consumidos.
type TicketRepo struct {
	q Querier
}

// NewTicketRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTicketRepository(q Querier) *TicketRepo {
	return &TicketRepo{q: q}
}

// GetByID nil si el ticket no existe para el tenant.
func (r *TicketRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.Ticket, error) {
	query := `SELECT id, tenant_id, vehicle_id, work_order_id FROM tickets WHERE tenant_id = $1 AND id = $2`
	var t entity.Ticket
	err := r.q.QueryRow(ctx, query, tenantID, id).Scan(&t.ID, &t.TenantID, &t.VehicleID, &t.WorkOrderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get ticket: %w", err)
	}
	return &t, nil
}

// CreatePartEntry inserta la línea de repuesto consumido con su back-reference al movimiento.
func (r *TicketRepo) CreatePartEntry(ctx context.Context, e *entity.TicketPartEntry) error {
	query := `
		INSERT INTO ticket_part_entries (id, tenant_id, ticket_id, item_id, quantity, unit_cost, total_cost, movement_id, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query, e.ID, e.TenantID, e.TicketID, e.ItemID,
		e.Quantity, e.UnitCost, e.TotalCost, e.MovementID, e.CreatedAt, e.CreatedBy)
	if err != nil {
		return asConflict("create ticket part", fmt.Errorf("create ticket part entry: %w", err))
	}
	return nil
}

// ListPartEntries repuestos consumidos por el ticket en orden de registro.
func (r *TicketRepo) ListPartEntries(ctx context.Context, tenantID, ticketID string) ([]*entity.TicketPartEntry, error) {
	query := `
		SELECT id, tenant_id, ticket_id, item_id, quantity, unit_cost, total_cost, movement_id, created_at, created_by
		FROM ticket_part_entries WHERE tenant_id = $1 AND ticket_id = $2
		ORDER BY created_at ASC, id ASC`
	rows, err := r.q.Query(ctx, query, tenantID, ticketID)
	if err != nil {
		return nil, fmt.Errorf("list ticket parts: %w", err)
	}
	defer rows.Close()
	list := []*entity.TicketPartEntry{}
	for rows.Next() {
		var e entity.TicketPartEntry
		if err := rows.Scan(&e.ID, &e.TenantID, &e.TicketID, &e.ItemID, &e.Quantity, &e.UnitCost,
			&e.TotalCost, &e.MovementID, &e.CreatedAt, &e.CreatedBy); err != nil {
			return nil, fmt.Errorf("scan ticket part: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}

// PurchaseOrderItemRepo enlace entre ítem de OC y movimiento de recepción.
type PurchaseOrderItemRepo struct {
	q Querier
}

// NewPurchaseOrderItemRepository construye el adaptador.
func NewPurchaseOrderItemRepository(q Querier) *PurchaseOrderItemRepo {
	return &PurchaseOrderItemRepo{q: q}
}

// AttachMovement registra el movimiento que recibió el ítem de OC.
func (r *PurchaseOrderItemRepo) AttachMovement(ctx context.Context, tenantID, poItemID, movementID string) error {
	tag, err := r.q.Exec(ctx, `UPDATE purchase_order_items SET movement_id = $3 WHERE tenant_id = $1 AND id = $2`,
		tenantID, poItemID, movementID)
	if err != nil {
		return asConflict("attach movement", fmt.Errorf("attach movement to purchase order item: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
