package repository

import (
	"context"
	"time"

	"github.com/jhoicas/flota-api/internal/domain/entity"
)

// MovementFilter filtro tipado para consultar el kardex de un ítem.
type MovementFilter struct {
	TenantID string
	ItemID   string
	From     *time.Time
	To       *time.Time
	Limit    int // 0 = sin límite
	Offset   int
}

// InventoryMovementRepository puerto de persistencia del kardex (solo inserción).
type InventoryMovementRepository interface {
	Create(ctx context.Context, movement *entity.InventoryMovement) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.InventoryMovement, error)
	// List devuelve movimientos en orden cronológico ascendente.
	List(ctx context.Context, filter MovementFilter) ([]*entity.InventoryMovement, error)
	ListByReference(ctx context.Context, tenantID string, ref entity.Reference) ([]*entity.InventoryMovement, error)
}
