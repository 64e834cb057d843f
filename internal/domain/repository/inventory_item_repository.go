package repository

import (
	"context"

	"github.com/jhoicas/flota-api/internal/domain/entity"
)

// InventoryItemRepository puerto de persistencia de ítems de inventario.
// Toda lectura y escritura se acota por tenant: un ítem de otro tenant se
// comporta como inexistente.
type InventoryItemRepository interface {
	// GetByID lectura sin bloqueo; nil,nil si no existe para el tenant.
	GetByID(ctx context.Context, tenantID, id string) (*entity.InventoryItem, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE); domain.ErrNotFound si no existe.
	GetForUpdate(ctx context.Context, tenantID, id string) (*entity.InventoryItem, error)
	// Ensure crea el ítem (tenant, bodega, repuesto) con estado base si no existe,
	// sin bloquear filas existentes. created indica si se insertó en esta llamada.
	Ensure(ctx context.Context, spec entity.ItemSpec) (item *entity.InventoryItem, created bool, err error)
	// Update persiste cantidad, costo, valor y estado.
	Update(ctx context.Context, item *entity.InventoryItem) error
}
