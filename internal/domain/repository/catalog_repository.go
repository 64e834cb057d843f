package repository

import (
	"context"

	"github.com/jhoicas/flota-api/internal/domain/entity"
)

// PartCatalog puerto de solo lectura al catálogo maestro de repuestos.
type PartCatalog interface {
	// GetPart nil,nil si el repuesto no existe para el tenant.
	GetPart(ctx context.Context, tenantID, partID string) (*entity.Part, error)
}
