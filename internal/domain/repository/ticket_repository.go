package repository

import (
	"context"

	"github.com/jhoicas/flota-api/internal/domain/entity"
)

// TicketRepository lectura de tickets (colaborador externo) y escritura de
// las líneas de repuestos consumidos.
type TicketRepository interface {
	GetByID(ctx context.Context, tenantID, id string) (*entity.Ticket, error)
	CreatePartEntry(ctx context.Context, entry *entity.TicketPartEntry) error
	ListPartEntries(ctx context.Context, tenantID, ticketID string) ([]*entity.TicketPartEntry, error)
}
