package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/flota-api/internal/application/dto"
	"github.com/jhoicas/flota-api/internal/application/inventory"
	"github.com/jhoicas/flota-api/pkg/logger"
)

// TicketHandler consumo de repuestos en tickets de reparación (protegido).
type TicketHandler struct {
	consumption *inventory.ConsumptionCoordinator
	log         *logger.Logger
}

// NewTicketHandler construye el handler.
func NewTicketHandler(consumption *inventory.ConsumptionCoordinator, log *logger.Logger) *TicketHandler {
	return &TicketHandler{consumption: consumption, log: log.Component("http_tickets")}
}

// ConsumeParts godoc
// @Summary      Consumir repuestos en un ticket (todo o nada)
// @Description  Registra una salida CONSUMPTION por línea al costo promedio vigente.
// @Tags         tickets
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "id del ticket"
// @Param        Idempotency-Key  header  string  false  "llave de idempotencia"
// @Param        body  body  dto.ConsumeRequest  true  "líneas item_id + quantity"
// @Success      201   {object}  dto.BatchResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/tickets/{id}/parts [post]
func (h *TicketHandler) ConsumeParts(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	var in dto.ConsumeRequest
	if err := bindBody(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	lines := make([]inventory.ConsumptionLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, inventory.ConsumptionLine{ItemID: l.ItemID, Quantity: l.Quantity})
	}
	res, err := h.consumption.ConsumeForTicket(c.UserContext(), inventory.ConsumeInput{
		TenantID:       tenantID,
		ActorID:        GetUserID(c),
		TicketID:       c.Params("id"),
		Lines:          lines,
		IdempotencyKey: c.Get(HeaderIdempotencyKey),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.BatchResponse{
		Movements: toMovementResponses(res.Movements),
		TotalCost: res.TotalCost,
	})
}
