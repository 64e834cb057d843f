package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/flota-api/internal/application/dto"
	"github.com/jhoicas/flota-api/internal/application/inventory"
	"github.com/jhoicas/flota-api/internal/domain"
	"github.com/jhoicas/flota-api/internal/domain/entity"
	"github.com/jhoicas/flota-api/internal/domain/repository"
	"github.com/jhoicas/flota-api/pkg/logger"
)

// HeaderIdempotencyKey llave opcional para reenvíos seguros de un mismo lote.
const HeaderIdempotencyKey = "Idempotency-Key"

// InventoryHandler maneja recepciones, movimientos, traslados y consultas del kardex (protegido).
type InventoryHandler struct {
	receiving *inventory.ReceivingCoordinator
	ledger    *inventory.MovementLedger
	history   *inventory.HistoryUseCase
	log       *logger.Logger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(
	receiving *inventory.ReceivingCoordinator,
	ledger *inventory.MovementLedger,
	history *inventory.HistoryUseCase,
	log *logger.Logger,
) *InventoryHandler {
	return &InventoryHandler{receiving: receiving, ledger: ledger, history: history, log: log.Component("http_inventory")}
}

func toReceiptLine(r dto.ReceiptLineRequest) inventory.ReceiptLine {
	return inventory.ReceiptLine{
		WarehouseID: r.WarehouseID,
		PartID:      r.PartID,
		MinStock:    r.MinStock,
		MaxStock:    r.MaxStock,
		Quantity:    r.Quantity,
		UnitCost:    r.UnitCost,
		Reference:   entity.Reference{Type: r.ReferenceType, ID: r.ReferenceID},
	}
}

// Receive godoc
// @Summary      Recibir repuestos (una línea)
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string  false  "llave de idempotencia"
// @Param        body  body  dto.ReceiptLineRequest  true  "warehouse_id, part_id, quantity, unit_cost"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/receipts [post]
func (h *InventoryHandler) Receive(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	var in dto.ReceiptLineRequest
	if err := bindBody(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	mov, err := h.receiving.Receive(c.UserContext(), inventory.ReceiveInput{
		TenantID:       tenantID,
		ActorID:        GetUserID(c),
		Line:           toReceiptLine(in),
		IdempotencyKey: c.Get(HeaderIdempotencyKey),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementResponse(mov))
}

// ReceiveBatch godoc
// @Summary      Recibir un lote de repuestos (todo o nada)
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string  false  "llave de idempotencia"
// @Param        body  body  dto.ReceiveBatchRequest  true  "referencia del lote y líneas"
// @Success      201   {object}  dto.BatchResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/receipts/batch [post]
func (h *InventoryHandler) ReceiveBatch(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	var in dto.ReceiveBatchRequest
	if err := bindBody(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	lines := make([]inventory.ReceiptLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, toReceiptLine(l))
	}
	res, err := h.receiving.ReceiveBatch(c.UserContext(), inventory.ReceiveBatchInput{
		TenantID:       tenantID,
		ActorID:        GetUserID(c),
		Reference:      entity.Reference{Type: in.ReferenceType, ID: in.ReferenceID},
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

// RecordMovement godoc
// @Summary      Registrar movimiento de inventario
// @Description  Ajustes, devoluciones, daños y conteos. unit_cost solo aplica a entradas.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string  false  "llave de idempotencia"
// @Param        body  body  dto.RecordMovementRequest  true  "item_id, reason, quantity, unit_cost"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) RecordMovement(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	var in dto.RecordMovementRequest
	if err := bindBody(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	mov, err := h.ledger.Record(c.UserContext(), inventory.RecordInput{
		TenantID:       tenantID,
		ActorID:        GetUserID(c),
		ItemID:         in.ItemID,
		Reason:         entity.MovementReason(in.Reason),
		Quantity:       in.Quantity,
		UnitCost:       in.UnitCost,
		Reference:      entity.Reference{Type: in.ReferenceType, ID: in.ReferenceID},
		IdempotencyKey: c.Get(HeaderIdempotencyKey),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementResponse(mov))
}

// Transfer godoc
// @Summary      Trasladar stock entre bodegas
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferRequest  true  "item_id, to_warehouse_id, quantity"
// @Success      201   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/transfers [post]
func (h *InventoryHandler) Transfer(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	var in dto.TransferRequest
	if err := bindBody(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	ref := entity.Reference{}
	if in.ReferenceID != "" {
		ref = entity.Reference{Type: entity.ReferenceTransfer, ID: in.ReferenceID}
	}
	res, err := h.ledger.Transfer(c.UserContext(), inventory.TransferInput{
		TenantID:      tenantID,
		ActorID:       GetUserID(c),
		ItemID:        in.ItemID,
		ToWarehouseID: in.ToWarehouseID,
		Quantity:      in.Quantity,
		Reference:     ref,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.TransferResponse{
		Out: toMovementResponse(res.Out),
		In:  toMovementResponse(res.In),
	})
}

// ListByReference godoc
// @Summary      Movimientos originados por un objeto de negocio
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        reference_type  query  string  true  "TICKET, PURCHASE_ORDER, ..."
// @Param        reference_id    query  string  true  "id del objeto"
// @Success      200  {array}   dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) ListByReference(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	movs, err := h.history.ListByReference(c.UserContext(), tenantID, entity.Reference{
		Type: c.Query("reference_type"),
		ID:   c.Query("reference_id"),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toMovementResponses(movs))
}

// GetItem godoc
// @Summary      Stock y costo promedio de un ítem
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "id del ítem"
// @Success      200  {object}  dto.ItemResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/items/{id} [get]
func (h *InventoryHandler) GetItem(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	item, err := h.history.GetItem(c.UserContext(), tenantID, c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toItemResponse(item))
}

// ListMovements godoc
// @Summary      Kardex del ítem (orden cronológico)
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "id del ítem"
// @Param        from    query  string  false  "RFC3339"
// @Param        to      query  string  false  "RFC3339"
// @Param        limit   query  int     false  "tamaño de página (default 50)"
// @Param        offset  query  int     false  "desplazamiento"
// @Success      200  {object}  dto.MovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/items/{id}/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	page := dto.PageRequest{Limit: c.QueryInt("limit", 0), Offset: c.QueryInt("offset", 0)}
	if page.Limit < 0 || page.Offset < 0 {
		return writeError(c, h.log, domain.NewValidationError("limit", "paginación inválida"))
	}
	page.DefaultPage()
	filter := repository.MovementFilter{
		TenantID: tenantID,
		ItemID:   c.Params("id"),
		Limit:    page.Limit,
		Offset:   page.Offset,
	}
	var err error
	if filter.From, err = queryTime(c, "from"); err != nil {
		return writeError(c, h.log, err)
	}
	if filter.To, err = queryTime(c, "to"); err != nil {
		return writeError(c, h.log, err)
	}
	movs, err := h.history.ListMovements(c.UserContext(), filter)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.MovementListResponse{
		Items: toMovementResponses(movs),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Count: len(movs)},
	})
}

// AuditItemCost godoc
// @Summary      Auditoría del costo promedio (reproceso del kardex)
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "id del ítem"
// @Success      200  {object}  inventory.CostAudit
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/items/{id}/cost-audit [get]
func (h *InventoryHandler) AuditItemCost(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	audit, err := h.history.AuditItemCost(c.UserContext(), tenantID, c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	if !audit.Consistent {
		h.log.Warn().
			Str("tenant_id", tenantID).
			Str("item_id", audit.ItemID).
			Str("stored_avg_cost", audit.StoredAvgCost.String()).
			Str("replayed_avg_cost", audit.ReplayedAvgCost.String()).
			Msg("kardex inconsistente con el costo almacenado")
	}
	return c.JSON(audit)
}

// KardexPDF godoc
// @Summary      Kardex del ítem en PDF
// @Tags         inventory
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "id del ítem"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/items/{id}/kardex.pdf [get]
func (h *InventoryHandler) KardexPDF(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	itemID := c.Params("id")
	out, err := h.history.KardexPDF(c.UserContext(), tenantID, itemID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="kardex-%s.pdf"`, itemID))
	return c.Send(out)
}

// queryTime lee un parámetro RFC3339 opcional.
func queryTime(c *fiber.Ctx, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, domain.NewValidationError(name, "fecha RFC3339 inválida")
	}
	return &t, nil
}
