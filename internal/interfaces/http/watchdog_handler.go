package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/flota-api/internal/application/dto"
	"github.com/jhoicas/flota-api/internal/application/watchdog"
	"github.com/jhoicas/flota-api/internal/domain"
	"github.com/jhoicas/flota-api/internal/domain/repository"
	"github.com/jhoicas/flota-api/pkg/logger"
)

// WatchdogHandler chequeo de precios propuestos y consulta de alertas financieras (protegido).
type WatchdogHandler struct {
	watchdog *watchdog.FinancialWatchdog
	log      *logger.Logger
}

// NewWatchdogHandler construye el handler.
func NewWatchdogHandler(wd *watchdog.FinancialWatchdog, log *logger.Logger) *WatchdogHandler {
	return &WatchdogHandler{watchdog: wd, log: log.Component("http_watchdog")}
}

// PriceCheck godoc
// @Summary      Verificar un precio propuesto contra el precio de referencia
// @Description  Usado al proponer órdenes de compra. Crea una alerta PRICE_DEVIATION si supera la tolerancia.
// @Tags         watchdog
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.PriceCheckRequest  true  "part_id, proposed_unit_price"
// @Success      200   {object}  dto.PriceCheckResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/watchdog/price-check [post]
func (h *WatchdogHandler) PriceCheck(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	var in dto.PriceCheckRequest
	if err := bindBody(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	if !in.ProposedUnitPrice.IsPositive() {
		return writeError(c, h.log, domain.NewValidationError("proposed_unit_price", "debe ser mayor que cero"))
	}
	res := h.watchdog.CheckPriceDeviation(c.UserContext(), watchdog.PriceCheckInput{
		TenantID:          tenantID,
		PartID:            in.PartID,
		ProposedUnitPrice: in.ProposedUnitPrice,
		WorkOrderID:       in.WorkOrderID,
		Source:            "PURCHASE_ORDER",
	})
	if res == nil {
		return c.JSON(dto.PriceCheckResponse{Checked: false})
	}
	ref := res.ReferencePrice
	return c.JSON(dto.PriceCheckResponse{
		Checked:          true,
		ReferencePrice:   &ref,
		DeviationPercent: res.DeviationPercent,
		ExceedsThreshold: res.ExceedsThreshold,
		AlertID:          res.AlertID,
	})
}

// ListAlerts godoc
// @Summary      Alertas financieras del tenant (más recientes primero)
// @Tags         watchdog
// @Security     Bearer
// @Produce      json
// @Param        type           query  string  false  "PRICE_DEVIATION | BUDGET_OVERRUN"
// @Param        status         query  string  false  "PENDING, ..."
// @Param        work_order_id  query  string  false  "orden de trabajo"
// @Param        limit          query  int     false  "tamaño de página (máx 200)"
// @Param        offset         query  int     false  "desplazamiento"
// @Success      200  {object}  dto.AlertListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/alerts [get]
func (h *WatchdogHandler) ListAlerts(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	page := dto.PageRequest{Limit: c.QueryInt("limit", 0), Offset: c.QueryInt("offset", 0)}
	if page.Limit < 0 || page.Offset < 0 {
		return writeError(c, h.log, domain.NewValidationError("limit", "paginación inválida"))
	}
	page.DefaultPage()
	alerts, err := h.watchdog.ListAlerts(c.UserContext(), repository.AlertFilter{
		TenantID:    tenantID,
		Type:        c.Query("type"),
		Status:      c.Query("status"),
		WorkOrderID: c.Query("work_order_id"),
		Limit:       page.Limit,
		Offset:      page.Offset,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	items := make([]dto.AlertResponse, 0, len(alerts))
	for _, a := range alerts {
		items = append(items, toAlertResponse(a))
	}
	return c.JSON(dto.AlertListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: min(page.Limit, watchdog.MaxAlertPage), Offset: page.Offset, Count: len(items)},
	})
}
