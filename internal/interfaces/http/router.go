package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/flota-api/internal/application/inventory"
	"github.com/jhoicas/flota-api/internal/application/watchdog"
	"github.com/jhoicas/flota-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Receiving   *inventory.ReceivingCoordinator
	Consumption *inventory.ConsumptionCoordinator
	Ledger      *inventory.MovementLedger
	History     *inventory.HistoryUseCase
	Watchdog    *watchdog.FinancialWatchdog
	JWTSecret   string
	Logger      *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	writers := RequireRole(RoleAdmin, RoleWarehouse)

	// Inventario
	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.Receiving, deps.Ledger, deps.History, deps.Logger)
	invGroup.Post("/receipts", writers, inventoryHandler.Receive)
	invGroup.Post("/receipts/batch", writers, inventoryHandler.ReceiveBatch)
	invGroup.Post("/movements", writers, inventoryHandler.RecordMovement)
	invGroup.Post("/transfers", writers, inventoryHandler.Transfer)
	invGroup.Get("/movements", inventoryHandler.ListByReference)
	invGroup.Get("/items/:id", inventoryHandler.GetItem)
	invGroup.Get("/items/:id/movements", inventoryHandler.ListMovements)
	invGroup.Get("/items/:id/cost-audit", inventoryHandler.AuditItemCost)
	invGroup.Get("/items/:id/kardex.pdf", inventoryHandler.KardexPDF)

	// Tickets de reparación
	tickets := protected.Group("/tickets")
	ticketHandler := NewTicketHandler(deps.Consumption, deps.Logger)
	tickets.Post("/:id/parts", RequireRole(RoleAdmin, RoleWarehouse, RoleMechanic), ticketHandler.ConsumeParts)

	// Watchdog financiero
	watchdogHandler := NewWatchdogHandler(deps.Watchdog, deps.Logger)
	protected.Post("/watchdog/price-check", RequireRole(RoleAdmin, RoleWarehouse, RoleFinance), watchdogHandler.PriceCheck)
	protected.Get("/alerts", RequireRole(RoleAdmin, RoleFinance), watchdogHandler.ListAlerts)
}
