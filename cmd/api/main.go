// @title          Flota API - Kardex de repuestos
// @version        1.0
// @description    Costeo por promedio móvil, movimientos de inventario y watchdog financiero para mantenimiento de flota.
// @BasePath       /
// @securityDefinitions.apikey Bearer
// @in             header
// @name           Authorization
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	_ "github.com/jhoicas/flota-api/docs"
	"github.com/jhoicas/flota-api/internal/application/inventory"
	"github.com/jhoicas/flota-api/internal/application/watchdog"
	infrapdf "github.com/jhoicas/flota-api/internal/infrastructure/pdf"
	httpRouter "github.com/jhoicas/flota-api/internal/interfaces/http"
	"github.com/jhoicas/flota-api/pkg/config"
	"github.com/jhoicas/flota-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.Storage).
		Msg("iniciando aplicación")

	ctx := context.Background()
	store, err := openBackend(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento")
	}
	defer store.Close()

	retry := inventory.RetryPolicy{MaxAttempts: cfg.Ledger.MaxAttempts, Backoff: cfg.Ledger.RetryBackoff}

	// Watchdog: corre después del commit, nunca revierte la operación observada.
	wd := watchdog.NewFinancialWatchdog(store.catalog, store.workOrders, store.expenses, store.alerts, log, cfg.Ledger.WatchdogTimeout)

	ledger := inventory.NewMovementLedger(store.txRunner, retry, log)
	receiving := inventory.NewReceivingCoordinator(store.txRunner, ledger, store.catalog, wd, retry, log)
	consumption := inventory.NewConsumptionCoordinator(store.txRunner, ledger, wd, retry, log)
	history := inventory.NewHistoryUseCase(store.items, store.movements, store.catalog, infrapdf.NewKardexPDFGenerator())

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Flota API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		Receiving:   receiving,
		Consumption: consumption,
		Ledger:      ledger,
		History:     history,
		Watchdog:    wd,
		JWTSecret:   cfg.JWT.Secret,
		Logger:      log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
