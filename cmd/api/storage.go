package main

import (
	"context"
	"fmt"

	"github.com/jhoicas/flota-api/internal/application/inventory"
	"github.com/jhoicas/flota-api/internal/domain/repository"
	"github.com/jhoicas/flota-api/internal/infrastructure/cache"
	"github.com/jhoicas/flota-api/internal/infrastructure/memory"
	"github.com/jhoicas/flota-api/internal/infrastructure/postgres"
	"github.com/jhoicas/flota-api/pkg/config"
	"github.com/jhoicas/flota-api/pkg/logger"
)

// backend puertos de persistencia según STORAGE_DRIVER.
type backend struct {
	txRunner   inventory.TxRunner
	items      repository.InventoryItemRepository
	movements  repository.InventoryMovementRepository
	catalog    repository.PartCatalog
	workOrders repository.WorkOrderRepository
	expenses   repository.ExpenseRepository
	alerts     repository.AlertRepository
	closers    []func()
}

func (b *backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

func openBackend(ctx context.Context, cfg *config.Config, log *logger.Logger) (*backend, error) {
	var b *backend
	switch cfg.Storage {
	case config.StorageMemory:
		store := memory.NewStore(cfg.Ledger.LockTimeout)
		b = &backend{
			txRunner:   store,
			items:      store.Items(),
			movements:  store.Movements(),
			catalog:    store.Catalog(),
			workOrders: store.WorkOrders(),
			expenses:   store.Expenses(),
			alerts:     store.Alerts(),
		}
		if cfg.MemorySeedTenant != "" {
			store.SeedDemo(cfg.MemorySeedTenant)
			log.Info().Str("tenant_id", cfg.MemorySeedTenant).Msg("datos demo cargados")
		} else {
			log.Warn().Msg("catálogo y tickets vacíos: definir MEMORY_SEED_TENANT para datos demo")
		}
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
	case config.StoragePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		if cfg.DB.AutoMigrate {
			if err := postgres.Migrate(ctx, pool); err != nil {
				pool.Close()
				return nil, err
			}
			log.Info().Msg("esquema aplicado")
		}
		b = &backend{
			txRunner:   postgres.NewTxRunner(pool, cfg.Ledger.LockTimeout),
			items:      postgres.NewInventoryItemRepository(pool),
			movements:  postgres.NewInventoryMovementRepository(pool),
			catalog:    postgres.NewCatalogRepository(pool),
			workOrders: postgres.NewWorkOrderRepository(pool),
			expenses:   postgres.NewExpenseRepository(pool),
			alerts:     postgres.NewAlertRepository(pool),
			closers:    []func(){pool.Close},
		}
	default:
		return nil, fmt.Errorf("STORAGE_DRIVER desconocido: %q", cfg.Storage)
	}

	// Caché de catálogo (precio de referencia). Redis caído al arrancar = sin caché.
	if cfg.Redis.URL != "" {
		client, err := cache.NewClient(ctx, cfg.Redis.URL)
		if err != nil {
			log.Warn().Err(err).Msg("redis no disponible, catálogo sin caché")
		} else {
			b.catalog = cache.NewPartCatalog(b.catalog, client, cfg.Redis.ReferencePriceTTL, log)
			b.closers = append(b.closers, func() { _ = client.Close() })
		}
	}
	return b, nil
}
