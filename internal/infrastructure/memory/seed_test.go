package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/jhoicas/flota-api/internal/application/inventory"
	"github.com/jhoicas/flota-api/internal/application/watchdog"
	"github.com/jhoicas/flota-api/internal/infrastructure/memory"
	"github.com/jhoicas/flota-api/pkg/logger"
)

func TestSeedDemo_PermiteRecibirYConsumir(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(time.Second)
	store.SeedDemo("tenant-demo")

	log := logger.Nop()
	wd := watchdog.NewFinancialWatchdog(store.Catalog(), store.WorkOrders(), store.Expenses(), store.Alerts(), log, time.Second)
	ledger := inventory.NewMovementLedger(store, inventory.DefaultRetryPolicy, log)
	receiving := inventory.NewReceivingCoordinator(store, ledger, store.Catalog(), wd, inventory.DefaultRetryPolicy, log)
	consumption := inventory.NewConsumptionCoordinator(store, ledger, wd, inventory.DefaultRetryPolicy, log)

	mov, err := receiving.Receive(ctx, inventory.ReceiveInput{
		TenantID: "tenant-demo",
		Line: inventory.ReceiptLine{
			WarehouseID: memory.DemoWarehouseID,
			PartID:      "rep-filtro-aceite",
			Quantity:    decimal.NewFromInt(10),
			UnitCost:    decimal.NewFromInt(45000),
		},
	})
	require.NoError(t, err)

	res, err := consumption.ConsumeForTicket(ctx, inventory.ConsumeInput{
		TenantID: "tenant-demo",
		TicketID: memory.DemoTicketID,
		Lines:    []inventory.ConsumptionLine{{ItemID: mov.ItemID, Quantity: decimal.NewFromInt(2)}},
	})
	require.NoError(t, err)
	assert.True(t, res.TotalCost.Equal(decimal.NewFromInt(90000)))

	wo, err := store.WorkOrders().GetByID(ctx, "tenant-demo", memory.DemoWorkOrderID)
	require.NoError(t, err)
	require.NotNil(t, wo)
	require.NotNil(t, wo.EstimatedBudget)
}

func TestSeedDemo_SoloParaElTenantIndicado(t *testing.T) {
	store := memory.NewStore(time.Second)
	store.SeedDemo("tenant-demo")

	p, err := store.Catalog().GetPart(context.Background(), "otro-tenant", "rep-filtro-aceite")
	require.NoError(t, err)
	assert.Nil(t, p)
}
