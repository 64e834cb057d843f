package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/jhoicas/flota-api/internal/application/inventory"
	"github.com/jhoicas/flota-api/internal/application/watchdog"
	"github.com/jhoicas/flota-api/internal/domain/entity"
	"github.com/jhoicas/flota-api/internal/domain/repository"
	"github.com/jhoicas/flota-api/internal/infrastructure/memory"
	"github.com/jhoicas/flota-api/pkg/logger"
)

const (
	tenant      = "tenant-1"
	otherTenant = "tenant-2"
	actor       = "user-1"
	warehouseA  = "wh-a"
	warehouseB  = "wh-b"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr(v decimal.Decimal) *decimal.Decimal { return &v }

// fixture arma el core completo sobre almacenamiento en memoria.
type fixture struct {
	store       *memory.Store
	ledger      *inventory.MovementLedger
	receiving   *inventory.ReceivingCoordinator
	consumption *inventory.ConsumptionCoordinator
	history     *inventory.HistoryUseCase
	watchdog    *watchdog.FinancialWatchdog
}

type stubPDF struct {
	movements int
}

func (s *stubPDF) GenerateKardexPDF(ctx context.Context, item *entity.InventoryItem, part *entity.Part, movs []*entity.InventoryMovement) ([]byte, error) {
	s.movements = len(movs)
	return []byte("%PDF-stub"), nil
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithRunner(t, nil, inventory.RetryPolicy{MaxAttempts: 3, Backoff: time.Millisecond})
}

// newFixtureWithRunner permite envolver el TxRunner (nil = el del store).
func newFixtureWithRunner(t *testing.T, wrap func(inventory.TxRunner) inventory.TxRunner, retry inventory.RetryPolicy) *fixture {
	t.Helper()
	store := memory.NewStore(2 * time.Second)
	var runner inventory.TxRunner = store
	if wrap != nil {
		runner = wrap(store)
	}
	log := logger.Nop()
	wd := watchdog.NewFinancialWatchdog(store.Catalog(), store.WorkOrders(), store.Expenses(), store.Alerts(), log, time.Second)
	ledger := inventory.NewMovementLedger(runner, retry, log)

	store.AddPart(entity.Part{ID: "part-filter", TenantID: tenant, SKU: "FLT-01", Name: "Filtro de aceite", ReferencePrice: ptr(d("100"))})
	store.AddPart(entity.Part{ID: "part-pad", TenantID: tenant, SKU: "PAD-02", Name: "Pastillas de freno"})
	store.AddPart(entity.Part{ID: "part-foreign", TenantID: otherTenant, SKU: "X"})

	return &fixture{
		store:       store,
		ledger:      ledger,
		receiving:   inventory.NewReceivingCoordinator(runner, ledger, store.Catalog(), wd, retry, log),
		consumption: inventory.NewConsumptionCoordinator(runner, ledger, wd, retry, log),
		history:     inventory.NewHistoryUseCase(store.Items(), store.Movements(), store.Catalog(), &stubPDF{}),
		watchdog:    wd,
	}
}

// receive ingresa stock y devuelve el id del ítem.
func (f *fixture) receive(t *testing.T, warehouse, part, qty, cost string) string {
	t.Helper()
	mov, err := f.receiving.Receive(context.Background(), inventory.ReceiveInput{
		TenantID: tenant,
		ActorID:  actor,
		Line: inventory.ReceiptLine{
			WarehouseID: warehouse,
			PartID:      part,
			Quantity:    d(qty),
			UnitCost:    d(cost),
			Reference:   entity.Reference{Type: entity.ReferencePurchaseOrder, ID: "po-1"},
		},
	})
	require.NoError(t, err)
	return mov.ItemID
}

func (f *fixture) item(t *testing.T, id string) *entity.InventoryItem {
	t.Helper()
	item, err := f.history.GetItem(context.Background(), tenant, id)
	require.NoError(t, err)
	return item
}

func (f *fixture) movements(t *testing.T, itemID string) []*entity.InventoryMovement {
	t.Helper()
	movs, err := f.store.Movements().List(context.Background(), repository.MovementFilter{TenantID: tenant, ItemID: itemID})
	require.NoError(t, err)
	return movs
}
