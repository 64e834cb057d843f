package inventory_test

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/jhoicas/flota-api/internal/application/inventory"
	"github.com/jhoicas/flota-api/internal/domain/entity"
	"github.com/jhoicas/flota-api/internal/domain/repository"
)

// lockRecorder envuelve el TxRunner y registra el orden de GetForUpdate y Ensure.
// beforeLock (si existe) corre una sola vez antes del primer GetForUpdate, con los
// repositorios de la misma transacción: simula un escritor rival que obtuvo el bloqueo antes.
type lockRecorder struct {
	inner inventory.TxRunner

	mu         sync.Mutex
	locks      []string
	ensures    []string
	beforeLock func(ctx context.Context, repos inventory.Repositories)
}

func (r *lockRecorder) Run(ctx context.Context, fn func(ctx context.Context, repos inventory.Repositories) error) error {
	return r.inner.Run(ctx, func(ctx context.Context, repos inventory.Repositories) error {
		wrapped := repos
		wrapped.Items = &recordingItems{InventoryItemRepository: repos.Items, rec: r, repos: &wrapped}
		return fn(ctx, wrapped)
	})
}

func (r *lockRecorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locks, r.ensures = nil, nil
}

type recordingItems struct {
	repository.InventoryItemRepository
	rec   *lockRecorder
	repos *inventory.Repositories
}

func (i *recordingItems) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.InventoryItem, error) {
	i.rec.mu.Lock()
	i.rec.locks = append(i.rec.locks, id)
	hook := i.rec.beforeLock
	i.rec.beforeLock = nil
	i.rec.mu.Unlock()
	if hook != nil {
		hook(ctx, *i.repos)
	}
	return i.InventoryItemRepository.GetForUpdate(ctx, tenantID, id)
}

func (i *recordingItems) Ensure(ctx context.Context, spec entity.ItemSpec) (*entity.InventoryItem, bool, error) {
	i.rec.mu.Lock()
	i.rec.ensures = append(i.rec.ensures, spec.WarehouseID+"/"+spec.PartID)
	i.rec.mu.Unlock()
	return i.InventoryItemRepository.Ensure(ctx, spec)
}

func newRecordingFixture(t *testing.T) (*fixture, *lockRecorder) {
	t.Helper()
	var rec *lockRecorder
	f := newFixtureWithRunner(t, func(inner inventory.TxRunner) inventory.TxRunner {
		rec = &lockRecorder{inner: inner}
		return rec
	}, inventory.RetryPolicy{MaxAttempts: 1})
	return f, rec
}

func sortedIDs(ids ...string) []string {
	out := append([]string(nil), ids...)
	sort.Strings(out)
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Orden de bloqueo
// ──────────────────────────────────────────────────────────────────────────────

func TestConsumeForTicket_BloqueaEnOrdenAscendente(t *testing.T) {
	f, rec := newRecordingFixture(t)
	seedTicket(f, "tk-1", nil)
	first := f.receive(t, warehouseA, "part-pad", "10", "20")
	second := f.receive(t, warehouseA, "part-filter", "10", "100")
	ordered := sortedIDs(first, second)
	low, high := ordered[0], ordered[1]

	rec.reset()
	_, err := f.consumption.ConsumeForTicket(context.Background(), inventory.ConsumeInput{
		TenantID: tenant, TicketID: "tk-1",
		Lines: []inventory.ConsumptionLine{
			{ItemID: high, Quantity: d("1")},
			{ItemID: low, Quantity: d("1")},
			{ItemID: high, Quantity: d("1")},
		},
	})
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rec.locks), 2)
	assert.Equal(t, []string{low, high}, rec.locks[:2], "ids únicos en orden ascendente antes de aplicar líneas")
}

func TestTransfer_BloqueaEnOrdenAscendente(t *testing.T) {
	f, rec := newRecordingFixture(t)
	src := f.receive(t, warehouseA, "part-pad", "10", "20")

	rec.reset()
	res, err := f.ledger.Transfer(context.Background(), inventory.TransferInput{
		TenantID: tenant, ItemID: src, ToWarehouseID: warehouseB, Quantity: d("4"),
	})
	require.NoError(t, err)
	assert.Equal(t, sortedIDs(src, res.In.ItemID), rec.locks)
}

func TestReceiveBatch_CreaYBloqueaEnOrdenDeterminista(t *testing.T) {
	f, rec := newRecordingFixture(t)

	rec.reset()
	res, err := f.receiving.ReceiveBatch(context.Background(), inventory.ReceiveBatchInput{
		TenantID: tenant, ActorID: actor,
		Reference: entity.Reference{Type: entity.ReferencePurchaseOrder, ID: "po-9"},
		Lines: []inventory.ReceiptLine{
			{WarehouseID: warehouseB, PartID: "part-pad", Quantity: d("1"), UnitCost: d("20")},
			{WarehouseID: warehouseA, PartID: "part-pad", Quantity: d("1"), UnitCost: d("20")},
			{WarehouseID: warehouseA, PartID: "part-filter", Quantity: d("1"), UnitCost: d("100")},
			{WarehouseID: warehouseB, PartID: "part-pad", Quantity: d("2"), UnitCost: d("20")},
		},
	})
	require.NoError(t, err)
	require.Len(t, res.Movements, 4)

	assert.Equal(t, []string{
		warehouseA + "/part-filter",
		warehouseA + "/part-pad",
		warehouseB + "/part-pad",
	}, rec.ensures, "un INSERT por (bodega, repuesto), en orden")

	ids := sortedIDs(res.Movements[0].ItemID, res.Movements[1].ItemID, res.Movements[2].ItemID)
	require.GreaterOrEqual(t, len(rec.locks), 3)
	assert.Equal(t, ids, rec.locks[:3])
	assert.Equal(t, res.Movements[0].ItemID, res.Movements[3].ItemID, "líneas repetidas comparten ítem")
}

// ──────────────────────────────────────────────────────────────────────────────
// Contención sobre el mismo ítem
// ──────────────────────────────────────────────────────────────────────────────

// Un escritor que espera el bloqueo queda después del que lo tenía, en el kardex
// y en el reproceso.
func TestRecord_EsperaDeBloqueoConservaOrdenDelKardex(t *testing.T) {
	f, rec := newRecordingFixture(t)
	itemID := f.receive(t, warehouseA, "part-pad", "5", "10")

	rec.beforeLock = func(ctx context.Context, repos inventory.Repositories) {
		time.Sleep(2 * time.Millisecond)
		_, err := f.ledger.RecordInTx(ctx, repos, inventory.RecordInput{
			TenantID: tenant, ItemID: itemID, Reason: entity.ReasonAdjustmentOut, Quantity: d("5"),
		}, time.Now(), "rival")
		require.NoError(t, err)
	}
	_, err := f.ledger.Record(context.Background(), inventory.RecordInput{
		TenantID: tenant, ItemID: itemID, Reason: entity.ReasonAdjustmentIn, Quantity: d("10"), UnitCost: ptr(d("20")),
	})
	require.NoError(t, err)

	movs := f.movements(t, itemID)
	require.Len(t, movs, 3)
	assert.Equal(t, entity.ReasonAdjustmentOut, movs[1].Reason)
	assert.Equal(t, entity.ReasonAdjustmentIn, movs[2].Reason)
	for i := 1; i < len(movs); i++ {
		assert.True(t, movs[i].PreviousStock.Equal(movs[i-1].NewStock), "cadena de stock rota en %d", i)
	}

	audit, err := f.history.AuditItemCost(context.Background(), tenant, itemID)
	require.NoError(t, err)
	assert.True(t, audit.Consistent, "stored=%s replayed=%s", audit.StoredAvgCost, audit.ReplayedAvgCost)
	assert.True(t, audit.StoredAvgCost.Equal(d("20")))
}
