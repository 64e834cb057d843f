package inventory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/jhoicas/flota-api/internal/application/inventory"
	"github.com/jhoicas/flota-api/internal/domain"
	"github.com/jhoicas/flota-api/internal/domain/entity"
	"github.com/jhoicas/flota-api/internal/domain/repository"
)

// Escenario A: primera recepción crea el ítem; la segunda recalcula el promedio.
func TestReceive_CreaItemYRecalculaPromedio(t *testing.T) {
	f := newFixture(t)

	itemID := f.receive(t, warehouseA, "part-pad", "100", "50")
	item := f.item(t, itemID)
	assert.True(t, item.Quantity.Equal(d("100")))
	assert.True(t, item.AverageCost.Equal(d("50")))
	assert.Equal(t, entity.ItemStatusActive, item.Status)

	again := f.receive(t, warehouseA, "part-pad", "50", "80")
	assert.Equal(t, itemID, again, "mismo (tenant, bodega, repuesto) reutiliza el ítem")

	item = f.item(t, itemID)
	assert.True(t, item.Quantity.Equal(d("150")))
	assert.True(t, item.AverageCost.Equal(d("60")))
	assert.True(t, item.TotalValue.Equal(d("9000")))

	movs := f.movements(t, itemID)
	require.Len(t, movs, 2)
	assert.True(t, movs[1].PreviousAvgCost.Equal(d("50")))
	assert.True(t, movs[1].NewAvgCost.Equal(d("60")))
	assert.Equal(t, entity.ReasonPurchaseReceipt, movs[1].Reason)
}

func TestReceive_RepuestoInexistente(t *testing.T) {
	f := newFixture(t)

	_, err := f.receiving.Receive(context.Background(), inventory.ReceiveInput{
		TenantID: tenant,
		Line:     inventory.ReceiptLine{WarehouseID: warehouseA, PartID: "part-foreign", Quantity: d("1"), UnitCost: d("1")},
	})
	assert.True(t, errors.Is(err, domain.ErrNotFound), "repuesto de otro tenant se comporta como inexistente")
	assert.Nil(t, f.store.Items().FindByKey(tenant, warehouseA, "part-foreign"))
}

func TestReceive_ValidaAntesDeTocarAlmacenamiento(t *testing.T) {
	f := newFixture(t)

	cases := []inventory.ReceiptLine{
		{WarehouseID: warehouseA, PartID: "part-pad", Quantity: d("0"), UnitCost: d("1")},
		{WarehouseID: warehouseA, PartID: "part-pad", Quantity: d("1"), UnitCost: d("-1")},
		{WarehouseID: "", PartID: "part-pad", Quantity: d("1"), UnitCost: d("1")},
		{WarehouseID: warehouseA, PartID: "part-pad", Quantity: d("1"), UnitCost: d("1"), MinStock: d("5"), MaxStock: ptr(d("2"))},
	}
	for i, line := range cases {
		_, err := f.receiving.Receive(context.Background(), inventory.ReceiveInput{TenantID: tenant, Line: line})
		assert.True(t, errors.Is(err, domain.ErrInvalidInput), "caso %d: %v", i, err)
	}
	assert.Nil(t, f.store.Items().FindByKey(tenant, warehouseA, "part-pad"))
}

func TestReceive_EnlazaItemDeOrdenDeCompra(t *testing.T) {
	f := newFixture(t)
	f.store.AddPurchaseOrderItem(tenant, "poi-1")

	mov, err := f.receiving.Receive(context.Background(), inventory.ReceiveInput{
		TenantID: tenant,
		Line: inventory.ReceiptLine{
			WarehouseID: warehouseA, PartID: "part-pad", Quantity: d("2"), UnitCost: d("30"),
			Reference: entity.Reference{Type: entity.ReferencePurchaseOrderItem, ID: "poi-1"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, mov.ID, f.store.PurchaseOrderItemMovement("poi-1"))
}

func TestReceive_ItemDeOrdenInexistenteRevierte(t *testing.T) {
	f := newFixture(t)

	_, err := f.receiving.Receive(context.Background(), inventory.ReceiveInput{
		TenantID: tenant,
		Line: inventory.ReceiptLine{
			WarehouseID: warehouseA, PartID: "part-pad", Quantity: d("2"), UnitCost: d("30"),
			Reference: entity.Reference{Type: entity.ReferencePurchaseOrderItem, ID: "poi-missing"},
		},
	})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Nil(t, f.store.Items().FindByKey(tenant, warehouseA, "part-pad"))
}

// Escenario D: la recepción confirma aunque el precio supere la referencia; la
// alerta se crea después del commit.
func TestReceive_PrecioElevadoCreaAlerta(t *testing.T) {
	f := newFixture(t)

	itemID := f.receive(t, warehouseA, "part-filter", "4", "125")
	assert.True(t, f.item(t, itemID).Quantity.Equal(d("4")))

	alerts, err := f.watchdog.ListAlerts(context.Background(), repository.AlertFilter{TenantID: tenant})
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, entity.AlertTypePriceDeviation, alerts[0].Type)
	require.NotNil(t, alerts[0].PartID)
	assert.Equal(t, "part-filter", *alerts[0].PartID)
}

func TestReceiveBatch_TodoONada(t *testing.T) {
	f := newFixture(t)
	f.store.AddPurchaseOrderItem(tenant, "poi-1")

	_, err := f.receiving.ReceiveBatch(context.Background(), inventory.ReceiveBatchInput{
		TenantID:  tenant,
		Reference: entity.Reference{Type: entity.ReferencePurchaseOrder, ID: "po-9"},
		Lines: []inventory.ReceiptLine{
			{WarehouseID: warehouseA, PartID: "part-pad", Quantity: d("5"), UnitCost: d("10"),
				Reference: entity.Reference{Type: entity.ReferencePurchaseOrderItem, ID: "poi-1"}},
			{WarehouseID: warehouseA, PartID: "part-filter", Quantity: d("5"), UnitCost: d("10"),
				Reference: entity.Reference{Type: entity.ReferencePurchaseOrderItem, ID: "poi-missing"}},
		},
	})
	require.Error(t, err)
	assert.Nil(t, f.store.Items().FindByKey(tenant, warehouseA, "part-pad"))
	assert.Empty(t, f.store.PurchaseOrderItemMovement("poi-1"))
}

func TestReceiveBatch_IdempotenciaDevuelveRespuestaOriginal(t *testing.T) {
	f := newFixture(t)
	in := inventory.ReceiveBatchInput{
		TenantID:       tenant,
		Reference:      entity.Reference{Type: entity.ReferencePurchaseOrder, ID: "po-7"},
		IdempotencyKey: "rcv-po-7",
		Lines: []inventory.ReceiptLine{
			{WarehouseID: warehouseA, PartID: "part-pad", Quantity: d("5"), UnitCost: d("10")},
			{WarehouseID: warehouseB, PartID: "part-pad", Quantity: d("3"), UnitCost: d("12")},
		},
	}

	first, err := f.receiving.ReceiveBatch(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, first.Movements, 2)
	assert.True(t, first.TotalCost.Equal(d("86")))
	assert.Equal(t, first.Movements[0].TransactionID, first.Movements[1].TransactionID)

	second, err := f.receiving.ReceiveBatch(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, second.Movements, 2)
	assert.Equal(t, first.Movements[0].ID, second.Movements[0].ID)
	assert.True(t, second.TotalCost.Equal(first.TotalCost))

	item := f.store.Items().FindByKey(tenant, warehouseA, "part-pad")
	require.NotNil(t, item)
	assert.True(t, item.Quantity.Equal(d("5")), "el reenvío no duplica stock")
}

func TestReceiveBatch_ReferenciaDelLoteSeHereda(t *testing.T) {
	f := newFixture(t)

	res, err := f.receiving.ReceiveBatch(context.Background(), inventory.ReceiveBatchInput{
		TenantID:  tenant,
		Reference: entity.Reference{Type: entity.ReferencePurchaseOrder, ID: "po-3"},
		Lines:     []inventory.ReceiptLine{{WarehouseID: warehouseA, PartID: "part-pad", Quantity: d("1"), UnitCost: d("10")}},
	})
	require.NoError(t, err)

	movs, err := f.history.ListByReference(context.Background(), tenant, entity.Reference{Type: entity.ReferencePurchaseOrder, ID: "po-3"})
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, res.Movements[0].ID, movs[0].ID)
}
