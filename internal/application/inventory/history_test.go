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

func TestAuditItemCost_ReprocesoCoincide(t *testing.T) {
	f := newFixture(t)
	seedTicket(f, "tk-1", nil)
	itemID := f.receive(t, warehouseA, "part-pad", "3", "10.33")
	f.receive(t, warehouseA, "part-pad", "7", "11.17")

	_, err := f.consumption.ConsumeForTicket(context.Background(), inventory.ConsumeInput{
		TenantID: tenant, TicketID: "tk-1",
		Lines:    []inventory.ConsumptionLine{{ItemID: itemID, Quantity: d("4.5")}},
	})
	require.NoError(t, err)
	f.receive(t, warehouseA, "part-pad", "2.125", "13")
	_, err = f.ledger.Record(context.Background(), inventory.RecordInput{
		TenantID: tenant, ItemID: itemID, Reason: entity.ReasonReturnToStock, Quantity: d("1"),
	})
	require.NoError(t, err)

	audit, err := f.history.AuditItemCost(context.Background(), tenant, itemID)
	require.NoError(t, err)
	assert.Equal(t, 5, audit.Movements)
	assert.True(t, audit.Consistent, "almacenado %s vs reprocesado %s", audit.StoredAvgCost, audit.ReplayedAvgCost)
	assert.True(t, audit.StoredQuantity.Equal(audit.ReplayedQuantity))
}

func TestListMovements_PaginadoYOrden(t *testing.T) {
	f := newFixture(t)
	itemID := f.receive(t, warehouseA, "part-pad", "1", "10")
	f.receive(t, warehouseA, "part-pad", "1", "20")
	f.receive(t, warehouseA, "part-pad", "1", "30")

	all, err := f.history.ListMovements(context.Background(), repository.MovementFilter{TenantID: tenant, ItemID: itemID})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, all[0].NewStock.Equal(d("1")))
	assert.True(t, all[2].NewStock.Equal(d("3")))

	page, err := f.history.ListMovements(context.Background(), repository.MovementFilter{TenantID: tenant, ItemID: itemID, Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, all[1].ID, page[0].ID)
}

func TestListMovements_ItemInexistente(t *testing.T) {
	f := newFixture(t)

	_, err := f.history.ListMovements(context.Background(), repository.MovementFilter{TenantID: tenant, ItemID: "nope"})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestListByReference_Trazabilidad(t *testing.T) {
	f := newFixture(t)
	seedTicket(f, "tk-9", nil)
	itemID := f.receive(t, warehouseA, "part-pad", "10", "20")

	res, err := f.consumption.ConsumeForTicket(context.Background(), inventory.ConsumeInput{
		TenantID: tenant, TicketID: "tk-9",
		Lines:    []inventory.ConsumptionLine{{ItemID: itemID, Quantity: d("1")}, {ItemID: itemID, Quantity: d("2")}},
	})
	require.NoError(t, err)

	movs, err := f.history.ListByReference(context.Background(), tenant, entity.Reference{Type: entity.ReferenceTicket, ID: "tk-9"})
	require.NoError(t, err)
	require.Len(t, movs, 2)
	assert.Equal(t, res.Movements[0].ID, movs[0].ID)

	other, err := f.history.ListByReference(context.Background(), otherTenant, entity.Reference{Type: entity.ReferenceTicket, ID: "tk-9"})
	require.NoError(t, err)
	assert.Empty(t, other)

	_, err = f.history.ListByReference(context.Background(), tenant, entity.Reference{Type: entity.ReferenceTicket})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestKardexPDF_UsaTodoElKardex(t *testing.T) {
	f := newFixture(t)
	pdf := &stubPDF{}
	history := inventory.NewHistoryUseCase(f.store.Items(), f.store.Movements(), f.store.Catalog(), pdf)
	itemID := f.receive(t, warehouseA, "part-pad", "1", "10")
	f.receive(t, warehouseA, "part-pad", "1", "20")

	out, err := history.KardexPDF(context.Background(), tenant, itemID)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
	assert.Equal(t, 2, pdf.movements)

	_, err = history.KardexPDF(context.Background(), otherTenant, itemID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
