package inventory_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/jhoicas/flota-api/internal/domain"
	"github.com/jhoicas/flota-api/internal/domain/entity"
	"github.com/jhoicas/flota-api/internal/domain/inventory"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func entry(q, u string) inventory.Request {
	return inventory.Request{Direction: entity.DirectionEntry, Quantity: d(q), UnitCost: d(u)}
}

func exit(q string) inventory.Request {
	return inventory.Request{Direction: entity.DirectionExit, Quantity: d(q)}
}

// ──────────────────────────────────────────────────────────────────────────────
// Escenarios de costo promedio móvil
// ──────────────────────────────────────────────────────────────────────────────

// Escenario A: ítem vacío, entrada 100@50 y luego 50@80 → promedio 60.
func TestApplyMovement_EntradasPromedioMovil(t *testing.T) {
	state := inventory.State{Stock: decimal.Zero, AvgCost: decimal.Zero}

	res, err := inventory.ApplyMovement(state, entry("100", "50"))
	require.NoError(t, err)
	assert.True(t, res.NewStock.Equal(d("100")))
	assert.True(t, res.NewAvgCost.Equal(d("50")))
	assert.True(t, res.MovementTotalCost.Equal(d("5000")))

	state = inventory.State{Stock: res.NewStock, AvgCost: res.NewAvgCost}
	res, err = inventory.ApplyMovement(state, entry("50", "80"))
	require.NoError(t, err)
	assert.True(t, res.NewStock.Equal(d("150")))
	assert.True(t, res.NewAvgCost.Equal(d("60")), "(100·50+50·80)/150 = 60, got %s", res.NewAvgCost)
	assert.True(t, res.MovementUnitCost.Equal(d("80")))
}

// Escenario B: salida del stock completo conserva el último promedio.
func TestApplyMovement_SalidaTotalConservaPromedio(t *testing.T) {
	state := inventory.State{Stock: d("150"), AvgCost: d("60")}

	res, err := inventory.ApplyMovement(state, exit("150"))
	require.NoError(t, err)
	assert.True(t, res.NewStock.IsZero())
	assert.True(t, res.MovementUnitCost.Equal(d("60")))
	assert.True(t, res.MovementTotalCost.Equal(d("9000")))
	assert.True(t, res.NewAvgCost.Equal(d("60")), "el promedio se retiene en stock cero")
}

func TestApplyMovement_SalidaIgnoraCostoExterno(t *testing.T) {
	state := inventory.State{Stock: d("10"), AvgCost: d("12.5")}
	req := exit("4")
	req.UnitCost = d("999")

	res, err := inventory.ApplyMovement(state, req)
	require.NoError(t, err)
	assert.True(t, res.MovementUnitCost.Equal(d("12.5")))
	assert.True(t, res.MovementTotalCost.Equal(d("50")))
}

// ──────────────────────────────────────────────────────────────────────────────
// Límites y validación
// ──────────────────────────────────────────────────────────────────────────────

func TestApplyMovement_SalidaUnaUnidadDeMasFalla(t *testing.T) {
	state := inventory.State{Stock: d("5"), AvgCost: d("10")}

	_, err := inventory.ApplyMovement(state, exit("6"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	var stockErr *domain.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.True(t, stockErr.Available.Equal(d("5")))
	assert.True(t, stockErr.Requested.Equal(d("6")))
}

func TestApplyMovement_CantidadCeroEsNoOp(t *testing.T) {
	state := inventory.State{Stock: d("7"), AvgCost: d("3")}

	for _, req := range []inventory.Request{entry("0", "100"), exit("0")} {
		res, err := inventory.ApplyMovement(state, req)
		require.NoError(t, err)
		assert.True(t, res.NewStock.Equal(state.Stock))
		assert.True(t, res.NewAvgCost.Equal(state.AvgCost))
		assert.True(t, res.MovementTotalCost.IsZero())
	}
}

func TestApplyMovement_Validaciones(t *testing.T) {
	state := inventory.State{Stock: d("1"), AvgCost: d("1")}
	cases := []struct {
		name string
		req  inventory.Request
		want error
	}{
		{"costo negativo", entry("1", "-0.01"), domain.ErrInvalidInput},
		{"cantidad negativa", entry("-1", "1"), domain.ErrInvalidInput},
		{"salida negativa", exit("-1"), domain.ErrInvalidInput},
		{"dirección desconocida", inventory.Request{Direction: "SIDEWAYS", Quantity: d("1")}, domain.ErrInvalidMovementType},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := inventory.ApplyMovement(state, tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestApplyMovement_EntradaSobreStockCeroRebasaPromedio(t *testing.T) {
	state := inventory.State{Stock: decimal.Zero, AvgCost: d("60")}

	res, err := inventory.ApplyMovement(state, entry("10", "75"))
	require.NoError(t, err)
	assert.True(t, res.NewAvgCost.Equal(d("75")))
}

// ──────────────────────────────────────────────────────────────────────────────
// Propiedades: stock no negativo, valor total y replay
// ──────────────────────────────────────────────────────────────────────────────

func TestPropiedades_SecuenciaDeMovimientos(t *testing.T) {
	reqs := []inventory.Request{
		entry("12.5", "33.3337"),
		exit("3"),
		entry("7", "41.10"),
		exit("16.5"),
		entry("1", "19.999999"),
		exit("0.25"),
		exit("5"), // supera el stock: se rechaza y no altera el estado
		entry("3.3333", "27"),
	}

	state := inventory.State{}
	var ledger []*entity.InventoryMovement
	for i, req := range reqs {
		res, err := inventory.ApplyMovement(state, req)
		if err != nil {
			require.ErrorIs(t, err, domain.ErrInsufficientStock, "paso %d", i)
			continue
		}
		p := inventory.Round(res)
		require.False(t, p.NewStock.IsNegative(), "paso %d", i)

		diff := p.NewTotalValue.Sub(p.NewStock.Mul(p.NewAvgCost)).Abs()
		assert.True(t, diff.LessThan(inventory.ValueEpsilon), "paso %d: diferencia %s", i, diff)

		ledger = append(ledger, &entity.InventoryMovement{
			Direction: req.Direction,
			Quantity:  req.Quantity,
			UnitCost:  p.MovementUnitCost,
		})
		state = inventory.State{Stock: p.NewStock, AvgCost: p.NewAvgCost}
	}

	replayed, err := inventory.Replay(ledger)
	require.NoError(t, err)
	assert.True(t, replayed.AvgCost.Equal(state.AvgCost), "replay %s vs %s", replayed.AvgCost, state.AvgCost)
	assert.True(t, replayed.Stock.Equal(state.Stock))
}

func TestReplay_PrimerMovimientoDebeSerEntrada(t *testing.T) {
	_, err := inventory.Replay([]*entity.InventoryMovement{
		{ID: "m1", Direction: entity.DirectionExit, Quantity: d("1")},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestResolveStatus(t *testing.T) {
	assert.Equal(t, entity.ItemStatusOutOfStock, inventory.ResolveStatus(decimal.Zero, d("2")))
	assert.Equal(t, entity.ItemStatusLowStock, inventory.ResolveStatus(d("2"), d("2")))
	assert.Equal(t, entity.ItemStatusActive, inventory.ResolveStatus(d("2.0001"), d("2")))
}

func TestCostCalculator_StockNoPositivoDevuelveCero(t *testing.T) {
	assert.True(t, inventory.CostCalculator(decimal.Zero, d("10"), decimal.Zero, d("10")).IsZero())
}
