package inventory

import "github.com/shopspring/decimal"

// Escalas de persistencia. El redondeo solo se aplica al persistir.
const (
	QuantityScale = 4
	CostScale     = 6
	MoneyScale    = 2
)

// ValueEpsilon tolerancia de |TotalValue - Quantity*AverageCost|.
var ValueEpsilon = decimal.New(1, -MoneyScale)

// Persisted resultado redondeado listo para guardarse en ítem y movimiento.
type Persisted struct {
	NewStock          decimal.Decimal
	NewAvgCost        decimal.Decimal
	NewTotalValue     decimal.Decimal
	MovementUnitCost  decimal.Decimal
	MovementTotalCost decimal.Decimal
}

// Round aplica las escalas de persistencia a un Result.
func Round(r Result) Persisted {
	stock := r.NewStock.Round(QuantityScale)
	avg := r.NewAvgCost.Round(CostScale)
	return Persisted{
		NewStock:          stock,
		NewAvgCost:        avg,
		NewTotalValue:     TotalValue(stock, avg),
		MovementUnitCost:  r.MovementUnitCost.Round(CostScale),
		MovementTotalCost: r.MovementTotalCost.Round(MoneyScale),
	}
}

// TotalValue valor del inventario redondeado a moneda.
func TotalValue(quantity, avgCost decimal.Decimal) decimal.Decimal {
	return quantity.Mul(avgCost).Round(MoneyScale)
}
