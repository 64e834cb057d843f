package inventory

import (
	"github.com/shopspring/decimal"
	"github.com/jhoicas/flota-api/internal/domain"
	"github.com/jhoicas/flota-api/internal/domain/entity"
)

// State estado de stock/costo previo a un movimiento.
type State struct {
	Stock   decimal.Decimal
	AvgCost decimal.Decimal
}

// Request movimiento solicitado. UnitCost solo se usa en entradas.
type Request struct {
	Direction entity.Direction
	Quantity  decimal.Decimal
	UnitCost  decimal.Decimal
}

// Result estado posterior y valorización del movimiento, a precisión completa.
type Result struct {
	NewStock          decimal.Decimal
	NewAvgCost        decimal.Decimal
	MovementUnitCost  decimal.Decimal
	MovementTotalCost decimal.Decimal
}

// ApplyMovement calcula el estado resultante de aplicar req sobre current (función pura).
//
// ENTRY: mezcla el costo de entrada en el promedio móvil.
// EXIT: valoriza al promedio vigente, nunca a un precio externo; el promedio se
// conserva incluso si el stock llega a cero.
// Cantidad cero es un no-op. El stock nunca queda negativo.
func ApplyMovement(current State, req Request) (Result, error) {
	if req.Quantity.IsNegative() {
		return Result{}, domain.NewValidationError("quantity", "la cantidad no puede ser negativa")
	}
	switch req.Direction {
	case entity.DirectionEntry:
		if req.UnitCost.IsNegative() {
			return Result{}, domain.NewValidationError("unit_cost", "el costo unitario no puede ser negativo")
		}
		if req.Quantity.IsZero() {
			return noop(current, req.UnitCost), nil
		}
		total := req.Quantity.Mul(req.UnitCost)
		newStock := current.Stock.Add(req.Quantity)
		return Result{
			NewStock:          newStock,
			NewAvgCost:        CostCalculator(current.Stock, current.AvgCost, req.Quantity, req.UnitCost),
			MovementUnitCost:  req.UnitCost,
			MovementTotalCost: total,
		}, nil
	case entity.DirectionExit:
		if req.Quantity.GreaterThan(current.Stock) {
			return Result{}, &domain.InsufficientStockError{Available: current.Stock, Requested: req.Quantity}
		}
		if req.Quantity.IsZero() {
			return noop(current, current.AvgCost), nil
		}
		return Result{
			NewStock:          current.Stock.Sub(req.Quantity),
			NewAvgCost:        current.AvgCost,
			MovementUnitCost:  current.AvgCost,
			MovementTotalCost: req.Quantity.Mul(current.AvgCost),
		}, nil
	}
	return Result{}, &domain.InvalidMovementTypeError{Reason: string(req.Direction)}
}

func noop(current State, unitCost decimal.Decimal) Result {
	return Result{
		NewStock:          current.Stock,
		NewAvgCost:        current.AvgCost,
		MovementUnitCost:  unitCost,
		MovementTotalCost: decimal.Zero,
	}
}
