package inventory

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/flota-api/internal/domain"
	"github.com/jhoicas/flota-api/internal/domain/entity"
)

// Replay reaplica un kardex completo (en orden cronológico) desde estado cero,
// redondeando en cada paso igual que la persistencia. El primer movimiento
// debe ser una entrada.
func Replay(movements []*entity.InventoryMovement) (State, error) {
	state := State{Stock: decimal.Zero, AvgCost: decimal.Zero}
	for i, m := range movements {
		if i == 0 && m.Direction != entity.DirectionEntry {
			return State{}, domain.NewValidationError("movements", "el primer movimiento debe ser una entrada")
		}
		res, err := ApplyMovement(state, Request{
			Direction: m.Direction,
			Quantity:  m.Quantity,
			UnitCost:  m.UnitCost,
		})
		if err != nil {
			return State{}, fmt.Errorf("replay movimiento %s: %w", m.ID, err)
		}
		p := Round(res)
		state = State{Stock: p.NewStock, AvgCost: p.NewAvgCost}
	}
	return state, nil
}
