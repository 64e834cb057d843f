package http

import (
	"github.com/jhoicas/flota-api/internal/application/dto"
	"github.com/jhoicas/flota-api/internal/domain/entity"
)

func toMovementResponse(m *entity.InventoryMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:              m.ID,
		TransactionID:   m.TransactionID,
		ItemID:          m.ItemID,
		Reason:          string(m.Reason),
		Direction:       string(m.Direction),
		Quantity:        m.Quantity,
		UnitCost:        m.UnitCost,
		TotalCost:       m.TotalCost,
		PreviousStock:   m.PreviousStock,
		NewStock:        m.NewStock,
		PreviousAvgCost: m.PreviousAvgCost,
		NewAvgCost:      m.NewAvgCost,
		ReferenceType:   m.ReferenceType,
		ReferenceID:     m.ReferenceID,
		ActorID:         m.ActorID,
		CreatedAt:       m.CreatedAt,
	}
}

func toMovementResponses(movs []*entity.InventoryMovement) []dto.MovementResponse {
	out := make([]dto.MovementResponse, 0, len(movs))
	for _, m := range movs {
		out = append(out, toMovementResponse(m))
	}
	return out
}

func toItemResponse(it *entity.InventoryItem) dto.ItemResponse {
	return dto.ItemResponse{
		ID:          it.ID,
		WarehouseID: it.WarehouseID,
		PartID:      it.PartID,
		Quantity:    it.Quantity,
		MinStock:    it.MinStock,
		MaxStock:    it.MaxStock,
		AverageCost: it.AverageCost,
		TotalValue:  it.TotalValue,
		Status:      it.Status,
		UpdatedAt:   it.UpdatedAt,
	}
}

func toAlertResponse(a *entity.FinancialAlert) dto.AlertResponse {
	return dto.AlertResponse{
		ID:          a.ID,
		Type:        a.Type,
		Severity:    a.Severity,
		Message:     a.Message,
		Details:     a.Details,
		MovementID:  a.MovementID,
		ExpenseID:   a.ExpenseID,
		WorkOrderID: a.WorkOrderID,
		PartID:      a.PartID,
		Status:      a.Status,
		CreatedAt:   a.CreatedAt,
	}
}
