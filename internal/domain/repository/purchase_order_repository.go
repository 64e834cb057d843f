package repository

import "context"

// PurchaseOrderItemRepository solo cubre la recepción: enlaza el ítem de la OC
// con el movimiento que lo ingresó.
type PurchaseOrderItemRepository interface {
	AttachMovement(ctx context.Context, tenantID, purchaseOrderItemID, movementID string) error
}
