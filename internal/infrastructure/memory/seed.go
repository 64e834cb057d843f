package memory

import (
	"github.com/shopspring/decimal"
	"github.com/jhoicas/flota-api/internal/domain/entity"
)

// Los colaboradores externos (catálogo, tickets, órdenes de trabajo, gastos, OC)
// no tienen escritura en el core; en memoria se cargan con estos helpers.

// AddPart registra un repuesto en el catálogo.
func (s *Store) AddPart(p entity.Part) {
	s.seed(func(st *state) { st.parts[p.ID] = &p })
}

// AddTicket registra un ticket de reparación.
func (s *Store) AddTicket(t entity.Ticket) {
	s.seed(func(st *state) { st.tickets[t.ID] = &t })
}

// AddWorkOrder registra una orden de trabajo.
func (s *Store) AddWorkOrder(wo entity.WorkOrder) {
	s.seed(func(st *state) { st.workOrders[wo.ID] = &wo })
}

// AddExpense suma un gasto a la orden de trabajo.
func (s *Store) AddExpense(tenantID, workOrderID string, amount decimal.Decimal) {
	s.seed(func(st *state) {
		k := key(tenantID, workOrderID)
		st.expenses[k] = st.expenses[k].Add(amount)
	})
}

// AddPurchaseOrderItem registra un ítem de orden de compra pendiente de recepción.
func (s *Store) AddPurchaseOrderItem(tenantID, id string) {
	s.seed(func(st *state) { st.poItems[id] = &purchaseOrderItem{TenantID: tenantID, ID: id} })
}

// PurchaseOrderItemMovement id del movimiento que recibió el ítem de OC ("" si no se ha recibido).
func (s *Store) PurchaseOrderItemMovement(id string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if it, ok := s.st.poItems[id]; ok {
		return it.MovementID
	}
	return ""
}

// Datos de demostración para STORAGE_DRIVER=memory.
const (
	DemoWarehouseID = "bodega-principal"
	DemoTicketID    = "ticket-demo"
	DemoWorkOrderID = "ot-demo"
)

// SeedDemo carga un catálogo mínimo, una orden de trabajo con presupuesto y un
// ticket abierto para tenantID, de modo que el API en memoria sea utilizable sin
// los servicios externos.
func (s *Store) SeedDemo(tenantID string) {
	price := func(v int64) *decimal.Decimal { d := decimal.NewFromInt(v); return &d }
	s.AddPart(entity.Part{ID: "rep-filtro-aceite", TenantID: tenantID, SKU: "FLT-001", Name: "Filtro de aceite", ReferencePrice: price(45000)})
	s.AddPart(entity.Part{ID: "rep-pastillas-freno", TenantID: tenantID, SKU: "FRN-010", Name: "Pastillas de freno", ReferencePrice: price(180000)})
	s.AddPart(entity.Part{ID: "rep-aceite-15w40", TenantID: tenantID, SKU: "ACE-15W40", Name: "Aceite 15W40 (galón)"})
	s.AddWorkOrder(entity.WorkOrder{ID: DemoWorkOrderID, TenantID: tenantID, EstimatedBudget: price(1000000)})
	wo := DemoWorkOrderID
	s.AddTicket(entity.Ticket{ID: DemoTicketID, TenantID: tenantID, VehicleID: "veh-demo", WorkOrderID: &wo})
}

func (s *Store) seed(fn func(st *state)) {
	s.sem <- struct{}{}
	defer s.release()
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.st)
}
