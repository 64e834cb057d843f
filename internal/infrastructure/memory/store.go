// Package memory implementa los puertos de persistencia en memoria. Se usa en
// pruebas y con STORAGE_DRIVER=memory; una unidad de trabajo a la vez.
package memory

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/flota-api/internal/application/inventory"
	"github.com/jhoicas/flota-api/internal/domain"
	"github.com/jhoicas/flota-api/internal/domain/entity"
)

type purchaseOrderItem struct {
	TenantID   string
	ID         string
	MovementID string
}

// state datos del almacén. Las transacciones trabajan sobre un clon y lo
// publican al confirmar.
type state struct {
	items       map[string]*entity.InventoryItem
	itemKeys    map[string]string // tenant|bodega|repuesto -> id
	movements   []*entity.InventoryMovement
	tickets     map[string]*entity.Ticket
	partEntries []*entity.TicketPartEntry
	poItems     map[string]*purchaseOrderItem
	parts       map[string]*entity.Part
	workOrders  map[string]*entity.WorkOrder
	expenses    map[string]decimal.Decimal // tenant|ot -> suma
	alerts      []*entity.FinancialAlert
	idempotency map[string]*entity.IdempotencyKey
}

func newState() *state {
	return &state{
		items:       map[string]*entity.InventoryItem{},
		itemKeys:    map[string]string{},
		tickets:     map[string]*entity.Ticket{},
		poItems:     map[string]*purchaseOrderItem{},
		parts:       map[string]*entity.Part{},
		workOrders:  map[string]*entity.WorkOrder{},
		expenses:    map[string]decimal.Decimal{},
		idempotency: map[string]*entity.IdempotencyKey{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.items {
		cp := *v
		c.items[k] = &cp
	}
	for k, v := range s.itemKeys {
		c.itemKeys[k] = v
	}
	c.movements = append(c.movements, s.movements...)
	for k, v := range s.tickets {
		c.tickets[k] = v
	}
	c.partEntries = append(c.partEntries, s.partEntries...)
	for k, v := range s.poItems {
		cp := *v
		c.poItems[k] = &cp
	}
	for k, v := range s.parts {
		c.parts[k] = v
	}
	for k, v := range s.workOrders {
		c.workOrders[k] = v
	}
	for k, v := range s.expenses {
		c.expenses[k] = v
	}
	c.alerts = append(c.alerts, s.alerts...)
	for k, v := range s.idempotency {
		cp := *v
		c.idempotency[k] = &cp
	}
	return c
}

// Store almacén en memoria. sem serializa las escrituras (equivalente a bloquear
// todas las filas); mu protege el estado publicado para los lectores.
type Store struct {
	mu          sync.RWMutex
	st          *state
	sem         chan struct{}
	lockTimeout time.Duration
}

// NewStore crea un almacén vacío. lockTimeout acota la espera por el bloqueo (0 = solo ctx).
func NewStore(lockTimeout time.Duration) *Store {
	return &Store{
		st:          newState(),
		sem:         make(chan struct{}, 1),
		lockTimeout: lockTimeout,
	}
}

var _ inventory.TxRunner = (*Store)(nil)

// acquire toma el bloqueo de escritura respetando ctx y lockTimeout.
func (s *Store) acquire(ctx context.Context) error {
	var timeout <-chan time.Time
	if s.lockTimeout > 0 {
		t := time.NewTimer(s.lockTimeout)
		defer t.Stop()
		timeout = t.C
	}
	select {
	case s.sem <- struct{}{}:
		return nil
	case <-timeout:
		return &domain.ConcurrencyConflictError{Op: "esperar bloqueo"}
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return &domain.ConcurrencyConflictError{Op: "esperar bloqueo", Err: ctx.Err()}
		}
		return ctx.Err()
	}
}

func (s *Store) release() { <-s.sem }

// Run ejecuta fn sobre un clon del estado; Commit publica el clon, Rollback lo descarta.
func (s *Store) Run(ctx context.Context, fn func(ctx context.Context, repos inventory.Repositories) error) error {
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()

	s.mu.RLock()
	tx := s.st.clone()
	s.mu.RUnlock()

	if err := fn(ctx, s.repositories(tx)); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return &domain.ConcurrencyConflictError{Op: "commit", Err: err}
	}
	s.mu.Lock()
	s.st = tx
	s.mu.Unlock()
	return nil
}

func (s *Store) repositories(tx *state) inventory.Repositories {
	v := view{store: s, tx: tx}
	return inventory.Repositories{
		Items:              &ItemRepository{view: v},
		Movements:          &MovementRepository{view: v},
		Tickets:            &TicketRepository{view: v},
		PurchaseOrderItems: &PurchaseOrderItemRepository{view: v},
		Idempotency:        &IdempotencyRepository{view: v},
	}
}

// view acceso al estado: el clon de la tx si existe, si no el estado publicado.
type view struct {
	store *Store
	tx    *state
}

func (v view) read(fn func(st *state) error) error {
	if v.tx != nil {
		return fn(v.tx)
	}
	v.store.mu.RLock()
	defer v.store.mu.RUnlock()
	return fn(v.store.st)
}

// write fuera de una tx toma el bloqueo de escritura para no perder la
// actualización cuando una tx en curso publique su clon.
func (v view) write(ctx context.Context, fn func(st *state) error) error {
	if v.tx != nil {
		return fn(v.tx)
	}
	if err := v.store.acquire(ctx); err != nil {
		return err
	}
	defer v.store.release()
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	return fn(v.store.st)
}

func (s *Store) view() view { return view{store: s} }

// Items repositorio de ítems fuera de transacción (lecturas).
func (s *Store) Items() *ItemRepository { return &ItemRepository{view: s.view()} }

// Movements repositorio del kardex fuera de transacción.
func (s *Store) Movements() *MovementRepository { return &MovementRepository{view: s.view()} }

// Tickets repositorio de tickets fuera de transacción.
func (s *Store) Tickets() *TicketRepository { return &TicketRepository{view: s.view()} }

// Catalog catálogo de repuestos.
func (s *Store) Catalog() *CatalogRepository { return &CatalogRepository{view: s.view()} }

// WorkOrders órdenes de trabajo.
func (s *Store) WorkOrders() *WorkOrderRepository { return &WorkOrderRepository{view: s.view()} }

// Expenses gastos por orden de trabajo.
func (s *Store) Expenses() *ExpenseRepository { return &ExpenseRepository{view: s.view()} }

// Alerts almacén de alertas.
func (s *Store) Alerts() *AlertRepository { return &AlertRepository{view: s.view()} }

func key(parts ...string) string { return strings.Join(parts, "|") }
