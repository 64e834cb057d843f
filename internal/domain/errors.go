package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias externas salvo decimal).
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrDuplicate           = errors.New("recurso duplicado")
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrInvalidMovementType = errors.New("tipo de movimiento inválido")
	ErrConcurrencyConflict = errors.New("conflicto de concurrencia, reintente")
)

// ValidationError entrada mal formada; se rechaza antes de tocar almacenamiento.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError construye un ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validación: " + e.Message
	}
	return fmt.Sprintf("validación: %s: %s", e.Field, e.Message)
}

// Is permite errors.Is(err, ErrInvalidInput).
func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// InsufficientStockError salida mayor al stock disponible.
type InsufficientStockError struct {
	ItemID    string
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente en ítem %s: disponible %s, solicitado %s",
		e.ItemID, e.Available.String(), e.Requested.String())
}

// Is permite errors.Is(err, ErrInsufficientStock).
func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// InvalidMovementTypeError motivo de movimiento fuera del conjunto cerrado.
// Indica un error de integración: nunca se asume una dirección por defecto.
type InvalidMovementTypeError struct {
	Reason string
}

func (e *InvalidMovementTypeError) Error() string {
	return fmt.Sprintf("tipo de movimiento inválido: %q", e.Reason)
}

// Is permite errors.Is(err, ErrInvalidMovementType).
func (e *InvalidMovementTypeError) Is(target error) bool { return target == ErrInvalidMovementType }

// ConcurrencyConflictError la transacción o el bloqueo no pudo completarse a tiempo.
// Es reintentable a nivel de lote completo.
type ConcurrencyConflictError struct {
	Op  string
	Err error
}

func (e *ConcurrencyConflictError) Error() string {
	if e.Err == nil {
		return "conflicto de concurrencia: " + e.Op
	}
	return fmt.Sprintf("conflicto de concurrencia: %s: %v", e.Op, e.Err)
}

func (e *ConcurrencyConflictError) Unwrap() error { return e.Err }

// Is permite errors.Is(err, ErrConcurrencyConflict).
func (e *ConcurrencyConflictError) Is(target error) bool { return target == ErrConcurrencyConflict }

// IsRetryable indica si el error amerita reintentar el lote completo.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrencyConflict)
}
