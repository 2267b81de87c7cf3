package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrConflict     = errors.New("conflicto con el estado actual")
	ErrStorage      = errors.New("fallo de almacenamiento")
)

// ValidationError entrada mal formada o incompleta. Siempre corregible por el cliente.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// Invalid construye un ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFoundError recurso referenciado inexistente (producto, ubicación, reporte).
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s no encontrado", e.Resource)
	}
	return fmt.Sprintf("%s %q no encontrado", e.Resource, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NotFound construye un NotFoundError.
func NotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// ConflictError transRef duplicado, caja ya abierta o ya cerrada.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string { return e.Reason }

func (e *ConflictError) Unwrap() error { return ErrConflict }

// Conflict construye un ConflictError.
func Conflict(reason string) error {
	return &ConflictError{Reason: reason}
}

// StorageError el commit o la consulta subyacente falló.
// Retryable marca fallos transitorios (serialización, deadlock): es la única clase que se reintenta.
type StorageError struct {
	Op        string
	Err       error
	Retryable bool
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() []error { return []error{ErrStorage, e.Err} }

// Storage envuelve err como StorageError no reintentable.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	// Errores de dominio pasan sin envolver.
	if errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// IsRetryable indica si err es un StorageError transitorio.
func IsRetryable(err error) bool {
	var se *StorageError
	return errors.As(err, &se) && se.Retryable
}
