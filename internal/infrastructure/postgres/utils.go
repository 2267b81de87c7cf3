package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/retail-ledger/internal/domain"
)

// Códigos SQLSTATE relevantes.
const (
	codeUniqueViolation      = "23505"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == codeUniqueViolation
	}
	return strings.Contains(err.Error(), codeUniqueViolation)
}

// isTransient serialización o deadlock: la transacción completa puede reintentarse.
func isTransient(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == codeSerializationFailure || pgErr.Code == codeDeadlockDetected
	}
	return false
}

// wrap traduce un error del driver al error de dominio correspondiente.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case isTransient(err):
		return &domain.StorageError{Op: op, Err: err, Retryable: true}
	case isUniqueViolation(err):
		return domain.Conflict(op + ": registro duplicado")
	}
	return domain.Storage(op, err)
}

// execBatch consume los resultados de un batch de n sentencias; onNoRows se llama con el índice de las que no afectaron filas.
func execBatch(br pgx.BatchResults, n int, onNoRows func(i int) error) (err error) {
	defer func() {
		if cerr := br.Close(); err == nil {
			err = cerr
		}
	}()
	for i := 0; i < n; i++ {
		tag, err := br.Exec()
		if err != nil {
			return err
		}
		if onNoRows != nil && tag.RowsAffected() == 0 {
			if err := onNoRows(i); err != nil {
				return err
			}
		}
	}
	return nil
}
