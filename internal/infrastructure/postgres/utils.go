package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// Códigos SQLSTATE que la capa de tenancy distingue.
const (
	codeUniqueViolation   = "23505"
	codeInvalidCatalog    = "3D000" // la base no existe
	codeDuplicateDatabase = "42P04"
)

// Querier operaciones comunes a *pgxpool.Pool y pgx.Tx: los repos aceptan cualquiera de los dos.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	if pgCode(err) == codeUniqueViolation {
		return true
	}
	return err != nil && strings.Contains(err.Error(), codeUniqueViolation)
}

// isMissingDatabase la base física del tenant no existe en el servidor.
func isMissingDatabase(err error) bool {
	return pgCode(err) == codeInvalidCatalog
}

func isDuplicateDatabase(err error) bool {
	return pgCode(err) == codeDuplicateDatabase
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// pgCode extrae el SQLSTATE de errores de pgx y de lib/pq.
func pgCode(err error) string {
	if err == nil {
		return ""
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}
