package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Intellisales-api/internal/application/tenancy"
	"github.com/jhoicas/Intellisales-api/internal/domain"
	"github.com/jhoicas/Intellisales-api/internal/domain/tenant"
	"github.com/jhoicas/Intellisales-api/pkg/config"
)

var _ tenancy.TenantDatabases = (*DatabaseAdmin)(nil)

// PoolEvicter cierra el pool registrado de un tenant antes de eliminar su base.
type PoolEvicter interface {
	Evict(routingKey string) bool
}

// DatabaseAdmin crea y elimina bases físicas de tenants. Trabaja sobre la base de
// mantenimiento porque CREATE/DROP DATABASE no pueden ejecutarse dentro de una transacción
// ni conectados a la base afectada.
type DatabaseAdmin struct {
	db      *sql.DB
	prefix  string
	evicter PoolEvicter
	log     zerolog.Logger
}

// OpenMaintenanceDB abre la base de mantenimiento (por defecto "postgres") con lib/pq.
func OpenMaintenanceDB(ctx context.Context, cfg config.DBConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSNFor(cfg.MaintenanceName))
	if err != nil {
		return nil, fmt.Errorf("abrir base de mantenimiento: %w", err)
	}
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(1)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping base de mantenimiento: %w", err)
	}
	return db, nil
}

// NewDatabaseAdmin construye el administrador. evicter puede ser nil.
func NewDatabaseAdmin(db *sql.DB, prefix string, evicter PoolEvicter, log zerolog.Logger) *DatabaseAdmin {
	return &DatabaseAdmin{db: db, prefix: prefix, evicter: evicter, log: log}
}

// Exists informa si la base física del tenant existe en el servidor.
func (a *DatabaseAdmin) Exists(ctx context.Context, routingKey string) (bool, error) {
	name, err := a.name(routingKey)
	if err != nil {
		return false, err
	}
	var exists bool
	err = a.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)`, name,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%w: consultar pg_database: %w", domain.ErrUnavailable, err)
	}
	return exists, nil
}

// Create crea la base del tenant si no existe.
func (a *DatabaseAdmin) Create(ctx context.Context, routingKey string) error {
	exists, err := a.Exists(ctx, routingKey)
	if err != nil {
		return err
	}
	name := tenant.DatabaseName(a.prefix, routingKey)
	if exists {
		a.log.Warn().Str("database", name).Msg("la base del tenant ya existía")
		return nil
	}
	if _, err := a.db.ExecContext(ctx, "CREATE DATABASE "+pq.QuoteIdentifier(name)); err != nil {
		// Otra réplica pudo crearla entre la consulta y el CREATE.
		if isDuplicateDatabase(err) {
			return nil
		}
		return fmt.Errorf("%w: create database %s: %w", domain.ErrUnavailable, name, err)
	}
	a.log.Info().Str("database", name).Msg("base del tenant creada")
	return nil
}

// Drop cierra el pool del tenant en este proceso y elimina su base si existe. Otros procesos
// (el servidor mientras el CLI borra) pueden tener conexiones abiertas a la base: WITH (FORCE)
// las termina en lugar de fallar con 55006. Requiere PostgreSQL 13 o superior.
func (a *DatabaseAdmin) Drop(ctx context.Context, routingKey string) error {
	name, err := a.name(routingKey)
	if err != nil {
		return err
	}
	if a.evicter != nil {
		a.evicter.Evict(routingKey)
	}
	if _, err := a.db.ExecContext(ctx, "DROP DATABASE IF EXISTS "+pq.QuoteIdentifier(name)+" WITH (FORCE)"); err != nil {
		return fmt.Errorf("%w: drop database %s: %w", domain.ErrUnavailable, name, err)
	}
	a.log.Info().Str("database", name).Msg("base del tenant eliminada")
	return nil
}

func (a *DatabaseAdmin) name(routingKey string) (string, error) {
	if !tenant.ValidRoutingKey(routingKey) {
		return "", fmt.Errorf("%w: routing key %q", domain.ErrInvalidInput, routingKey)
	}
	return tenant.DatabaseName(a.prefix, routingKey), nil
}
