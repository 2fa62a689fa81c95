package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Intellisales-api/internal/application/tenancy"
)

//go:embed migrations/master/*.sql migrations/tenant/*.sql
var migrationsFS embed.FS

const (
	masterMigrations = "migrations/master"
	tenantMigrations = "migrations/tenant"

	// migrationLockID clave del advisory lock que serializa migraciones concurrentes sobre una misma base.
	migrationLockID int64 = 7261001
)

var _ tenancy.SchemaMigrator = (*Migrator)(nil)

// ConnectionGetter fuente de pools por tenant (el Registry).
type ConnectionGetter interface {
	GetConnection(ctx context.Context, routingKey string) (*pgxpool.Pool, error)
}

// Migrator aplica los archivos SQL embebidos, uno por transacción, y registra cada
// versión en schema_migrations. Reaplicar es inocuo.
type Migrator struct {
	conns ConnectionGetter
	log   zerolog.Logger
}

// NewMigrator construye el migrador. conns puede ser nil si solo se migra la base de metadatos.
func NewMigrator(conns ConnectionGetter, log zerolog.Logger) *Migrator {
	return &Migrator{conns: conns, log: log}
}

// MigrateMaster aplica el esquema de la base de metadatos.
func (m *Migrator) MigrateMaster(ctx context.Context, pool *pgxpool.Pool) error {
	n, err := m.apply(ctx, pool, masterMigrations)
	if err != nil {
		return fmt.Errorf("migrar metadatos: %w", err)
	}
	m.log.Info().Int("applied", n).Msg("esquema de metadatos al día")
	return nil
}

// MigrateTenant aplica el esquema del lado tenant sobre la base identificada por routingKey.
func (m *Migrator) MigrateTenant(ctx context.Context, routingKey string) error {
	pool, err := m.conns.GetConnection(ctx, routingKey)
	if err != nil {
		return err
	}
	n, err := m.apply(ctx, pool, tenantMigrations)
	if err != nil {
		return fmt.Errorf("migrar tenant %s: %w", routingKey, err)
	}
	m.log.Info().Str("routing_key", routingKey).Int("applied", n).Msg("esquema de tenant al día")
	return nil
}

func (m *Migrator) apply(ctx context.Context, pool *pgxpool.Pool, dir string) (int, error) {
	files, err := migrationFiles(dir)
	if err != nil {
		return 0, err
	}
	applied := 0
	for _, name := range files {
		ok, err := m.applyOne(ctx, pool, dir, name)
		if err != nil {
			return applied, fmt.Errorf("%s: %w", name, err)
		}
		if ok {
			applied++
		}
	}
	return applied, nil
}

// applyOne ejecuta un archivo dentro de su propia transacción. Devuelve false si ya estaba aplicado.
func (m *Migrator) applyOne(ctx context.Context, pool *pgxpool.Pool, dir, name string) (bool, error) {
	body, err := migrationsFS.ReadFile(path.Join(dir, name))
	if err != nil {
		return false, err
	}
	version := strings.TrimSuffix(name, ".sql")

	tx, err := pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, migrationLockID); err != nil {
		return false, fmt.Errorf("advisory lock: %w", err)
	}
	if _, err := tx.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`); err != nil {
		return false, fmt.Errorf("create schema_migrations: %w", err)
	}

	var done bool
	if err := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)`, version,
	).Scan(&done); err != nil {
		return false, fmt.Errorf("check version: %w", err)
	}
	if done {
		return false, nil
	}

	// Sin argumentos pgx usa el protocolo simple y acepta varias sentencias en un solo Exec.
	if _, err := tx.Exec(ctx, string(body)); err != nil {
		return false, err
	}
	if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, version); err != nil {
		return false, fmt.Errorf("record version: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit transaction: %w", err)
	}
	m.log.Debug().Str("version", version).Msg("migración aplicada")
	return true, nil
}

// migrationFiles lista los .sql de dir en orden lexicográfico (prefijo numérico).
func migrationFiles(dir string) ([]string, error) {
	entries, err := fs.ReadDir(migrationsFS, dir)
	if err != nil {
		return nil, fmt.Errorf("leer migraciones %s: %w", dir, err)
	}
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}
