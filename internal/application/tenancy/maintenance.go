package tenancy

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.uber.org/multierr"

	"github.com/jhoicas/Intellisales-api/internal/domain"
	"github.com/jhoicas/Intellisales-api/internal/domain/entity"
	"github.com/jhoicas/Intellisales-api/internal/domain/repository"
	"github.com/jhoicas/Intellisales-api/pkg/logger"
)

const migrateBatch = 100

// ConnectionEvicter cierra el pool registrado de un tenant.
type ConnectionEvicter interface {
	Evict(routingKey string) bool
}

// MigrationReport resultado de reaplicar el esquema sobre todos los tenants activos.
type MigrationReport struct {
	Migrated []string `json:"migrated"`
	Failed   []string `json:"failed"`
}

// Maintenance operaciones de operador sobre tenants existentes (CLI).
type Maintenance struct {
	repo      repository.TenantRepository
	databases TenantDatabases
	migrator  SchemaMigrator
	cache     TenantCache
	evicter   ConnectionEvicter
	log       zerolog.Logger
}

// NewMaintenance construye las operaciones de mantenimiento.
func NewMaintenance(
	repo repository.TenantRepository,
	databases TenantDatabases,
	migrator SchemaMigrator,
	cache TenantCache,
	evicter ConnectionEvicter,
	log zerolog.Logger,
) *Maintenance {
	if cache == nil {
		cache = NopCache{}
	}
	return &Maintenance{repo: repo, databases: databases, migrator: migrator, cache: cache, evicter: evicter, log: log}
}

// Find busca un tenant por ID (incluye eliminados) o por cualquier identificador público.
func (m *Maintenance) Find(ctx context.Context, ref string) (*entity.Tenant, error) {
	var (
		t   *entity.Tenant
		err error
	)
	if _, perr := uuid.Parse(ref); perr == nil {
		t, err = m.repo.GetByID(ctx, ref)
	} else {
		t, err = m.repo.FindByIdentifier(ctx, ref)
	}
	if err != nil {
		return nil, unavailable("buscar tenant", err)
	}
	if t == nil {
		return nil, domain.ErrTenantNotFound
	}
	return t, nil
}

// List devuelve una página de tenants activos.
func (m *Maintenance) List(ctx context.Context, limit, offset int) ([]*entity.Tenant, error) {
	list, err := m.repo.ListActive(ctx, limit, offset)
	if err != nil {
		return nil, unavailable("listar tenants", err)
	}
	return list, nil
}

// Delete elimina lógicamente el tenant: deja de resolverse, su caché se invalida y su pool se cierra.
// Con dropDatabase también borra la base física (irreversible).
func (m *Maintenance) Delete(ctx context.Context, ref string, dropDatabase bool) (*entity.Tenant, error) {
	t, err := m.Find(ctx, ref)
	if err != nil {
		return nil, err
	}
	if t.DeletedAt == nil {
		if err := m.repo.SoftDelete(ctx, t.ID); err != nil {
			return nil, fmt.Errorf("eliminar tenant %s: %w", t.ID, err)
		}
	}
	m.cache.Invalidate(ctx, t.ID)
	if m.evicter != nil {
		m.evicter.Evict(t.RoutingKey)
	}
	if dropDatabase {
		if err := m.databases.Drop(ctx, t.RoutingKey); err != nil {
			return nil, fmt.Errorf("eliminar base del tenant %s: %w", t.ID, err)
		}
	}
	tl := logger.Tenant(m.log, t.ID, t.RoutingKey)
	tl.Info().Bool("drop", dropDatabase).Msg("tenant eliminado")
	return t, nil
}

// MigrateAll reaplica el esquema de tenant sobre cada tenant activo. Un fallo no detiene
// al resto; los errores se devuelven combinados.
func (m *Maintenance) MigrateAll(ctx context.Context) (*MigrationReport, error) {
	report := &MigrationReport{}
	var errs error
	for offset := 0; ; offset += migrateBatch {
		list, err := m.repo.ListActive(ctx, migrateBatch, offset)
		if err != nil {
			return report, multierr.Append(errs, unavailable("listar tenants", err))
		}
		for _, t := range list {
			if !t.IsActive() {
				continue
			}
			if err := m.migrator.MigrateTenant(ctx, t.RoutingKey); err != nil {
				report.Failed = append(report.Failed, t.RoutingKey)
				errs = multierr.Append(errs, fmt.Errorf("%s: %w", t.RoutingKey, err))
				m.log.Error().Err(err).Str("routing_key", t.RoutingKey).Msg("migración de tenant fallida")
				continue
			}
			report.Migrated = append(report.Migrated, t.RoutingKey)
		}
		if len(list) < migrateBatch {
			return report, errs
		}
	}
}
