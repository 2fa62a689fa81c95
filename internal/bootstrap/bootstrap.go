// Package bootstrap arma el grafo de dependencias compartido por el servidor HTTP y el CLI.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/multierr"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Intellisales-api/internal/application/tenancy"
	"github.com/jhoicas/Intellisales-api/internal/infrastructure/cache"
	"github.com/jhoicas/Intellisales-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Intellisales-api/pkg/config"
	"github.com/jhoicas/Intellisales-api/pkg/logger"
	"github.com/jhoicas/Intellisales-api/pkg/password"
)

// Container componentes de tenancy listos para usar.
type Container struct {
	Pool        *pgxpool.Pool // base de metadatos
	Maintenance *sql.DB       // base de mantenimiento (CREATE/DROP DATABASE)
	Redis       *redis.Client // nil si el caché está desactivado

	Tenants     *postgres.TenantRepo
	Admins      *postgres.SystemAdminRepo
	Cache       tenancy.TenantCache
	Registry    *postgres.Registry
	Admin       *postgres.DatabaseAdmin
	Migrator    *postgres.Migrator
	Runner      *postgres.TxRunner
	Hasher      *password.Bcrypt
	Resolver    *tenancy.Resolver
	Provisioner *tenancy.Provisioner
	TenantOps   *tenancy.Maintenance
}

// New conecta con metadatos (con reintentos), aplica el esquema maestro y construye
// registro, caché, resolver y aprovisionador.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Container, error) {
	c := &Container{}

	err := retry.Do(func() error {
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return err
		}
		c.Pool = pool
		return nil
	},
		retry.Context(ctx),
		retry.Attempts(5),
		retry.Delay(time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Warn().Err(err).Uint("intento", n+1).Msg("PostgreSQL no disponible, reintentando")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}

	c.Maintenance, err = postgres.OpenMaintenanceDB(ctx, cfg.DB)
	if err != nil {
		c.Close()
		return nil, err
	}

	c.Registry = postgres.NewRegistry(
		postgres.NewTenantPoolOpener(cfg.DB, cfg.Tenancy),
		cfg.Tenancy.ConnectTimeout,
		log.Component("registry"),
	)
	c.Migrator = postgres.NewMigrator(c.Registry, log.Component("migrator"))
	if err := c.Migrator.MigrateMaster(ctx, c.Pool); err != nil {
		c.Close()
		return nil, err
	}

	c.Cache = tenancy.NopCache{}
	if cfg.Redis.Enabled() {
		client, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			// El caché es opcional: sin Redis todo se resuelve contra metadatos.
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis no disponible, caché de tenants desactivado")
		} else {
			c.Redis = client
			c.Cache = cache.NewTenantCache(client, cfg.Tenancy.CacheTTL, cfg.Tenancy.CacheTimeout, log.Component("tenant_cache"))
		}
	}

	c.Tenants = postgres.NewTenantRepository(c.Pool)
	c.Admins = postgres.NewSystemAdminRepository(c.Pool)
	c.Admin = postgres.NewDatabaseAdmin(c.Maintenance, cfg.Tenancy.DatabasePrefix, c.Registry, log.Component("db_admin"))
	c.Runner = postgres.NewTxRunner(c.Registry)
	c.Hasher = password.NewBcrypt(bcrypt.DefaultCost)
	c.Resolver = tenancy.NewResolver(c.Tenants, c.Cache, tenancy.ResolverConfig{
		DevMode:     cfg.Tenancy.DevMode,
		Timeout:     cfg.Tenancy.ResolveTimeout,
		SystemHosts: cfg.Tenancy.SystemHosts,
	}, log.Component("resolver"))
	c.Provisioner = tenancy.NewProvisioner(c.Tenants, c.Admin, c.Migrator, c.Runner, c.Hasher, c.Cache, log.Component("provisioner"))
	c.TenantOps = tenancy.NewMaintenance(c.Tenants, c.Admin, c.Migrator, c.Cache, c.Registry, log.Component("maintenance"))
	return c, nil
}

// Close libera pools y clientes. Es seguro llamarlo con el contenedor a medio construir.
func (c *Container) Close() error {
	var err error
	if c.Registry != nil {
		c.Registry.Close()
	}
	if c.Redis != nil {
		err = multierr.Append(err, c.Redis.Close())
	}
	if c.Maintenance != nil {
		err = multierr.Append(err, c.Maintenance.Close())
	}
	if c.Pool != nil {
		c.Pool.Close()
	}
	return err
}
