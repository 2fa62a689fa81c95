package tenancy

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.uber.org/multierr"

	"github.com/jhoicas/Intellisales-api/internal/domain"
	"github.com/jhoicas/Intellisales-api/internal/domain/entity"
	"github.com/jhoicas/Intellisales-api/internal/domain/repository"
	"github.com/jhoicas/Intellisales-api/internal/domain/tenant"
	"github.com/jhoicas/Intellisales-api/pkg/logger"
)

const compensationTimeout = 30 * time.Second

// AdminSeed credenciales del primer administrador de un tenant.
type AdminSeed struct {
	Username string
	Email    string
	FullName string
	Password string // texto plano
}

// ProvisionResult identidad pública del tenant recién creado y su administrador.
type ProvisionResult struct {
	Tenant *entity.Tenant
	Admin  *entity.User
}

// Provisioner orquesta el alta de un tenant:
// unicidad -> routing key -> fila pending -> base física -> esquema -> rol y usuario admin -> active.
// Si falla cualquier paso posterior a la fila, compensa: elimina la base y deja la fila en failed.
type Provisioner struct {
	repo      repository.TenantRepository
	databases TenantDatabases
	migrator  SchemaMigrator
	runner    TenantTxRunner
	hasher    PasswordHasher
	cache     TenantCache
	log       zerolog.Logger

	now   func() time.Time
	newID func() string
}

// NewProvisioner construye el flujo de aprovisionamiento.
func NewProvisioner(
	repo repository.TenantRepository,
	databases TenantDatabases,
	migrator SchemaMigrator,
	runner TenantTxRunner,
	hasher PasswordHasher,
	cache TenantCache,
	log zerolog.Logger,
) *Provisioner {
	if cache == nil {
		cache = NopCache{}
	}
	return &Provisioner{
		repo:      repo,
		databases: databases,
		migrator:  migrator,
		runner:    runner,
		hasher:    hasher,
		cache:     cache,
		log:       log,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Provision registra un negocio nuevo y deja su base lista para atender peticiones.
func (p *Provisioner) Provision(ctx context.Context, facts entity.BusinessFacts) (*ProvisionResult, error) {
	facts = normalizeFacts(facts)
	if facts.BusinessName == "" || facts.Email == "" || facts.AdminPassword == "" {
		return nil, fmt.Errorf("%w: nombre, email y contraseña son requeridos", domain.ErrInvalidInput)
	}

	id := p.newID()
	key, err := tenant.DeriveRoutingKey(facts.BusinessName, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}

	exists, err := p.repo.ExistsActive(ctx, facts.Email, facts.Domain, key)
	if err != nil {
		return nil, unavailable("verificar unicidad", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: ya existe un tenant activo con ese email o dominio", domain.ErrConflict)
	}

	now := p.now()
	t := &entity.Tenant{
		ID:           id,
		RoutingKey:   key,
		BusinessName: facts.BusinessName,
		Email:        facts.Email,
		Phone:        facts.Phone,
		Logo:         facts.Logo,
		Currency:     facts.Currency,
		Domain:       facts.Domain,
		Status:       entity.TenantStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := p.repo.Create(ctx, t); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, err
		}
		return nil, unavailable("insertar tenant", err)
	}
	log := logger.Tenant(p.log, t.ID, key)
	log.Info().Msg("tenant registrado en metadatos, aprovisionando base")

	admin, err := p.build(ctx, t, facts)
	if err != nil {
		return nil, p.compensate(ctx, t, err)
	}
	if err := p.repo.UpdateStatus(ctx, t.ID, entity.TenantStatusActive); err != nil {
		return nil, p.compensate(ctx, t, unavailable("activar tenant", err))
	}
	t.Status = entity.TenantStatusActive
	t.UpdatedAt = p.now()

	p.cache.Invalidate(ctx, t.ID)
	p.cache.Store(ctx, t)
	provisions.WithLabelValues("success").Inc()
	log.Info().Str("admin_id", admin.ID).Msg("tenant aprovisionado")

	return &ProvisionResult{Tenant: t, Admin: admin}, nil
}

func (p *Provisioner) build(ctx context.Context, t *entity.Tenant, facts entity.BusinessFacts) (*entity.User, error) {
	if err := p.databases.Create(ctx, t.RoutingKey); err != nil {
		return nil, fmt.Errorf("crear base: %w", err)
	}
	if err := p.migrator.MigrateTenant(ctx, t.RoutingKey); err != nil {
		return nil, fmt.Errorf("migrar esquema: %w", err)
	}
	admin, err := p.SeedAdmin(ctx, t.RoutingKey, AdminSeed{
		Username: facts.AdminUsername,
		Email:    facts.Email,
		FullName: facts.AdminName,
		Password: facts.AdminPassword,
	})
	if err != nil {
		return nil, fmt.Errorf("sembrar administrador: %w", err)
	}
	return admin, nil
}

// SeedAdmin siembra el catálogo de permisos, el rol admin y el usuario administrador.
// Es idempotente: si el rol o el usuario ya existen se reutilizan.
func (p *Provisioner) SeedAdmin(ctx context.Context, routingKey string, seed AdminSeed) (*entity.User, error) {
	seed.Email = strings.ToLower(strings.TrimSpace(seed.Email))
	if seed.Username == "" {
		seed.Username = usernameFromEmail(seed.Email)
	}
	if seed.FullName == "" {
		seed.FullName = seed.Username
	}
	hash, err := p.hasher.Hash(seed.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	names := make([]string, 0, len(entity.PermissionCatalog))
	for _, perm := range entity.PermissionCatalog {
		names = append(names, perm.Name)
	}

	var admin *entity.User
	err = p.runner.RunTenant(ctx, routingKey, func(repos repository.TenantRepos) error {
		if err := repos.Permissions.Upsert(ctx, entity.PermissionCatalog); err != nil {
			return err
		}
		role, err := repos.Roles.GetByName(ctx, entity.RoleAdmin)
		if err != nil {
			return err
		}
		if role == nil {
			role, err = repos.Roles.Create(ctx, &entity.Role{
				ID:          p.newID(),
				Name:        entity.RoleAdmin,
				Description: "Administrador del negocio",
				CreatedAt:   p.now(),
			})
			if err != nil {
				return err
			}
		}
		if err := repos.Roles.GrantAll(ctx, role.ID, names); err != nil {
			return err
		}

		user, err := repos.Users.FindByUsernameOrEmail(ctx, seed.Email)
		if err != nil {
			return err
		}
		if user == nil {
			now := p.now()
			user = &entity.User{
				ID:           p.newID(),
				Username:     seed.Username,
				Email:        seed.Email,
				PasswordHash: hash,
				FullName:     seed.FullName,
				IsActive:     true,
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			if err := repos.Users.Create(ctx, user); err != nil {
				return err
			}
		}
		if err := repos.Users.AssignRole(ctx, user.ID, role.ID); err != nil {
			return err
		}
		user.Roles = []entity.Role{*role}
		admin = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return admin, nil
}

// compensate deshace lo que se pueda tras un fallo posterior a la inserción de la fila.
// Usa un contexto propio: el de la petición puede estar ya cancelado.
func (p *Provisioner) compensate(ctx context.Context, t *entity.Tenant, cause error) error {
	provisions.WithLabelValues("failed").Inc()
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
	defer cancel()

	var errs error
	if err := p.databases.Drop(cctx, t.RoutingKey); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("eliminar base: %w", err))
	}
	if err := p.repo.MarkFailed(cctx, t.ID); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("marcar tenant failed: %w", err))
	}
	p.cache.Invalidate(cctx, t.ID)

	cause = fmt.Errorf("aprovisionar tenant %s: %w", t.RoutingKey, cause)
	if errs != nil {
		p.log.Error().Err(errs).AnErr("cause", cause).Str("tenant_id", t.ID).Msg("compensación incompleta")
		return multierr.Combine(cause, fmt.Errorf("%w: compensación incompleta: %w", domain.ErrInconsistent, errs))
	}
	p.log.Warn().Err(cause).Str("tenant_id", t.ID).Msg("aprovisionamiento revertido")
	return cause
}

func normalizeFacts(f entity.BusinessFacts) entity.BusinessFacts {
	f.BusinessName = strings.TrimSpace(f.BusinessName)
	f.Email = strings.ToLower(strings.TrimSpace(f.Email))
	f.Domain = strings.ToLower(strings.TrimSuffix(strings.TrimSpace(f.Domain), "."))
	f.Currency = strings.ToUpper(strings.TrimSpace(f.Currency))
	if f.Currency == "" {
		f.Currency = entity.DefaultCurrency
	}
	f.AdminUsername = strings.TrimSpace(f.AdminUsername)
	return f
}

func usernameFromEmail(email string) string {
	if i := strings.IndexByte(email, '@'); i > 0 {
		return email[:i]
	}
	return email
}
