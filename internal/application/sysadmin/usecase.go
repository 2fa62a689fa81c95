// Package sysadmin administra la plataforma: login de administradores del sistema y
// operaciones sobre tenants que no dependen de ningún tenant en particular.
package sysadmin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Intellisales-api/internal/application/auth"
	"github.com/jhoicas/Intellisales-api/internal/application/dto"
	"github.com/jhoicas/Intellisales-api/internal/application/tenancy"
	"github.com/jhoicas/Intellisales-api/internal/domain"
	"github.com/jhoicas/Intellisales-api/internal/domain/entity"
	"github.com/jhoicas/Intellisales-api/internal/domain/repository"
	"github.com/jhoicas/Intellisales-api/pkg/jwt"
)

// TenantOperator operaciones de operador sobre tenants. La implementa *tenancy.Maintenance.
type TenantOperator interface {
	Find(ctx context.Context, ref string) (*entity.Tenant, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Tenant, error)
	Delete(ctx context.Context, ref string, dropDatabase bool) (*entity.Tenant, error)
}

var _ TenantOperator = (*tenancy.Maintenance)(nil)

// UseCase casos de uso del administrador del sistema.
type UseCase struct {
	admins  repository.SystemAdminRepository
	tenants TenantOperator
	hasher  tenancy.PasswordHasher
	jwtCfg  auth.JWTConfig
	log     zerolog.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(admins repository.SystemAdminRepository, tenants TenantOperator, hasher tenancy.PasswordHasher, jwtCfg auth.JWTConfig, log zerolog.Logger) *UseCase {
	return &UseCase{admins: admins, tenants: tenants, hasher: hasher, jwtCfg: jwtCfg, log: log}
}

// Login verifica credenciales contra la base de metadatos y emite un token sin tenant.
// Administrador inexistente y contraseña incorrecta devuelven el mismo error.
func (uc *UseCase) Login(ctx context.Context, in dto.AdminLoginRequest) (*dto.AdminLoginResponse, error) {
	a, err := uc.admins.FindByUsernameOrEmail(ctx, strings.TrimSpace(in.Username))
	if err != nil {
		return nil, fmt.Errorf("%w: buscar administrador: %w", domain.ErrUnavailable, err)
	}
	if a == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := uc.hasher.Verify(a.PasswordHash, in.Password); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if !a.IsActive {
		return nil, domain.ErrForbidden
	}
	token, err := jwt.GenerateSystemAdmin(uc.jwtCfg.Secret, a.ID, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("admin_id", a.ID).Msg("login de administrador")
	return &dto.AdminLoginResponse{Token: token, Admin: dto.FromSystemAdmin(a)}, nil
}

// Create registra un administrador activo.
func (uc *UseCase) Create(ctx context.Context, in dto.CreateSystemAdminRequest) (*dto.SystemAdminResponse, error) {
	hash, err := uc.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash de contraseña: %w", err)
	}
	now := time.Now().UTC()
	a := &entity.SystemAdmin{
		ID:           uuid.NewString(),
		Username:     strings.TrimSpace(in.Username),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: hash,
		FullName:     strings.TrimSpace(in.FullName),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.admins.Create(ctx, a); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: crear administrador: %w", domain.ErrUnavailable, err)
	}
	uc.log.Info().Str("admin_id", a.ID).Str("username", a.Username).Msg("administrador creado")
	out := dto.FromSystemAdmin(a)
	return &out, nil
}

// ListAdmins devuelve los administradores registrados.
func (uc *UseCase) ListAdmins(ctx context.Context) ([]dto.SystemAdminResponse, error) {
	list, err := uc.admins.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: listar administradores: %w", domain.ErrUnavailable, err)
	}
	out := make([]dto.SystemAdminResponse, 0, len(list))
	for _, a := range list {
		out = append(out, dto.FromSystemAdmin(a))
	}
	return out, nil
}

// ListTenants página de tenants activos.
func (uc *UseCase) ListTenants(ctx context.Context, page dto.PageRequest) (*dto.TenantListResponse, error) {
	page.DefaultPage()
	list, err := uc.tenants.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.TenantResponse, 0, len(list))
	for _, t := range list {
		items = append(items, dto.FromTenant(t))
	}
	return &dto.TenantListResponse{Items: items, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}}, nil
}

// GetTenant busca un tenant por ID o identificador público.
func (uc *UseCase) GetTenant(ctx context.Context, ref string) (*dto.TenantResponse, error) {
	t, err := uc.tenants.Find(ctx, ref)
	if err != nil {
		return nil, err
	}
	out := dto.FromTenant(t)
	return &out, nil
}

// DeleteTenant elimina lógicamente el tenant. La base física solo se borra desde el CLI.
func (uc *UseCase) DeleteTenant(ctx context.Context, adminID, ref string) (*dto.TenantResponse, error) {
	t, err := uc.tenants.Delete(ctx, ref, false)
	if err != nil {
		return nil, err
	}
	uc.log.Warn().Str("admin_id", adminID).Str("tenant_id", t.ID).Msg("tenant eliminado por administrador")
	out := dto.FromTenant(t)
	return &out, nil
}
