package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Intellisales-api/internal/application/dto"
	"github.com/jhoicas/Intellisales-api/internal/application/tenancy"
	"github.com/jhoicas/Intellisales-api/internal/domain"
	"github.com/jhoicas/Intellisales-api/internal/domain/entity"
	"github.com/jhoicas/Intellisales-api/internal/domain/repository"
	"github.com/jhoicas/Intellisales-api/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// TenantResolver resuelve el tenant de una petición.
type TenantResolver interface {
	Resolve(ctx context.Context, req tenancy.Request) (*tenancy.Resolution, error)
}

// AuthUseCase login de usuarios de un tenant. El token emitido nombra al tenant solo por su ID.
type AuthUseCase struct {
	resolver TenantResolver
	runner   tenancy.TenantTxRunner
	hasher   tenancy.PasswordHasher
	jwtCfg   JWTConfig
	log      zerolog.Logger
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(resolver TenantResolver, runner tenancy.TenantTxRunner, hasher tenancy.PasswordHasher, jwtCfg JWTConfig, log zerolog.Logger) *AuthUseCase {
	return &AuthUseCase{resolver: resolver, runner: runner, hasher: hasher, jwtCfg: jwtCfg, log: log}
}

// TenantLogin inicia sesión con el tenant indicado explícitamente en el cuerpo.
func (uc *AuthUseCase) TenantLogin(ctx context.Context, in dto.TenantLoginRequest) (*dto.LoginResponse, error) {
	res, err := uc.resolver.Resolve(ctx, tenancy.Request{Identifier: in.Tenant, Sensitive: true})
	if err != nil {
		return nil, err
	}
	return uc.login(ctx, res.Tenant, in.Username, in.Password)
}

// DomainLogin inicia sesión en el tenant al que apunta el host de la petición.
func (uc *AuthUseCase) DomainLogin(ctx context.Context, host string, systemHost bool, in dto.DomainLoginRequest) (*dto.LoginResponse, error) {
	res, err := uc.resolver.Resolve(ctx, tenancy.Request{Host: host, SystemHost: systemHost, Sensitive: true})
	if err != nil {
		return nil, err
	}
	return uc.login(ctx, res.Tenant, in.Username, in.Password)
}

// login verifica credenciales dentro de la base del tenant y emite el JWT.
// Usuario inexistente y contraseña incorrecta devuelven el mismo error.
func (uc *AuthUseCase) login(ctx context.Context, t *entity.Tenant, username, password string) (*dto.LoginResponse, error) {
	var user *entity.User
	err := uc.runner.RunTenant(ctx, t.RoutingKey, func(repos repository.TenantRepos) error {
		u, err := repos.Users.FindByUsernameOrEmail(ctx, username)
		if err != nil {
			return err
		}
		user = u
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrInconsistent) || errors.Is(err, domain.ErrUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: buscar usuario: %w", domain.ErrUnavailable, err)
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := uc.hasher.Verify(user.PasswordHash, password); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if !user.IsActive {
		return nil, domain.ErrForbidden
	}

	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, t.ID, user.PrimaryRole(), uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("tenant_id", t.ID).Str("user_id", user.ID).Msg("login")
	return &dto.LoginResponse{
		Token:  token,
		User:   dto.FromUser(user),
		Tenant: dto.FromTenant(t),
	}, nil
}
