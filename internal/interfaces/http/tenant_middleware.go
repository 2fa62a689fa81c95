package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Intellisales-api/internal/application/dto"
	"github.com/jhoicas/Intellisales-api/internal/application/tenancy"
	"github.com/jhoicas/Intellisales-api/internal/domain/entity"
	"github.com/jhoicas/Intellisales-api/pkg/jwt"
)

// LocalTenant key del tenant resuelto en c.Locals.
const LocalTenant = "tenant"

// TenantResolver lo que la capa HTTP necesita del resolver de tenants.
type TenantResolver interface {
	Resolve(ctx context.Context, req tenancy.Request) (*tenancy.Resolution, error)
	IsSystemHost(host string) bool
}

// TenantMiddlewareConfig parámetros del middleware de tenant.
type TenantMiddlewareConfig struct {
	JWTSecret string
	Header    string // header con el identificador explícito (X-Tenant-ID por defecto)
	Log       zerolog.Logger
}

// TenantMiddleware resuelve el tenant de la petición y lo deja en c.Locals.
// El Bearer token es opcional, pero si viene debe ser válido: su tenant_id manda sobre host y header.
func TenantMiddleware(resolver TenantResolver, cfg TenantMiddlewareConfig) fiber.Handler {
	header := cfg.Header
	if header == "" {
		header = "X-Tenant-ID"
	}
	return func(c *fiber.Ctx) error {
		req := tenancy.Request{
			Host:       c.Hostname(),
			Identifier: c.Get(header),
			Sensitive:  isMutating(c.Method()),
		}
		req.SystemHost = resolver.IsSystemHost(req.Host)

		if authHeader := c.Get(fiber.HeaderAuthorization); authHeader != "" {
			tokenString, ok := bearerToken(authHeader)
			if !ok || tokenString == "" {
				return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
			}
			claims, err := jwt.Parse(cfg.JWTSecret, tokenString)
			if err != nil {
				return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
			}
			setClaims(c, claims)
			req.ClaimTenantID = claims.TenantID
		}

		res, err := resolver.Resolve(c.UserContext(), req)
		if err != nil {
			cfg.Log.Debug().Err(err).Str("host", req.Host).Str("path", c.Path()).Msg("tenant no resuelto")
			return writeError(c, err)
		}
		c.Locals(LocalTenant, res.Tenant)
		c.Set("X-Tenant-Source", string(res.Source))
		return c.Next()
	}
}

// GetTenant devuelve el tenant resuelto (después de TenantMiddleware).
func GetTenant(c *fiber.Ctx) *entity.Tenant {
	t, _ := c.Locals(LocalTenant).(*entity.Tenant)
	return t
}

func isMutating(method string) bool {
	switch method {
	case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions:
		return false
	}
	return true
}
