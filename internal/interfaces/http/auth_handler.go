package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Intellisales-api/internal/application/dto"
)

// LoginUseCase login de usuarios de un tenant.
type LoginUseCase interface {
	TenantLogin(ctx context.Context, in dto.TenantLoginRequest) (*dto.LoginResponse, error)
	DomainLogin(ctx context.Context, host string, systemHost bool, in dto.DomainLoginRequest) (*dto.LoginResponse, error)
}

// AuthHandler maneja el login por tenant y por dominio.
type AuthHandler struct {
	uc           LoginUseCase
	isSystemHost func(host string) bool
}

// NewAuthHandler construye el handler de auth.
func NewAuthHandler(uc LoginUseCase, isSystemHost func(host string) bool) *AuthHandler {
	if isSystemHost == nil {
		isSystemHost = func(string) bool { return false }
	}
	return &AuthHandler{uc: uc, isSystemHost: isSystemHost}
}

// TenantLogin godoc
// @Summary      Iniciar sesión indicando el tenant
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TenantLoginRequest  true  "tenant, username, password"
// @Success      200   {object}  dto.LoginResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/auth/tenant-login [post]
func (h *AuthHandler) TenantLogin(c *fiber.Ctx) error {
	var in dto.TenantLoginRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.TenantLogin(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// DomainLogin godoc
// @Summary      Iniciar sesión en el tenant del host
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.DomainLoginRequest  true  "username, password"
// @Success      200   {object}  dto.LoginResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/auth/domain-login [post]
func (h *AuthHandler) DomainLogin(c *fiber.Ctx) error {
	var in dto.DomainLoginRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	host := c.Hostname()
	out, err := h.uc.DomainLogin(c.UserContext(), host, h.isSystemHost(host), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
