package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Intellisales-api/internal/application/dto"
	"github.com/jhoicas/Intellisales-api/internal/domain"
)

// SystemAdminUseCase operaciones del administrador del sistema.
type SystemAdminUseCase interface {
	Login(ctx context.Context, in dto.AdminLoginRequest) (*dto.AdminLoginResponse, error)
	ListAdmins(ctx context.Context) ([]dto.SystemAdminResponse, error)
	ListTenants(ctx context.Context, page dto.PageRequest) (*dto.TenantListResponse, error)
	GetTenant(ctx context.Context, ref string) (*dto.TenantResponse, error)
	DeleteTenant(ctx context.Context, adminID, ref string) (*dto.TenantResponse, error)
}

// AdminHandler rutas de administración de la plataforma. No pasan por la resolución de tenant.
type AdminHandler struct {
	uc SystemAdminUseCase
}

// NewAdminHandler construye el handler.
func NewAdminHandler(uc SystemAdminUseCase) *AdminHandler {
	return &AdminHandler{uc: uc}
}

// Login godoc
// @Summary      Iniciar sesión como administrador del sistema
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdminLoginRequest  true  "username, password"
// @Success      200   {object}  dto.AdminLoginResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/admin/login [post]
func (h *AdminHandler) Login(c *fiber.Ctx) error {
	var in dto.AdminLoginRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.Login(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ListAdmins GET /api/admin/system-admins
func (h *AdminHandler) ListAdmins(c *fiber.Ctx) error {
	out, err := h.uc.ListAdmins(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ListTenants GET /api/admin/tenants?limit=20&offset=0
func (h *AdminHandler) ListTenants(c *fiber.Ctx) error {
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	out, err := h.uc.ListTenants(c.UserContext(), page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetTenant GET /api/admin/tenants/:id
func (h *AdminHandler) GetTenant(c *fiber.Ctx) error {
	out, err := h.uc.GetTenant(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.tenantError(c, err)
	}
	return c.JSON(out)
}

// DeleteTenant DELETE /api/admin/tenants/:id
func (h *AdminHandler) DeleteTenant(c *fiber.Ctx) error {
	out, err := h.uc.DeleteTenant(c.UserContext(), GetUserID(c), c.Params("id"))
	if err != nil {
		return h.tenantError(c, err)
	}
	return c.JSON(out)
}

// tenantError aquí el tenant es el recurso pedido, no el contexto de la petición: 404 en vez de 401.
func (h *AdminHandler) tenantError(c *fiber.Ctx, err error) error {
	if errors.Is(err, domain.ErrTenantNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "tenant no encontrado"})
	}
	return writeError(c, err)
}
