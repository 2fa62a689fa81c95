package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Intellisales-api/internal/application/dto"
	"github.com/jhoicas/Intellisales-api/internal/application/tenancy"
	"github.com/jhoicas/Intellisales-api/internal/domain/entity"
)

// TenantProvisioner alta de negocios nuevos.
type TenantProvisioner interface {
	Provision(ctx context.Context, facts entity.BusinessFacts) (*tenancy.ProvisionResult, error)
}

// TenantHandler registro de negocios y consulta del tenant actual.
type TenantHandler struct {
	provisioner TenantProvisioner
	log         zerolog.Logger
}

// NewTenantHandler construye el handler.
func NewTenantHandler(provisioner TenantProvisioner, log zerolog.Logger) *TenantHandler {
	return &TenantHandler{provisioner: provisioner, log: log}
}

// Register godoc
// @Summary      Registrar negocio
// @Description  Crea el tenant, su base de datos aislada y el usuario administrador.
// @Tags         tenants
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterTenantRequest  true  "Datos del negocio y del administrador"
// @Success      201   {object}  dto.RegisterTenantResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/tenants/register [post]
func (h *TenantHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterTenantRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	res, err := h.provisioner.Provision(c.UserContext(), entity.BusinessFacts{
		BusinessName:  in.BusinessName,
		Email:         in.Email,
		Phone:         in.PhoneNumber,
		Currency:      in.Currency,
		Domain:        in.Domain,
		Logo:          in.Logo,
		AdminUsername: in.AdminUsername,
		AdminName:     in.AdminName,
		AdminPassword: in.AdminPassword,
	})
	if err != nil {
		status, code := StatusFor(err)
		if status >= fiber.StatusInternalServerError {
			h.log.Error().Err(err).Str("code", code).Msg("registro de negocio fallido")
		}
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.RegisterTenantResponse{
		Tenant: dto.FromTenant(res.Tenant),
		Admin:  dto.FromUser(res.Admin),
	})
}

// Current godoc
// @Summary      Tenant actual
// @Description  Devuelve el tenant resuelto para la petición (token, host o X-Tenant-ID).
// @Tags         tenants
// @Produce      json
// @Param        X-Tenant-ID  header  string  false  "routing key, dominio, email o nombre del negocio"
// @Success      200  {object}  dto.TenantResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/tenant [get]
func (h *TenantHandler) Current(c *fiber.Ctx) error {
	t := GetTenant(c)
	if t == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "TENANT_NOT_FOUND", Message: "no se pudo identificar el tenant"})
	}
	return c.JSON(dto.FromTenant(t))
}
