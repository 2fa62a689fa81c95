package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Intellisales-api/internal/application/dto"
	"github.com/jhoicas/Intellisales-api/internal/domain"
)

// errorMapping traducción de un error de dominio a respuesta HTTP.
type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// El orden importa: los errores de tenancy van primero porque un mismo error
// puede envolver varias causas (p. ej. ErrUnavailable junto a un error del driver).
var errorMappings = []errorMapping{
	{domain.ErrTenantNotFound, fiber.StatusUnauthorized, "TENANT_NOT_FOUND", "no se pudo identificar el tenant"},
	{domain.ErrInconsistent, fiber.StatusInternalServerError, "TENANT_INCONSISTENT", "el tenant no tiene una base de datos utilizable"},
	{domain.ErrUnavailable, fiber.StatusServiceUnavailable, "UNAVAILABLE", "servicio temporalmente no disponible"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT", "ya existe un negocio con ese email o dominio"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE", "el recurso ya existe"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION", "entrada inválida"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED", "credenciales inválidas"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN", "acceso denegado"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND", "recurso no encontrado"},
}

// StatusFor devuelve el status y el código de error para err.
func StatusFor(err error) (int, string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.status, m.code
		}
	}
	return fiber.StatusInternalServerError, "INTERNAL"
}

// writeError responde con dto.ErrorResponse. Los errores no clasificados no exponen su causa.
func writeError(c *fiber.Ctx, err error) error {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: m.message})
		}
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}
