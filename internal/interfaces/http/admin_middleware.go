package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Intellisales-api/internal/application/dto"
	"github.com/jhoicas/Intellisales-api/pkg/jwt"
)

// RequireSystemAdmin valida un token de administrador del sistema. Los tokens de usuario de
// tenant se rechazan aunque tengan rol admin; el token de sistema no lleva tenant.
func RequireSystemAdmin(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"})
		}
		tokenString, ok := bearerToken(authHeader)
		if !ok || tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		claims, err := jwt.ParseSystemAdmin(jwtSecret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token de administrador inválido o expirado"})
		}
		setClaims(c, claims)
		return c.Next()
	}
}
