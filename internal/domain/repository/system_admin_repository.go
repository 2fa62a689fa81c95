package repository

import (
	"context"

	"github.com/jhoicas/Intellisales-api/internal/domain/entity"
)

// SystemAdminRepository puerto de persistencia para administradores del sistema (base de metadatos).
type SystemAdminRepository interface {
	Create(ctx context.Context, admin *entity.SystemAdmin) error
	FindByUsernameOrEmail(ctx context.Context, usernameOrEmail string) (*entity.SystemAdmin, error)
	List(ctx context.Context) ([]*entity.SystemAdmin, error)
}
