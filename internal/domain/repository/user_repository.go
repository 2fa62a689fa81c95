package repository

import (
	"context"

	"github.com/jhoicas/Intellisales-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User dentro de la base de un tenant.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	// FindByUsernameOrEmail devuelve el usuario con sus roles cargados.
	FindByUsernameOrEmail(ctx context.Context, usernameOrEmail string) (*entity.User, error)
	AssignRole(ctx context.Context, userID, roleID string) error
}
