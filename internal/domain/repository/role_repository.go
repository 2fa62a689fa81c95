package repository

import (
	"context"

	"github.com/jhoicas/Intellisales-api/internal/domain/entity"
)

// RoleRepository puerto de persistencia para roles de un tenant.
type RoleRepository interface {
	GetByName(ctx context.Context, name string) (*entity.Role, error)
	// Create inserta el rol; si ya existe uno con ese nombre devuelve el existente.
	Create(ctx context.Context, role *entity.Role) (*entity.Role, error)
	GrantAll(ctx context.Context, roleID string, permissionNames []string) error
}

// PermissionRepository puerto de persistencia para el catálogo de permisos de un tenant.
type PermissionRepository interface {
	// Upsert inserta los permisos que falten (idempotente por nombre).
	Upsert(ctx context.Context, permissions []entity.Permission) error
}
