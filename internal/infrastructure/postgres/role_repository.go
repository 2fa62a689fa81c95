package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/Intellisales-api/internal/domain/entity"
	"github.com/jhoicas/Intellisales-api/internal/domain/repository"
)

var (
	_ repository.RoleRepository       = (*RoleRepo)(nil)
	_ repository.PermissionRepository = (*PermissionRepo)(nil)
)

// RoleRepo implementación del puerto RoleRepository sobre la base de un tenant.
type RoleRepo struct {
	q Querier
}

// NewRoleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewRoleRepository(q Querier) *RoleRepo {
	return &RoleRepo{q: q}
}

// GetByName obtiene un rol por nombre.
func (r *RoleRepo) GetByName(ctx context.Context, name string) (*entity.Role, error) {
	var ro entity.Role
	err := r.q.QueryRow(ctx,
		`SELECT id, name, description, created_at FROM roles WHERE name = $1`, name,
	).Scan(&ro.ID, &ro.Name, &ro.Description, &ro.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get role: %w", err)
	}
	return &ro, nil
}

// Create inserta el rol o, si ya existe uno con ese nombre, devuelve el existente.
func (r *RoleRepo) Create(ctx context.Context, role *entity.Role) (*entity.Role, error) {
	_, err := r.q.Exec(ctx, `
		INSERT INTO roles (id, name, description, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO NOTHING`,
		role.ID, role.Name, role.Description, role.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert role: %w", err)
	}
	existing, err := r.GetByName(ctx, role.Name)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("insert role: %s no visible tras insertar", role.Name)
	}
	return existing, nil
}

// GrantAll concede al rol los permisos nombrados que aún no tenga.
func (r *RoleRepo) GrantAll(ctx context.Context, roleID string, permissionNames []string) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO role_permissions (role_id, permission_id)
		SELECT $1::uuid, p.id FROM permissions p WHERE p.name = ANY($2)
		ON CONFLICT DO NOTHING`, roleID, permissionNames)
	if err != nil {
		return fmt.Errorf("grant permissions: %w", err)
	}
	return nil
}

// PermissionRepo implementación del puerto PermissionRepository sobre la base de un tenant.
type PermissionRepo struct {
	q Querier
}

// NewPermissionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPermissionRepository(q Querier) *PermissionRepo {
	return &PermissionRepo{q: q}
}

// Upsert inserta los permisos que falten. Los existentes (por nombre) no se tocan.
func (r *PermissionRepo) Upsert(ctx context.Context, permissions []entity.Permission) error {
	query := `
		INSERT INTO permissions (id, name, description, module, action)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (name) DO NOTHING`
	for _, p := range permissions {
		id := p.ID
		if id == "" {
			id = uuid.NewString()
		}
		if _, err := r.q.Exec(ctx, query, id, p.Name, p.Description, p.Module, p.Action); err != nil {
			return fmt.Errorf("upsert permission %s: %w", p.Name, err)
		}
	}
	return nil
}
