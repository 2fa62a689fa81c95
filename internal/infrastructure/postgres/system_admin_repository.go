package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Intellisales-api/internal/domain"
	"github.com/jhoicas/Intellisales-api/internal/domain/entity"
	"github.com/jhoicas/Intellisales-api/internal/domain/repository"
)

var _ repository.SystemAdminRepository = (*SystemAdminRepo)(nil)

const systemAdminColumns = `id, username, email, password_hash, full_name, is_active, created_at, updated_at`

// SystemAdminRepo implementación del puerto SystemAdminRepository sobre la base de metadatos.
type SystemAdminRepo struct {
	q Querier
}

// NewSystemAdminRepository construye el adaptador.
func NewSystemAdminRepository(q Querier) *SystemAdminRepo {
	return &SystemAdminRepo{q: q}
}

// Create persiste un administrador. Username o email repetidos devuelven domain.ErrDuplicate.
func (r *SystemAdminRepo) Create(ctx context.Context, a *entity.SystemAdmin) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO system_admins (`+systemAdminColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, a.Username, a.Email, a.PasswordHash, a.FullName, a.IsActive, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: username o email de administrador en uso", domain.ErrDuplicate)
		}
		return fmt.Errorf("insert system admin: %w", err)
	}
	return nil
}

// FindByUsernameOrEmail busca sin distinguir mayúsculas.
func (r *SystemAdminRepo) FindByUsernameOrEmail(ctx context.Context, v string) (*entity.SystemAdmin, error) {
	a, err := scanSystemAdmin(r.q.QueryRow(ctx, `
		SELECT `+systemAdminColumns+`
		FROM system_admins
		WHERE lower(username) = lower($1) OR lower(email) = lower($1)
		LIMIT 1`, v))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get system admin: %w", err)
	}
	return a, nil
}

// List devuelve todos los administradores por antigüedad.
func (r *SystemAdminRepo) List(ctx context.Context) ([]*entity.SystemAdmin, error) {
	rows, err := r.q.Query(ctx, `SELECT `+systemAdminColumns+` FROM system_admins ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list system admins: %w", err)
	}
	defer rows.Close()

	var list []*entity.SystemAdmin
	for rows.Next() {
		a, err := scanSystemAdmin(rows)
		if err != nil {
			return nil, fmt.Errorf("scan system admin: %w", err)
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

func scanSystemAdmin(row pgx.Row) (*entity.SystemAdmin, error) {
	var a entity.SystemAdmin
	if err := row.Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.FullName, &a.IsActive, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}
