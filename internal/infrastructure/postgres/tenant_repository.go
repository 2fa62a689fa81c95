package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Intellisales-api/internal/domain"
	"github.com/jhoicas/Intellisales-api/internal/domain/entity"
	"github.com/jhoicas/Intellisales-api/internal/domain/repository"
)

// Asegura que TenantRepo implementa repository.TenantRepository.
var _ repository.TenantRepository = (*TenantRepo)(nil)

const tenantColumns = `id, routing_key, business_name, email, phone_number, logo, currency, domain, status, created_at, updated_at, deleted_at`

// Consultas del camino de servicio: solo tenants vivos y activos. Un tenant pending o failed
// nunca tapa a uno activo que comparta dominio o etiqueta.
const (
	findByDomainQuery = `
		SELECT ` + tenantColumns + `
		FROM tenants
		WHERE deleted_at IS NULL AND status = 'active' AND domain <> ''
		  AND (lower(domain) = $1 OR lower(split_part(domain, '.', 1)) = $2)
		ORDER BY (lower(domain) = $1) DESC, created_at
		LIMIT 1`

	findByIdentifierQuery = `
		SELECT ` + tenantColumns + `
		FROM tenants
		WHERE deleted_at IS NULL AND status = 'active'
		  AND (routing_key = $1
		       OR (domain <> '' AND lower(domain) = $2)
		       OR lower(email) = $2
		       OR lower(business_name) = $2)
		ORDER BY CASE
		           WHEN routing_key = $1 THEN 0
		           WHEN domain <> '' AND lower(domain) = $2 THEN 1
		           WHEN lower(email) = $2 THEN 2
		           ELSE 3
		         END, created_at
		LIMIT 1`
)

// TenantRepo implementación del puerto TenantRepository sobre la base de metadatos.
type TenantRepo struct {
	q Querier
}

// NewTenantRepository construye el adaptador de persistencia para el registro de tenants.
func NewTenantRepository(q Querier) *TenantRepo {
	return &TenantRepo{q: q}
}

// Create persiste un nuevo tenant.
func (r *TenantRepo) Create(ctx context.Context, t *entity.Tenant) error {
	query := `
		INSERT INTO tenants (id, routing_key, business_name, email, phone_number, logo, currency, domain, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.RoutingKey, t.BusinessName, t.Email, t.Phone, t.Logo, t.Currency, t.Domain,
		t.Status, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: email, dominio o routing key en uso", domain.ErrConflict)
		}
		return fmt.Errorf("insert tenant: %w", err)
	}
	return nil
}

// GetByID obtiene un tenant por ID, incluso si está eliminado.
func (r *TenantRepo) GetByID(ctx context.Context, id string) (*entity.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE id = $1`
	return r.one(ctx, "get tenant", query, id)
}

// FindByDomain prefiere la coincidencia exacta del host sobre la de su primera etiqueta.
// Solo considera tenants activos.
func (r *TenantRepo) FindByDomain(ctx context.Context, host, label string) (*entity.Tenant, error) {
	return r.one(ctx, "get tenant by domain", findByDomainQuery, strings.ToLower(host), strings.ToLower(label))
}

// FindByIdentifier resuelve un identificador libre entre tenants activos: routing key, dominio,
// email o nombre del negocio.
func (r *TenantRepo) FindByIdentifier(ctx context.Context, identifier string) (*entity.Tenant, error) {
	id := strings.TrimSpace(identifier)
	return r.one(ctx, "get tenant by identifier", findByIdentifierQuery, id, strings.ToLower(id))
}

// FindEarliest devuelve el tenant activo más antiguo.
func (r *TenantRepo) FindEarliest(ctx context.Context) (*entity.Tenant, error) {
	query := `
		SELECT ` + tenantColumns + `
		FROM tenants
		WHERE deleted_at IS NULL AND status = 'active'
		ORDER BY created_at
		LIMIT 1`
	return r.one(ctx, "get earliest tenant", query)
}

// ExistsActive informa si algún tenant vivo usa el email, el dominio o la routing key.
func (r *TenantRepo) ExistsActive(ctx context.Context, email, dom, routingKey string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM tenants
			WHERE deleted_at IS NULL
			  AND (lower(email) = $1 OR ($2 <> '' AND lower(domain) = $2) OR routing_key = $3)
		)`
	var exists bool
	err := r.q.QueryRow(ctx, query, strings.ToLower(email), strings.ToLower(dom), routingKey).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check tenant exists: %w", err)
	}
	return exists, nil
}

// UpdateStatus cambia el estado del ciclo de vida.
func (r *TenantRepo) UpdateStatus(ctx context.Context, id, status string) error {
	tag, err := r.q.Exec(ctx, `UPDATE tenants SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update tenant status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTenantNotFound
	}
	return nil
}

// MarkFailed deja el tenant en failed y lo saca de las búsquedas, liberando email y dominio.
func (r *TenantRepo) MarkFailed(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE tenants
		SET status = 'failed', deleted_at = COALESCE(deleted_at, now()), updated_at = now()
		WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark tenant failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTenantNotFound
	}
	return nil
}

// SoftDelete marca deleted_at. La base física se conserva.
func (r *TenantRepo) SoftDelete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE tenants SET deleted_at = now(), updated_at = now() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("soft delete tenant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTenantNotFound
	}
	return nil
}

// ListActive lista los tenants activos por antigüedad.
func (r *TenantRepo) ListActive(ctx context.Context, limit, offset int) ([]*entity.Tenant, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT ` + tenantColumns + `
		FROM tenants
		WHERE deleted_at IS NULL AND status = 'active'
		ORDER BY created_at
		LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	defer rows.Close()

	var list []*entity.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tenant: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func (r *TenantRepo) one(ctx context.Context, op, query string, args ...any) (*entity.Tenant, error) {
	t, err := scanTenant(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return t, nil
}

func scanTenant(row pgx.Row) (*entity.Tenant, error) {
	var t entity.Tenant
	err := row.Scan(
		&t.ID, &t.RoutingKey, &t.BusinessName, &t.Email, &t.Phone, &t.Logo, &t.Currency,
		&t.Domain, &t.Status, &t.CreatedAt, &t.UpdatedAt, &t.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
