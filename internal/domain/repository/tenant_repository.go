package repository

import (
	"context"

	"github.com/jhoicas/Intellisales-api/internal/domain/entity"
)

// TenantRepository puerto de persistencia del registro de tenants (base de metadatos).
// Las búsquedas devuelven (nil, nil) si no hay coincidencia. Salvo GetByID, solo consideran
// tenants no eliminados; quien llama debe revisar IsActive.
type TenantRepository interface {
	// Create devuelve domain.ErrConflict si email, dominio o routing key ya están en uso.
	Create(ctx context.Context, tenant *entity.Tenant) error
	GetByID(ctx context.Context, id string) (*entity.Tenant, error)
	// FindByDomain busca un tenant activo por dominio completo o por su primera etiqueta
	// (ej. "acme" para "acme.example.com"). El dominio completo gana.
	FindByDomain(ctx context.Context, host, label string) (*entity.Tenant, error)
	// FindByIdentifier prueba, en este orden, routing key, dominio, email y nombre del negocio.
	// Solo devuelve tenants activos.
	FindByIdentifier(ctx context.Context, identifier string) (*entity.Tenant, error)
	// FindEarliest devuelve el tenant activo creado primero (solo para modo desarrollo).
	FindEarliest(ctx context.Context) (*entity.Tenant, error)
	// ExistsActive informa si algún tenant no eliminado usa ese email, dominio o routing key.
	ExistsActive(ctx context.Context, email, domain, routingKey string) (bool, error)
	UpdateStatus(ctx context.Context, id, status string) error
	MarkFailed(ctx context.Context, id string) error
	SoftDelete(ctx context.Context, id string) error
	ListActive(ctx context.Context, limit, offset int) ([]*entity.Tenant, error)
}
