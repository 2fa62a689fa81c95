package tenancy

import (
	"context"

	"github.com/jhoicas/Intellisales-api/internal/domain/entity"
	"github.com/jhoicas/Intellisales-api/internal/domain/repository"
)

// KeyKind espacio de nombres de una clave del caché. Separa "por dominio" de "por email"
// para que un dominio y un email con el mismo texto nunca colisionen. KeyDomain solo admite
// dominios completos, que son únicos entre tenants vivos.
type KeyKind string

const (
	KeyRoutingKey KeyKind = "key"
	KeyDomain     KeyKind = "domain"
	KeyEmail      KeyKind = "email"
)

// TenantCache caché look-aside de tenants. Es solo una optimización: si el backend no
// responde, Lookup devuelve ausente y Store/Invalidate no hacen nada.
type TenantCache interface {
	Lookup(ctx context.Context, kind KeyKind, value string) (*entity.Tenant, bool)
	// Store guarda el tenant bajo todas sus claves (routing key, dominio, email) con un TTL común.
	Store(ctx context.Context, tenant *entity.Tenant)
	// Invalidate elimina todas las entradas del tenant en todos los espacios de nombres.
	Invalidate(ctx context.Context, tenantID string)
}

// TenantDatabases crea y elimina la base física de un tenant.
type TenantDatabases interface {
	// Create crea la base si no existe (idempotente).
	Create(ctx context.Context, routingKey string) error
	// Drop cierra la conexión registrada y elimina la base si existe.
	Drop(ctx context.Context, routingKey string) error
}

// SchemaMigrator aplica el esquema del lado tenant sobre su base.
type SchemaMigrator interface {
	MigrateTenant(ctx context.Context, routingKey string) error
}

// TenantTxRunner ejecuta fn dentro de una transacción sobre la base del tenant,
// con repositorios atados a esa transacción.
type TenantTxRunner interface {
	RunTenant(ctx context.Context, routingKey string, fn func(repos repository.TenantRepos) error) error
}

// PasswordHasher oráculo de hash/verificación de contraseñas.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(hash, plain string) error
}
