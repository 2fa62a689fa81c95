package tenancy

import (
	"context"

	"github.com/jhoicas/Intellisales-api/internal/domain/entity"
)

// NopCache caché deshabilitado: toda lectura falla y toda escritura se descarta.
type NopCache struct{}

var _ TenantCache = NopCache{}

func (NopCache) Lookup(context.Context, KeyKind, string) (*entity.Tenant, bool) { return nil, false }
func (NopCache) Store(context.Context, *entity.Tenant)                          {}
func (NopCache) Invalidate(context.Context, string)                             {}
