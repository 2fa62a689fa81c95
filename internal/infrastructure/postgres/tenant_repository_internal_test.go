package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Las búsquedas del camino de servicio solo ven tenants activos y no eliminados.
func TestTenantQueries_SoloTenantsActivos(t *testing.T) {
	for name, q := range map[string]string{
		"domain":     findByDomainQuery,
		"identifier": findByIdentifierQuery,
	} {
		t.Run(name, func(t *testing.T) {
			assert.Contains(t, q, "deleted_at IS NULL AND status = 'active'")
			assert.Contains(t, q, "LIMIT 1")
		})
	}
	assert.Contains(t, findByDomainQuery, "ORDER BY (lower(domain) = $1) DESC", "el dominio exacto gana sobre la etiqueta")
}
