package tenant_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Intellisales-api/internal/domain/tenant"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Acme Retail":          "acme_retail",
		"  Acme   Retail  ":    "acme_retail",
		"Café Ñandú & Cía":     "cafe_nandu_cia",
		"Acme-Retail S.A.S.":   "acmeretail_sas",
		"!!!":                  "tenant",
		"Tienda\tDon\nPepe 24": "tienda_don_pepe_24",
	}
	for in, want := range cases {
		assert.Equal(t, want, tenant.Slugify(in), "slug de %q", in)
	}
}

func TestSlugify_TruncaNombresLargos(t *testing.T) {
	s := tenant.Slugify("Distribuidora Nacional de Productos Alimenticios y Bebidas del Caribe")
	assert.LessOrEqual(t, len(s), 40)
	assert.NotEqual(t, '_', rune(s[len(s)-1]), "no debe terminar en separador")
}

func TestDeriveRoutingKey_Convencion(t *testing.T) {
	key, err := tenant.DeriveRoutingKey("Acme Retail", "3f9a1c7e-0000-4000-8000-000000000000")
	require.NoError(t, err)
	assert.Equal(t, "acme_retail_3f9a1c", key)
	assert.True(t, tenant.ValidRoutingKey(key))
	assert.Equal(t, "tenant_acme_retail_3f9a1c", tenant.DatabaseName("tenant_", key))
}

func TestDeriveRoutingKey_MismoNombreDistintoID(t *testing.T) {
	a, err := tenant.DeriveRoutingKey("Acme Retail", "aaaaaa11-0000-4000-8000-000000000000")
	require.NoError(t, err)
	b, err := tenant.DeriveRoutingKey("Acme Retail", "bbbbbb22-0000-4000-8000-000000000000")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestDeriveRoutingKey_IDCorto(t *testing.T) {
	_, err := tenant.DeriveRoutingKey("Acme", "abc")
	assert.Error(t, err)
}

func TestValidRoutingKey_RechazaInyeccion(t *testing.T) {
	assert.False(t, tenant.ValidRoutingKey(`acme"; DROP DATABASE x; --`))
	assert.False(t, tenant.ValidRoutingKey("Acme_Retail"))
	assert.False(t, tenant.ValidRoutingKey(""))
	assert.False(t, tenant.ValidRoutingKey("_acme"))
}

func TestLeadingLabel(t *testing.T) {
	assert.Equal(t, "acme", tenant.LeadingLabel("acme.example.com"))
	assert.Equal(t, "acme", tenant.LeadingLabel("ACME.example.com:8443"))
	assert.Equal(t, "localhost", tenant.LeadingLabel("localhost:3000"))
	assert.Equal(t, "acme-corp", tenant.LeadingLabel("acme-corp.yourdomain.com."))
}

func TestIsSystemHost(t *testing.T) {
	hosts := []string{"localhost", "127.0.0.1", "0.0.0.0"}
	assert.True(t, tenant.IsSystemHost("localhost:3000", hosts))
	assert.True(t, tenant.IsSystemHost("127.0.0.1", hosts))
	assert.True(t, tenant.IsSystemHost("", hosts))
	assert.False(t, tenant.IsSystemHost("acme.example.com", hosts))
	// coincidencia exacta: un subdominio que contenga "localhost" no es host de sistema
	assert.False(t, tenant.IsSystemHost("localhost.acme.com", hosts))
}
