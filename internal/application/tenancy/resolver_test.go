package tenancy_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Intellisales-api/internal/application/tenancy"
	"github.com/jhoicas/Intellisales-api/internal/domain"
	"github.com/jhoicas/Intellisales-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Datos de prueba
// ──────────────────────────────────────────────────────────────────────────────

var baseTime = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func acme() *entity.Tenant {
	return &entity.Tenant{
		ID:           "3f9a1c00-0000-0000-0000-000000000001",
		RoutingKey:   "acme_retail_3f9a1c",
		BusinessName: "Acme Retail",
		Email:        "a@acme.test",
		Domain:       "acme.example.com",
		Status:       entity.TenantStatusActive,
		CreatedAt:    baseTime.Add(time.Hour),
	}
}

func globex() *entity.Tenant {
	return &entity.Tenant{
		ID:           "7b2e4d00-0000-0000-0000-000000000002",
		RoutingKey:   "globex_7b2e4d",
		BusinessName: "Globex",
		Email:        "admin@globex.test",
		Status:       entity.TenantStatusActive,
		CreatedAt:    baseTime,
	}
}

func deleted(t *entity.Tenant) *entity.Tenant {
	now := baseTime
	t.DeletedAt = &now
	return t
}

func newResolver(repo *memTenantRepo, cache tenancy.TenantCache, devMode bool) *tenancy.Resolver {
	return tenancy.NewResolver(repo, cache, tenancy.ResolverConfig{
		DevMode:     devMode,
		Timeout:     time.Second,
		SystemHosts: []string{"localhost", "127.0.0.1", "0.0.0.0"},
	}, zerolog.Nop())
}

// ──────────────────────────────────────────────────────────────────────────────
// Identificador explícito
// ──────────────────────────────────────────────────────────────────────────────

func TestResolve_IdentificadorEnCualquierForma(t *testing.T) {
	for _, id := range []string{"acme_retail_3f9a1c", "acme.example.com", "A@ACME.test", "acme retail"} {
		t.Run(id, func(t *testing.T) {
			r := newResolver(newMemTenantRepo(acme(), globex()), nil, false)

			res, err := r.Resolve(context.Background(), tenancy.Request{Identifier: id})
			require.NoError(t, err)
			assert.Equal(t, "acme_retail_3f9a1c", res.Tenant.RoutingKey)
			assert.Equal(t, tenancy.SourceIdentifier, res.Source)
		})
	}
}

func TestResolve_TenantEliminado_NoEncontrado(t *testing.T) {
	r := newResolver(newMemTenantRepo(deleted(acme())), nil, false)

	_, err := r.Resolve(context.Background(), tenancy.Request{Identifier: "a@acme.test"})
	assert.ErrorIs(t, err, domain.ErrTenantNotFound)
}

func TestResolve_TenantPending_NoEncontrado(t *testing.T) {
	p := acme()
	p.Status = entity.TenantStatusPending
	r := newResolver(newMemTenantRepo(p), nil, false)

	_, err := r.Resolve(context.Background(), tenancy.Request{Identifier: p.RoutingKey})
	assert.ErrorIs(t, err, domain.ErrTenantNotFound)
}

func TestResolve_SinPistas_NoEncontrado(t *testing.T) {
	r := newResolver(newMemTenantRepo(acme()), nil, false)

	_, err := r.Resolve(context.Background(), tenancy.Request{})
	assert.ErrorIs(t, err, domain.ErrTenantNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Dominio del host
// ──────────────────────────────────────────────────────────────────────────────

func TestResolve_PorDominioCompleto(t *testing.T) {
	r := newResolver(newMemTenantRepo(acme(), globex()), nil, false)

	res, err := r.Resolve(context.Background(), tenancy.Request{Host: "ACME.example.com:8443"})
	require.NoError(t, err)
	assert.Equal(t, "acme_retail_3f9a1c", res.Tenant.RoutingKey)
	assert.Equal(t, tenancy.SourceDomain, res.Source)
}

func TestResolve_PorPrimeraEtiqueta(t *testing.T) {
	r := newResolver(newMemTenantRepo(acme()), nil, false)

	res, err := r.Resolve(context.Background(), tenancy.Request{Host: "acme.intellisales.app"})
	require.NoError(t, err)
	assert.Equal(t, acme().ID, res.Tenant.ID)
}

func TestResolve_EtiquetaCompartida_GanaElHostExacto(t *testing.T) {
	other := globex()
	other.Domain = "acme.other.com"
	cache := newMemCache()
	r := newResolver(newMemTenantRepo(acme(), other), cache, false)

	_, err := r.Resolve(context.Background(), tenancy.Request{Host: "acme.example.com"})
	require.NoError(t, err)

	res, err := r.Resolve(context.Background(), tenancy.Request{Host: "acme.other.com", Sensitive: true})
	require.NoError(t, err)
	assert.Equal(t, other.ID, res.Tenant.ID)
}

// Una entrada de caché bajo un host que no es el dominio del tenant se ignora.
func TestResolve_CacheDeDominioAjeno_SeIgnora(t *testing.T) {
	other := globex()
	other.Domain = "acme.other.com"
	cache := newMemCache()
	cache.put(tenancy.KeyDomain, "acme.other.com", acme())
	r := newResolver(newMemTenantRepo(acme(), other), cache, false)

	res, err := r.Resolve(context.Background(), tenancy.Request{Host: "acme.other.com"})
	require.NoError(t, err)
	assert.Equal(t, other.ID, res.Tenant.ID)
	assert.False(t, res.Cached)
}

// Un tenant pending más antiguo con la misma etiqueta no tapa al activo.
func TestResolve_PendingConMismaEtiqueta_NoTapaAlActivo(t *testing.T) {
	pending := globex()
	pending.Domain = "acme.other.com"
	pending.Status = entity.TenantStatusPending
	pending.CreatedAt = baseTime.Add(-time.Hour)
	r := newResolver(newMemTenantRepo(pending, acme()), nil, false)

	res, err := r.Resolve(context.Background(), tenancy.Request{Host: "acme.intellisales.app"})
	require.NoError(t, err)
	assert.Equal(t, acme().ID, res.Tenant.ID)

	res, err = r.Resolve(context.Background(), tenancy.Request{Identifier: "Globex"})
	assert.ErrorIs(t, err, domain.ErrTenantNotFound)
	assert.Nil(t, res)
}

func TestResolve_DominioDesconocido_CaeAlIdentificador(t *testing.T) {
	r := newResolver(newMemTenantRepo(acme(), globex()), nil, false)

	res, err := r.Resolve(context.Background(), tenancy.Request{Host: "unknown.example.org", Identifier: "globex_7b2e4d"})
	require.NoError(t, err)
	assert.Equal(t, globex().ID, res.Tenant.ID)
	assert.Equal(t, tenancy.SourceIdentifier, res.Source)
}

func TestResolve_HostDeSistema_NoSeUsaComoDominio(t *testing.T) {
	repo := newMemTenantRepo(acme())
	r := newResolver(repo, nil, false)

	_, err := r.Resolve(context.Background(), tenancy.Request{Host: "localhost:3000", SystemHost: true})
	assert.ErrorIs(t, err, domain.ErrTenantNotFound)
	assert.Equal(t, 0, repo.finds)
}

// ──────────────────────────────────────────────────────────────────────────────
// Claim de sesión
// ──────────────────────────────────────────────────────────────────────────────

func TestResolve_ClaimGanaSobreElHost(t *testing.T) {
	r := newResolver(newMemTenantRepo(acme(), globex()), nil, false)

	res, err := r.Resolve(context.Background(), tenancy.Request{
		ClaimTenantID: globex().ID,
		Host:          "acme.example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, globex().ID, res.Tenant.ID)
	assert.Equal(t, tenancy.SourceClaim, res.Source)
}

// Un claim que nombra un tenant eliminado no cae a otras estrategias.
func TestResolve_ClaimDeTenantEliminado_EsAutoritativo(t *testing.T) {
	r := newResolver(newMemTenantRepo(deleted(globex()), acme()), nil, true)

	_, err := r.Resolve(context.Background(), tenancy.Request{
		ClaimTenantID: globex().ID,
		Identifier:    "acme_retail_3f9a1c",
		Host:          "localhost",
		SystemHost:    true,
	})
	assert.ErrorIs(t, err, domain.ErrTenantNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Fallback de desarrollo
// ──────────────────────────────────────────────────────────────────────────────

func TestResolve_FallbackDesarrollo_SoloConFlag(t *testing.T) {
	repo := newMemTenantRepo(acme(), globex())
	req := tenancy.Request{Host: "localhost", SystemHost: true}

	_, err := newResolver(repo, nil, false).Resolve(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrTenantNotFound)

	res, err := newResolver(repo, nil, true).Resolve(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, globex().ID, res.Tenant.ID, "debe elegir el tenant creado primero")
	assert.Equal(t, tenancy.SourceDevFallback, res.Source)
}

func TestResolve_FallbackDesarrollo_NoAplicaEnHostPublico(t *testing.T) {
	r := newResolver(newMemTenantRepo(acme()), nil, true)

	_, err := r.Resolve(context.Background(), tenancy.Request{Host: "nobody.example.org"})
	assert.ErrorIs(t, err, domain.ErrTenantNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Caché
// ──────────────────────────────────────────────────────────────────────────────

func TestResolve_GuardaEnCacheYLuegoLoUsa(t *testing.T) {
	repo := newMemTenantRepo(acme())
	cache := newMemCache()
	r := newResolver(repo, cache, false)

	first, err := r.Resolve(context.Background(), tenancy.Request{Identifier: "acme_retail_3f9a1c"})
	require.NoError(t, err)
	assert.False(t, first.Cached)
	finds := repo.finds

	second, err := r.Resolve(context.Background(), tenancy.Request{Identifier: "acme_retail_3f9a1c"})
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, finds, repo.finds, "un acierto de caché no consulta metadatos")
}

// Una entrada de caché de un tenant ya eliminado no sirve para una petición sensible.
func TestResolve_Sensible_ReconfirmaEnMetadatos(t *testing.T) {
	repo := newMemTenantRepo(deleted(acme()))
	cache := newMemCache()
	cache.Store(context.Background(), acme())
	r := newResolver(repo, cache, false)

	res, err := r.Resolve(context.Background(), tenancy.Request{Identifier: "acme_retail_3f9a1c"})
	require.NoError(t, err, "lectura no sensible acepta el caché")
	assert.True(t, res.Cached)

	_, err = r.Resolve(context.Background(), tenancy.Request{Identifier: "acme_retail_3f9a1c", Sensitive: true})
	assert.ErrorIs(t, err, domain.ErrTenantNotFound)
	assert.Contains(t, cache.invalidated, acme().ID)
	assert.Zero(t, cache.size())
}

func TestResolve_Sensible_ReemplazaEntradaDesactualizada(t *testing.T) {
	fresh := acme()
	fresh.Email = "nuevo@acme.test"
	repo := newMemTenantRepo(fresh)
	cache := newMemCache()
	cache.Store(context.Background(), acme())
	r := newResolver(repo, cache, false)

	res, err := r.Resolve(context.Background(), tenancy.Request{Identifier: "acme_retail_3f9a1c", Sensitive: true})
	require.NoError(t, err)
	assert.Equal(t, "nuevo@acme.test", res.Tenant.Email)
	assert.False(t, res.Cached)

	_, ok := cache.Lookup(context.Background(), tenancy.KeyEmail, "a@acme.test")
	assert.False(t, ok, "la clave vieja debe desaparecer")
}

// ──────────────────────────────────────────────────────────────────────────────
// Errores de infraestructura
// ──────────────────────────────────────────────────────────────────────────────

func TestResolve_MetadatosCaidos_Unavailable(t *testing.T) {
	repo := newMemTenantRepo(acme())
	repo.err = errors.New("connection refused")
	r := newResolver(repo, nil, false)

	_, err := r.Resolve(context.Background(), tenancy.Request{Identifier: "acme_retail_3f9a1c"})
	assert.ErrorIs(t, err, domain.ErrUnavailable)
	assert.NotErrorIs(t, err, domain.ErrTenantNotFound)

	_, err = r.Resolve(context.Background(), tenancy.Request{ClaimTenantID: acme().ID})
	assert.ErrorIs(t, err, domain.ErrUnavailable)
}

func TestResolve_IsSystemHost(t *testing.T) {
	r := newResolver(newMemTenantRepo(), nil, false)
	assert.True(t, r.IsSystemHost("127.0.0.1:8080"))
	assert.False(t, r.IsSystemHost("acme.example.com"))
}
