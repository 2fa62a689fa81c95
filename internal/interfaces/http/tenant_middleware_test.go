package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Intellisales-api/internal/application/dto"
	"github.com/jhoicas/Intellisales-api/internal/application/tenancy"
	"github.com/jhoicas/Intellisales-api/internal/domain"
	"github.com/jhoicas/Intellisales-api/internal/domain/entity"
	apphttp "github.com/jhoicas/Intellisales-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/Intellisales-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

// fakeResolver registra la última petición y responde con tenant o err.
type fakeResolver struct {
	mu     sync.Mutex
	last   tenancy.Request
	calls  int
	tenant *entity.Tenant
	err    error
}

func (f *fakeResolver) Resolve(_ context.Context, req tenancy.Request) (*tenancy.Resolution, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.last = req
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &tenancy.Resolution{Tenant: f.tenant, Source: tenancy.SourceIdentifier}, nil
}

func (f *fakeResolver) IsSystemHost(host string) bool {
	return strings.HasPrefix(host, "localhost") || strings.HasPrefix(host, "127.0.0.1")
}

func (f *fakeResolver) lastRequest() tenancy.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

func acmeTenant() *entity.Tenant {
	return &entity.Tenant{
		ID:           testTenantID,
		RoutingKey:   "acme_retail_3f9a1c",
		BusinessName: "Acme Retail",
		Email:        "a@acme.test",
		Currency:     "COP",
		Status:       entity.TenantStatusActive,
	}
}

func buildTenantApp(resolver *fakeResolver) *fiber.App {
	app := fiber.New()
	mw := apphttp.TenantMiddleware(resolver, apphttp.TenantMiddlewareConfig{
		JWTSecret: testJWTSecret,
		Log:       zerolog.Nop(),
	})
	handler := func(c *fiber.Ctx) error {
		t := apphttp.GetTenant(c)
		return c.JSON(fiber.Map{"routing_key": t.RoutingKey, "user_id": apphttp.GetUserID(c)})
	}
	app.Get("/t", mw, handler)
	app.Post("/t", mw, handler)
	return app
}

func send(t *testing.T, app *fiber.App, method, host string, headers map[string]string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, "/t", nil)
	req.Host = host
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeError(t *testing.T, resp *http.Response) dto.ErrorResponse {
	t.Helper()
	var body dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests TenantMiddleware
// ──────────────────────────────────────────────────────────────────────────────

func TestTenantMiddleware_PasaPistasAlResolver(t *testing.T) {
	r := &fakeResolver{tenant: acmeTenant()}
	app := buildTenantApp(r)

	resp := send(t, app, http.MethodGet, "acme.example.com", map[string]string{"X-Tenant-ID": "acme_retail_3f9a1c"})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "acme_retail_3f9a1c", body["routing_key"])

	req := r.lastRequest()
	assert.Equal(t, "acme.example.com", req.Host)
	assert.Equal(t, "acme_retail_3f9a1c", req.Identifier)
	assert.Empty(t, req.ClaimTenantID)
	assert.False(t, req.SystemHost)
	assert.False(t, req.Sensitive, "GET no muta datos")
	assert.Equal(t, string(tenancy.SourceIdentifier), resp.Header.Get("X-Tenant-Source"))
}

func TestTenantMiddleware_MetodoMutanteEsSensible(t *testing.T) {
	r := &fakeResolver{tenant: acmeTenant()}
	app := buildTenantApp(r)

	resp := send(t, app, http.MethodPost, "acme.example.com", nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, r.lastRequest().Sensitive)
}

func TestTenantMiddleware_HostDeSistema(t *testing.T) {
	r := &fakeResolver{tenant: acmeTenant()}
	app := buildTenantApp(r)

	resp := send(t, app, http.MethodGet, "localhost:8080", nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, r.lastRequest().SystemHost)
}

func TestTenantMiddleware_TokenAportaClaim(t *testing.T) {
	r := &fakeResolver{tenant: acmeTenant()}
	app := buildTenantApp(r)

	resp := send(t, app, http.MethodGet, "otro.example.com", map[string]string{
		"Authorization": tokenForRole(t, "admin"),
		"X-Tenant-ID":   "globex",
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, testUserID, body["user_id"])
	assert.Equal(t, testTenantID, r.lastRequest().ClaimTenantID)
}

// Un token presente pero inválido nunca degrada a resolución por host.
func TestTenantMiddleware_TokenInvalido_Retorna401SinResolver(t *testing.T) {
	r := &fakeResolver{tenant: acmeTenant()}
	app := buildTenantApp(r)

	resp := send(t, app, http.MethodGet, "acme.example.com", map[string]string{"Authorization": "Bearer basura"})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "INVALID_TOKEN", decodeError(t, resp).Code)
	assert.Zero(t, r.calls)
}

func TestTenantMiddleware_TraduceErrores(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrTenantNotFound, http.StatusUnauthorized, "TENANT_NOT_FOUND"},
		{fmt.Errorf("%w: timeout", domain.ErrUnavailable), http.StatusServiceUnavailable, "UNAVAILABLE"},
		{fmt.Errorf("%w: 3D000", domain.ErrInconsistent), http.StatusInternalServerError, "TENANT_INCONSISTENT"},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			app := buildTenantApp(&fakeResolver{err: tc.err})
			resp := send(t, app, http.MethodGet, "acme.example.com", nil)
			defer resp.Body.Close()

			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Equal(t, tc.code, decodeError(t, resp).Code)
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests StatusFor
// ──────────────────────────────────────────────────────────────────────────────

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrConflict, http.StatusConflict, "CONFLICT"},
		{domain.ErrDuplicate, http.StatusConflict, "DUPLICATE"},
		{domain.ErrInvalidInput, http.StatusBadRequest, "VALIDATION"},
		{domain.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
		{domain.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		// Inconsistent gana aunque el error también envuelva Unavailable.
		{fmt.Errorf("%w: %w", domain.ErrInconsistent, domain.ErrUnavailable), http.StatusInternalServerError, "TENANT_INCONSISTENT"},
		{fmt.Errorf("otro"), http.StatusInternalServerError, "INTERNAL"},
	}
	for _, tc := range cases {
		status, code := apphttp.StatusFor(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
		assert.Equal(t, tc.code, code, tc.err.Error())
	}
}

// Un token firmado con otro secreto se rechaza.
func TestTenantMiddleware_TokenDeOtroSecreto(t *testing.T) {
	tok, err := pkgjwt.Generate("otro-secreto", testUserID, testTenantID, "admin", testIssuer, testExpMin)
	require.NoError(t, err)

	r := &fakeResolver{tenant: acmeTenant()}
	resp := send(t, buildTenantApp(r), http.MethodGet, "acme.example.com", map[string]string{"Authorization": "Bearer " + tok})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
