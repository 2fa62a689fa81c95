package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Intellisales-api/internal/application/usecase"
	"github.com/jhoicas/Intellisales-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Resolver     TenantResolver
	Provisioner  TenantProvisioner
	AuthUC       LoginUseCase
	AdminUC      SystemAdminUseCase
	ProductUC    *usecase.ProductUseCase
	CustomerUC   *usecase.CustomerUseCase
	JWTSecret    string
	TenantHeader string
	Log          zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")

	// Auth (público; el tenant sale del cuerpo o del host)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC, deps.Resolver.IsSystemHost)
	authGroup.Post("/tenant-login", authHandler.TenantLogin)
	authGroup.Post("/domain-login", authHandler.DomainLogin)

	// Registro de negocios (público)
	tenantHandler := NewTenantHandler(deps.Provisioner, deps.Log)
	api.Post("/tenants/register", tenantHandler.Register)

	// Administración de la plataforma (token de sistema, sin tenant)
	if deps.AdminUC != nil {
		adminHandler := NewAdminHandler(deps.AdminUC)
		adminGroup := api.Group("/admin")
		adminGroup.Post("/login", adminHandler.Login)
		adminGroup.Use(RequireSystemAdmin(deps.JWTSecret))
		adminGroup.Get("/system-admins", adminHandler.ListAdmins)
		adminGroup.Get("/tenants", adminHandler.ListTenants)
		adminGroup.Get("/tenants/:id", adminHandler.GetTenant)
		adminGroup.Delete("/tenants/:id", adminHandler.DeleteTenant)
	}

	withTenant := TenantMiddleware(deps.Resolver, TenantMiddlewareConfig{
		JWTSecret: deps.JWTSecret,
		Header:    deps.TenantHeader,
		Log:       deps.Log,
	})

	// Tenant actual (token opcional; host o header bastan)
	api.Get("/tenant", withTenant, tenantHandler.Current)

	// Products (tenant + Bearer Token)
	products := api.Group("/products", withTenant, AuthMiddleware(deps.JWTSecret))
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", RequireRole(entity.RoleAdmin, entity.RoleManager, entity.RoleInventory), productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)

	// Customers (tenant + Bearer Token)
	customers := api.Group("/customers", withTenant, AuthMiddleware(deps.JWTSecret))
	customerHandler := NewCustomerHandler(deps.CustomerUC)
	customers.Post("/", customerHandler.Create)
	customers.Get("/", customerHandler.List)
	customers.Get("/:id", customerHandler.GetByID)
	customers.Put("/:id", customerHandler.Update)
	customers.Delete("/:id", RequireRole(entity.RoleAdmin, entity.RoleManager), customerHandler.Delete)
}
