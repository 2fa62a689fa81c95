package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/Intellisales-api/internal/application/auth"
	"github.com/jhoicas/Intellisales-api/internal/application/sysadmin"
	"github.com/jhoicas/Intellisales-api/internal/application/usecase"
	"github.com/jhoicas/Intellisales-api/internal/bootstrap"
	httpRouter "github.com/jhoicas/Intellisales-api/internal/interfaces/http"
	"github.com/jhoicas/Intellisales-api/pkg/config"
	"github.com/jhoicas/Intellisales-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Bool("tenant_dev_mode", cfg.Tenancy.DevMode).
		Msg("iniciando aplicación")

	ctx := context.Background()
	deps, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar dependencias")
	}
	defer func() {
		if err := deps.Close(); err != nil {
			log.Error().Err(err).Msg("cerrar dependencias")
		}
	}()

	jwtCfg := auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}
	authUC := auth.NewAuthUseCase(deps.Resolver, deps.Runner, deps.Hasher, jwtCfg, log.Component("auth"))
	adminUC := sysadmin.NewUseCase(deps.Admins, deps.TenantOps, deps.Hasher, jwtCfg, log.Component("sysadmin"))
	productUC := usecase.NewProductUseCase(deps.Runner)
	customerUC := usecase.NewCustomerUseCase(deps.Runner)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Intellisales API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "tenant_pools": deps.Registry.Len()})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Resolver:     deps.Resolver,
		Provisioner:  deps.Provisioner,
		AuthUC:       authUC,
		AdminUC:      adminUC,
		ProductUC:    productUC,
		CustomerUC:   customerUC,
		JWTSecret:    cfg.JWT.Secret,
		TenantHeader: cfg.Tenancy.Header,
		Log:          log.Component("http"),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
