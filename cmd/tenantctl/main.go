// tenantctl herramienta de operador para el registro de tenants.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jhoicas/Intellisales-api/internal/application/auth"
	"github.com/jhoicas/Intellisales-api/internal/application/sysadmin"
	"github.com/jhoicas/Intellisales-api/internal/application/tenancy"
	"github.com/jhoicas/Intellisales-api/internal/bootstrap"
	"github.com/jhoicas/Intellisales-api/pkg/config"
	"github.com/jhoicas/Intellisales-api/pkg/logger"
)

var jsonOutput bool

// env dependencias construidas una vez por ejecución.
type env struct {
	deps        *bootstrap.Container
	maintenance *tenancy.Maintenance
	admins      *sysadmin.UseCase
}

var rootCmd = &cobra.Command{
	Use:   "tenantctl [command] [flags]",
	Short: "Administra los tenants de Intellisales",
	Long: `tenantctl administra el registro de tenants: alta de negocios, listado,
eliminación y reaplicación del esquema sobre todas las bases de tenant.

Lee la misma configuración que el servidor (DB_*, REDIS_*, TENANT_*).

Ejemplos:
  tenantctl provision --name "Acme Retail" --email a@acme.test --admin-password s3cret-pass
  tenantctl list
  tenantctl delete acme_retail_3f9a1c
  tenantctl migrate
  tenantctl admin create --username root --email root@intellisales.test --password s3cret-pass`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "Salida en formato JSON")

	rootCmd.AddCommand(newProvisionCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newDeleteCmd())
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newAdminCmd())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// withEnv conecta las dependencias, ejecuta fn y las libera.
func withEnv(cmd *cobra.Command, fn func(ctx context.Context, e *env) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("cargar configuración: %w", err)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Output: os.Stderr})

	ctx := cmd.Context()
	deps, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := deps.Close(); err != nil {
			log.Warn().Err(err).Msg("cerrar dependencias")
		}
	}()

	jwtCfg := auth.JWTConfig{Secret: cfg.JWT.Secret, ExpMinutes: cfg.JWT.Expiration, Issuer: cfg.JWT.Issuer}
	return fn(ctx, &env{
		deps:        deps,
		maintenance: deps.TenantOps,
		admins:      sysadmin.NewUseCase(deps.Admins, deps.TenantOps, deps.Hasher, jwtCfg, log.Component("sysadmin")),
	})
}
