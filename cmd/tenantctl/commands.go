package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/jhoicas/Intellisales-api/internal/application/dto"
	"github.com/jhoicas/Intellisales-api/internal/domain/entity"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func newProvisionCmd() *cobra.Command {
	var facts entity.BusinessFacts
	cmd := &cobra.Command{
		Use:   "provision",
		Short: "Registra un negocio nuevo y crea su base de datos",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd, func(ctx context.Context, e *env) error {
				res, err := e.deps.Provisioner.Provision(ctx, facts)
				if err != nil {
					return err
				}
				out := dto.RegisterTenantResponse{Tenant: dto.FromTenant(res.Tenant), Admin: dto.FromUser(res.Admin)}
				if jsonOutput {
					return printJSON(out)
				}
				fmt.Printf("tenant %s creado (routing key %s), administrador %s\n",
					out.Tenant.ID, out.Tenant.RoutingKey, out.Admin.Username)
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&facts.BusinessName, "name", "", "Nombre del negocio (requerido)")
	f.StringVar(&facts.Email, "email", "", "Email del negocio (requerido)")
	f.StringVar(&facts.Phone, "phone", "", "Teléfono")
	f.StringVar(&facts.Currency, "currency", "", "Moneda ISO 4217 (por defecto COP)")
	f.StringVar(&facts.Domain, "domain", "", "Dominio propio del negocio")
	f.StringVar(&facts.Logo, "logo", "", "URL del logo")
	f.StringVar(&facts.AdminUsername, "admin-username", "", "Usuario administrador (por defecto la parte local del email)")
	f.StringVar(&facts.AdminName, "admin-name", "", "Nombre del administrador")
	f.StringVar(&facts.AdminPassword, "admin-password", "", "Contraseña del administrador (requerido)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("admin-password")
	return cmd
}

func newListCmd() *cobra.Command {
	var limit, offset int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Lista los tenants activos",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd, func(ctx context.Context, e *env) error {
				list, err := e.maintenance.List(ctx, limit, offset)
				if err != nil {
					return err
				}
				items := make([]dto.TenantResponse, 0, len(list))
				for _, t := range list {
					items = append(items, dto.FromTenant(t))
				}
				if jsonOutput {
					return printJSON(items)
				}
				w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tROUTING KEY\tNEGOCIO\tEMAIL\tDOMINIO\tCREADO")
				for _, t := range items {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
						t.ID, t.RoutingKey, t.BusinessName, t.Email, dash(t.Domain), t.CreatedAt.Format("2006-01-02"))
				}
				return w.Flush()
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 100, "Máximo de tenants a listar")
	cmd.Flags().IntVar(&offset, "offset", 0, "Desplazamiento")
	return cmd
}

func newDeleteCmd() *cobra.Command {
	var drop bool
	cmd := &cobra.Command{
		Use:   "delete TENANT",
		Short: "Elimina un tenant (ID, routing key, dominio, email o nombre)",
		Long: `Elimina lógicamente un tenant: deja de resolverse, se invalida su caché y se cierra
su pool de conexiones. Con --drop además se borra su base de datos física (irreversible).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, func(ctx context.Context, e *env) error {
				t, err := e.maintenance.Delete(ctx, args[0], drop)
				if err != nil {
					return err
				}
				if jsonOutput {
					return printJSON(dto.FromTenant(t))
				}
				fmt.Printf("tenant %s (%s) eliminado\n", t.ID, t.RoutingKey)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&drop, "drop", false, "Borrar también la base de datos física")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Aplica las migraciones pendientes en metadatos y en cada tenant activo",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// El esquema maestro ya se aplica al construir las dependencias.
			return withEnv(cmd, func(ctx context.Context, e *env) error {
				report, err := e.maintenance.MigrateAll(ctx)
				if jsonOutput {
					if perr := printJSON(report); perr != nil {
						return perr
					}
				} else if report != nil {
					fmt.Printf("migrados: %d, fallidos: %d\n", len(report.Migrated), len(report.Failed))
					if len(report.Failed) > 0 {
						fmt.Printf("  %s\n", strings.Join(report.Failed, "\n  "))
					}
				}
				return err
			})
		},
	}
}

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administradores del sistema (sesión sin tenant)",
	}
	cmd.AddCommand(newAdminCreateCmd(), newAdminListCmd())
	return cmd
}

func newAdminCreateCmd() *cobra.Command {
	var in dto.CreateSystemAdminRequest
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Crea un administrador del sistema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(in.Password) < 8 {
				return fmt.Errorf("la contraseña debe tener al menos 8 caracteres")
			}
			return withEnv(cmd, func(ctx context.Context, e *env) error {
				out, err := e.admins.Create(ctx, in)
				if err != nil {
					return err
				}
				if jsonOutput {
					return printJSON(out)
				}
				fmt.Printf("administrador %s creado (%s)\n", out.Username, out.ID)
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.Username, "username", "", "Usuario (requerido)")
	f.StringVar(&in.Email, "email", "", "Email (requerido)")
	f.StringVar(&in.Password, "password", "", "Contraseña, mínimo 8 caracteres (requerido)")
	f.StringVar(&in.FullName, "name", "", "Nombre completo")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newAdminListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Lista los administradores del sistema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd, func(ctx context.Context, e *env) error {
				list, err := e.admins.ListAdmins(ctx)
				if err != nil {
					return err
				}
				if jsonOutput {
					return printJSON(list)
				}
				w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tUSUARIO\tEMAIL\tACTIVO\tCREADO")
				for _, a := range list {
					fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\n", a.ID, a.Username, a.Email, a.IsActive, a.CreatedAt.Format("2006-01-02"))
				}
				return w.Flush()
			})
		},
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
