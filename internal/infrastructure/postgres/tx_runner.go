package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Intellisales-api/internal/application/tenancy"
	"github.com/jhoicas/Intellisales-api/internal/domain/repository"
)

var _ tenancy.TenantTxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción sobre la base de un tenant.
type TxRunner struct {
	conns ConnectionGetter
}

// NewTxRunner construye el runner sobre el registro de conexiones.
func NewTxRunner(conns ConnectionGetter) *TxRunner {
	return &TxRunner{conns: conns}
}

// RunTenant obtiene el pool del tenant, inicia una transacción, ejecuta fn con repos atados
// a la tx y hace Commit o Rollback.
func (r *TxRunner) RunTenant(ctx context.Context, routingKey string, fn func(repos repository.TenantRepos) error) error {
	pool, err := r.conns.GetConnection(ctx, routingKey)
	if err != nil {
		return err
	}
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewTenantRepos(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// NewTenantRepos construye los repositorios del lado tenant sobre un pool o una tx.
func NewTenantRepos(q Querier) repository.TenantRepos {
	return repository.TenantRepos{
		Users:       NewUserRepository(q),
		Roles:       NewRoleRepository(q),
		Permissions: NewPermissionRepository(q),
		Products:    NewProductRepository(q),
		Customers:   NewCustomerRepository(q),
	}
}
