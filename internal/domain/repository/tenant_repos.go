package repository

// TenantRepos repositorios atados a la conexión (o transacción) de un único tenant.
type TenantRepos struct {
	Users       UserRepository
	Roles       RoleRepository
	Permissions PermissionRepository
	Products    ProductRepository
	Customers   CustomerRepository
}
