package entity

// Permission permiso atómico "modulo:accion" asignable a roles.
type Permission struct {
	ID          string
	Name        string // único, ej. "products:read"
	Description string
	Module      string // USERS, PRODUCTS, INVENTORY, ...
	Action      string // CREATE, READ, UPDATE, DELETE, EXPORT, ...
}

// PermissionCatalog permisos predefinidos que se siembran en cada tenant nuevo.
// El rol admin recibe todos.
var PermissionCatalog = []Permission{
	{Name: "users:create", Description: "Crear usuarios", Module: "USERS", Action: "CREATE"},
	{Name: "users:read", Description: "Ver usuarios", Module: "USERS", Action: "READ"},
	{Name: "users:update", Description: "Actualizar usuarios", Module: "USERS", Action: "UPDATE"},
	{Name: "users:delete", Description: "Eliminar usuarios", Module: "USERS", Action: "DELETE"},
	{Name: "users:export", Description: "Exportar usuarios", Module: "USERS", Action: "EXPORT"},

	{Name: "roles:create", Description: "Crear roles", Module: "ROLES", Action: "CREATE"},
	{Name: "roles:read", Description: "Ver roles", Module: "ROLES", Action: "READ"},
	{Name: "roles:update", Description: "Actualizar roles", Module: "ROLES", Action: "UPDATE"},
	{Name: "roles:delete", Description: "Eliminar roles", Module: "ROLES", Action: "DELETE"},
	{Name: "permissions:read", Description: "Ver permisos", Module: "PERMISSIONS", Action: "READ"},

	{Name: "products:create", Description: "Crear productos", Module: "PRODUCTS", Action: "CREATE"},
	{Name: "products:read", Description: "Ver productos", Module: "PRODUCTS", Action: "READ"},
	{Name: "products:update", Description: "Actualizar productos", Module: "PRODUCTS", Action: "UPDATE"},
	{Name: "products:delete", Description: "Eliminar productos", Module: "PRODUCTS", Action: "DELETE"},
	{Name: "products:export", Description: "Exportar productos", Module: "PRODUCTS", Action: "EXPORT"},
	{Name: "products:import", Description: "Importar productos", Module: "PRODUCTS", Action: "IMPORT"},

	{Name: "categories:create", Description: "Crear categorías", Module: "CATEGORIES", Action: "CREATE"},
	{Name: "categories:read", Description: "Ver categorías", Module: "CATEGORIES", Action: "READ"},
	{Name: "categories:update", Description: "Actualizar categorías", Module: "CATEGORIES", Action: "UPDATE"},
	{Name: "categories:delete", Description: "Eliminar categorías", Module: "CATEGORIES", Action: "DELETE"},

	{Name: "inventory:create", Description: "Crear registros de inventario", Module: "INVENTORY", Action: "CREATE"},
	{Name: "inventory:read", Description: "Ver inventario", Module: "INVENTORY", Action: "READ"},
	{Name: "inventory:update", Description: "Actualizar inventario", Module: "INVENTORY", Action: "UPDATE"},
	{Name: "inventory:delete", Description: "Eliminar registros de inventario", Module: "INVENTORY", Action: "DELETE"},
	{Name: "inventory:adjust", Description: "Ajustar existencias", Module: "INVENTORY", Action: "ADJUST"},
	{Name: "inventory:transfer", Description: "Transferir entre ubicaciones", Module: "INVENTORY", Action: "TRANSFER"},
	{Name: "inventory:export", Description: "Exportar inventario", Module: "INVENTORY", Action: "EXPORT"},

	{Name: "locations:create", Description: "Crear ubicaciones", Module: "LOCATIONS", Action: "CREATE"},
	{Name: "locations:read", Description: "Ver ubicaciones", Module: "LOCATIONS", Action: "READ"},
	{Name: "locations:update", Description: "Actualizar ubicaciones", Module: "LOCATIONS", Action: "UPDATE"},
	{Name: "locations:delete", Description: "Eliminar ubicaciones", Module: "LOCATIONS", Action: "DELETE"},

	{Name: "customers:create", Description: "Crear clientes", Module: "CUSTOMERS", Action: "CREATE"},
	{Name: "customers:read", Description: "Ver clientes", Module: "CUSTOMERS", Action: "READ"},
	{Name: "customers:update", Description: "Actualizar clientes", Module: "CUSTOMERS", Action: "UPDATE"},
	{Name: "customers:delete", Description: "Eliminar clientes", Module: "CUSTOMERS", Action: "DELETE"},
	{Name: "customers:export", Description: "Exportar clientes", Module: "CUSTOMERS", Action: "EXPORT"},
	{Name: "customers:import", Description: "Importar clientes", Module: "CUSTOMERS", Action: "IMPORT"},

	{Name: "system:settings", Description: "Gestionar configuración", Module: "SYSTEM", Action: "UPDATE"},
	{Name: "system:backup", Description: "Respaldos del sistema", Module: "SYSTEM", Action: "BACKUP"},
	{Name: "system:audit", Description: "Ver auditoría", Module: "SYSTEM", Action: "READ"},
}
