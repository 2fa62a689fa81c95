package entity

import "time"

// Roles predefinidos de cada tenant.
const (
	RoleAdmin     = "admin"
	RoleManager   = "manager"
	RoleCashier   = "cashier"
	RoleInventory = "inventory"
)

// Role agrupa permisos dentro de un tenant. Name es único por base.
type Role struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
}
