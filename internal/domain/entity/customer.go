package entity

import "time"

// Customer representa un cliente del negocio dentro de la base de su tenant.
type Customer struct {
	ID        string
	Name      string
	TaxID     string // NIT o cédula; único dentro del tenant
	Email     string
	Phone     string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
