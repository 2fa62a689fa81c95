package entity

import "time"

// Estados del ciclo de vida de un tenant.
// Un tenant nace pending y solo pasa a active cuando su base, esquema y administrador existen.
const (
	TenantStatusPending = "pending"
	TenantStatusActive  = "active"
	TenantStatusFailed  = "failed"
)

// DefaultCurrency moneda de un negocio que no indica otra (ISO 4217).
const DefaultCurrency = "COP"

// Tenant representa un negocio registrado con su propia base de datos aislada.
// RoutingKey se asigna una sola vez al crear el tenant y forma parte del nombre físico de su base.
type Tenant struct {
	ID           string     `json:"tenant_id"`
	RoutingKey   string     `json:"routing_key"`
	BusinessName string     `json:"business_name"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone_number"`
	Logo         string     `json:"logo,omitempty"`
	Currency     string     `json:"currency"`
	Domain       string     `json:"domain,omitempty"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// IsActive informa si el tenant puede atender peticiones.
func (t *Tenant) IsActive() bool {
	return t != nil && t.DeletedAt == nil && t.Status == TenantStatusActive
}

// BusinessFacts datos de un negocio nuevo para aprovisionar su tenant.
type BusinessFacts struct {
	BusinessName  string
	Email         string
	Phone         string
	Currency      string
	Domain        string
	Logo          string
	AdminUsername string
	AdminName     string
	AdminPassword string // texto plano; se hashea antes de persistir
}
