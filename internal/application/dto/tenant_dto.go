package dto

import "time"

// RegisterTenantRequest alta de un negocio nuevo junto con su administrador.
type RegisterTenantRequest struct {
	BusinessName  string `json:"business_name" validate:"required,min=2,max=200"`
	Email         string `json:"email" validate:"required,email"`
	PhoneNumber   string `json:"phone_number" validate:"omitempty,max=50"`
	Currency      string `json:"currency" validate:"omitempty,len=3,alpha"`
	Domain        string `json:"domain" validate:"omitempty,fqdn"`
	Logo          string `json:"logo" validate:"omitempty,url"`
	AdminUsername string `json:"admin_username" validate:"omitempty,min=3,max=100"`
	AdminName     string `json:"admin_name" validate:"omitempty,max=200"`
	AdminPassword string `json:"admin_password" validate:"required,min=8,max=72"`
}

// TenantResponse identidad pública de un tenant. No incluye el nombre físico de su base.
type TenantResponse struct {
	ID           string    `json:"tenant_id"`
	RoutingKey   string    `json:"routing_key"`
	BusinessName string    `json:"business_name"`
	Email        string    `json:"email"`
	PhoneNumber  string    `json:"phone_number,omitempty"`
	Logo         string    `json:"logo,omitempty"`
	Currency     string    `json:"currency"`
	Domain       string    `json:"domain,omitempty"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// RegisterTenantResponse resultado del aprovisionamiento.
type RegisterTenantResponse struct {
	Tenant TenantResponse `json:"tenant"`
	Admin  UserResponse   `json:"admin"`
}
