package dto

import "time"

// TenantLoginRequest login indicando el tenant en el cuerpo (routing key, dominio, email o nombre).
type TenantLoginRequest struct {
	Tenant   string `json:"tenant" validate:"required,max=255"`
	Username string `json:"username" validate:"required,max=255"`
	Password string `json:"password" validate:"required"`
}

// DomainLoginRequest login en el que el tenant sale del host de la petición.
type DomainLoginRequest struct {
	Username string `json:"username" validate:"required,max=255"`
	Password string `json:"password" validate:"required"`
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Roles     []string  `json:"roles"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginResponse token JWT con el usuario y el tenant en el que inició sesión.
type LoginResponse struct {
	Token  string         `json:"token"`
	User   UserResponse   `json:"user"`
	Tenant TenantResponse `json:"tenant"`
}
