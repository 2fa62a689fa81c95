package dto

import "time"

// AdminLoginRequest login de administrador del sistema (username o email).
type AdminLoginRequest struct {
	Username string `json:"username" validate:"required,max=255"`
	Password string `json:"password" validate:"required"`
}

// CreateSystemAdminRequest alta de un administrador del sistema.
type CreateSystemAdminRequest struct {
	Username string `json:"username" validate:"required,min=3,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	FullName string `json:"full_name" validate:"max=255"`
}

// SystemAdminResponse administrador sin su hash de contraseña.
type SystemAdminResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// AdminLoginResponse token de sistema más el administrador autenticado.
type AdminLoginResponse struct {
	Token string              `json:"token"`
	Admin SystemAdminResponse `json:"admin"`
}

// TenantListResponse lista paginada de tenants.
type TenantListResponse struct {
	Items []TenantResponse `json:"items"`
	Page  PageResponse     `json:"page"`
}
