package entity

import "time"

// SystemAdmin administrador de la plataforma. Vive en la base de metadatos y su sesión
// no está atada a ningún tenant.
type SystemAdmin struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	FullName     string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
