package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
)

// Errores de tenancy. Los consume la capa HTTP para traducirlos a respuestas.
var (
	// ErrTenantNotFound ningún identificador coincide, o el tenant está eliminado / no activo.
	ErrTenantNotFound = errors.New("tenant no encontrado")
	// ErrUnavailable una dependencia (metadatos, base del tenant) no respondió dentro del plazo.
	ErrUnavailable = errors.New("dependencia no disponible")
	// ErrInconsistent el tenant existe en metadatos pero su base física no es alcanzable.
	ErrInconsistent = errors.New("tenant sin base de datos utilizable")
)
