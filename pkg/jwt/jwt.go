package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Tipos de token. Un token de un tipo nunca se acepta donde se espera el otro.
const (
	TokenTypeTenantUser  = "tenant-user"
	TokenTypeSystemAdmin = "system-admin"
)

// RoleSystemAdmin rol fijo de los administradores del sistema.
const RoleSystemAdmin = "system_admin"

// Claims incluye los claims estándar JWT más los campos propios de la aplicación.
// El token nombra al tenant solo por TenantID: la routing key nunca viaja en el token,
// siempre se vuelve a leer desde la base de metadatos.
type Claims struct {
	jwt.RegisteredClaims
	UserID   string `json:"user_id"`
	TenantID string `json:"tenant_id"`
	Role     string `json:"role"`
	Type     string `json:"type"`
}

// Generate genera un token JWT firmado que incluye userID, tenantID y role.
func Generate(secret, userID, tenantID, role, issuer string, expMinutes int) (string, error) {
	return sign(secret, userID, tenantID, role, TokenTypeTenantUser, issuer, expMinutes)
}

// GenerateSystemAdmin genera un token de administrador del sistema. No lleva tenant_id.
func GenerateSystemAdmin(secret, adminID, issuer string, expMinutes int) (string, error) {
	return sign(secret, adminID, "", RoleSystemAdmin, TokenTypeSystemAdmin, issuer, expMinutes)
}

func sign(secret, userID, tenantID, role, typ, issuer string, expMinutes int) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("jwt: secret vacío")
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expMinutes) * time.Minute)),
		},
		UserID:   userID,
		TenantID: tenantID,
		Role:     role,
		Type:     typ,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Parse valida un token de usuario de tenant y devuelve sus claims.
// Retorna error si el token es inválido, expirado, tiene firma incorrecta o no es de tenant.
func Parse(secret, tokenString string) (*Claims, error) {
	claims, err := parse(secret, tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Type != TokenTypeTenantUser || claims.TenantID == "" {
		return nil, fmt.Errorf("jwt: el token no tiene contexto de tenant")
	}
	return claims, nil
}

// ParseSystemAdmin valida un token de administrador del sistema.
func ParseSystemAdmin(secret, tokenString string) (*Claims, error) {
	claims, err := parse(secret, tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Type != TokenTypeSystemAdmin || claims.TenantID != "" || claims.Role != RoleSystemAdmin {
		return nil, fmt.Errorf("jwt: se requiere un token de administrador del sistema")
	}
	return claims, nil
}

func parse(secret, tokenString string) (*Claims, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt: secret vacío")
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("claims inválidos")
	}
	return claims, nil
}
