// Package tenant contiene las reglas puras para identificar tenants: derivación de la
// routing key, nombre físico de la base y normalización de hosts.
package tenant

import (
	"fmt"
	"net"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// maxSlugLen deja espacio para prefijo + sufijo dentro del límite de 63 bytes de PostgreSQL.
	maxSlugLen = 40
	// suffixLen caracteres del tenant_id usados como desambiguador.
	suffixLen = 6
	// fallbackSlug se usa si el nombre no tiene ningún carácter alfanumérico.
	fallbackSlug = "tenant"
)

var (
	nonAlnumSpace = regexp.MustCompile(`[^a-z0-9\s]`)
	spaces        = regexp.MustCompile(`\s+`)
	validKey      = regexp.MustCompile(`^[a-z0-9]+(_[a-z0-9]+)*$`)
)

// Slugify normaliza el nombre del negocio: quita tildes, pasa a minúsculas, elimina
// caracteres especiales y colapsa los espacios en "_".
//
//	"Café Ñandú & Cía" -> "cafe_nandu_cia"
func Slugify(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}
	s := strings.ToLower(strings.TrimSpace(folded))
	s = nonAlnumSpace.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	s = spaces.ReplaceAllString(s, "_")
	if len(s) > maxSlugLen {
		s = strings.TrimRight(s[:maxSlugLen], "_")
	}
	if s == "" {
		return fallbackSlug
	}
	return s
}

// DeriveRoutingKey construye la routing key a partir del nombre del negocio y de su tenant_id.
// El sufijo sale del propio tenant_id, así dos negocios con el mismo nombre no colisionan
// y la clave sigue siendo legible para operadores.
func DeriveRoutingKey(businessName, tenantID string) (string, error) {
	suffix := strings.ToLower(strings.ReplaceAll(tenantID, "-", ""))
	if len(suffix) < suffixLen {
		return "", fmt.Errorf("tenant: id %q demasiado corto para derivar routing key", tenantID)
	}
	key := Slugify(businessName) + "_" + suffix[:suffixLen]
	if !ValidRoutingKey(key) {
		return "", fmt.Errorf("tenant: routing key derivada inválida %q", key)
	}
	return key, nil
}

// ValidRoutingKey informa si la clave puede formar parte de un identificador SQL.
func ValidRoutingKey(key string) bool {
	return len(key) <= maxSlugLen+1+suffixLen && validKey.MatchString(key)
}

// DatabaseName nombre físico de la base del tenant: prefijo fijo + routing key.
func DatabaseName(prefix, routingKey string) string {
	return prefix + routingKey
}

// NormalizeHost quita puerto, punto final y mayúsculas del header Host.
func NormalizeHost(host string) string {
	host = strings.TrimSpace(host)
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return strings.TrimSuffix(strings.ToLower(host), ".")
}

// LeadingLabel devuelve la porción del host antes del primer ".".
//
//	"acme.example.com:8080" -> "acme"
func LeadingLabel(host string) string {
	host = NormalizeHost(host)
	if i := strings.IndexByte(host, '.'); i >= 0 {
		return host[:i]
	}
	return host
}

// IsSystemHost informa si el host pertenece a la lista configurada de hosts que no
// identifican a ningún tenant (loopback, health checks internos, ...).
func IsSystemHost(host string, systemHosts []string) bool {
	host = NormalizeHost(host)
	if host == "" {
		return true
	}
	for _, sh := range systemHosts {
		if host == strings.ToLower(sh) {
			return true
		}
	}
	return false
}
