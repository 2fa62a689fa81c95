// Package nit valida identificaciones tributarias colombianas (NIT).
package nit

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// pesos del módulo 11 de la DIAN, aplicados de derecha a izquierda sobre la base.
var weights = []int{3, 7, 13, 17, 19, 23, 29, 37, 41, 43, 47, 53, 59, 67, 71}

// ErrFormat el NIT contiene caracteres distintos de dígitos, puntos, espacios o un guion.
var ErrFormat = errors.New("nit: formato inválido")

// Digits devuelve solo los dígitos de s.
func Digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// VerificationDigit calcula el dígito de verificación de la base (sin DV).
func VerificationDigit(base string) (byte, error) {
	digits := Digits(base)
	if digits == "" || len(digits) > len(weights) {
		return 0, fmt.Errorf("nit: base de %d dígitos fuera de rango", len(digits))
	}
	var sum int
	for i := 0; i < len(digits); i++ {
		d := int(digits[len(digits)-1-i] - '0')
		sum += d * weights[i]
	}
	r := sum % 11
	if r > 1 {
		r = 11 - r
	}
	return byte('0' + r), nil
}

// Normalize limpia el NIT a la forma "base" o "base-dv". Si trae dígito de verificación
// (separado por guion) debe ser correcto.
func Normalize(taxID string) (string, error) {
	taxID = strings.TrimSpace(taxID)
	for _, r := range taxID {
		if !unicode.IsDigit(r) && r != '.' && r != '-' && r != ' ' {
			return "", ErrFormat
		}
	}
	base, dv, hasDV := strings.Cut(taxID, "-")
	base = Digits(base)
	if base == "" {
		return "", ErrFormat
	}
	if !hasDV {
		return base, nil
	}
	dv = Digits(dv)
	if len(dv) != 1 {
		return "", ErrFormat
	}
	expected, err := VerificationDigit(base)
	if err != nil {
		return "", err
	}
	if dv[0] != expected {
		return "", fmt.Errorf("nit: dígito de verificación inválido: esperado %c, recibido %s", expected, dv)
	}
	return base + "-" + dv, nil
}
