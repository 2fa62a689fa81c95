// Package password envuelve bcrypt como oráculo de hash/verificación de contraseñas.
package password

import (
	"golang.org/x/crypto/bcrypt"
)

// Bcrypt hashea y verifica contraseñas con bcrypt.
type Bcrypt struct {
	cost int
}

// NewBcrypt construye el hasher. cost <= 0 usa bcrypt.DefaultCost.
func NewBcrypt(cost int) *Bcrypt {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &Bcrypt{cost: cost}
}

// Hash devuelve el hash bcrypt de la contraseña en texto plano.
func (b *Bcrypt) Hash(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), b.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify retorna nil si plain corresponde al hash.
func (b *Bcrypt) Verify(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}
