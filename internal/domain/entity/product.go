package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo de un tenant.
// No lleva company_id: el aislamiento lo da la base física del tenant.
type Product struct {
	ID          string
	SKU         string // código único dentro del tenant
	Name        string
	Description string
	Price       decimal.Decimal // precio de venta
	Cost        decimal.Decimal
	CategoryID  *string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
