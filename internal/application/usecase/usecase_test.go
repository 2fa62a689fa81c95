package usecase_test

import (
	"context"
	"sort"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Intellisales-api/internal/application/dto"
	"github.com/jhoicas/Intellisales-api/internal/application/usecase"
	"github.com/jhoicas/Intellisales-api/internal/domain"
	"github.com/jhoicas/Intellisales-api/internal/domain/entity"
	"github.com/jhoicas/Intellisales-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Bases de tenant en memoria
// ──────────────────────────────────────────────────────────────────────────────

type memProducts struct {
	repository.ProductRepository
	rows map[string]*entity.Product
}

func (m *memProducts) Create(_ context.Context, p *entity.Product) error {
	m.rows[p.ID] = p
	return nil
}

func (m *memProducts) GetByID(_ context.Context, id string) (*entity.Product, error) {
	return m.rows[id], nil
}

func (m *memProducts) GetBySKU(_ context.Context, sku string) (*entity.Product, error) {
	for _, p := range m.rows {
		if p.SKU == sku {
			return p, nil
		}
	}
	return nil, nil
}

func (m *memProducts) List(_ context.Context, limit, offset int) ([]*entity.Product, error) {
	out := make([]*entity.Product, 0, len(m.rows))
	for _, p := range m.rows {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

type memCustomers struct {
	rows map[string]*entity.Customer
}

func (m *memCustomers) Create(_ context.Context, c *entity.Customer) error {
	cp := *c
	m.rows[c.ID] = &cp
	return nil
}

func (m *memCustomers) GetByID(_ context.Context, id string) (*entity.Customer, error) {
	c, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (m *memCustomers) GetByTaxID(_ context.Context, taxID string) (*entity.Customer, error) {
	for _, c := range m.rows {
		if c.TaxID == taxID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memCustomers) List(_ context.Context, limit, offset int) ([]*entity.Customer, error) {
	out := make([]*entity.Customer, 0, len(m.rows))
	for _, c := range m.rows {
		out = append(out, c)
	}
	return out, nil
}

func (m *memCustomers) Update(_ context.Context, c *entity.Customer) error {
	if _, ok := m.rows[c.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *c
	m.rows[c.ID] = &cp
	return nil
}

func (m *memCustomers) Delete(_ context.Context, id string) error {
	if _, ok := m.rows[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

// memRunner una base en memoria por routing key.
type memRunner struct {
	products  map[string]*memProducts
	customers map[string]*memCustomers
}

func newMemRunner() *memRunner {
	return &memRunner{products: map[string]*memProducts{}, customers: map[string]*memCustomers{}}
}

func (r *memRunner) RunTenant(_ context.Context, key string, fn func(repository.TenantRepos) error) error {
	if r.products[key] == nil {
		r.products[key] = &memProducts{rows: map[string]*entity.Product{}}
		r.customers[key] = &memCustomers{rows: map[string]*entity.Customer{}}
	}
	return fn(repository.TenantRepos{Products: r.products[key], Customers: r.customers[key]})
}

// ──────────────────────────────────────────────────────────────────────────────
// Products
// ──────────────────────────────────────────────────────────────────────────────

func TestProductUseCase_AisladoPorTenant(t *testing.T) {
	runner := newMemRunner()
	uc := usecase.NewProductUseCase(runner)
	ctx := context.Background()

	in := dto.CreateProductRequest{SKU: "SKU-1", Name: "Café", Price: decimal.NewFromInt(12000)}
	created, err := uc.Create(ctx, "acme_retail_3f9a1c", in)
	require.NoError(t, err)

	// El mismo SKU en otro tenant no choca.
	_, err = uc.Create(ctx, "globex_7b2e4d", in)
	require.NoError(t, err)

	_, err = uc.Create(ctx, "acme_retail_3f9a1c", in)
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	got, err := uc.GetByID(ctx, "globex_7b2e4d", created.ID)
	require.NoError(t, err)
	assert.Nil(t, got, "un producto de acme no es visible desde globex")

	list, err := uc.List(ctx, "acme_retail_3f9a1c", dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)
	assert.Equal(t, 20, list.Page.Limit)
}

func TestProductUseCase_PrecioNegativo(t *testing.T) {
	uc := usecase.NewProductUseCase(newMemRunner())
	_, err := uc.Create(context.Background(), "acme_retail_3f9a1c", dto.CreateProductRequest{SKU: "X", Name: "X", Price: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Customers
// ──────────────────────────────────────────────────────────────────────────────

func TestCustomerUseCase_CicloCompleto(t *testing.T) {
	uc := usecase.NewCustomerUseCase(newMemRunner())
	ctx := context.Background()
	key := "acme_retail_3f9a1c"

	created, err := uc.Create(ctx, key, dto.CreateCustomerRequest{Name: " Ana ", TaxID: "900123"})
	require.NoError(t, err)
	assert.Equal(t, "Ana", created.Name)

	_, err = uc.Create(ctx, key, dto.CreateCustomerRequest{Name: "Otra", TaxID: "900123"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	updated, err := uc.Update(ctx, key, created.ID, dto.UpdateCustomerRequest{Phone: "300 000 0000"})
	require.NoError(t, err)
	assert.Equal(t, "300 000 0000", updated.Phone)
	assert.Equal(t, "Ana", updated.Name, "los campos vacíos no se modifican")

	require.NoError(t, uc.Delete(ctx, key, created.ID))
	_, err = uc.GetByID(ctx, key, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCustomerUseCase_UpdateNoPisaOtroNIT(t *testing.T) {
	uc := usecase.NewCustomerUseCase(newMemRunner())
	ctx := context.Background()
	key := "acme_retail_3f9a1c"

	a, err := uc.Create(ctx, key, dto.CreateCustomerRequest{Name: "A", TaxID: "111"})
	require.NoError(t, err)
	_, err = uc.Create(ctx, key, dto.CreateCustomerRequest{Name: "B", TaxID: "222"})
	require.NoError(t, err)

	_, err = uc.Update(ctx, key, a.ID, dto.UpdateCustomerRequest{TaxID: "222"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestCustomerUseCase_Validacion(t *testing.T) {
	uc := usecase.NewCustomerUseCase(newMemRunner())
	ctx := context.Background()
	_, err := uc.Create(ctx, "acme_retail_3f9a1c", dto.CreateCustomerRequest{Name: "  ", TaxID: "1"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Create(ctx, "acme_retail_3f9a1c", dto.CreateCustomerRequest{Name: "DIAN", TaxID: "800197268-5"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "dígito de verificación incorrecto")

	created, err := uc.Create(ctx, "acme_retail_3f9a1c", dto.CreateCustomerRequest{Name: "DIAN", TaxID: "800.197.268-4"})
	require.NoError(t, err)
	assert.Equal(t, "800197268-4", created.TaxID)
}
