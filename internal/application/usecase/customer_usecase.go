package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Intellisales-api/internal/application/dto"
	"github.com/jhoicas/Intellisales-api/internal/application/tenancy"
	"github.com/jhoicas/Intellisales-api/internal/domain"
	"github.com/jhoicas/Intellisales-api/internal/domain/entity"
	"github.com/jhoicas/Intellisales-api/internal/domain/repository"
	"github.com/jhoicas/Intellisales-api/pkg/nit"
)

// CustomerUseCase casos de uso para clientes del tenant.
type CustomerUseCase struct {
	runner tenancy.TenantTxRunner
	now    func() time.Time
}

// NewCustomerUseCase construye el caso de uso.
func NewCustomerUseCase(runner tenancy.TenantTxRunner) *CustomerUseCase {
	return &CustomerUseCase{runner: runner, now: time.Now}
}

// Create crea un nuevo cliente. El NIT/cédula es único dentro del tenant.
func (uc *CustomerUseCase) Create(ctx context.Context, routingKey string, in dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	taxID, err := normalizeTaxID(in.TaxID)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	customer := &entity.Customer{
		ID:        uuid.New().String(),
		Name:      in.Name,
		TaxID:     taxID,
		Email:     strings.TrimSpace(in.Email),
		Phone:     strings.TrimSpace(in.Phone),
		Address:   strings.TrimSpace(in.Address),
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = uc.runner.RunTenant(ctx, routingKey, func(repos repository.TenantRepos) error {
		existing, err := repos.Customers.GetByTaxID(ctx, customer.TaxID)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrDuplicate
		}
		return repos.Customers.Create(ctx, customer)
	})
	if err != nil {
		return nil, err
	}
	out := dto.FromCustomer(customer)
	return &out, nil
}

// GetByID obtiene un cliente. Devuelve domain.ErrNotFound si no existe.
func (uc *CustomerUseCase) GetByID(ctx context.Context, routingKey, id string) (*dto.CustomerResponse, error) {
	var out *dto.CustomerResponse
	err := uc.runner.RunTenant(ctx, routingKey, func(repos repository.TenantRepos) error {
		c, err := repos.Customers.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if c == nil {
			return domain.ErrNotFound
		}
		r := dto.FromCustomer(c)
		out = &r
		return nil
	})
	return out, err
}

// List lista clientes del tenant.
func (uc *CustomerUseCase) List(ctx context.Context, routingKey string, page dto.PageRequest) (*dto.CustomerListResponse, error) {
	page.DefaultPage()
	items := make([]dto.CustomerResponse, 0, page.Limit)
	err := uc.runner.RunTenant(ctx, routingKey, func(repos repository.TenantRepos) error {
		list, err := repos.Customers.List(ctx, page.Limit, page.Offset)
		if err != nil {
			return err
		}
		for _, c := range list {
			items = append(items, dto.FromCustomer(c))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &dto.CustomerListResponse{Items: items, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}}, nil
}

// Update modifica los campos no vacíos del cliente.
func (uc *CustomerUseCase) Update(ctx context.Context, routingKey, id string, in dto.UpdateCustomerRequest) (*dto.CustomerResponse, error) {
	var taxID string
	if strings.TrimSpace(in.TaxID) != "" {
		v, err := normalizeTaxID(in.TaxID)
		if err != nil {
			return nil, err
		}
		taxID = v
	}
	var out *dto.CustomerResponse
	err := uc.runner.RunTenant(ctx, routingKey, func(repos repository.TenantRepos) error {
		c, err := repos.Customers.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if c == nil {
			return domain.ErrNotFound
		}
		if v := taxID; v != "" && v != c.TaxID {
			other, err := repos.Customers.GetByTaxID(ctx, v)
			if err != nil {
				return err
			}
			if other != nil {
				return domain.ErrDuplicate
			}
			c.TaxID = v
		}
		setIfNotEmpty(&c.Name, in.Name)
		setIfNotEmpty(&c.Email, in.Email)
		setIfNotEmpty(&c.Phone, in.Phone)
		setIfNotEmpty(&c.Address, in.Address)
		c.UpdatedAt = uc.now()
		if err := repos.Customers.Update(ctx, c); err != nil {
			return err
		}
		r := dto.FromCustomer(c)
		out = &r
		return nil
	})
	return out, err
}

// Delete elimina un cliente.
func (uc *CustomerUseCase) Delete(ctx context.Context, routingKey, id string) error {
	return uc.runner.RunTenant(ctx, routingKey, func(repos repository.TenantRepos) error {
		return repos.Customers.Delete(ctx, id)
	})
}

func setIfNotEmpty(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

// normalizeTaxID deja el NIT/cédula en forma canónica; un dígito de verificación incorrecto es entrada inválida.
func normalizeTaxID(raw string) (string, error) {
	v, err := nit.Normalize(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return v, nil
}
