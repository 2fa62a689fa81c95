package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Intellisales-api/internal/application/dto"
	"github.com/jhoicas/Intellisales-api/internal/application/tenancy"
	"github.com/jhoicas/Intellisales-api/internal/domain"
	"github.com/jhoicas/Intellisales-api/internal/domain/entity"
	"github.com/jhoicas/Intellisales-api/internal/domain/repository"
)

// ProductUseCase casos de uso del catálogo de productos. Cada operación corre sobre la base
// del tenant que la capa HTTP resolvió para la petición.
type ProductUseCase struct {
	runner tenancy.TenantTxRunner
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(runner tenancy.TenantTxRunner) *ProductUseCase {
	return &ProductUseCase{runner: runner}
}

// Create crea un nuevo producto en el tenant.
func (uc *ProductUseCase) Create(ctx context.Context, routingKey string, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if in.Price.IsNegative() || in.Cost.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	product := &entity.Product{
		ID:          uuid.New().String(),
		SKU:         in.SKU,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Cost:        in.Cost,
		CategoryID:  in.CategoryID,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := uc.runner.RunTenant(ctx, routingKey, func(repos repository.TenantRepos) error {
		existing, err := repos.Products.GetBySKU(ctx, in.SKU)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrDuplicate
		}
		return repos.Products.Create(ctx, product)
	})
	if err != nil {
		return nil, err
	}
	out := dto.FromProduct(product)
	return &out, nil
}

// GetByID obtiene un producto por ID. Devuelve (nil, nil) si no existe.
func (uc *ProductUseCase) GetByID(ctx context.Context, routingKey, id string) (*dto.ProductResponse, error) {
	var out *dto.ProductResponse
	err := uc.runner.RunTenant(ctx, routingKey, func(repos repository.TenantRepos) error {
		p, err := repos.Products.GetByID(ctx, id)
		if err != nil || p == nil {
			return err
		}
		r := dto.FromProduct(p)
		out = &r
		return nil
	})
	return out, err
}

// List lista productos del tenant con paginación.
func (uc *ProductUseCase) List(ctx context.Context, routingKey string, page dto.PageRequest) (*dto.ProductListResponse, error) {
	page.DefaultPage()
	items := make([]dto.ProductResponse, 0, page.Limit)
	err := uc.runner.RunTenant(ctx, routingKey, func(repos repository.TenantRepos) error {
		list, err := repos.Products.List(ctx, page.Limit, page.Offset)
		if err != nil {
			return err
		}
		for _, p := range list {
			items = append(items, dto.FromProduct(p))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}
