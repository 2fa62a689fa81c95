package dto

import "github.com/jhoicas/Intellisales-api/internal/domain/entity"

// FromTenant proyecta un tenant a su forma pública.
func FromTenant(t *entity.Tenant) TenantResponse {
	if t == nil {
		return TenantResponse{}
	}
	return TenantResponse{
		ID:           t.ID,
		RoutingKey:   t.RoutingKey,
		BusinessName: t.BusinessName,
		Email:        t.Email,
		PhoneNumber:  t.Phone,
		Logo:         t.Logo,
		Currency:     t.Currency,
		Domain:       t.Domain,
		Status:       t.Status,
		CreatedAt:    t.CreatedAt,
	}
}

// FromUser proyecta un usuario sin su hash de contraseña.
func FromUser(u *entity.User) UserResponse {
	if u == nil {
		return UserResponse{}
	}
	roles := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		roles = append(roles, r.Name)
	}
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FullName:  u.FullName,
		Roles:     roles,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// FromProduct proyecta un producto.
func FromProduct(p *entity.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		SKU:         p.SKU,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Cost:        p.Cost,
		CategoryID:  p.CategoryID,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// FromCustomer proyecta un cliente.
func FromCustomer(c *entity.Customer) CustomerResponse {
	return CustomerResponse{
		ID:        c.ID,
		Name:      c.Name,
		TaxID:     c.TaxID,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// FromSystemAdmin proyecta un administrador del sistema sin su hash.
func FromSystemAdmin(a *entity.SystemAdmin) SystemAdminResponse {
	if a == nil {
		return SystemAdminResponse{}
	}
	return SystemAdminResponse{
		ID:        a.ID,
		Username:  a.Username,
		Email:     a.Email,
		FullName:  a.FullName,
		IsActive:  a.IsActive,
		CreatedAt: a.CreatedAt,
	}
}
