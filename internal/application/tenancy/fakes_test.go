package tenancy_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/jhoicas/Intellisales-api/internal/application/tenancy"
	"github.com/jhoicas/Intellisales-api/internal/domain"
	"github.com/jhoicas/Intellisales-api/internal/domain/entity"
	"github.com/jhoicas/Intellisales-api/internal/domain/repository"
	"github.com/jhoicas/Intellisales-api/internal/domain/tenant"
)

// ──────────────────────────────────────────────────────────────────────────────
// Repositorio de metadatos en memoria
// ──────────────────────────────────────────────────────────────────────────────

type memTenantRepo struct {
	mu      sync.Mutex
	rows    map[string]*entity.Tenant
	err     error // si no es nil, toda operación falla con este error
	getByID int
	finds   int
}

var _ repository.TenantRepository = (*memTenantRepo)(nil)

func newMemTenantRepo(tenants ...*entity.Tenant) *memTenantRepo {
	r := &memTenantRepo{rows: map[string]*entity.Tenant{}}
	for _, t := range tenants {
		r.rows[t.ID] = t
	}
	return r
}

func clone(t *entity.Tenant) *entity.Tenant {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func (r *memTenantRepo) Create(_ context.Context, t *entity.Tenant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	for _, row := range r.rows {
		if row.DeletedAt != nil {
			continue
		}
		if row.RoutingKey == t.RoutingKey || strings.EqualFold(row.Email, t.Email) ||
			(t.Domain != "" && strings.EqualFold(row.Domain, t.Domain)) {
			return domain.ErrConflict
		}
	}
	r.rows[t.ID] = clone(t)
	return nil
}

func (r *memTenantRepo) GetByID(_ context.Context, id string) (*entity.Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.getByID++
	if r.err != nil {
		return nil, r.err
	}
	return clone(r.rows[id]), nil
}

func (r *memTenantRepo) live() []*entity.Tenant {
	out := make([]*entity.Tenant, 0, len(r.rows))
	for _, t := range r.rows {
		if t.DeletedAt == nil {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// serving tenants vivos y activos, como en las consultas de servicio.
func (r *memTenantRepo) serving() []*entity.Tenant {
	var out []*entity.Tenant
	for _, t := range r.live() {
		if t.Status == entity.TenantStatusActive {
			out = append(out, t)
		}
	}
	return out
}

func (r *memTenantRepo) FindByDomain(_ context.Context, host, label string) (*entity.Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finds++
	if r.err != nil {
		return nil, r.err
	}
	var byLabel *entity.Tenant
	for _, t := range r.serving() {
		d := strings.ToLower(t.Domain)
		if d == "" {
			continue
		}
		if d == host {
			return clone(t), nil
		}
		if byLabel == nil && tenant.LeadingLabel(d) == label {
			byLabel = t
		}
	}
	return clone(byLabel), nil
}

func (r *memTenantRepo) FindByIdentifier(_ context.Context, id string) (*entity.Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finds++
	if r.err != nil {
		return nil, r.err
	}
	lower := strings.ToLower(id)
	matchers := []func(*entity.Tenant) bool{
		func(t *entity.Tenant) bool { return t.RoutingKey == id },
		func(t *entity.Tenant) bool { return t.Domain != "" && strings.ToLower(t.Domain) == lower },
		func(t *entity.Tenant) bool { return strings.ToLower(t.Email) == lower },
		func(t *entity.Tenant) bool { return strings.ToLower(t.BusinessName) == lower },
	}
	for _, m := range matchers {
		for _, t := range r.serving() {
			if m(t) {
				return clone(t), nil
			}
		}
	}
	return nil, nil
}

func (r *memTenantRepo) FindEarliest(context.Context) (*entity.Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, t := range r.live() {
		if t.Status == entity.TenantStatusActive {
			return clone(t), nil
		}
	}
	return nil, nil
}

func (r *memTenantRepo) ExistsActive(_ context.Context, email, dom, key string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return false, r.err
	}
	for _, t := range r.live() {
		if strings.EqualFold(t.Email, email) || t.RoutingKey == key || (dom != "" && strings.EqualFold(t.Domain, dom)) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memTenantRepo) UpdateStatus(_ context.Context, id, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	t, ok := r.rows[id]
	if !ok {
		return domain.ErrTenantNotFound
	}
	t.Status = status
	return nil
}

func (r *memTenantRepo) MarkFailed(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	t, ok := r.rows[id]
	if !ok {
		return domain.ErrTenantNotFound
	}
	t.Status = entity.TenantStatusFailed
	now := t.CreatedAt
	t.DeletedAt = &now
	return nil
}

func (r *memTenantRepo) SoftDelete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.rows[id]
	if !ok {
		return domain.ErrTenantNotFound
	}
	now := t.CreatedAt
	t.DeletedAt = &now
	return nil
}

func (r *memTenantRepo) ListActive(_ context.Context, limit, offset int) ([]*entity.Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	live := r.live()
	if offset > len(live) {
		return nil, nil
	}
	live = live[offset:]
	if limit > 0 && limit < len(live) {
		live = live[:limit]
	}
	return live, nil
}

func (r *memTenantRepo) get(id string) *entity.Tenant {
	r.mu.Lock()
	defer r.mu.Unlock()
	return clone(r.rows[id])
}

func (r *memTenantRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

// ──────────────────────────────────────────────────────────────────────────────
// Caché en memoria
// ──────────────────────────────────────────────────────────────────────────────

type memCache struct {
	mu          sync.Mutex
	entries     map[string]*entity.Tenant
	invalidated []string
}

var _ tenancy.TenantCache = (*memCache)(nil)

func newMemCache() *memCache { return &memCache{entries: map[string]*entity.Tenant{}} }

func (c *memCache) Lookup(_ context.Context, kind tenancy.KeyKind, value string) (*entity.Tenant, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.entries[string(kind)+":"+value]
	return clone(t), ok
}

func (c *memCache) put(kind tenancy.KeyKind, value string, t *entity.Tenant) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[string(kind)+":"+value] = clone(t)
}

func (c *memCache) Store(_ context.Context, t *entity.Tenant) {
	c.put(tenancy.KeyRoutingKey, t.RoutingKey, t)
	c.put(tenancy.KeyEmail, strings.ToLower(t.Email), t)
	if t.Domain != "" {
		c.put(tenancy.KeyDomain, strings.ToLower(t.Domain), t)
	}
}

func (c *memCache) Invalidate(_ context.Context, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, id)
	for k, t := range c.entries {
		if t.ID == id {
			delete(c.entries, k)
		}
	}
}

func (c *memCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// ──────────────────────────────────────────────────────────────────────────────
// Bases físicas, migrador y runner de transacciones por tenant
// ──────────────────────────────────────────────────────────────────────────────

type fakeDatabases struct {
	mu        sync.Mutex
	created   map[string]bool
	createErr error
	dropErr   error
	drops     int
}

func newFakeDatabases() *fakeDatabases { return &fakeDatabases{created: map[string]bool{}} }

func (d *fakeDatabases) Create(_ context.Context, key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.createErr != nil {
		return d.createErr
	}
	d.created[key] = true
	return nil
}

func (d *fakeDatabases) Drop(_ context.Context, key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.drops++
	if d.dropErr != nil {
		return d.dropErr
	}
	delete(d.created, key)
	return nil
}

func (d *fakeDatabases) exists(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.created[key]
}

type fakeMigrator struct {
	err      error
	migrated []string
}

func (m *fakeMigrator) MigrateTenant(_ context.Context, key string) error {
	if m.err != nil {
		return m.err
	}
	m.migrated = append(m.migrated, key)
	return nil
}

// tenantStore contenido de la base de un tenant.
type tenantStore struct {
	permissions map[string]entity.Permission
	roles       map[string]*entity.Role // por nombre
	grants      map[string][]string     // roleID -> permisos
	users       map[string]*entity.User // por id
	userRoles   map[string]map[string]bool
}

func newTenantStore() *tenantStore {
	return &tenantStore{
		permissions: map[string]entity.Permission{},
		roles:       map[string]*entity.Role{},
		grants:      map[string][]string{},
		users:       map[string]*entity.User{},
		userRoles:   map[string]map[string]bool{},
	}
}

type fakeRunner struct {
	mu     sync.Mutex
	stores map[string]*tenantStore
	err    error
}

func newFakeRunner() *fakeRunner { return &fakeRunner{stores: map[string]*tenantStore{}} }

func (r *fakeRunner) store(key string) *tenantStore {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stores[key]
	if !ok {
		s = newTenantStore()
		r.stores[key] = s
	}
	return s
}

func (r *fakeRunner) RunTenant(_ context.Context, key string, fn func(repository.TenantRepos) error) error {
	if r.err != nil {
		return r.err
	}
	s := r.store(key)
	return fn(repository.TenantRepos{
		Users:       &memUsers{s: s},
		Roles:       &memRoles{s: s},
		Permissions: &memPermissions{s: s},
	})
}

type memPermissions struct{ s *tenantStore }

func (p *memPermissions) Upsert(_ context.Context, perms []entity.Permission) error {
	for _, perm := range perms {
		if _, ok := p.s.permissions[perm.Name]; !ok {
			p.s.permissions[perm.Name] = perm
		}
	}
	return nil
}

type memRoles struct{ s *tenantStore }

func (m *memRoles) GetByName(_ context.Context, name string) (*entity.Role, error) {
	r, ok := m.s.roles[name]
	if !ok {
		return nil, nil
	}
	c := *r
	return &c, nil
}

func (m *memRoles) Create(_ context.Context, role *entity.Role) (*entity.Role, error) {
	if r, ok := m.s.roles[role.Name]; ok {
		c := *r
		return &c, nil
	}
	c := *role
	m.s.roles[role.Name] = &c
	return role, nil
}

func (m *memRoles) GrantAll(_ context.Context, roleID string, names []string) error {
	for _, n := range names {
		if _, ok := m.s.permissions[n]; !ok {
			return errors.New("permiso inexistente: " + n)
		}
	}
	m.s.grants[roleID] = append([]string(nil), names...)
	return nil
}

type memUsers struct{ s *tenantStore }

func (m *memUsers) Create(_ context.Context, u *entity.User) error {
	for _, existing := range m.s.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return domain.ErrDuplicate
		}
	}
	c := *u
	m.s.users[u.ID] = &c
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (*entity.User, error) {
	u, ok := m.s.users[id]
	if !ok {
		return nil, nil
	}
	c := *u
	return &c, nil
}

func (m *memUsers) FindByUsernameOrEmail(_ context.Context, v string) (*entity.User, error) {
	v = strings.ToLower(v)
	for _, u := range m.s.users {
		if strings.ToLower(u.Username) == v || strings.ToLower(u.Email) == v {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memUsers) AssignRole(_ context.Context, userID, roleID string) error {
	if m.s.userRoles[userID] == nil {
		m.s.userRoles[userID] = map[string]bool{}
	}
	m.s.userRoles[userID][roleID] = true
	return nil
}
