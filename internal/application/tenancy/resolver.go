package tenancy

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Intellisales-api/internal/domain"
	"github.com/jhoicas/Intellisales-api/internal/domain/entity"
	"github.com/jhoicas/Intellisales-api/internal/domain/repository"
	"github.com/jhoicas/Intellisales-api/internal/domain/tenant"
)

// Source estrategia que resolvió al tenant.
type Source string

const (
	SourceClaim       Source = "claim"
	SourceDomain      Source = "domain"
	SourceIdentifier  Source = "identifier"
	SourceDevFallback Source = "dev_fallback"
)

// Request pistas de identidad de una petición entrante. Todas son opcionales.
type Request struct {
	ClaimTenantID string // tenant_id de un token de sesión ya verificado
	Host          string // header Host tal cual llega
	Identifier    string // header explícito o campo del login (routing key, dominio, email o nombre)
	SystemHost    bool   // el host no identifica a ningún tenant (loopback, hosts internos)
	Sensitive     bool   // la petición va a mutar datos: un resultado de caché se reconfirma
}

// Resolution tenant canónico más cómo se obtuvo.
type Resolution struct {
	Tenant *entity.Tenant
	Source Source
	Cached bool // true si salió del caché sin reconfirmar en metadatos
}

// ResolverConfig parámetros de la cadena de resolución.
type ResolverConfig struct {
	DevMode     bool          // habilita el fallback al primer tenant en hosts de sistema
	Timeout     time.Duration // plazo global de una resolución (0 = sin plazo propio)
	SystemHosts []string
}

// Resolver convierte las pistas de una petición en un tenant confiable.
// Orden (gana la primera coincidencia): claim de sesión -> dominio del host -> identificador
// explícito -> primer tenant (solo en modo desarrollo y host de sistema).
type Resolver struct {
	repo  repository.TenantRepository
	cache TenantCache
	cfg   ResolverConfig
	log   zerolog.Logger
}

// NewResolver construye el resolver. cache nil equivale a no tener caché.
func NewResolver(repo repository.TenantRepository, cache TenantCache, cfg ResolverConfig, log zerolog.Logger) *Resolver {
	if cache == nil {
		cache = NopCache{}
	}
	return &Resolver{repo: repo, cache: cache, cfg: cfg, log: log}
}

// IsSystemHost informa si el host está en la lista configurada de hosts de sistema.
func (r *Resolver) IsSystemHost(host string) bool {
	return tenant.IsSystemHost(host, r.cfg.SystemHosts)
}

// Resolve recorre la cadena de estrategias. Falla con domain.ErrTenantNotFound si ninguna
// produce un tenant activo y con domain.ErrUnavailable si la base de metadatos no responde.
func (r *Resolver) Resolve(ctx context.Context, req Request) (*Resolution, error) {
	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	// El claim es autoritativo: si nombra un tenant inexistente o eliminado no se prueba otra estrategia.
	if req.ClaimTenantID != "" {
		t, err := r.repo.GetByID(ctx, req.ClaimTenantID)
		if err != nil {
			return nil, unavailable("buscar tenant del claim", err)
		}
		if !t.IsActive() {
			return nil, domain.ErrTenantNotFound
		}
		return r.done(&Resolution{Tenant: t, Source: SourceClaim}), nil
	}

	if host := tenant.NormalizeHost(req.Host); host != "" && !req.SystemHost {
		res, err := r.byDomain(ctx, host)
		if err != nil {
			return nil, err
		}
		if res != nil {
			return r.confirm(ctx, res, req.Sensitive)
		}
	}

	if id := strings.TrimSpace(req.Identifier); id != "" {
		res, err := r.byIdentifier(ctx, id)
		if err != nil {
			return nil, err
		}
		if res != nil {
			return r.confirm(ctx, res, req.Sensitive)
		}
	}

	if req.SystemHost && r.cfg.DevMode {
		t, err := r.repo.FindEarliest(ctx)
		if err != nil {
			return nil, unavailable("buscar primer tenant", err)
		}
		if t.IsActive() {
			r.log.Warn().Str("tenant_id", t.ID).Msg("modo desarrollo: host de sistema resuelto al primer tenant")
			return r.done(&Resolution{Tenant: t, Source: SourceDevFallback}), nil
		}
	}

	resolutions.WithLabelValues("not_found").Inc()
	return nil, domain.ErrTenantNotFound
}

// byDomain solo confía en el caché para el host exacto. Una coincidencia por etiqueta
// depende de que ningún otro tenant sea dueño del host completo, y eso solo lo sabe metadatos.
func (r *Resolver) byDomain(ctx context.Context, host string) (*Resolution, error) {
	if t, ok := r.cache.Lookup(ctx, KeyDomain, host); ok && t.IsActive() && tenant.NormalizeHost(t.Domain) == host {
		return &Resolution{Tenant: t, Source: SourceDomain, Cached: true}, nil
	}
	t, err := r.repo.FindByDomain(ctx, host, tenant.LeadingLabel(host))
	if err != nil {
		return nil, unavailable("buscar tenant por dominio", err)
	}
	if !t.IsActive() {
		return nil, nil
	}
	r.cache.Store(ctx, t)
	return &Resolution{Tenant: t, Source: SourceDomain}, nil
}

type probe struct {
	kind  KeyKind
	value string
}

func (r *Resolver) byIdentifier(ctx context.Context, id string) (*Resolution, error) {
	lower := strings.ToLower(id)
	probes := []probe{{KeyRoutingKey, id}}
	// El caché también publica la primera etiqueta del dominio; un identificador sin punto
	// nunca es un dominio completo.
	if strings.Contains(lower, ".") {
		probes = append(probes, probe{KeyDomain, lower})
	}
	if strings.Contains(lower, "@") {
		probes = append(probes, probe{KeyEmail, lower})
	}
	for _, p := range probes {
		if t, ok := r.cache.Lookup(ctx, p.kind, p.value); ok && t.IsActive() {
			return &Resolution{Tenant: t, Source: SourceIdentifier, Cached: true}, nil
		}
	}
	t, err := r.repo.FindByIdentifier(ctx, id)
	if err != nil {
		return nil, unavailable("buscar tenant por identificador", err)
	}
	if !t.IsActive() {
		return nil, nil
	}
	r.cache.Store(ctx, t)
	return &Resolution{Tenant: t, Source: SourceIdentifier}, nil
}

// confirm vuelve a leer el tenant desde metadatos cuando el resultado salió del caché y la
// petición es sensible: una escritura nunca se apoya en un estado de tenant cacheado.
func (r *Resolver) confirm(ctx context.Context, res *Resolution, sensitive bool) (*Resolution, error) {
	if !res.Cached || !sensitive {
		return r.done(res), nil
	}
	fresh, err := r.repo.GetByID(ctx, res.Tenant.ID)
	if err != nil {
		return nil, unavailable("reconfirmar tenant", err)
	}
	if !fresh.IsActive() {
		r.cache.Invalidate(ctx, res.Tenant.ID)
		resolutions.WithLabelValues("not_found").Inc()
		return nil, domain.ErrTenantNotFound
	}
	if fresh.RoutingKey != res.Tenant.RoutingKey || fresh.Domain != res.Tenant.Domain || fresh.Email != res.Tenant.Email {
		r.log.Warn().Str("tenant_id", fresh.ID).Msg("entrada de caché desactualizada, se reemplaza")
		r.cache.Invalidate(ctx, fresh.ID)
		r.cache.Store(ctx, fresh)
	}
	return r.done(&Resolution{Tenant: fresh, Source: res.Source}), nil
}

func (r *Resolver) done(res *Resolution) *Resolution {
	resolutions.WithLabelValues(string(res.Source)).Inc()
	r.log.Debug().
		Str("tenant_id", res.Tenant.ID).
		Str("source", string(res.Source)).
		Bool("cached", res.Cached).
		Msg("tenant resuelto")
	return res
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrUnavailable, op, err)
}
