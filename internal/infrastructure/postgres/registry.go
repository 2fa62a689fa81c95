package postgres

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/jhoicas/Intellisales-api/internal/domain"
	"github.com/jhoicas/Intellisales-api/internal/domain/tenant"
)

var (
	registryOpens = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "intellisales",
		Subsystem: "registry",
		Name:      "opens_total",
		Help:      "Aperturas de pool de tenant por resultado.",
	}, []string{"result"})

	registryPools = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "intellisales",
		Subsystem: "registry",
		Name:      "open_pools",
		Help:      "Pools de tenant abiertos en este proceso.",
	})
)

// PoolOpener abre el pool de la base física identificada por la routing key.
type PoolOpener interface {
	OpenPool(ctx context.Context, routingKey string) (*pgxpool.Pool, error)
}

// Registry mantiene un pool por tenant durante la vida del proceso.
// Con N peticiones concurrentes para una routing key aún no abierta se abre un solo pool;
// los errores de apertura no se guardan, la siguiente petición reintenta.
type Registry struct {
	opener  PoolOpener
	timeout time.Duration
	log     zerolog.Logger

	mu     sync.RWMutex
	pools  map[string]*pgxpool.Pool
	closed bool
	group  singleflight.Group
}

// NewRegistry construye el registro. connectTimeout acota cada apertura (0 = sin plazo propio).
func NewRegistry(opener PoolOpener, connectTimeout time.Duration, log zerolog.Logger) *Registry {
	return &Registry{
		opener:  opener,
		timeout: connectTimeout,
		log:     log,
		pools:   make(map[string]*pgxpool.Pool),
	}
}

// GetConnection devuelve el pool del tenant, abriéndolo la primera vez.
// Si ctx vence mientras otra goroutine abre el pool, este llamador recibe ErrUnavailable
// pero la apertura compartida continúa para el resto.
func (r *Registry) GetConnection(ctx context.Context, routingKey string) (*pgxpool.Pool, error) {
	if !tenant.ValidRoutingKey(routingKey) {
		return nil, fmt.Errorf("%w: routing key %q", domain.ErrInvalidInput, routingKey)
	}
	if pool := r.lookup(routingKey); pool != nil {
		return pool, nil
	}

	ch := r.group.DoChan(routingKey, func() (any, error) {
		if pool := r.lookup(routingKey); pool != nil {
			return pool, nil
		}
		return r.open(ctx, routingKey)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*pgxpool.Pool), nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: abrir conexión de %s: %w", domain.ErrUnavailable, routingKey, ctx.Err())
	}
}

func (r *Registry) open(ctx context.Context, routingKey string) (*pgxpool.Pool, error) {
	octx := context.WithoutCancel(ctx)
	if r.timeout > 0 {
		var cancel context.CancelFunc
		octx, cancel = context.WithTimeout(octx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	pool, err := r.opener.OpenPool(octx, routingKey)
	if err != nil {
		registryOpens.WithLabelValues("error").Inc()
		r.log.Error().Err(err).Str("routing_key", routingKey).Msg("no se pudo abrir la base del tenant")
		if isMissingDatabase(err) {
			return nil, fmt.Errorf("%w: %s: %w", domain.ErrInconsistent, routingKey, err)
		}
		return nil, fmt.Errorf("%w: abrir conexión de %s: %w", domain.ErrUnavailable, routingKey, err)
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		pool.Close()
		return nil, fmt.Errorf("%w: registro cerrado", domain.ErrUnavailable)
	}
	// Un Evict durante la apertura pudo dejar otra apertura en curso; gana la primera que llegue.
	if existing, ok := r.pools[routingKey]; ok {
		r.mu.Unlock()
		pool.Close()
		return existing, nil
	}
	r.pools[routingKey] = pool
	r.mu.Unlock()

	registryOpens.WithLabelValues("ok").Inc()
	registryPools.Inc()
	r.log.Info().Str("routing_key", routingKey).Dur("elapsed", time.Since(start)).Msg("pool de tenant abierto")
	return pool, nil
}

func (r *Registry) lookup(routingKey string) *pgxpool.Pool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.pools[routingKey]
}

// Evict cierra y olvida el pool del tenant. La siguiente GetConnection abre uno nuevo.
// Devuelve false si no había pool registrado.
func (r *Registry) Evict(routingKey string) bool {
	r.mu.Lock()
	pool, ok := r.pools[routingKey]
	delete(r.pools, routingKey)
	r.mu.Unlock()
	r.group.Forget(routingKey)
	if !ok {
		return false
	}
	pool.Close()
	registryPools.Dec()
	r.log.Info().Str("routing_key", routingKey).Msg("pool de tenant cerrado")
	return true
}

// Len número de pools abiertos.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.pools)
}

// Close cierra todos los pools. Tras Close toda GetConnection nueva falla.
func (r *Registry) Close() {
	r.mu.Lock()
	pools := r.pools
	r.pools = make(map[string]*pgxpool.Pool)
	r.closed = true
	r.mu.Unlock()

	for key, pool := range pools {
		pool.Close()
		registryPools.Dec()
		r.log.Debug().Str("routing_key", key).Msg("pool de tenant cerrado")
	}
}
