// Package cache implementa el caché look-aside de tenants sobre Redis.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Intellisales-api/internal/application/tenancy"
	"github.com/jhoicas/Intellisales-api/internal/domain/entity"
	"github.com/jhoicas/Intellisales-api/internal/domain/tenant"
	"github.com/jhoicas/Intellisales-api/pkg/config"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var lookups = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "intellisales",
	Subsystem: "tenant_cache",
	Name:      "lookups_total",
	Help:      "Consultas al caché de tenants por resultado (hit, miss, error).",
}, []string{"result"})

const keyPrefix = "tenant:"

var _ tenancy.TenantCache = (*TenantCache)(nil)

// TenantCache guarda cada tenant bajo varias claves con espacio de nombres
// (tenant:key:, tenant:domain:, tenant:email:) más un set índice tenant:index:<id>
// que permite invalidarlas todas de una vez. Todas comparten el mismo TTL.
type TenantCache struct {
	client  *redis.Client
	ttl     time.Duration
	timeout time.Duration
	log     zerolog.Logger
}

// NewRedisClient abre el cliente y verifica la conexión.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// NewTenantCache construye el caché. timeout acota cada operación contra Redis.
func NewTenantCache(client *redis.Client, ttl, timeout time.Duration, log zerolog.Logger) *TenantCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TenantCache{client: client, ttl: ttl, timeout: timeout, log: log}
}

// Lookup nunca falla: un error de Redis cuenta como ausencia.
func (c *TenantCache) Lookup(ctx context.Context, kind tenancy.KeyKind, value string) (*entity.Tenant, bool) {
	if value == "" {
		return nil, false
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	data, err := c.client.Get(ctx, entryKey(kind, value)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			lookups.WithLabelValues("miss").Inc()
			return nil, false
		}
		lookups.WithLabelValues("error").Inc()
		c.log.Warn().Err(err).Str("kind", string(kind)).Msg("caché de tenants no disponible")
		return nil, false
	}

	var t entity.Tenant
	if err := json.Unmarshal(data, &t); err != nil || t.ID == "" {
		lookups.WithLabelValues("error").Inc()
		c.log.Warn().Err(err).Str("kind", string(kind)).Msg("entrada de caché ilegible, se ignora")
		return nil, false
	}
	lookups.WithLabelValues("hit").Inc()
	return &t, true
}

// Store escribe el tenant bajo todas sus claves y las registra en el índice.
func (c *TenantCache) Store(ctx context.Context, t *entity.Tenant) {
	if t == nil || t.ID == "" {
		return
	}
	data, err := json.Marshal(t)
	if err != nil {
		c.log.Warn().Err(err).Str("tenant_id", t.ID).Msg("no se pudo serializar el tenant")
		return
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	keys := tenantKeys(t)
	index := indexKey(t.ID)
	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, k := range keys {
			pipe.Set(ctx, k, data, c.ttl)
		}
		members := make([]any, len(keys))
		for i, k := range keys {
			members[i] = k
		}
		pipe.SAdd(ctx, index, members...)
		pipe.Expire(ctx, index, c.ttl)
		return nil
	})
	if err != nil {
		c.log.Warn().Err(err).Str("tenant_id", t.ID).Msg("no se pudo guardar el tenant en caché")
	}
}

// Invalidate borra todas las claves registradas en el índice del tenant.
func (c *TenantCache) Invalidate(ctx context.Context, tenantID string) {
	if tenantID == "" {
		return
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	index := indexKey(tenantID)
	keys, err := c.client.SMembers(ctx, index).Result()
	if err != nil {
		c.log.Warn().Err(err).Str("tenant_id", tenantID).Msg("no se pudo leer el índice del caché")
		return
	}
	if err := c.client.Del(ctx, append(keys, index)...).Err(); err != nil {
		c.log.Warn().Err(err).Str("tenant_id", tenantID).Msg("no se pudo invalidar el caché del tenant")
	}
}

func (c *TenantCache) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

// tenantKeys claves bajo las que se publica un tenant. El dominio va solo completo: la
// primera etiqueta no es única entre tenants y nunca se publica.
func tenantKeys(t *entity.Tenant) []string {
	keys := []string{
		entryKey(tenancy.KeyRoutingKey, t.RoutingKey),
		entryKey(tenancy.KeyEmail, t.Email),
	}
	if d := tenant.NormalizeHost(t.Domain); d != "" {
		keys = append(keys, entryKey(tenancy.KeyDomain, d))
	}
	return keys
}

func entryKey(kind tenancy.KeyKind, value string) string {
	if kind != tenancy.KeyRoutingKey {
		value = strings.ToLower(strings.TrimSpace(value))
	}
	return keyPrefix + string(kind) + ":" + value
}

func indexKey(tenantID string) string {
	return keyPrefix + "index:" + tenantID
}
