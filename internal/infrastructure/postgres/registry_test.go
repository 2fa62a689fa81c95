package postgres_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Intellisales-api/internal/domain"
	"github.com/jhoicas/Intellisales-api/internal/infrastructure/postgres"
)

// ──────────────────────────────────────────────────────────────────────────────
// Opener de prueba: pools perezosos que nunca llegan a conectarse
// ──────────────────────────────────────────────────────────────────────────────

type fakeOpener struct {
	opens atomic.Int32
	delay time.Duration
	gate  chan struct{} // si no es nil, la apertura espera a que se cierre
	mu    sync.Mutex
	errs  []error // errores a devolver en las primeras aperturas
}

func (o *fakeOpener) OpenPool(ctx context.Context, key string) (*pgxpool.Pool, error) {
	o.opens.Add(1)
	if o.gate != nil {
		<-o.gate
	}
	if o.delay > 0 {
		time.Sleep(o.delay)
	}
	o.mu.Lock()
	if len(o.errs) > 0 {
		err := o.errs[0]
		o.errs = o.errs[1:]
		o.mu.Unlock()
		return nil, err
	}
	o.mu.Unlock()
	return pgxpool.New(ctx, "postgres://u:p@127.0.0.1:1/tenant_"+key)
}

func newRegistry(o *fakeOpener) *postgres.Registry {
	return postgres.NewRegistry(o, time.Second, zerolog.Nop())
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestRegistry_AperturaUnicaConcurrente(t *testing.T) {
	opener := &fakeOpener{delay: 50 * time.Millisecond}
	reg := newRegistry(opener)
	defer reg.Close()

	const n = 50
	pools := make([]*pgxpool.Pool, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := reg.GetConnection(context.Background(), "acme_retail_3f9a1c")
			assert.NoError(t, err)
			pools[i] = p
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), opener.opens.Load(), "solo debe abrirse un pool")
	for i := 1; i < n; i++ {
		assert.Same(t, pools[0], pools[i])
	}
	assert.Equal(t, 1, reg.Len())
}

func TestRegistry_ClavesDistintas_PoolsDistintos(t *testing.T) {
	opener := &fakeOpener{}
	reg := newRegistry(opener)
	defer reg.Close()

	a, err := reg.GetConnection(context.Background(), "acme_retail_3f9a1c")
	require.NoError(t, err)
	b, err := reg.GetConnection(context.Background(), "globex_7b2e4d")
	require.NoError(t, err)

	assert.NotSame(t, a, b)
	assert.Equal(t, int32(2), opener.opens.Load())
}

func TestRegistry_ErrorNoSeGuarda(t *testing.T) {
	opener := &fakeOpener{errs: []error{errors.New("connection refused")}}
	reg := newRegistry(opener)
	defer reg.Close()

	_, err := reg.GetConnection(context.Background(), "acme_retail_3f9a1c")
	assert.ErrorIs(t, err, domain.ErrUnavailable)
	assert.Zero(t, reg.Len())

	p, err := reg.GetConnection(context.Background(), "acme_retail_3f9a1c")
	require.NoError(t, err)
	assert.NotNil(t, p)
	assert.Equal(t, int32(2), opener.opens.Load(), "el segundo intento debe reabrir")
}

func TestRegistry_BaseInexistente_Inconsistent(t *testing.T) {
	missing := fmt.Errorf("ping DB: %w", &pgconn.PgError{Code: "3D000", Message: `database "tenant_x" does not exist`})
	reg := newRegistry(&fakeOpener{errs: []error{missing}})
	defer reg.Close()

	_, err := reg.GetConnection(context.Background(), "acme_retail_3f9a1c")
	assert.ErrorIs(t, err, domain.ErrInconsistent)
}

func TestRegistry_RoutingKeyInvalida_NoAbre(t *testing.T) {
	opener := &fakeOpener{}
	reg := newRegistry(opener)
	defer reg.Close()

	for _, key := range []string{"", "acme; DROP DATABASE x", "Acme", "../etc"} {
		_, err := reg.GetConnection(context.Background(), key)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, key)
	}
	assert.Zero(t, opener.opens.Load())
}

func TestRegistry_Evict_ReabreLaSiguienteVez(t *testing.T) {
	opener := &fakeOpener{}
	reg := newRegistry(opener)
	defer reg.Close()

	first, err := reg.GetConnection(context.Background(), "acme_retail_3f9a1c")
	require.NoError(t, err)

	assert.True(t, reg.Evict("acme_retail_3f9a1c"))
	assert.False(t, reg.Evict("acme_retail_3f9a1c"), "un segundo Evict no encuentra nada")

	second, err := reg.GetConnection(context.Background(), "acme_retail_3f9a1c")
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Equal(t, int32(2), opener.opens.Load())
}

// Un llamador que se rinde no aborta la apertura compartida.
func TestRegistry_CancelacionDelLlamador_NoAbortaApertura(t *testing.T) {
	opener := &fakeOpener{gate: make(chan struct{})}
	reg := newRegistry(opener)
	defer reg.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := reg.GetConnection(ctx, "acme_retail_3f9a1c")
	assert.ErrorIs(t, err, domain.ErrUnavailable)

	close(opener.gate)
	require.Eventually(t, func() bool { return reg.Len() == 1 }, time.Second, 5*time.Millisecond)

	_, err = reg.GetConnection(context.Background(), "acme_retail_3f9a1c")
	require.NoError(t, err)
	assert.Equal(t, int32(1), opener.opens.Load())
}

func TestRegistry_Close_RechazaNuevasAperturas(t *testing.T) {
	reg := newRegistry(&fakeOpener{})

	_, err := reg.GetConnection(context.Background(), "acme_retail_3f9a1c")
	require.NoError(t, err)
	reg.Close()
	assert.Zero(t, reg.Len())

	_, err = reg.GetConnection(context.Background(), "acme_retail_3f9a1c")
	assert.ErrorIs(t, err, domain.ErrUnavailable)
}
