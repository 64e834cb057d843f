package cache

import (
	"context"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/jhoicas/flota-api/internal/domain/entity"
	"github.com/jhoicas/flota-api/pkg/logger"
)

func getRedisClient(t *testing.T) *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis no disponible: %v", err)
	}
	return client
}

// countingCatalog cuenta las lecturas que llegan al catálogo real.
type countingCatalog struct {
	part  *entity.Part
	calls atomic.Int32
}

func (c *countingCatalog) GetPart(ctx context.Context, tenantID, partID string) (*entity.Part, error) {
	c.calls.Add(1)
	if c.part == nil || c.part.ID != partID || c.part.TenantID != tenantID {
		return nil, nil
	}
	cp := *c.part
	return &cp, nil
}

func TestPartCatalog_CacheaPrecioDeReferencia(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()
	ctx := context.Background()

	price := decimal.RequireFromString("100.5")
	partID := uuid.NewString()
	next := &countingCatalog{part: &entity.Part{ID: partID, TenantID: "t1", SKU: "FLT", ReferencePrice: &price}}
	c := NewPartCatalog(next, client, time.Minute, logger.Nop())
	defer client.Del(ctx, partKey("t1", partID))

	for i := 0; i < 3; i++ {
		p, err := c.GetPart(ctx, "t1", partID)
		require.NoError(t, err)
		require.NotNil(t, p)
		require.NotNil(t, p.ReferencePrice)
		assert.True(t, p.ReferencePrice.Equal(price))
	}
	assert.Equal(t, int32(1), next.calls.Load())

	// Expirada la entrada, la lectura vuelve al catálogo
	require.NoError(t, client.Del(ctx, partKey("t1", partID)).Err())
	_, err := c.GetPart(ctx, "t1", partID)
	require.NoError(t, err)
	assert.Equal(t, int32(2), next.calls.Load())
}

func TestPartCatalog_NoCacheaInexistentes(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()
	ctx := context.Background()

	next := &countingCatalog{}
	c := NewPartCatalog(next, client, time.Minute, logger.Nop())

	for i := 0; i < 2; i++ {
		p, err := c.GetPart(ctx, "t1", "missing-"+uuid.NewString())
		require.NoError(t, err)
		assert.Nil(t, p)
	}
	assert.Equal(t, int32(2), next.calls.Load())
}

// Sin servidor Redis la lectura se degrada al catálogo.
func TestPartCatalog_RedisCaidoDegrada(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	defer client.Close()

	next := &countingCatalog{part: &entity.Part{ID: "p1", TenantID: "t1"}}
	c := NewPartCatalog(next, client, time.Minute, logger.Nop())

	p, err := c.GetPart(context.Background(), "t1", "p1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, int32(1), next.calls.Load())
}
