// Package cache decoradores de lectura sobre Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/jhoicas/flota-api/internal/domain/entity"
	"github.com/jhoicas/flota-api/internal/domain/repository"
	"github.com/jhoicas/flota-api/pkg/logger"
)

const partKeyPrefix = "part:"

var _ repository.PartCatalog = (*PartCatalog)(nil)

// PartCatalog cachea las lecturas del catálogo de repuestos (precio de referencia
// incluido). Redis caído degrada a lectura directa del catálogo.
type PartCatalog struct {
	next   repository.PartCatalog
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

// NewPartCatalog envuelve next con caché de ttl.
func NewPartCatalog(next repository.PartCatalog, client *redis.Client, ttl time.Duration, log *logger.Logger) *PartCatalog {
	return &PartCatalog{next: next, client: client, ttl: ttl, log: log.Component("part_cache")}
}

func partKey(tenantID, partID string) string {
	return partKeyPrefix + tenantID + ":" + partID
}

// GetPart lee de Redis y, si no está, del catálogo; solo se cachean repuestos existentes.
func (c *PartCatalog) GetPart(ctx context.Context, tenantID, partID string) (*entity.Part, error) {
	key := partKey(tenantID, partID)
	val, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var p entity.Part
		if jerr := json.Unmarshal(val, &p); jerr == nil {
			return &p, nil
		}
		c.log.Warn().Str("key", key).Msg("entrada de caché corrupta, se ignora")
	case !errors.Is(err, redis.Nil):
		c.log.Warn().Err(err).Str("key", key).Msg("redis no disponible, lectura directa del catálogo")
	}

	part, err := c.next.GetPart(ctx, tenantID, partID)
	if err != nil || part == nil {
		return part, err
	}
	if raw, jerr := json.Marshal(part); jerr == nil {
		if serr := c.client.Set(ctx, key, raw, c.ttl).Err(); serr != nil {
			c.log.Warn().Err(serr).Str("key", key).Msg("no se pudo cachear el repuesto")
		}
	}
	return part, nil
}

// NewClient crea el cliente desde una URL redis://.
func NewClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}
