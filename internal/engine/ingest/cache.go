package ingest

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// FeedCache guarda o feed serializado do fornecedor por esporte.
type FeedCache interface {
	Get(ctx context.Context, key string) ([]ProviderEvent, bool)
	Set(ctx context.Context, key string, feed []ProviderEvent, ttl time.Duration)
}

// RedisFeedCache é o FeedCache de produção. Falha de cache nunca
// propaga erro: miss no pior caso.
type RedisFeedCache struct {
	R   *redis.Client
	Log *zap.Logger
}

func (c *RedisFeedCache) Get(ctx context.Context, key string) ([]ProviderEvent, bool) {
	raw, err := c.R.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var feed []ProviderEvent
	if err := json.Unmarshal(raw, &feed); err != nil {
		return nil, false
	}
	return feed, true
}

func (c *RedisFeedCache) Set(ctx context.Context, key string, feed []ProviderEvent, ttl time.Duration) {
	raw, err := json.Marshal(feed)
	if err != nil {
		return
	}
	if err := c.R.Set(ctx, key, raw, ttl).Err(); err != nil {
		c.Log.Warn("feed cache write failed", zap.String("key", key), zap.Error(err))
	}
}
