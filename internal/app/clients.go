package app

import (
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/roadmap-backend/internal/clients/redis"
	"github.com/yungbote/roadmap-backend/internal/platform/embedding"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
	"github.com/yungbote/roadmap-backend/internal/platform/openai"
)

type Clients struct {
	OpenAI   *openai.Client
	Redis    *goredis.Client
	Embedder embedding.Embedder
}

// wireClients builds the embedder chain: OpenAI, fronted by the Redis cache
// when REDIS_ADDR is set.
func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	oa, err := openai.NewClient(log, cfg.OpenAI)
	if err != nil {
		return Clients{}, fmt.Errorf("init openai client: %w", err)
	}
	out := Clients{OpenAI: oa, Embedder: oa}

	if cfg.RedisEnabled() {
		rdb, err := redis.NewClient(log, cfg.Redis)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis: %w", err)
		}
		cache, err := redis.NewEmbeddingCache(log, rdb, oa, oa.Model(), cfg.EmbeddingCacheTTL)
		if err != nil {
			_ = rdb.Close()
			return Clients{}, fmt.Errorf("init embedding cache: %w", err)
		}
		out.Redis = rdb
		out.Embedder = cache
	}
	return out, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
