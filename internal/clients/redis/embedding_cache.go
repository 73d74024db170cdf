package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/roadmap-backend/internal/observability"
	"github.com/yungbote/roadmap-backend/internal/platform/embedding"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
)

const defaultEmbeddingTTL = 7 * 24 * time.Hour

// EmbeddingCache memoizes goal embeddings in redis. Redis failures degrade to
// calling the inner embedder.
type EmbeddingCache struct {
	log   *logger.Logger
	rdb   goredis.Cmdable
	inner embedding.Embedder
	model string
	ttl   time.Duration
}

var _ embedding.Embedder = (*EmbeddingCache)(nil)

func NewEmbeddingCache(log *logger.Logger, rdb goredis.Cmdable, inner embedding.Embedder, model string, ttl time.Duration) (*EmbeddingCache, error) {
	if inner == nil {
		return nil, fmt.Errorf("inner embedder required")
	}
	if rdb == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if log == nil {
		log = logger.Nop()
	}
	if ttl <= 0 {
		ttl = defaultEmbeddingTTL
	}
	return &EmbeddingCache{
		log:   log.With("service", "EmbeddingCache"),
		rdb:   rdb,
		inner: inner,
		model: strings.TrimSpace(model),
		ttl:   ttl,
	}, nil
}

func (c *EmbeddingCache) Embed(ctx context.Context, text string) ([]float32, error) {
	key := embeddingKey(c.model, text)

	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var vec []float32
		if uErr := json.Unmarshal(raw, &vec); uErr == nil && len(vec) > 0 {
			c.count("hit")
			return vec, nil
		}
		c.count("corrupt")
	case errors.Is(err, goredis.Nil):
		c.count("miss")
	default:
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.count("error")
		c.log.Warn("Embedding cache read failed", "error", err)
	}

	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if b, mErr := json.Marshal(vec); mErr == nil {
		if sErr := c.rdb.Set(ctx, key, b, c.ttl).Err(); sErr != nil {
			c.log.Warn("Embedding cache write failed", "error", sErr)
		}
	}
	return vec, nil
}

func (c *EmbeddingCache) count(result string) {
	if m := observability.Current(); m != nil {
		m.IncEmbeddingCache(result)
	}
}

// embeddingKey is stable across processes; the model is part of the key so a
// model change never serves vectors of the wrong dimension.
func embeddingKey(model, text string) string {
	sum := sha256.Sum256([]byte(text))
	if model == "" {
		model = "default"
	}
	return "roadmap:emb:" + model + ":" + hex.EncodeToString(sum[:])
}
