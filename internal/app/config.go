package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/roadmap-backend/internal/clients/redis"
	"github.com/yungbote/roadmap-backend/internal/data/db"
	"github.com/yungbote/roadmap-backend/internal/modules/roadmap/matching"
	"github.com/yungbote/roadmap-backend/internal/observability"
	"github.com/yungbote/roadmap-backend/internal/platform/envutil"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
	"github.com/yungbote/roadmap-backend/internal/platform/openai"
)

const (
	ServiceName = "roadmap-backend"
	devSecret   = "dev-secret-change-me"
)

// Version is set at build time with -ldflags.
var Version = "dev"

type Config struct {
	Env             string
	Addr            string
	ShutdownTimeout time.Duration
	AllowOrigins    []string

	JWTSecretKey   string
	JWTIssuer      string
	JWTLeeway      time.Duration
	AccessTokenTTL time.Duration

	DB                db.Config
	OpenAI            openai.Config
	Redis             redis.Config
	EmbeddingCacheTTL time.Duration
	Matching          matching.Config
	Otel              observability.OtelConfig
}

func (c Config) Production() bool {
	switch strings.ToLower(c.Env) {
	case "prod", "production":
		return true
	}
	return false
}

// RedisEnabled reports whether an embedding cache should be wired.
func (c Config) RedisEnabled() bool {
	return strings.TrimSpace(c.Redis.Addr) != ""
}

func LoadConfig(log *logger.Logger) (Config, error) {
	cfg := Config{
		Env:             envutil.Logged(log, "APP_ENV", "development"),
		Addr:            envutil.Logged(log, "HTTP_ADDR", ":8080"),
		ShutdownTimeout: envutil.Duration("HTTP_SHUTDOWN_TIMEOUT", 15*time.Second),
		AllowOrigins:    splitList(envutil.String("CORS_ALLOW_ORIGINS", "")),

		JWTSecretKey:   envutil.String("JWT_SECRET_KEY", ""),
		JWTIssuer:      envutil.String("JWT_ISSUER", ""),
		JWTLeeway:      envutil.Duration("JWT_LEEWAY", 30*time.Second),
		AccessTokenTTL: envutil.Duration("ACCESS_TOKEN_TTL", time.Hour),

		DB:     db.ConfigFromEnv(log),
		OpenAI: openai.ConfigFromEnv(),
		Redis: redis.Config{
			Addr:     envutil.String("REDIS_ADDR", ""),
			Password: envutil.String("REDIS_PASSWORD", ""),
			DB:       envutil.Int("REDIS_DB", 0),
		},
		EmbeddingCacheTTL: envutil.Duration("EMBEDDING_CACHE_TTL", 24*time.Hour),
		Matching:          matching.ConfigFromEnv(),
	}
	cfg.Otel = observability.OtelConfigFromEnv(ServiceName, cfg.Env, Version)

	if cfg.JWTSecretKey == "" {
		if cfg.Production() {
			return Config{}, fmt.Errorf("JWT_SECRET_KEY is required in production")
		}
		if log != nil {
			log.Warn("JWT_SECRET_KEY not set, using development secret")
		}
		cfg.JWTSecretKey = devSecret
	}
	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
