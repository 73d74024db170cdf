package app

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	apphttp "github.com/yungbote/roadmap-backend/internal/http"
	httpH "github.com/yungbote/roadmap-backend/internal/http/handlers"
	httpMW "github.com/yungbote/roadmap-backend/internal/http/middleware"
	roadmapmod "github.com/yungbote/roadmap-backend/internal/modules/roadmap"
	"github.com/yungbote/roadmap-backend/internal/observability"
	"github.com/yungbote/roadmap-backend/internal/platform/authtoken"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
)

func wireServer(log *logger.Logger, cfg Config, theDB *gorm.DB, uc roadmapmod.Usecases, metrics *observability.Metrics) (*apphttp.Server, error) {
	log.Info("Wiring HTTP server...")
	verifier, err := authtoken.NewVerifier(cfg.JWTSecretKey, cfg.JWTIssuer, cfg.JWTLeeway)
	if err != nil {
		return nil, fmt.Errorf("init token verifier: %w", err)
	}
	ping := func(ctx context.Context) error {
		sqlDB, err := theDB.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = cfg.Otel.ServiceName
	}
	return apphttp.NewServer(log, cfg.Addr, apphttp.RouterConfig{
		Log:            log,
		ServiceName:    serviceName,
		AllowOrigins:   cfg.AllowOrigins,
		Metrics:        metrics,
		AuthMiddleware: httpMW.NewAuthMiddleware(log, verifier),
		RoadmapHandler: httpH.NewRoadmapHandler(log, uc),
		HealthHandler:  httpH.NewHealthHandler(ping),
	}), nil
}
