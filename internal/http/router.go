package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/roadmap-backend/internal/http/handlers"
	httpMW "github.com/yungbote/roadmap-backend/internal/http/middleware"
	"github.com/yungbote/roadmap-backend/internal/observability"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	AllowOrigins   []string
	Metrics        *observability.Metrics
	AuthMiddleware *httpMW.AuthMiddleware

	RoadmapHandler *httpH.RoadmapHandler
	HealthHandler  *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.AllowOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	protected := r.Group("/api")
	{
		// Middleware
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Roadmaps
		if h := cfg.RoadmapHandler; h != nil {
			protected.POST("/roadmaps", h.CreateRoadmap)
			protected.GET("/roadmaps", h.ListRoadmaps)
			protected.GET("/roadmaps/active", h.GetActiveRoadmap)
			protected.GET("/roadmaps/:id", h.GetRoadmap)
			protected.POST("/roadmaps/:id/archive", h.ArchiveRoadmap)

			protected.PUT("/roadmap-steps/:id/plan", h.SaveStepPlan)
			protected.POST("/roadmap-steps/:id/complete", h.CompleteStep)

			protected.GET("/catalog", h.ListCatalog)
		}
	}

	return r
}
