package app

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/roadmap-backend/internal/data/repos"
	apphttp "github.com/yungbote/roadmap-backend/internal/http"
	roadmapmod "github.com/yungbote/roadmap-backend/internal/modules/roadmap"
	"github.com/yungbote/roadmap-backend/internal/observability"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Metrics  *observability.Metrics
	Repos    repos.Repos
	Usecases roadmapmod.Usecases
	Server   *apphttp.Server

	clients      Clients
	otelShutdown func(context.Context) error
}

// New wires the server. migrate applies the schema before serving.
func New(ctx context.Context, log *logger.Logger, cfg Config, migrate bool) (*App, error) {
	otelShutdown := observability.InitOTel(ctx, log, cfg.Otel)
	metrics := observability.Init(log)

	theDB, err := OpenDB(log, cfg.DB, migrate)
	if err != nil {
		_ = otelShutdown(ctx)
		return nil, err
	}
	clients, err := wireClients(log, cfg)
	if err != nil {
		closeDB(theDB)
		_ = otelShutdown(ctx)
		return nil, err
	}

	reposet := repos.New(theDB, log)
	uc := wireUsecases(theDB, log, cfg, reposet, clients.Embedder, metrics)
	server, err := wireServer(log, cfg, theDB, uc, metrics)
	if err != nil {
		clients.Close()
		closeDB(theDB)
		_ = otelShutdown(ctx)
		return nil, err
	}

	return &App{
		Log:          log,
		DB:           theDB,
		Cfg:          cfg,
		Metrics:      metrics,
		Repos:        reposet,
		Usecases:     uc,
		Server:       server,
		clients:      clients,
		otelShutdown: otelShutdown,
	}, nil
}

// Run serves until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.Server.Run(ctx, a.Cfg.ShutdownTimeout)
}

func (a *App) Close(ctx context.Context) {
	if a == nil {
		return
	}
	a.clients.Close()
	closeDB(a.DB)
	if a.otelShutdown != nil {
		if err := a.otelShutdown(ctx); err != nil && a.Log != nil {
			a.Log.Warn("OpenTelemetry shutdown failed", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
