package roadmap

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/roadmap-backend/internal/data/repos"
	domainagg "github.com/yungbote/roadmap-backend/internal/domain/aggregates"
	"github.com/yungbote/roadmap-backend/internal/domain/catalog"
	"github.com/yungbote/roadmap-backend/internal/modules/roadmap/matching"
	"github.com/yungbote/roadmap-backend/internal/observability"
	"github.com/yungbote/roadmap-backend/internal/platform/dbctx"
	"github.com/yungbote/roadmap-backend/internal/platform/embedding"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
)

type UsecasesDeps struct {
	Log *logger.Logger

	Content  repos.KnowledgeContentRepo
	Roadmaps repos.RoadmapRepo
	Steps    repos.RoadmapStepRepo
	History  repos.LearningHistoryRepo
	Agg      domainagg.RoadmapAggregate

	Embedder  embedding.Embedder
	Matching  matching.Config
	Sequencer matching.Sequencer

	Metrics *observability.Metrics
	Now     func() time.Time
}

type Usecases struct {
	deps    UsecasesDeps
	matcher *matching.Matcher
}

func New(deps UsecasesDeps) Usecases {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	deps.Log = deps.Log.With("service", "RoadmapUsecases")
	if deps.Now == nil {
		deps.Now = func() time.Time { return time.Now().UTC() }
	}
	if deps.Metrics == nil {
		deps.Metrics = observability.Current()
	}
	m := matching.New(matching.Deps{
		Log:       deps.Log,
		Embedder:  deps.Embedder,
		Catalog:   contentReader{repo: deps.Content},
		Sequencer: deps.Sequencer,
		Config:    deps.Matching,
	})
	return Usecases{deps: deps, matcher: m}
}

func (u Usecases) WithLog(log *logger.Logger) Usecases {
	u.deps.Log = log
	return u
}

// contentReader adapts the catalog repo to matching.CatalogReader.
type contentReader struct {
	repo repos.KnowledgeContentRepo
}

func (r contentReader) ListContent(ctx context.Context, exclude []uuid.UUID) ([]*catalog.KnowledgeContent, error) {
	return r.repo.ListContent(dbctx.Context{Ctx: ctx}, exclude)
}
