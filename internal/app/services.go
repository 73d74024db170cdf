package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/roadmap-backend/internal/data/aggregates"
	"github.com/yungbote/roadmap-backend/internal/data/repos"
	catalogmod "github.com/yungbote/roadmap-backend/internal/modules/catalog"
	roadmapmod "github.com/yungbote/roadmap-backend/internal/modules/roadmap"
	"github.com/yungbote/roadmap-backend/internal/modules/roadmap/matching"
	"github.com/yungbote/roadmap-backend/internal/observability"
	"github.com/yungbote/roadmap-backend/internal/platform/embedding"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
)

func wireUsecases(theDB *gorm.DB, log *logger.Logger, cfg Config, rs repos.Repos, embedder embedding.Embedder, metrics *observability.Metrics) roadmapmod.Usecases {
	log.Info("Wiring usecases...")
	agg := aggregates.NewRoadmapAggregate(aggregates.RoadmapAggregateDeps{
		Base: aggregates.BaseDeps{
			DB:     theDB,
			Log:    log,
			Runner: aggregates.NewGormTxRunner(theDB, aggregates.WithLockTimeout(cfg.DB.LockTimeout)),
			Hooks:  aggregates.NewObservabilityHooks(metrics),
		},
		Roadmaps:    rs.Roadmaps,
		Steps:       rs.Steps,
		Transitions: rs.Transitions,
	})
	return roadmapmod.New(roadmapmod.UsecasesDeps{
		Log:       log,
		Content:   rs.Content,
		Roadmaps:  rs.Roadmaps,
		Steps:     rs.Steps,
		History:   rs.History,
		Agg:       agg,
		Embedder:  embedder,
		Matching:  cfg.Matching,
		Sequencer: matching.RelevanceSequencer{},
		Metrics:   metrics,
	})
}

// NewImporter wires a catalog importer. embedder may be nil when the import
// does not recompute embeddings.
func NewImporter(theDB *gorm.DB, log *logger.Logger, embedder embedding.Embedder) *catalogmod.Importer {
	return catalogmod.NewImporter(catalogmod.ImporterDeps{
		DB:       theDB,
		Log:      log,
		Content:  repos.New(theDB, log).Content,
		Embedder: embedder,
	})
}

// NewEmbedder builds the same embedder chain the server uses.
func NewEmbedder(log *logger.Logger, cfg Config) (embedding.Embedder, func(), error) {
	c, err := wireClients(log, cfg)
	if err != nil {
		return nil, func() {}, err
	}
	return c.Embedder, c.Close, nil
}
