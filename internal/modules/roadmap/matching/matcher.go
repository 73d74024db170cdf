package matching

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/roadmap-backend/internal/domain/catalog"
	"github.com/yungbote/roadmap-backend/internal/domain/roadmap"
	"github.com/yungbote/roadmap-backend/internal/observability"
	"github.com/yungbote/roadmap-backend/internal/platform/embedding"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
)

// CatalogReader lists catalog items not in exclude, with embeddings.
type CatalogReader interface {
	ListContent(ctx context.Context, exclude []uuid.UUID) ([]*catalog.KnowledgeContent, error)
}

type CatalogReaderFunc func(ctx context.Context, exclude []uuid.UUID) ([]*catalog.KnowledgeContent, error)

func (f CatalogReaderFunc) ListContent(ctx context.Context, exclude []uuid.UUID) ([]*catalog.KnowledgeContent, error) {
	return f(ctx, exclude)
}

type Selection struct {
	ContentID uuid.UUID
	Order     int
	Score     float64
	Content   *catalog.KnowledgeContent
}

type Deps struct {
	Log       *logger.Logger
	Embedder  embedding.Embedder
	Catalog   CatalogReader
	Sequencer Sequencer
	Config    Config
}

type Matcher struct {
	log      *logger.Logger
	embedder embedding.Embedder
	catalog  CatalogReader
	seq      Sequencer
	cfg      Config
}

func New(deps Deps) *Matcher {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	seq := deps.Sequencer
	if seq == nil {
		seq = RelevanceSequencer{}
	}
	cfg := deps.Config
	if cfg == (Config{}) {
		cfg = DefaultConfig()
	}
	return &Matcher{
		log:      log.With("service", "GoalMatcher"),
		embedder: deps.Embedder,
		catalog:  deps.Catalog,
		seq:      seq,
		cfg:      cfg.normalized(),
	}
}

func (m *Matcher) Config() Config { return m.cfg }

// Match returns 5 to 7 catalog items for goal in step order. learned is never
// mutated.
func (m *Matcher) Match(ctx context.Context, goal string, learned map[uuid.UUID]struct{}) (out []Selection, err error) {
	ctx, span := observability.StartSpan(ctx, "matching.Match", attribute.Int("learned.count", len(learned)))
	defer func() { observability.EndSpan(span, err) }()

	start := time.Now()
	vec, err := m.embedder.Embed(ctx, goal)
	if err != nil {
		return nil, roadmap.NewGenerationError(roadmap.KindEmbeddingService, "embed goal", err)
	}
	if len(vec) == 0 {
		return nil, roadmap.NewGenerationError(roadmap.KindEmbeddingService, "embed goal", embedding.ErrEmptyVector)
	}

	exclude := make([]uuid.UUID, 0, len(learned))
	for id := range learned {
		exclude = append(exclude, id)
	}
	items, err := m.catalog.ListContent(ctx, exclude)
	if err != nil {
		return nil, roadmap.NewGenerationError(roadmap.KindDatabaseSearch, "list catalog", err)
	}

	ranked, skipped := Rank(vec, items, learned)
	if len(skipped) > 0 {
		ids := make([]string, 0, len(skipped))
		for _, s := range skipped {
			ids = append(ids, s.Slug)
		}
		m.log.Warn("Skipping catalog items without comparable embeddings",
			"count", len(skipped),
			"slugs", ids,
			"goal_dims", len(vec),
		)
	}

	selected, err := Select(ranked, m.cfg)
	if err != nil {
		m.log.Info("Not enough eligible content",
			"eligible", len(ranked),
			"catalog", len(items),
			"excluded", len(learned),
		)
		return nil, err
	}
	selected = m.seq.Sequence(selected)

	out = make([]Selection, len(selected))
	for i, c := range selected {
		out[i] = Selection{ContentID: c.Content.ID, Order: i, Score: c.Score, Content: c.Content}
	}
	span.SetAttributes(attribute.Int("steps", len(out)), attribute.Int("eligible", len(ranked)))
	m.log.Debug("Matched goal to content",
		"steps", len(out),
		"eligible", len(ranked),
		"elapsed", time.Since(start).String(),
	)
	return out, nil
}
