package roadmap

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	domainagg "github.com/yungbote/roadmap-backend/internal/domain/aggregates"
	"github.com/yungbote/roadmap-backend/internal/domain/catalog"
	types "github.com/yungbote/roadmap-backend/internal/domain/roadmap"
	"github.com/yungbote/roadmap-backend/internal/modules/roadmap/goal"
	"github.com/yungbote/roadmap-backend/internal/modules/roadmap/validation"
	"github.com/yungbote/roadmap-backend/internal/observability"
	"github.com/yungbote/roadmap-backend/internal/platform/dbctx"
)

// GenerateRoadmap turns goal text into a new active roadmap for userID.
//
// Failures are *types.GenerationError, types.ErrActiveRoadmapExists, or an
// aggregate error from persistence.
func (u Usecases) GenerateRoadmap(ctx context.Context, userID uuid.UUID, goalText string) (view RoadmapView, err error) {
	ctx, span := observability.StartSpan(ctx, "roadmap.GenerateRoadmap")
	defer func() {
		observability.EndSpan(span, err)
		u.deps.Metrics.ObserveGeneration(generationOutcome(err), len(view.Steps))
	}()

	if userID == uuid.Nil {
		return RoadmapView{}, types.NewGenerationError(types.KindInvalidGoal, "missing user", nil)
	}
	g, err := goal.Normalize(goalText)
	if err != nil {
		return RoadmapView{}, err
	}

	dbc := dbctx.Context{Ctx: ctx}
	active, err := u.deps.Roadmaps.GetActiveByUser(dbc, userID)
	if err != nil {
		return RoadmapView{}, types.NewGenerationError(types.KindDatabaseSearch, "load active roadmap", err)
	}
	if active != nil {
		return RoadmapView{}, fmt.Errorf("roadmap %s: %w", active.ID, types.ErrActiveRoadmapExists)
	}

	var (
		catalogCount int64
		learnedIDs   []uuid.UUID
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		n, err := u.deps.Content.Count(dbctx.Context{Ctx: egCtx})
		if err != nil {
			return fmt.Errorf("count catalog: %w", err)
		}
		catalogCount = n
		return nil
	})
	eg.Go(func() error {
		ids, err := u.deps.History.LearnedContentIDs(dbctx.Context{Ctx: egCtx}, userID)
		if err != nil {
			return fmt.Errorf("load learning history: %w", err)
		}
		learnedIDs = ids
		return nil
	})
	if err := eg.Wait(); err != nil {
		return RoadmapView{}, types.NewGenerationError(types.KindDatabaseSearch, "preload", err)
	}

	cfg := u.matcher.Config()
	decision := goal.HandleEdgeCases(int(catalogCount), len(learnedIDs), cfg.MinSteps)
	if !decision.ShouldProceed {
		u.deps.Log.Info("Roadmap generation refused",
			"user_id", userID,
			"reason", string(decision.Reason),
			"catalog", catalogCount,
			"learned", len(learnedIDs),
		)
		ge := types.NewGenerationError(types.KindInsufficientContent, decision.Message, nil)
		ge.Reasons = []string{string(decision.Reason)}
		ge.Fallback = string(decision.Fallback)
		return RoadmapView{}, ge
	}

	learned := make(map[uuid.UUID]struct{}, len(learnedIDs))
	for _, id := range learnedIDs {
		learned[id] = struct{}{}
	}
	selected, err := u.matcher.Match(ctx, g.Normalized, learned)
	if err != nil {
		return RoadmapView{}, err
	}

	ids := make([]uuid.UUID, len(selected))
	steps := make([]validation.Step, len(selected))
	for i, s := range selected {
		ids[i] = s.ContentID
		steps[i] = validation.Step{ContentID: s.ContentID, Order: s.Order}
	}
	rows, err := u.deps.Content.GetByIDs(dbc, ids)
	if err != nil {
		return RoadmapView{}, types.NewGenerationError(types.KindDatabaseSearch, "resolve content", err)
	}
	content := make(map[uuid.UUID]*catalog.KnowledgeContent, len(rows))
	resolvable := make(map[uuid.UUID]struct{}, len(rows))
	for _, r := range rows {
		content[r.ID] = r
		if _, is := learned[r.ID]; !is {
			resolvable[r.ID] = struct{}{}
		}
	}
	res := validation.Validate(validation.Shell{UserID: userID, Goal: g.Normalized}, steps, resolvable,
		validation.Bounds{Min: cfg.MinSteps, Max: cfg.MaxSteps})
	if !res.Valid() {
		u.deps.Log.Error("Generated roadmap failed validation",
			"user_id", userID,
			"reasons", res.Reasons,
			"details", res.Details,
		)
		return RoadmapView{}, res.Err()
	}

	created, err := u.deps.Agg.CreateRoadmap(ctx, domainagg.CreateRoadmapInput{
		UserID:         userID,
		GoalRaw:        g.Raw,
		GoalNormalized: g.Normalized,
		ContentIDs:     ids,
		EventAt:        u.deps.Now(),
	})
	if err != nil {
		if errors.Is(err, types.ErrActiveRoadmapExists) {
			return RoadmapView{}, err
		}
		return RoadmapView{}, fmt.Errorf("create roadmap: %w", err)
	}

	span.SetAttributes(attribute.String("roadmap.id", created.Roadmap.ID.String()), attribute.Int("steps", len(created.Steps)))
	return roadmapView(created.Roadmap, created.Steps, content), nil
}

func generationOutcome(err error) string {
	if err == nil {
		return "success"
	}
	if ge, ok := types.AsGenerationError(err); ok {
		return string(ge.Kind)
	}
	if errors.Is(err, types.ErrActiveRoadmapExists) {
		return "active_roadmap_exists"
	}
	return "error"
}
