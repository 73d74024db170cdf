package roadmap

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	domainagg "github.com/yungbote/roadmap-backend/internal/domain/aggregates"
	"github.com/yungbote/roadmap-backend/internal/domain/catalog"
	types "github.com/yungbote/roadmap-backend/internal/domain/roadmap"
	"github.com/yungbote/roadmap-backend/internal/observability"
	"github.com/yungbote/roadmap-backend/internal/platform/dbctx"
)

// CompleteStep completes stepID with plan. It is never retried here; a
// repeated call after success fails with reason already_completed.
func (u Usecases) CompleteStep(ctx context.Context, userID, stepID uuid.UUID, plan types.Plan) (out domainagg.CompleteStepResult, err error) {
	ctx, span := observability.StartSpan(ctx, "roadmap.CompleteStep", attribute.String("step.id", stepID.String()))
	defer func() {
		observability.EndSpan(span, err)
		u.deps.Metrics.IncStepCompletion(completionOutcome(out, err))
	}()

	out, err = u.deps.Agg.CompleteStep(ctx, domainagg.CompleteStepInput{
		UserID:  userID,
		StepID:  stepID,
		Plan:    plan,
		EventAt: u.deps.Now(),
	})
	if err != nil {
		if se, ok := types.AsStateError(err); ok {
			u.deps.Log.Info("Step completion rejected",
				"user_id", userID,
				"step_id", stepID,
				"kind", string(se.Kind),
				"reason", string(se.Reason),
			)
		}
		return domainagg.CompleteStepResult{}, err
	}
	span.SetAttributes(attribute.Bool("roadmap.completed", out.RoadmapCompleted))
	return out, nil
}

func completionOutcome(out domainagg.CompleteStepResult, err error) string {
	if err == nil {
		if out.RoadmapCompleted {
			return "roadmap_completed"
		}
		return "completed"
	}
	if se, ok := types.AsStateError(err); ok {
		if se.Reason != "" {
			return string(se.Reason)
		}
		return string(se.Kind)
	}
	if code := domainagg.CodeOf(err); code != "" {
		return string(code)
	}
	return "error"
}

// SaveStepPlan stores a draft plan on the current step without completing it.
func (u Usecases) SaveStepPlan(ctx context.Context, userID, stepID uuid.UUID, plan types.Plan) (StepView, error) {
	res, err := u.deps.Agg.SaveStepPlan(ctx, domainagg.SaveStepPlanInput{UserID: userID, StepID: stepID, Plan: plan})
	if err != nil {
		return StepView{}, err
	}
	content, err := u.loadContent(dbctx.Context{Ctx: ctx}, []*types.RoadmapStep{res.Step})
	if err != nil {
		return StepView{}, err
	}
	return stepView(res.Step, content), nil
}

func (u Usecases) ArchiveRoadmap(ctx context.Context, userID, roadmapID uuid.UUID) (domainagg.ArchiveRoadmapResult, error) {
	res, err := u.deps.Agg.ArchiveRoadmap(ctx, domainagg.ArchiveRoadmapInput{UserID: userID, RoadmapID: roadmapID, EventAt: u.deps.Now()})
	if err != nil {
		return domainagg.ArchiveRoadmapResult{}, err
	}
	u.deps.Log.Info("Roadmap archived", "user_id", userID, "roadmap_id", roadmapID)
	return res, nil
}

func (u Usecases) loadContent(dbc dbctx.Context, steps []*types.RoadmapStep) (map[uuid.UUID]*catalog.KnowledgeContent, error) {
	ids := make([]uuid.UUID, 0, len(steps))
	for _, s := range steps {
		if s != nil {
			ids = append(ids, s.KnowledgeContentID)
		}
	}
	rows, err := u.deps.Content.GetByIDs(dbc, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]*catalog.KnowledgeContent, len(rows))
	for _, r := range rows {
		out[r.ID] = r
	}
	return out, nil
}
