package aggregates

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/roadmap-backend/internal/data/repos"
	domainagg "github.com/yungbote/roadmap-backend/internal/domain/aggregates"
	"github.com/yungbote/roadmap-backend/internal/domain/roadmap"
	"github.com/yungbote/roadmap-backend/internal/platform/dbctx"
)

const (
	tableRoadmap     = "roadmap"
	tableRoadmapStep = "roadmap_step"

	minRoadmapSteps = 5
	maxRoadmapSteps = 7
)

type RoadmapAggregateDeps struct {
	Base BaseDeps

	Roadmaps    repos.RoadmapRepo
	Steps       repos.RoadmapStepRepo
	Transitions repos.StepTransitionRepo
}

type roadmapAggregate struct {
	deps RoadmapAggregateDeps
}

func NewRoadmapAggregate(deps RoadmapAggregateDeps) domainagg.RoadmapAggregate {
	deps.Base = deps.Base.withDefaults()
	return &roadmapAggregate{deps: deps}
}

func (a *roadmapAggregate) Contract() domainagg.Contract {
	return domainagg.RoadmapAggregateContract
}

// write runs one owned operation through executeWrite.
func (a *roadmapAggregate) write(ctx context.Context, op string, fn func(dbc dbctx.Context) error) error {
	if !a.Contract().Owns(op) {
		return domainagg.NewError(domainagg.CodeInternal, op, "operation not in roadmap aggregate contract", nil)
	}
	return executeWrite(ctx, a.deps.Base, op, fn)
}

func (a *roadmapAggregate) configured(op string) error {
	if a.deps.Roadmaps == nil || a.deps.Steps == nil || a.deps.Transitions == nil {
		return domainagg.NewError(domainagg.CodeInternal, op, "roadmap aggregate repos not configured", nil)
	}
	return nil
}

func (a *roadmapAggregate) CreateRoadmap(ctx context.Context, in domainagg.CreateRoadmapInput) (domainagg.CreateRoadmapResult, error) {
	const op = domainagg.OpCreateRoadmap
	var out domainagg.CreateRoadmapResult
	if in.UserID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing user_id", nil)
	}
	if in.GoalNormalized == "" {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing goal", nil)
	}
	if n := len(in.ContentIDs); n < minRoadmapSteps || n > maxRoadmapSteps {
		return out, domainagg.NewError(domainagg.CodeValidation, op, fmt.Sprintf("step count %d outside [%d,%d]", n, minRoadmapSteps, maxRoadmapSteps), nil)
	}
	seen := make(map[uuid.UUID]struct{}, len(in.ContentIDs))
	for _, id := range in.ContentIDs {
		if id == uuid.Nil {
			return out, domainagg.NewError(domainagg.CodeValidation, op, "nil knowledge_content_id", nil)
		}
		if _, dup := seen[id]; dup {
			return out, domainagg.NewError(domainagg.CodeValidation, op, "duplicate knowledge_content_id "+id.String(), nil)
		}
		seen[id] = struct{}{}
	}
	if err := a.configured(op); err != nil {
		return out, err
	}

	now := in.EventAt.UTC()
	if in.EventAt.IsZero() {
		now = a.deps.Base.Now()
	}

	err := a.write(ctx, op, func(dbc dbctx.Context) error {
		active, err := a.deps.Roadmaps.GetActiveByUser(dbc, in.UserID)
		if err != nil {
			return err
		}
		if active != nil {
			return domainagg.NewError(domainagg.CodeConflict, op, "active roadmap "+active.ID.String(), roadmap.ErrActiveRoadmapExists)
		}

		rm := &roadmap.Roadmap{
			ID:             uuid.New(),
			UserID:         in.UserID,
			GoalRaw:        in.GoalRaw,
			GoalNormalized: in.GoalNormalized,
			Status:         roadmap.StatusActive,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := a.deps.Roadmaps.Create(dbc, rm); err != nil {
			return err
		}

		steps := make([]*roadmap.RoadmapStep, 0, len(in.ContentIDs))
		for i, cid := range in.ContentIDs {
			st := &roadmap.RoadmapStep{
				ID:                 uuid.New(),
				RoadmapID:          rm.ID,
				KnowledgeContentID: cid,
				Order:              i,
				Status:             roadmap.StepLocked,
				CreatedAt:          now,
				UpdatedAt:          now,
			}
			if i == 0 {
				unlockedAt := now
				st.Status = roadmap.StepUnlocked
				st.UnlockedAt = &unlockedAt
			}
			steps = append(steps, st)
		}
		if _, err := a.deps.Steps.Create(dbc, steps); err != nil {
			return err
		}

		firstID := steps[0].ID
		if err := a.deps.Transitions.Append(dbc, []*roadmap.StepTransition{
			{RoadmapID: rm.ID, Event: roadmap.EventRoadmapCreated, ToState: string(roadmap.StatusActive), OccurredAt: now},
			{RoadmapID: rm.ID, StepID: &firstID, Event: roadmap.EventStepUnlocked, FromState: string(roadmap.StepLocked), ToState: string(roadmap.StepUnlocked), OccurredAt: now},
		}); err != nil {
			return err
		}

		rm.Steps = make([]roadmap.RoadmapStep, 0, len(steps))
		for _, st := range steps {
			rm.Steps = append(rm.Steps, *st)
		}
		out = domainagg.CreateRoadmapResult{Roadmap: rm, Steps: steps}
		return nil
	})
	if err != nil {
		return domainagg.CreateRoadmapResult{}, err
	}
	a.deps.Base.Log.Info("roadmap created", "roadmap_id", out.Roadmap.ID, "user_id", in.UserID, "steps", len(out.Steps))
	return out, nil
}

// lockOwnedStep loads the step, then locks its roadmap followed by the step
// itself. Every writer in a roadmap takes the roadmap lock first, so writers
// on one roadmap serialize without lock-order inversions.
func (a *roadmapAggregate) lockOwnedStep(dbc dbctx.Context, userID, stepID uuid.UUID) (*roadmap.Roadmap, *roadmap.RoadmapStep, error) {
	peek, err := a.deps.Steps.GetByID(dbc, stepID)
	if err != nil {
		return nil, nil, err
	}
	if peek == nil {
		return nil, nil, roadmap.NewStateError(roadmap.StateNotFound, roadmap.ReasonStepNotFound, "")
	}
	rm, err := a.deps.Roadmaps.LockByID(dbc, peek.RoadmapID)
	if err != nil {
		return nil, nil, err
	}
	if rm == nil || rm.UserID != userID {
		return nil, nil, roadmap.NewStateError(roadmap.StateNotFound, roadmap.ReasonStepNotFound, "")
	}
	step, err := a.deps.Steps.LockByID(dbc, stepID)
	if err != nil {
		return nil, nil, err
	}
	if step == nil {
		return nil, nil, roadmap.NewStateError(roadmap.StateNotFound, roadmap.ReasonStepNotFound, "")
	}
	return rm, step, nil
}

// requireActionable rejects anything but an unlocked step of an active
// roadmap. already_completed wins over roadmap_not_active so a retried
// completion of the final step still reads as done.
func requireActionable(rm *roadmap.Roadmap, step *roadmap.RoadmapStep) error {
	switch {
	case step.Status == roadmap.StepCompleted:
		return roadmap.NewStateError(roadmap.StateInvalidTransition, roadmap.ReasonAlreadyCompleted, string(step.Status))
	case rm.Status != roadmap.StatusActive:
		return roadmap.NewStateError(roadmap.StateInvalidTransition, roadmap.ReasonRoadmapNotActive, string(rm.Status))
	case step.Status == roadmap.StepLocked:
		return roadmap.NewStateError(roadmap.StateInvalidTransition, roadmap.ReasonStepLocked, string(step.Status))
	case step.Status != roadmap.StepUnlocked:
		return InvariantError(fmt.Sprintf("step %s has unknown status %q", step.ID, step.Status))
	}
	return nil
}

func (a *roadmapAggregate) CompleteStep(ctx context.Context, in domainagg.CompleteStepInput) (domainagg.CompleteStepResult, error) {
	const op = domainagg.OpCompleteStep
	var out domainagg.CompleteStepResult
	if in.UserID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing user_id", nil)
	}
	if in.StepID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing step_id", nil)
	}
	if !in.Plan.Complete() {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "situation, trigger and action are required", nil)
	}
	if err := a.configured(op); err != nil {
		return out, err
	}

	now := in.EventAt.UTC()
	if in.EventAt.IsZero() {
		now = a.deps.Base.Now()
	}
	guard := a.deps.Base.CASGuard

	err := a.write(ctx, op, func(dbc dbctx.Context) error {
		rm, step, err := a.lockOwnedStep(dbc, in.UserID, in.StepID)
		if err != nil {
			return err
		}
		if err := requireActionable(rm, step); err != nil {
			return err
		}

		updates := in.Plan.Columns()
		updates["completed_at"] = now
		updates["updated_at"] = now
		if err := guard.Transition(dbc, tableRoadmapStep, step.ID, string(roadmap.StepUnlocked), string(roadmap.StepCompleted), updates); err != nil {
			return err
		}

		completedID := step.ID
		log := []*roadmap.StepTransition{{
			RoadmapID: rm.ID, StepID: &completedID, Event: roadmap.EventStepCompleted,
			FromState: string(roadmap.StepUnlocked), ToState: string(roadmap.StepCompleted), OccurredAt: now,
		}}
		out = domainagg.CompleteStepResult{RoadmapID: rm.ID, CompletedStepID: step.ID, CompletedAt: now}

		next, err := a.deps.Steps.LockByRoadmapAndOrder(dbc, rm.ID, step.Order+1)
		if err != nil {
			return err
		}
		if next != nil {
			if next.Status != roadmap.StepLocked {
				return InvariantError(fmt.Sprintf("successor step %s is %q, expected locked", next.ID, next.Status))
			}
			if err := guard.Transition(dbc, tableRoadmapStep, next.ID, string(roadmap.StepLocked), string(roadmap.StepUnlocked), map[string]any{
				"unlocked_at": now,
				"updated_at":  now,
			}); err != nil {
				return err
			}
			nextID := next.ID
			out.UnlockedStepID = &nextID
			log = append(log, &roadmap.StepTransition{
				RoadmapID: rm.ID, StepID: &nextID, Event: roadmap.EventStepUnlocked,
				FromState: string(roadmap.StepLocked), ToState: string(roadmap.StepUnlocked), OccurredAt: now,
			})
		} else {
			if err := guard.Transition(dbc, tableRoadmap, rm.ID, string(roadmap.StatusActive), string(roadmap.StatusCompleted), map[string]any{
				"completed_at": now,
				"updated_at":   now,
			}); err != nil {
				return err
			}
			out.RoadmapCompleted = true
			log = append(log, &roadmap.StepTransition{
				RoadmapID: rm.ID, Event: roadmap.EventRoadmapCompleted,
				FromState: string(roadmap.StatusActive), ToState: string(roadmap.StatusCompleted), OccurredAt: now,
			})
		}
		return a.deps.Transitions.Append(dbc, log)
	})
	if err != nil {
		return domainagg.CompleteStepResult{}, err
	}
	a.deps.Base.Log.Info("roadmap step completed",
		"roadmap_id", out.RoadmapID,
		"step_id", out.CompletedStepID,
		"roadmap_completed", out.RoadmapCompleted,
	)
	return out, nil
}

func (a *roadmapAggregate) SaveStepPlan(ctx context.Context, in domainagg.SaveStepPlanInput) (domainagg.SaveStepPlanResult, error) {
	const op = domainagg.OpSaveStepPlan
	var out domainagg.SaveStepPlanResult
	if in.UserID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing user_id", nil)
	}
	if in.StepID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing step_id", nil)
	}
	if err := a.configured(op); err != nil {
		return out, err
	}
	now := a.deps.Base.Now()

	err := a.write(ctx, op, func(dbc dbctx.Context) error {
		rm, step, err := a.lockOwnedStep(dbc, in.UserID, in.StepID)
		if err != nil {
			return err
		}
		if err := requireActionable(rm, step); err != nil {
			return err
		}
		updates := in.Plan.Columns()
		updates["updated_at"] = now
		if err := a.deps.Base.CASGuard.UpdateWhile(dbc, tableRoadmapStep, step.ID, string(roadmap.StepUnlocked), updates); err != nil {
			return err
		}
		saved, err := a.deps.Steps.GetByID(dbc, step.ID)
		if err != nil {
			return err
		}
		out.Step = saved
		return nil
	})
	if err != nil {
		return domainagg.SaveStepPlanResult{}, err
	}
	return out, nil
}

func (a *roadmapAggregate) ArchiveRoadmap(ctx context.Context, in domainagg.ArchiveRoadmapInput) (domainagg.ArchiveRoadmapResult, error) {
	const op = domainagg.OpArchiveRoadmap
	var out domainagg.ArchiveRoadmapResult
	if in.UserID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing user_id", nil)
	}
	if in.RoadmapID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing roadmap_id", nil)
	}
	if err := a.configured(op); err != nil {
		return out, err
	}
	now := in.EventAt.UTC()
	if in.EventAt.IsZero() {
		now = a.deps.Base.Now()
	}

	err := a.write(ctx, op, func(dbc dbctx.Context) error {
		rm, err := a.deps.Roadmaps.LockByID(dbc, in.RoadmapID)
		if err != nil {
			return err
		}
		if rm == nil || rm.UserID != in.UserID {
			return roadmap.NewStateError(roadmap.StateNotFound, roadmap.ReasonRoadmapNotFound, "")
		}
		if rm.Status != roadmap.StatusActive {
			return roadmap.NewStateError(roadmap.StateInvalidTransition, roadmap.ReasonRoadmapNotActive, string(rm.Status))
		}
		if err := a.deps.Base.CASGuard.Transition(dbc, tableRoadmap, rm.ID, string(roadmap.StatusActive), string(roadmap.StatusArchived), map[string]any{
			"archived_at": now,
			"updated_at":  now,
		}); err != nil {
			return err
		}
		out = domainagg.ArchiveRoadmapResult{RoadmapID: rm.ID, ArchivedAt: now}
		return a.deps.Transitions.Append(dbc, []*roadmap.StepTransition{{
			RoadmapID: rm.ID, Event: roadmap.EventRoadmapArchived,
			FromState: string(roadmap.StatusActive), ToState: string(roadmap.StatusArchived), OccurredAt: now,
		}})
	})
	if err != nil {
		return domainagg.ArchiveRoadmapResult{}, err
	}
	return out, nil
}
