package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/roadmap-backend/internal/domain/roadmap"
)

// Write operation names, as reported to hooks and spans.
const (
	OpCreateRoadmap  = "Roadmaps.Roadmap.CreateRoadmap"
	OpCompleteStep   = "Roadmaps.Roadmap.CompleteStep"
	OpSaveStepPlan   = "Roadmaps.Roadmap.SaveStepPlan"
	OpArchiveRoadmap = "Roadmaps.Roadmap.ArchiveRoadmap"
)

var RoadmapAggregateContract = Contract{
	Name:      "Roadmaps.RoadmapAggregate",
	Tables:    []string{"roadmap", "roadmap_step", "roadmap_step_transition"},
	LockOrder: []string{"roadmap", "roadmap_step"},
	Ops:       []string{OpCreateRoadmap, OpCompleteStep, OpSaveStepPlan, OpArchiveRoadmap},
	Notes: "Every step status change happens here, one transaction per call, " +
		"with status-guarded updates.",
}

// RoadmapAggregate owns the step progression state machine.
//
// Rejections a caller can act on are *roadmap.StateError. Infrastructure
// failures are *aggregates.Error with CodeConflict, CodeRetryable,
// CodeInvariantViolation or CodeInternal.
type RoadmapAggregate interface {
	Aggregate

	// CreateRoadmap writes the roadmap and all of its steps atomically.
	// Step 0 starts unlocked, the rest locked.
	CreateRoadmap(ctx context.Context, in CreateRoadmapInput) (CreateRoadmapResult, error)

	// CompleteStep completes an unlocked step and, in the same transaction,
	// unlocks its successor or completes the roadmap.
	CompleteStep(ctx context.Context, in CompleteStepInput) (CompleteStepResult, error)

	// SaveStepPlan stores a draft plan on an unlocked step.
	SaveStepPlan(ctx context.Context, in SaveStepPlanInput) (SaveStepPlanResult, error)

	// ArchiveRoadmap moves an active roadmap to archived.
	ArchiveRoadmap(ctx context.Context, in ArchiveRoadmapInput) (ArchiveRoadmapResult, error)
}

type CreateRoadmapInput struct {
	UserID         uuid.UUID
	GoalRaw        string
	GoalNormalized string
	// ContentIDs in step order.
	ContentIDs []uuid.UUID
	EventAt    time.Time
}

type CreateRoadmapResult struct {
	Roadmap *roadmap.Roadmap
	Steps   []*roadmap.RoadmapStep
}

type CompleteStepInput struct {
	UserID  uuid.UUID
	StepID  uuid.UUID
	Plan    roadmap.Plan
	EventAt time.Time
}

type CompleteStepResult struct {
	RoadmapID        uuid.UUID  `json:"roadmap_id"`
	CompletedStepID  uuid.UUID  `json:"completed_step_id"`
	UnlockedStepID   *uuid.UUID `json:"unlocked_step_id"`
	RoadmapCompleted bool       `json:"roadmap_completed"`
	CompletedAt      time.Time  `json:"completed_at"`
}

type SaveStepPlanInput struct {
	UserID uuid.UUID
	StepID uuid.UUID
	Plan   roadmap.Plan
}

type SaveStepPlanResult struct {
	Step *roadmap.RoadmapStep
}

type ArchiveRoadmapInput struct {
	UserID    uuid.UUID
	RoadmapID uuid.UUID
	EventAt   time.Time
}

type ArchiveRoadmapResult struct {
	RoadmapID  uuid.UUID `json:"roadmap_id"`
	ArchivedAt time.Time `json:"archived_at"`
}
