package roadmap

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/roadmap-backend/internal/domain/roadmap"
	"github.com/yungbote/roadmap-backend/internal/platform/dbctx"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
)

type StepTransitionRepo interface {
	Append(dbc dbctx.Context, rows []*types.StepTransition) error
	ListByRoadmap(dbc dbctx.Context, roadmapID uuid.UUID) ([]*types.StepTransition, error)
	ListByStep(dbc dbctx.Context, stepID uuid.UUID) ([]*types.StepTransition, error)
}

type stepTransitionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStepTransitionRepo(db *gorm.DB, baseLog *logger.Logger) StepTransitionRepo {
	return &stepTransitionRepo{db: db, log: baseLog.With("repo", "StepTransitionRepo")}
}

func (r *stepTransitionRepo) Append(dbc dbctx.Context, rows []*types.StepTransition) error {
	if len(rows) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for _, row := range rows {
		if row.OccurredAt.IsZero() {
			row.OccurredAt = now
		}
	}
	return dbc.DB(r.db).Create(&rows).Error
}

func (r *stepTransitionRepo) ListByRoadmap(dbc dbctx.Context, roadmapID uuid.UUID) ([]*types.StepTransition, error) {
	var out []*types.StepTransition
	if roadmapID == uuid.Nil {
		return out, nil
	}
	// created_at breaks ties between rows written in one transaction.
	if err := dbc.DB(r.db).
		Where("roadmap_id = ?", roadmapID).
		Order("occurred_at ASC, created_at ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *stepTransitionRepo) ListByStep(dbc dbctx.Context, stepID uuid.UUID) ([]*types.StepTransition, error) {
	var out []*types.StepTransition
	if stepID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("step_id = ?", stepID).
		Order("occurred_at ASC, created_at ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
