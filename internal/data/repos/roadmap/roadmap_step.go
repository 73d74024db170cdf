package roadmap

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/roadmap-backend/internal/domain/roadmap"
	"github.com/yungbote/roadmap-backend/internal/platform/dbctx"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
)

type RoadmapStepRepo interface {
	Create(dbc dbctx.Context, rows []*types.RoadmapStep) ([]*types.RoadmapStep, error)

	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.RoadmapStep, error)
	GetByRoadmapIDs(dbc dbctx.Context, roadmapIDs []uuid.UUID) ([]*types.RoadmapStep, error)
	GetByRoadmapAndOrder(dbc dbctx.Context, roadmapID uuid.UUID, order int) (*types.RoadmapStep, error)

	LockByID(dbc dbctx.Context, id uuid.UUID) (*types.RoadmapStep, error)
	LockByRoadmapAndOrder(dbc dbctx.Context, roadmapID uuid.UUID, order int) (*types.RoadmapStep, error)

	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type roadmapStepRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRoadmapStepRepo(db *gorm.DB, baseLog *logger.Logger) RoadmapStepRepo {
	return &roadmapStepRepo{db: db, log: baseLog.With("repo", "RoadmapStepRepo")}
}

func (r *roadmapStepRepo) Create(dbc dbctx.Context, rows []*types.RoadmapStep) ([]*types.RoadmapStep, error) {
	if len(rows) == 0 {
		return []*types.RoadmapStep{}, nil
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *roadmapStepRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.RoadmapStep, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	return r.first(dbc.DB(r.db).Where("id = ?", id))
}

func (r *roadmapStepRepo) GetByRoadmapIDs(dbc dbctx.Context, roadmapIDs []uuid.UUID) ([]*types.RoadmapStep, error) {
	var out []*types.RoadmapStep
	if len(roadmapIDs) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("roadmap_id IN ?", roadmapIDs).
		Order("roadmap_id ASC, step_order ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *roadmapStepRepo) GetByRoadmapAndOrder(dbc dbctx.Context, roadmapID uuid.UUID, order int) (*types.RoadmapStep, error) {
	if roadmapID == uuid.Nil {
		return nil, nil
	}
	return r.first(dbc.DB(r.db).Where("roadmap_id = ? AND step_order = ?", roadmapID, order))
}

func (r *roadmapStepRepo) LockByID(dbc dbctx.Context, id uuid.UUID) (*types.RoadmapStep, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	return r.first(dbc.DB(r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id))
}

func (r *roadmapStepRepo) LockByRoadmapAndOrder(dbc dbctx.Context, roadmapID uuid.UUID, order int) (*types.RoadmapStep, error) {
	if roadmapID == uuid.Nil {
		return nil, nil
	}
	return r.first(dbc.DB(r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("roadmap_id = ? AND step_order = ?", roadmapID, order))
}

func (r *roadmapStepRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	return dbc.DB(r.db).Model(&types.RoadmapStep{}).Where("id = ?", id).Updates(updates).Error
}

func (r *roadmapStepRepo) first(q *gorm.DB) (*types.RoadmapStep, error) {
	var row types.RoadmapStep
	if err := q.Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}
