package roadmap

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/roadmap-backend/internal/domain/roadmap"
	"github.com/yungbote/roadmap-backend/internal/platform/dbctx"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
)

type RoadmapRepo interface {
	Create(dbc dbctx.Context, row *types.Roadmap) error

	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Roadmap, error)
	GetForUser(dbc dbctx.Context, userID, id uuid.UUID) (*types.Roadmap, error)
	GetActiveByUser(dbc dbctx.Context, userID uuid.UUID) (*types.Roadmap, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID, status types.Status, limit int) ([]*types.Roadmap, error)

	// LockByID takes a row lock for the rest of the transaction.
	LockByID(dbc dbctx.Context, id uuid.UUID) (*types.Roadmap, error)
}

type roadmapRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRoadmapRepo(db *gorm.DB, baseLog *logger.Logger) RoadmapRepo {
	return &roadmapRepo{db: db, log: baseLog.With("repo", "RoadmapRepo")}
}

func (r *roadmapRepo) Create(dbc dbctx.Context, row *types.Roadmap) error {
	if row == nil {
		return nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return dbc.DB(r.db).Omit("Steps").Create(row).Error
}

func (r *roadmapRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Roadmap, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	return r.first(dbc.DB(r.db).Where("id = ?", id))
}

func (r *roadmapRepo) GetForUser(dbc dbctx.Context, userID, id uuid.UUID) (*types.Roadmap, error) {
	if id == uuid.Nil || userID == uuid.Nil {
		return nil, nil
	}
	return r.first(dbc.DB(r.db).Where("id = ? AND user_id = ?", id, userID))
}

func (r *roadmapRepo) GetActiveByUser(dbc dbctx.Context, userID uuid.UUID) (*types.Roadmap, error) {
	if userID == uuid.Nil {
		return nil, nil
	}
	return r.first(dbc.DB(r.db).
		Where("user_id = ? AND status = ?", userID, types.StatusActive).
		Order("created_at DESC"))
}

func (r *roadmapRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, status types.Status, limit int) ([]*types.Roadmap, error) {
	var out []*types.Roadmap
	if userID == uuid.Nil {
		return out, nil
	}
	q := dbc.DB(r.db).Where("user_id = ?", userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Order("created_at DESC, id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *roadmapRepo) LockByID(dbc dbctx.Context, id uuid.UUID) (*types.Roadmap, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	return r.first(dbc.DB(r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id))
}

func (r *roadmapRepo) first(q *gorm.DB) (*types.Roadmap, error) {
	var row types.Roadmap
	if err := q.Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}
