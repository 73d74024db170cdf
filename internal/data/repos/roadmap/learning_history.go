package roadmap

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/roadmap-backend/internal/domain/roadmap"
	"github.com/yungbote/roadmap-backend/internal/platform/dbctx"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
)

// LearningHistoryRepo derives the content a user has completed in any roadmap.
type LearningHistoryRepo interface {
	LearnedContentIDs(dbc dbctx.Context, userID uuid.UUID) ([]uuid.UUID, error)
	CountLearned(dbc dbctx.Context, userID uuid.UUID) (int64, error)
}

type learningHistoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLearningHistoryRepo(db *gorm.DB, baseLog *logger.Logger) LearningHistoryRepo {
	return &learningHistoryRepo{db: db, log: baseLog.With("repo", "LearningHistoryRepo")}
}

func (r *learningHistoryRepo) completed(dbc dbctx.Context, userID uuid.UUID) *gorm.DB {
	return dbc.DB(r.db).
		Table("roadmap_step AS s").
		Joins("JOIN roadmap AS r ON r.id = s.roadmap_id").
		Where("r.user_id = ? AND s.status = ?", userID, types.StepCompleted)
}

func (r *learningHistoryRepo) LearnedContentIDs(dbc dbctx.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	out := []uuid.UUID{}
	if userID == uuid.Nil {
		return out, nil
	}
	if err := r.completed(dbc, userID).
		Distinct("s.knowledge_content_id").
		Order("s.knowledge_content_id ASC").
		Pluck("s.knowledge_content_id", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *learningHistoryRepo) CountLearned(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	if userID == uuid.Nil {
		return 0, nil
	}
	var n int64
	if err := r.completed(dbc, userID).
		Distinct("s.knowledge_content_id").
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
