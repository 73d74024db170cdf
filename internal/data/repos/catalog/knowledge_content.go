package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/roadmap-backend/internal/domain/catalog"
	"github.com/yungbote/roadmap-backend/internal/platform/dbctx"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
)

type ListFilter struct {
	Type   types.ContentType
	Limit  int
	Offset int
}

type KnowledgeContentRepo interface {
	// ListContent returns every catalog item whose id is not in exclude,
	// embeddings included, ordered by slug.
	ListContent(dbc dbctx.Context, exclude []uuid.UUID) ([]*types.KnowledgeContent, error)
	List(dbc dbctx.Context, f ListFilter) ([]*types.KnowledgeContent, error)
	Count(dbc dbctx.Context) (int64, error)

	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.KnowledgeContent, error)
	GetBySlug(dbc dbctx.Context, slug string) (*types.KnowledgeContent, error)

	// UpsertBySlug inserts or refreshes rows keyed by slug. Existing ids are kept.
	UpsertBySlug(dbc dbctx.Context, rows []*types.KnowledgeContent) error
}

type knowledgeContentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewKnowledgeContentRepo(db *gorm.DB, baseLog *logger.Logger) KnowledgeContentRepo {
	return &knowledgeContentRepo{db: db, log: baseLog.With("repo", "KnowledgeContentRepo")}
}

func (r *knowledgeContentRepo) ListContent(dbc dbctx.Context, exclude []uuid.UUID) ([]*types.KnowledgeContent, error) {
	q := dbc.DB(r.db).Model(&types.KnowledgeContent{})
	if len(exclude) > 0 {
		q = q.Where("id NOT IN ?", exclude)
	}
	var out []*types.KnowledgeContent
	if err := q.Order("slug ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *knowledgeContentRepo) List(dbc dbctx.Context, f ListFilter) ([]*types.KnowledgeContent, error) {
	q := dbc.DB(r.db).Model(&types.KnowledgeContent{}).Omit("embedding")
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}
	var out []*types.KnowledgeContent
	if err := q.Order("type ASC, slug ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *knowledgeContentRepo) Count(dbc dbctx.Context) (int64, error) {
	var n int64
	if err := dbc.DB(r.db).Model(&types.KnowledgeContent{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *knowledgeContentRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.KnowledgeContent, error) {
	var out []*types.KnowledgeContent
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *knowledgeContentRepo) GetBySlug(dbc dbctx.Context, slug string) (*types.KnowledgeContent, error) {
	if slug == "" {
		return nil, nil
	}
	var row types.KnowledgeContent
	err := dbc.DB(r.db).Where("slug = ?", slug).Limit(1).Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *knowledgeContentRepo) UpsertBySlug(dbc dbctx.Context, rows []*types.KnowledgeContent) error {
	if len(rows) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for _, row := range rows {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		if row.CreatedAt.IsZero() {
			row.CreatedAt = now
		}
		row.UpdatedAt = now
	}
	return dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "slug"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"title",
				"type",
				"category",
				"summary",
				"description",
				"application",
				"keywords",
				"embedding",
				"updated_at",
			}),
		}).
		Create(&rows).Error
}
