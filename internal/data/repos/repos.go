package repos

import (
	"github.com/yungbote/roadmap-backend/internal/data/repos/catalog"
	"github.com/yungbote/roadmap-backend/internal/data/repos/roadmap"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type KnowledgeContentRepo = catalog.KnowledgeContentRepo

type RoadmapRepo = roadmap.RoadmapRepo
type RoadmapStepRepo = roadmap.RoadmapStepRepo
type StepTransitionRepo = roadmap.StepTransitionRepo
type LearningHistoryRepo = roadmap.LearningHistoryRepo

// Repos is the full set of table repos sharing one *gorm.DB.
type Repos struct {
	Content     KnowledgeContentRepo
	Roadmaps    RoadmapRepo
	Steps       RoadmapStepRepo
	Transitions StepTransitionRepo
	History     LearningHistoryRepo
}

func New(db *gorm.DB, baseLog *logger.Logger) Repos {
	return Repos{
		Content:     catalog.NewKnowledgeContentRepo(db, baseLog),
		Roadmaps:    roadmap.NewRoadmapRepo(db, baseLog),
		Steps:       roadmap.NewRoadmapStepRepo(db, baseLog),
		Transitions: roadmap.NewStepTransitionRepo(db, baseLog),
		History:     roadmap.NewLearningHistoryRepo(db, baseLog),
	}
}
