package db

import (
	"fmt"

	"github.com/yungbote/roadmap-backend/internal/domain/catalog"
	"github.com/yungbote/roadmap-backend/internal/domain/roadmap"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(
		// Catalog
		&catalog.KnowledgeContent{},

		// Roadmaps + progression
		&roadmap.Roadmap{},
		&roadmap.RoadmapStep{},
		&roadmap.StepTransition{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return EnsureRoadmapIndexes(db)
}

// EnsureRoadmapIndexes creates the indexes gorm tags cannot express.
// Both statements are valid on Postgres and SQLite.
func EnsureRoadmapIndexes(db *gorm.DB) error {
	// At most one active roadmap per user.
	if err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_roadmap_user_active
		ON roadmap (user_id)
		WHERE status = 'active';
	`).Error; err != nil {
		return fmt.Errorf("create idx_roadmap_user_active: %w", err)
	}

	// Roadmap listing per user, newest first.
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_roadmap_user_created
		ON roadmap (user_id, created_at DESC);
	`).Error; err != nil {
		return fmt.Errorf("create idx_roadmap_user_created: %w", err)
	}

	// Learning history: completed steps by content.
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_roadmap_step_completed_content
		ON roadmap_step (knowledge_content_id)
		WHERE status = 'completed';
	`).Error; err != nil {
		return fmt.Errorf("create idx_roadmap_step_completed_content: %w", err)
	}
	return nil
}
