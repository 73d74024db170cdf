package roadmap

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusArchived  Status = "archived"
)

// Roadmap is one goal's ordered sequence of steps. Only the state machine
// changes Status after creation, and rows are never deleted.
type Roadmap struct {
	ID             uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID     `gorm:"type:uuid;not null;index" json:"user_id"`
	GoalRaw        string        `gorm:"column:goal_raw;type:text;not null" json:"goal_raw"`
	GoalNormalized string        `gorm:"column:goal_normalized;type:text;not null" json:"goal"`
	Status         Status        `gorm:"column:status;type:text;not null;default:'active';index" json:"status"`
	Steps          []RoadmapStep `gorm:"foreignKey:RoadmapID;references:ID" json:"steps,omitempty"`
	CompletedAt    *time.Time    `gorm:"column:completed_at" json:"completed_at,omitempty"`
	ArchivedAt     *time.Time    `gorm:"column:archived_at" json:"archived_at,omitempty"`
	CreatedAt      time.Time     `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time     `gorm:"not null" json:"updated_at"`
}

func (Roadmap) TableName() string { return "roadmap" }

func (r *Roadmap) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
