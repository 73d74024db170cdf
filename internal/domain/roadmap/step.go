package roadmap

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StepStatus string

const (
	StepLocked    StepStatus = "locked"
	StepUnlocked  StepStatus = "unlocked"
	StepCompleted StepStatus = "completed"
)

// CanTransition reports whether from -> to is one of the two legal moves.
func CanTransition(from, to StepStatus) bool {
	switch from {
	case StepLocked:
		return to == StepUnlocked
	case StepUnlocked:
		return to == StepCompleted
	default:
		return false
	}
}

// RoadmapStep assigns one catalog item to a position in a roadmap.
// Order is fixed at creation.
type RoadmapStep struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	RoadmapID          uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_roadmap_step_order,priority:1;uniqueIndex:idx_roadmap_step_content,priority:1" json:"roadmap_id"`
	KnowledgeContentID uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:idx_roadmap_step_content,priority:2" json:"knowledge_content_id"`
	Order              int        `gorm:"column:step_order;not null;uniqueIndex:idx_roadmap_step_order,priority:2" json:"order"`
	Status             StepStatus `gorm:"column:status;type:text;not null;default:'locked';index" json:"status"`
	Situation          *string    `gorm:"column:situation;type:text" json:"situation,omitempty"`
	Trigger            *string    `gorm:"column:trigger_text;type:text" json:"trigger,omitempty"`
	Action             *string    `gorm:"column:action;type:text" json:"action,omitempty"`
	UnlockedAt         *time.Time `gorm:"column:unlocked_at" json:"unlocked_at,omitempty"`
	CompletedAt        *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
	CreatedAt          time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"not null" json:"updated_at"`
}

func (RoadmapStep) TableName() string { return "roadmap_step" }

func (s *RoadmapStep) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Plan is the user's implementation intention for a step.
type Plan struct {
	Situation string `json:"situation"`
	Trigger   string `json:"trigger"`
	Action    string `json:"action"`
}

func (p Plan) Normalized() Plan {
	return Plan{
		Situation: strings.TrimSpace(p.Situation),
		Trigger:   strings.TrimSpace(p.Trigger),
		Action:    strings.TrimSpace(p.Action),
	}
}

// Complete reports whether every field is filled in.
func (p Plan) Complete() bool {
	n := p.Normalized()
	return n.Situation != "" && n.Trigger != "" && n.Action != ""
}

// Columns maps the plan onto roadmap_step columns.
func (p Plan) Columns() map[string]interface{} {
	n := p.Normalized()
	return map[string]interface{}{
		"situation":    n.Situation,
		"trigger_text": n.Trigger,
		"action":       n.Action,
	}
}
