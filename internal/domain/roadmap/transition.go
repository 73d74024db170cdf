package roadmap

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TransitionEvent string

const (
	EventRoadmapCreated   TransitionEvent = "roadmap_created"
	EventStepUnlocked     TransitionEvent = "step_unlocked"
	EventStepCompleted    TransitionEvent = "step_completed"
	EventRoadmapCompleted TransitionEvent = "roadmap_completed"
	EventRoadmapArchived  TransitionEvent = "roadmap_archived"
)

// StepTransition is an append-only log of state changes, written in the
// same transaction as the change it records. StepID is nil for
// roadmap-level events.
type StepTransition struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	RoadmapID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"roadmap_id"`
	StepID     *uuid.UUID      `gorm:"type:uuid;index" json:"step_id,omitempty"`
	Event      TransitionEvent `gorm:"column:event;type:text;not null;index" json:"event"`
	FromState  string          `gorm:"column:from_state;type:text" json:"from_state,omitempty"`
	ToState    string          `gorm:"column:to_state;type:text" json:"to_state,omitempty"`
	OccurredAt time.Time       `gorm:"column:occurred_at;not null;index" json:"occurred_at"`
	CreatedAt  time.Time       `gorm:"not null" json:"created_at"`
}

func (StepTransition) TableName() string { return "roadmap_step_transition" }

func (t *StepTransition) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
