package roadmap

import (
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/roadmap-backend/internal/domain/catalog"
	types "github.com/yungbote/roadmap-backend/internal/domain/roadmap"
)

type ContentView struct {
	ID          uuid.UUID           `json:"id"`
	Slug        string              `json:"slug"`
	Title       string              `json:"title"`
	Type        catalog.ContentType `json:"type"`
	Category    string              `json:"category,omitempty"`
	Summary     string              `json:"summary,omitempty"`
	Description string              `json:"description,omitempty"`
	Application string              `json:"application,omitempty"`
	Keywords    []string            `json:"keywords"`
}

type PlanView struct {
	Situation string `json:"situation"`
	Trigger   string `json:"trigger"`
	Action    string `json:"action"`
}

type StepView struct {
	ID          uuid.UUID        `json:"id"`
	RoadmapID   uuid.UUID        `json:"roadmap_id"`
	Order       int              `json:"order"`
	Status      types.StepStatus `json:"status"`
	Content     *ContentView     `json:"content,omitempty"`
	Plan        *PlanView        `json:"plan,omitempty"`
	UnlockedAt  *time.Time       `json:"unlocked_at,omitempty"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
}

type ProgressView struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

type RoadmapView struct {
	ID            uuid.UUID    `json:"id"`
	Goal          string       `json:"goal"`
	Status        types.Status `json:"status"`
	CurrentStepID *uuid.UUID   `json:"current_step_id"`
	Progress      ProgressView `json:"progress"`
	Steps         []StepView   `json:"steps"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
	CompletedAt   *time.Time   `json:"completed_at,omitempty"`
	ArchivedAt    *time.Time   `json:"archived_at,omitempty"`
}

// RoadmapSummary is a RoadmapView without steps, for lists.
type RoadmapSummary struct {
	ID            uuid.UUID    `json:"id"`
	Goal          string       `json:"goal"`
	Status        types.Status `json:"status"`
	CurrentStepID *uuid.UUID   `json:"current_step_id"`
	Progress      ProgressView `json:"progress"`
	CreatedAt     time.Time    `json:"created_at"`
	CompletedAt   *time.Time   `json:"completed_at,omitempty"`
	ArchivedAt    *time.Time   `json:"archived_at,omitempty"`
}

func contentView(kc *catalog.KnowledgeContent) *ContentView {
	if kc == nil {
		return nil
	}
	kw := kc.KeywordList()
	if kw == nil {
		kw = []string{}
	}
	return &ContentView{
		ID:          kc.ID,
		Slug:        kc.Slug,
		Title:       kc.Title,
		Type:        kc.Type,
		Category:    kc.Category,
		Summary:     kc.Summary,
		Description: kc.Description,
		Application: kc.Application,
		Keywords:    kw,
	}
}

func stepView(s *types.RoadmapStep, content map[uuid.UUID]*catalog.KnowledgeContent) StepView {
	v := StepView{
		ID:          s.ID,
		RoadmapID:   s.RoadmapID,
		Order:       s.Order,
		Status:      s.Status,
		Content:     contentView(content[s.KnowledgeContentID]),
		UnlockedAt:  s.UnlockedAt,
		CompletedAt: s.CompletedAt,
	}
	if s.Situation != nil || s.Trigger != nil || s.Action != nil {
		v.Plan = &PlanView{Situation: deref(s.Situation), Trigger: deref(s.Trigger), Action: deref(s.Action)}
	}
	return v
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func progress(steps []*types.RoadmapStep) (ProgressView, *uuid.UUID) {
	p := ProgressView{Total: len(steps)}
	var current *uuid.UUID
	for _, s := range steps {
		switch s.Status {
		case types.StepCompleted:
			p.Completed++
		case types.StepUnlocked:
			id := s.ID
			current = &id
		}
	}
	return p, current
}

func roadmapView(rm *types.Roadmap, steps []*types.RoadmapStep, content map[uuid.UUID]*catalog.KnowledgeContent) RoadmapView {
	p, current := progress(steps)
	v := RoadmapView{
		ID:            rm.ID,
		Goal:          rm.GoalNormalized,
		Status:        rm.Status,
		CurrentStepID: current,
		Progress:      p,
		Steps:         make([]StepView, 0, len(steps)),
		CreatedAt:     rm.CreatedAt,
		UpdatedAt:     rm.UpdatedAt,
		CompletedAt:   rm.CompletedAt,
		ArchivedAt:    rm.ArchivedAt,
	}
	for _, s := range steps {
		v.Steps = append(v.Steps, stepView(s, content))
	}
	return v
}

func roadmapSummary(rm *types.Roadmap, steps []*types.RoadmapStep) RoadmapSummary {
	p, current := progress(steps)
	return RoadmapSummary{
		ID:            rm.ID,
		Goal:          rm.GoalNormalized,
		Status:        rm.Status,
		CurrentStepID: current,
		Progress:      p,
		CreatedAt:     rm.CreatedAt,
		CompletedAt:   rm.CompletedAt,
		ArchivedAt:    rm.ArchivedAt,
	}
}
