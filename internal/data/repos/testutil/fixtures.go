package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/roadmap-backend/internal/domain/catalog"
	"github.com/yungbote/roadmap-backend/internal/domain/roadmap"
	"gorm.io/gorm"
)

func SeedContent(tb testing.TB, ctx context.Context, tx *gorm.DB, slug string, typ catalog.ContentType, vec []float32) *catalog.KnowledgeContent {
	tb.Helper()
	kc := &catalog.KnowledgeContent{
		ID:       uuid.New(),
		Slug:     slug,
		Title:    slug,
		Type:     typ,
		Category: "general",
		Summary:  "summary of " + slug,
	}
	kc.SetKeywords([]string{slug})
	if err := kc.SetVector(vec); err != nil {
		tb.Fatalf("seed content vector: %v", err)
	}
	if err := tx.WithContext(ctx).Create(kc).Error; err != nil {
		tb.Fatalf("seed content: %v", err)
	}
	return kc
}

// SeedRoadmap writes a roadmap with one step per content id, step 0
// unlocked and the rest locked.
func SeedRoadmap(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, status roadmap.Status, contentIDs ...uuid.UUID) (*roadmap.Roadmap, []*roadmap.RoadmapStep) {
	tb.Helper()
	now := time.Now().UTC()
	rm := &roadmap.Roadmap{
		ID:             uuid.New(),
		UserID:         userID,
		GoalRaw:        "seeded goal text",
		GoalNormalized: "seeded goal text",
		Status:         status,
	}
	if err := tx.WithContext(ctx).Create(rm).Error; err != nil {
		tb.Fatalf("seed roadmap: %v", err)
	}
	steps := make([]*roadmap.RoadmapStep, 0, len(contentIDs))
	for i, cid := range contentIDs {
		st := &roadmap.RoadmapStep{
			ID:                 uuid.New(),
			RoadmapID:          rm.ID,
			KnowledgeContentID: cid,
			Order:              i,
			Status:             roadmap.StepLocked,
		}
		if i == 0 {
			st.Status = roadmap.StepUnlocked
			st.UnlockedAt = &now
		}
		steps = append(steps, st)
	}
	if len(steps) > 0 {
		if err := tx.WithContext(ctx).Create(&steps).Error; err != nil {
			tb.Fatalf("seed roadmap steps: %v", err)
		}
	}
	return rm, steps
}

// MarkStep forces a step status, bypassing the state machine.
func MarkStep(tb testing.TB, ctx context.Context, tx *gorm.DB, stepID uuid.UUID, status roadmap.StepStatus) {
	tb.Helper()
	updates := map[string]interface{}{"status": status, "updated_at": time.Now().UTC()}
	if status == roadmap.StepCompleted {
		updates["completed_at"] = time.Now().UTC()
	}
	if err := tx.WithContext(ctx).Model(&roadmap.RoadmapStep{}).Where("id = ?", stepID).Updates(updates).Error; err != nil {
		tb.Fatalf("mark step: %v", err)
	}
}
