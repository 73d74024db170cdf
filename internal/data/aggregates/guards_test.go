package aggregates

import (
	"context"
	"testing"

	"github.com/google/uuid"

	repotest "github.com/yungbote/roadmap-backend/internal/data/repos/testutil"
	domainagg "github.com/yungbote/roadmap-backend/internal/domain/aggregates"
	"github.com/yungbote/roadmap-backend/internal/domain/roadmap"
	"github.com/yungbote/roadmap-backend/internal/platform/dbctx"
)

func TestCASGuardTransition(t *testing.T) {
	db := repotest.SQLite(t)
	ctx := context.Background()
	kc := repotest.SeedContent(t, ctx, db, "inversion", "mental-model", []float32{1, 0})
	_, steps := repotest.SeedRoadmap(t, ctx, db, uuid.New(), roadmap.StatusActive, kc.ID)
	g := NewCASGuard(db)
	dbc := dbctx.Context{Ctx: ctx}

	if err := g.Transition(dbc, tableRoadmapStep, steps[0].ID, string(roadmap.StepUnlocked), string(roadmap.StepCompleted), nil); err != nil {
		t.Fatalf("first transition: %v", err)
	}
	var got roadmap.RoadmapStep
	if err := db.First(&got, "id = ?", steps[0].ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Status != roadmap.StepCompleted {
		t.Fatalf("status: want=completed got=%s", got.Status)
	}

	err := g.Transition(dbc, tableRoadmapStep, steps[0].ID, string(roadmap.StepUnlocked), string(roadmap.StepCompleted), nil)
	if !domainagg.IsCode(MapError("op", err), domainagg.CodeConflict) {
		t.Fatalf("lost race: want conflict got=%v", err)
	}
}

func TestCASGuardRejectsBadInput(t *testing.T) {
	dbc := dbctx.Context{Ctx: context.Background()}
	id := uuid.New()
	cases := []struct {
		name string
		err  error
	}{
		{"no db", CASGuard{}.UpdateWhile(dbc, tableRoadmapStep, id, "unlocked", map[string]any{"action": "x"})},
		{"no table", CASGuard{}.UpdateWhile(dbc, "", id, "unlocked", map[string]any{"action": "x"})},
		{"no columns", CASGuard{}.UpdateWhile(dbc, tableRoadmapStep, id, "unlocked", nil)},
		{"self transition", CASGuard{}.Transition(dbc, tableRoadmapStep, id, "locked", "locked", nil)},
	}
	for _, tc := range cases {
		if !domainagg.IsCode(MapError("op", tc.err), domainagg.CodeValidation) {
			t.Fatalf("%s: want validation got=%v", tc.name, tc.err)
		}
	}
}
