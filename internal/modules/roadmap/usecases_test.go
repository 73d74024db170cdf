package roadmap

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/goleak"
	"gorm.io/gorm"

	"github.com/yungbote/roadmap-backend/internal/data/aggregates"
	"github.com/yungbote/roadmap-backend/internal/data/repos"
	repotest "github.com/yungbote/roadmap-backend/internal/data/repos/testutil"
	domainagg "github.com/yungbote/roadmap-backend/internal/domain/aggregates"
	"github.com/yungbote/roadmap-backend/internal/domain/catalog"
	types "github.com/yungbote/roadmap-backend/internal/domain/roadmap"
	"github.com/yungbote/roadmap-backend/internal/modules/roadmap/goal"
	"github.com/yungbote/roadmap-backend/internal/platform/dbctx"
	"github.com/yungbote/roadmap-backend/internal/platform/embedding"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("database/sql.(*DB).connectionOpener"))
}

const thesisGoal = "I want to stop procrastinating on my thesis"

// countingContent records catalog reads so tests can assert none happened.
type countingContent struct {
	repos.KnowledgeContentRepo
	lists  int32
	counts int32
}

func (c *countingContent) ListContent(dbc dbctx.Context, exclude []uuid.UUID) ([]*catalog.KnowledgeContent, error) {
	atomic.AddInt32(&c.lists, 1)
	return c.KnowledgeContentRepo.ListContent(dbc, exclude)
}

func (c *countingContent) Count(dbc dbctx.Context) (int64, error) {
	atomic.AddInt32(&c.counts, 1)
	return c.KnowledgeContentRepo.Count(dbc)
}

type env struct {
	db         *gorm.DB
	repos      repos.Repos
	content    *countingContent
	embedCalls int32
	embedErr   error
	uc         Usecases
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := repotest.SQLite(t)
	log := repotest.Logger(t)
	rs := repos.New(db, log)
	e := &env{db: db, repos: rs, content: &countingContent{KnowledgeContentRepo: rs.Content}}
	agg := aggregates.NewRoadmapAggregate(aggregates.RoadmapAggregateDeps{
		Base:        aggregates.BaseDeps{DB: db, Log: log},
		Roadmaps:    rs.Roadmaps,
		Steps:       rs.Steps,
		Transitions: rs.Transitions,
	})
	e.uc = New(UsecasesDeps{
		Log:      log,
		Content:  e.content,
		Roadmaps: rs.Roadmaps,
		Steps:    rs.Steps,
		History:  rs.History,
		Agg:      agg,
		Embedder: embedding.Func(func(ctx context.Context, text string) ([]float32, error) {
			atomic.AddInt32(&e.embedCalls, 1)
			if e.embedErr != nil {
				return nil, e.embedErr
			}
			return []float32{1, 0}, nil
		}),
	})
	return e
}

// seed writes n items cycling through all three types with strictly
// decreasing similarity to the goal vector (1, 0).
func (e *env) seed(t *testing.T, n int) []*catalog.KnowledgeContent {
	t.Helper()
	kinds := catalog.ContentTypes
	out := make([]*catalog.KnowledgeContent, 0, n)
	for i := 0; i < n; i++ {
		score := 0.95 - float64(i)*0.02
		vec := []float32{float32(score), float32(math.Sqrt(1 - score*score))}
		out = append(out, repotest.SeedContent(t, context.Background(), e.db, fmt.Sprintf("item-%02d", i), kinds[i%len(kinds)], vec))
	}
	return out
}

var fullPlan = types.Plan{Situation: "weekday mornings", Trigger: "after coffee", Action: "write one paragraph"}

func assertFreshRoadmap(t *testing.T, v RoadmapView) {
	t.Helper()
	if len(v.Steps) < 5 || len(v.Steps) > 7 {
		t.Fatalf("steps: want 5..7 got=%d", len(v.Steps))
	}
	seen := map[uuid.UUID]bool{}
	for i, s := range v.Steps {
		if s.Order != i {
			t.Fatalf("order: want=%d got=%d", i, s.Order)
		}
		want := types.StepLocked
		if i == 0 {
			want = types.StepUnlocked
		}
		if s.Status != want {
			t.Fatalf("step %d: want=%s got=%s", i, want, s.Status)
		}
		if s.Content == nil {
			t.Fatalf("step %d: content not resolved", i)
		}
		if seen[s.Content.ID] {
			t.Fatalf("duplicate content %s", s.Content.Slug)
		}
		seen[s.Content.ID] = true
	}
	if v.CurrentStepID == nil || *v.CurrentStepID != v.Steps[0].ID {
		t.Fatalf("current step: want=%s got=%v", v.Steps[0].ID, v.CurrentStepID)
	}
	if v.Status != types.StatusActive {
		t.Fatalf("status: want=active got=%s", v.Status)
	}
}

func TestGenerateRoadmapThesisScenario(t *testing.T) {
	e := newEnv(t)
	e.seed(t, 20)

	v, err := e.uc.GenerateRoadmap(context.Background(), uuid.New(), thesisGoal)
	if err != nil {
		t.Fatalf("GenerateRoadmap: %v", err)
	}
	assertFreshRoadmap(t, v)
	if v.Goal != thesisGoal {
		t.Fatalf("goal: want=%q got=%q", thesisGoal, v.Goal)
	}
	if v.Progress.Total != len(v.Steps) || v.Progress.Completed != 0 {
		t.Fatalf("progress: %+v", v.Progress)
	}
}

func TestGenerateRoadmapShortGoalSkipsCatalog(t *testing.T) {
	e := newEnv(t)
	e.seed(t, 20)

	_, err := e.uc.GenerateRoadmap(context.Background(), uuid.New(), "Help")
	if !errors.Is(err, types.ErrInvalidGoal) {
		t.Fatalf("want ErrInvalidGoal got=%v", err)
	}
	if e.content.lists != 0 || e.content.counts != 0 || e.embedCalls != 0 {
		t.Fatalf("catalog touched: lists=%d counts=%d embeds=%d", e.content.lists, e.content.counts, e.embedCalls)
	}
}

func TestGenerateRoadmapCatalogTooSmall(t *testing.T) {
	e := newEnv(t)
	e.seed(t, 3)
	userID := uuid.New()

	_, err := e.uc.GenerateRoadmap(context.Background(), userID, thesisGoal)
	ge, ok := types.AsGenerationError(err)
	if !ok || ge.Kind != types.KindInsufficientContent {
		t.Fatalf("want insufficient_content got=%v", err)
	}
	if ge.Fallback != string(goal.FallbackAwaitContent) {
		t.Fatalf("fallback: want=%s got=%s", goal.FallbackAwaitContent, ge.Fallback)
	}
	if e.embedCalls != 0 {
		t.Fatalf("edge case should refuse before embedding, embeds=%d", e.embedCalls)
	}
	rows, _ := e.repos.Roadmaps.ListByUser(dbctx.Context{Ctx: context.Background()}, userID, "", 0)
	if len(rows) != 0 {
		t.Fatalf("partial roadmap created: %d", len(rows))
	}
}

func TestGenerateRoadmapTooFewComparableItems(t *testing.T) {
	e := newEnv(t)
	e.seed(t, 4)
	repotest.SeedContent(t, context.Background(), e.db, "no-embedding-a", catalog.Fallacy, nil)
	repotest.SeedContent(t, context.Background(), e.db, "no-embedding-b", catalog.Fallacy, nil)

	_, err := e.uc.GenerateRoadmap(context.Background(), uuid.New(), thesisGoal)
	if !errors.Is(err, types.ErrInsufficientContent) {
		t.Fatalf("want ErrInsufficientContent got=%v", err)
	}
	if e.content.lists != 1 {
		t.Fatalf("matcher should read the catalog once, got=%d", e.content.lists)
	}
}

func completeAll(t *testing.T, e *env, userID uuid.UUID, v RoadmapView) {
	t.Helper()
	for i, s := range v.Steps {
		res, err := e.uc.CompleteStep(context.Background(), userID, s.ID, fullPlan)
		if err != nil {
			t.Fatalf("CompleteStep %d: %v", i, err)
		}
		if last := i == len(v.Steps)-1; res.RoadmapCompleted != last {
			t.Fatalf("step %d: roadmap_completed=%v", i, res.RoadmapCompleted)
		}
	}
}

func TestGenerateRoadmapExcludesLearningHistory(t *testing.T) {
	e := newEnv(t)
	e.seed(t, 12)
	userID := uuid.New()

	first, err := e.uc.GenerateRoadmap(context.Background(), userID, thesisGoal)
	if err != nil {
		t.Fatalf("first GenerateRoadmap: %v", err)
	}
	completeAll(t, e, userID, first)

	learned := map[uuid.UUID]bool{}
	for _, s := range first.Steps {
		learned[s.Content.ID] = true
	}
	second, err := e.uc.GenerateRoadmap(context.Background(), userID, "I want to finish my thesis chapters on time")
	if err != nil {
		t.Fatalf("second GenerateRoadmap: %v", err)
	}
	assertFreshRoadmap(t, second)
	for _, s := range second.Steps {
		if learned[s.Content.ID] {
			t.Fatalf("learned content reused: %s", s.Content.Slug)
		}
	}
}

func TestGenerateRoadmapHistoryExhausted(t *testing.T) {
	e := newEnv(t)
	e.seed(t, 10)
	userID := uuid.New()

	first, err := e.uc.GenerateRoadmap(context.Background(), userID, thesisGoal)
	if err != nil {
		t.Fatalf("GenerateRoadmap: %v", err)
	}
	completeAll(t, e, userID, first)

	_, err = e.uc.GenerateRoadmap(context.Background(), userID, thesisGoal)
	ge, ok := types.AsGenerationError(err)
	if !ok || ge.Kind != types.KindInsufficientContent || ge.Fallback != string(goal.FallbackReviewComplete) {
		t.Fatalf("want history exhausted got=%v", err)
	}
}

func TestGenerateRoadmapRejectsSecondActive(t *testing.T) {
	e := newEnv(t)
	e.seed(t, 20)
	userID := uuid.New()

	if _, err := e.uc.GenerateRoadmap(context.Background(), userID, thesisGoal); err != nil {
		t.Fatalf("GenerateRoadmap: %v", err)
	}
	embeds := atomic.LoadInt32(&e.embedCalls)
	_, err := e.uc.GenerateRoadmap(context.Background(), userID, "a completely different goal")
	if !errors.Is(err, types.ErrActiveRoadmapExists) {
		t.Fatalf("want ErrActiveRoadmapExists got=%v", err)
	}
	if atomic.LoadInt32(&e.embedCalls) != embeds {
		t.Fatalf("second generation should stop before embedding")
	}
}

func TestGenerateRoadmapEmbeddingFailure(t *testing.T) {
	e := newEnv(t)
	e.seed(t, 20)
	e.embedErr = errors.New("upstream 503")

	_, err := e.uc.GenerateRoadmap(context.Background(), uuid.New(), thesisGoal)
	ge, ok := types.AsGenerationError(err)
	if !ok || ge.Kind != types.KindEmbeddingService || !ge.Retryable() {
		t.Fatalf("want retryable embedding_service got=%v", err)
	}
}

func TestCompleteStepConcurrentSameStep(t *testing.T) {
	e := newEnv(t)
	e.seed(t, 20)
	userID := uuid.New()
	v, err := e.uc.GenerateRoadmap(context.Background(), userID, thesisGoal)
	if err != nil {
		t.Fatalf("GenerateRoadmap: %v", err)
	}

	var wg sync.WaitGroup
	results := make([]domainagg.CompleteStepResult, 2)
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = e.uc.CompleteStep(context.Background(), userID, v.Steps[0].ID, fullPlan)
		}(i)
	}
	wg.Wait()

	okCount := 0
	for i, err := range errs {
		if err == nil {
			okCount++
			if results[i].UnlockedStepID == nil || *results[i].UnlockedStepID != v.Steps[1].ID {
				t.Fatalf("winner should unlock step 1: %+v", results[i])
			}
			continue
		}
		se, ok := types.AsStateError(err)
		if !ok || !se.AlreadyDone() {
			t.Fatalf("loser: want already_completed got=%v", err)
		}
	}
	if okCount != 1 {
		t.Fatalf("successes: want=1 got=%d", okCount)
	}

	got, err := e.uc.GetActiveRoadmap(context.Background(), userID)
	if err != nil {
		t.Fatalf("GetActiveRoadmap: %v", err)
	}
	if got.Steps[0].Status != types.StepCompleted || got.Steps[1].Status != types.StepUnlocked {
		t.Fatalf("chain: step0=%s step1=%s", got.Steps[0].Status, got.Steps[1].Status)
	}
	if got.Steps[0].Plan == nil || got.Steps[0].Plan.Action != fullPlan.Action {
		t.Fatalf("plan not returned: %+v", got.Steps[0].Plan)
	}
	if got.CurrentStepID == nil || *got.CurrentStepID != v.Steps[1].ID || got.Progress.Completed != 1 {
		t.Fatalf("progress: current=%v completed=%d", got.CurrentStepID, got.Progress.Completed)
	}
}

func TestReadsArchiveAndPlans(t *testing.T) {
	e := newEnv(t)
	e.seed(t, 20)
	userID := uuid.New()
	v, err := e.uc.GenerateRoadmap(context.Background(), userID, thesisGoal)
	if err != nil {
		t.Fatalf("GenerateRoadmap: %v", err)
	}

	if _, err := e.uc.GetRoadmap(context.Background(), uuid.New(), v.ID); !errors.Is(err, types.ErrStateNotFound) {
		t.Fatalf("foreign GetRoadmap: want not_found got=%v", err)
	}
	got, err := e.uc.GetRoadmap(context.Background(), userID, v.ID)
	if err != nil || got.ID != v.ID || len(got.Steps) != len(v.Steps) {
		t.Fatalf("GetRoadmap: got=%+v err=%v", got, err)
	}

	step, err := e.uc.SaveStepPlan(context.Background(), userID, v.Steps[0].ID, types.Plan{Situation: "at my desk"})
	if err != nil {
		t.Fatalf("SaveStepPlan: %v", err)
	}
	if step.Plan == nil || step.Plan.Situation != "at my desk" || step.Status != types.StepUnlocked || step.Content == nil {
		t.Fatalf("SaveStepPlan view: %+v", step)
	}

	if _, err := e.uc.ArchiveRoadmap(context.Background(), userID, v.ID); err != nil {
		t.Fatalf("ArchiveRoadmap: %v", err)
	}
	if _, err := e.uc.GetActiveRoadmap(context.Background(), userID); !errors.Is(err, types.ErrStateNotFound) {
		t.Fatalf("GetActiveRoadmap after archive: want not_found got=%v", err)
	}
	if _, err := e.uc.GenerateRoadmap(context.Background(), userID, thesisGoal); err != nil {
		t.Fatalf("GenerateRoadmap after archive: %v", err)
	}

	all, err := e.uc.ListRoadmaps(context.Background(), userID, "", 0)
	if err != nil || len(all) != 2 {
		t.Fatalf("ListRoadmaps: n=%d err=%v", len(all), err)
	}
	archived, err := e.uc.ListRoadmaps(context.Background(), userID, types.StatusArchived, 10)
	if err != nil || len(archived) != 1 || archived[0].ID != v.ID || archived[0].Progress.Total != len(v.Steps) {
		t.Fatalf("ListRoadmaps archived: %+v err=%v", archived, err)
	}
	if _, err := e.uc.ListRoadmaps(context.Background(), userID, types.Status("paused"), 10); err == nil {
		t.Fatalf("ListRoadmaps: expected error for unknown status")
	}
}

func TestListCatalog(t *testing.T) {
	e := newEnv(t)
	e.seed(t, 9)

	page, err := e.uc.ListCatalog(context.Background(), CatalogFilter{Type: catalog.Fallacy})
	if err != nil {
		t.Fatalf("ListCatalog: %v", err)
	}
	if len(page.Items) != 3 || page.Total != 9 {
		t.Fatalf("page: items=%d total=%d", len(page.Items), page.Total)
	}
	for _, it := range page.Items {
		if it.Type != catalog.Fallacy || len(it.Keywords) == 0 {
			t.Fatalf("item: %+v", it)
		}
	}
	if _, err := e.uc.ListCatalog(context.Background(), CatalogFilter{Type: "meme"}); err == nil {
		t.Fatalf("expected error for unknown type")
	}
}
