package matching

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/roadmap-backend/internal/domain/catalog"
	"github.com/yungbote/roadmap-backend/internal/domain/roadmap"
	"github.com/yungbote/roadmap-backend/internal/platform/embedding"
)

func item(slug string, typ catalog.ContentType, vec ...float32) *catalog.KnowledgeContent {
	kc := &catalog.KnowledgeContent{ID: uuid.New(), Slug: slug, Title: slug, Type: typ}
	if vec != nil {
		_ = kc.SetVector(vec)
	}
	return kc
}

// angled returns a unit vector whose cosine with (1,0) is score.
func angled(score float64) []float32 {
	return []float32{float32(score), float32(math.Sqrt(1 - score*score))}
}

func candidates(specs ...struct {
	typ   catalog.ContentType
	score float64
}) []Candidate {
	out := make([]Candidate, 0, len(specs))
	for i, s := range specs {
		out = append(out, Candidate{Content: item(fmt.Sprintf("c%02d", i), s.typ), Score: s.score})
	}
	return out
}

type scored = struct {
	typ   catalog.ContentType
	score float64
}

func typeCounts(cs []Candidate) map[catalog.ContentType]int {
	m := map[catalog.ContentType]int{}
	for _, c := range cs {
		m[c.Content.Type]++
	}
	return m
}

func TestRankOrdersAndSkips(t *testing.T) {
	a := item("b-slug", catalog.MentalModel, angled(0.9)...)
	b := item("a-slug", catalog.Fallacy, angled(0.9)...)
	c := item("c-slug", catalog.CognitiveBias, angled(0.4)...)
	missing := item("no-embedding", catalog.Fallacy)
	wrongDims := item("wrong-dims", catalog.Fallacy, 1, 0, 0)
	learned := item("learned", catalog.MentalModel, angled(0.99)...)

	ranked, skipped := Rank([]float32{1, 0}, []*catalog.KnowledgeContent{c, a, missing, b, wrongDims, learned},
		map[uuid.UUID]struct{}{learned.ID: {}})
	if len(ranked) != 3 {
		t.Fatalf("ranked: want=3 got=%d", len(ranked))
	}
	if ranked[0].Content != b || ranked[1].Content != a || ranked[2].Content != c {
		t.Fatalf("order: got=%s,%s,%s", ranked[0].Content.Slug, ranked[1].Content.Slug, ranked[2].Content.Slug)
	}
	if len(skipped) != 2 {
		t.Fatalf("skipped: want=2 got=%d", len(skipped))
	}
}

func TestSelectClampsCount(t *testing.T) {
	cfg := DefaultConfig()
	many := make([]scored, 0, 12)
	types := []catalog.ContentType{catalog.MentalModel, catalog.CognitiveBias, catalog.Fallacy}
	for i := 0; i < 12; i++ {
		many = append(many, scored{types[i%3], 0.9 - float64(i)*0.01})
	}
	got, err := Select(candidates(many...), cfg)
	if err != nil || len(got) != 7 {
		t.Fatalf("many above floor: want=7 got=%d err=%v", len(got), err)
	}

	few := []scored{{catalog.MentalModel, 0.9}, {catalog.Fallacy, 0.8}, {catalog.CognitiveBias, 0.1}, {catalog.Fallacy, 0.05}, {catalog.MentalModel, 0.01}, {catalog.Fallacy, 0.0}}
	got, err = Select(candidates(few...), cfg)
	if err != nil || len(got) != 5 {
		t.Fatalf("few above floor: want=5 got=%d err=%v", len(got), err)
	}
}

func TestSelectEnforcesTypeCap(t *testing.T) {
	// Six mental models outrank everything else; with N=7 the cap is 4.
	in := []scored{
		{catalog.MentalModel, 0.95}, {catalog.MentalModel, 0.94}, {catalog.MentalModel, 0.93},
		{catalog.MentalModel, 0.92}, {catalog.MentalModel, 0.91}, {catalog.MentalModel, 0.90},
		{catalog.Fallacy, 0.5}, {catalog.CognitiveBias, 0.4}, {catalog.Fallacy, 0.3},
	}
	cs := candidates(in...)
	got, err := Select(cs, DefaultConfig())
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(got) != 7 {
		t.Fatalf("count: want=7 got=%d", len(got))
	}
	if n := typeCounts(got)[catalog.MentalModel]; n != 4 {
		t.Fatalf("mental models: want=4 got=%d", n)
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].Score < got[i].Score {
			t.Fatalf("selection not in rank order at %d", i)
		}
	}
}

func TestSelectRelaxesCapRatherThanDropBelowFive(t *testing.T) {
	// Only one non-mental-model item exists at all.
	in := []scored{
		{catalog.MentalModel, 0.9}, {catalog.MentalModel, 0.8}, {catalog.MentalModel, 0.7},
		{catalog.MentalModel, 0.6}, {catalog.MentalModel, 0.5}, {catalog.Fallacy, 0.3},
	}
	got, err := Select(candidates(in...), DefaultConfig())
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(got) != 6 {
		t.Fatalf("count: want=6 got=%d", len(got))
	}
	if n := typeCounts(got)[catalog.MentalModel]; n != 5 {
		t.Fatalf("relaxed cap: want=5 mental models got=%d", n)
	}
}

func TestSelectPrefersDiverseBelowFloorOverDominance(t *testing.T) {
	// Only four candidates clear the floor, all fallacies. The fifth slot
	// goes to the best below-floor item of another type.
	in := []scored{
		{catalog.Fallacy, 0.9}, {catalog.Fallacy, 0.85}, {catalog.Fallacy, 0.8}, {catalog.Fallacy, 0.75},
		{catalog.MentalModel, 0.1}, {catalog.CognitiveBias, 0.05},
	}
	got, err := Select(candidates(in...), DefaultConfig())
	if err != nil || len(got) != 5 {
		t.Fatalf("Select: got=%d err=%v", len(got), err)
	}
	if n := typeCounts(got)[catalog.Fallacy]; n != 4 {
		t.Fatalf("fallacies: want=4 got=%d", n)
	}
	if got[4].Content.Type != catalog.MentalModel {
		t.Fatalf("last slot: want mental-model got=%s", got[4].Content.Type)
	}
}

func TestSelectInsufficient(t *testing.T) {
	in := []scored{{catalog.MentalModel, 0.9}, {catalog.Fallacy, 0.8}, {catalog.CognitiveBias, 0.7}}
	_, err := Select(candidates(in...), DefaultConfig())
	if !errors.Is(err, roadmap.ErrInsufficientContent) {
		t.Fatalf("want ErrInsufficientContent got=%v", err)
	}
}

func TestConfigNormalized(t *testing.T) {
	c := Config{MinSteps: 2, MaxSteps: 12, MaxTypeShare: 3, SimilarityFloor: 5}.normalized()
	if c != DefaultConfig() {
		t.Fatalf("normalized: want=%+v got=%+v", DefaultConfig(), c)
	}
	t.Setenv("ROADMAP_MAX_STEPS", "6")
	if got := ConfigFromEnv().MaxSteps; got != 6 {
		t.Fatalf("env max steps: want=6 got=%d", got)
	}
}

type countingCatalog struct {
	items   []*catalog.KnowledgeContent
	err     error
	calls   int
	exclude []uuid.UUID
}

func (c *countingCatalog) ListContent(ctx context.Context, exclude []uuid.UUID) ([]*catalog.KnowledgeContent, error) {
	c.calls++
	c.exclude = exclude
	return c.items, c.err
}

func thesisCatalog() []*catalog.KnowledgeContent {
	types := []catalog.ContentType{catalog.MentalModel, catalog.CognitiveBias, catalog.Fallacy}
	out := make([]*catalog.KnowledgeContent, 0, 20)
	for i := 0; i < 20; i++ {
		out = append(out, item(fmt.Sprintf("item-%02d", i), types[i%3], angled(0.95-float64(i)*0.03)...))
	}
	return out
}

func goalEmbedder(vec []float32, err error) embedding.Embedder {
	return embedding.Func(func(ctx context.Context, text string) ([]float32, error) { return vec, err })
}

func TestMatchThesisScenario(t *testing.T) {
	items := thesisCatalog()
	cat := &countingCatalog{items: items}
	learned := map[uuid.UUID]struct{}{items[0].ID: {}, items[4].ID: {}}
	m := New(Deps{Embedder: goalEmbedder([]float32{1, 0}, nil), Catalog: cat})

	got, err := m.Match(context.Background(), "I want to stop procrastinating on my thesis", learned)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if len(got) < 5 || len(got) > 7 {
		t.Fatalf("steps: want 5..7 got=%d", len(got))
	}
	seen := map[uuid.UUID]bool{}
	for i, s := range got {
		if s.Order != i {
			t.Fatalf("order: want=%d got=%d", i, s.Order)
		}
		if seen[s.ContentID] {
			t.Fatalf("duplicate content %s", s.ContentID)
		}
		seen[s.ContentID] = true
		if _, ok := learned[s.ContentID]; ok {
			t.Fatalf("learned content selected: %s", s.Content.Slug)
		}
	}
	if len(cat.exclude) != 2 {
		t.Fatalf("exclude passed to catalog: want=2 got=%d", len(cat.exclude))
	}
	if len(learned) != 2 {
		t.Fatalf("learned set mutated")
	}

	again, _ := m.Match(context.Background(), "I want to stop procrastinating on my thesis", learned)
	for i := range got {
		if got[i].ContentID != again[i].ContentID {
			t.Fatalf("non-deterministic result at %d", i)
		}
	}
}

func TestMatchErrorsAreTyped(t *testing.T) {
	down := errors.New("connection refused")

	m := New(Deps{Embedder: goalEmbedder(nil, down), Catalog: &countingCatalog{}})
	if _, err := m.Match(context.Background(), "goal text here", nil); !errors.Is(err, roadmap.ErrEmbeddingService) || !errors.Is(err, down) {
		t.Fatalf("embed failure: got=%v", err)
	}

	m = New(Deps{Embedder: goalEmbedder(nil, nil), Catalog: &countingCatalog{}})
	if _, err := m.Match(context.Background(), "goal text here", nil); !errors.Is(err, roadmap.ErrEmbeddingService) {
		t.Fatalf("empty vector: got=%v", err)
	}

	cat := &countingCatalog{err: down}
	m = New(Deps{Embedder: goalEmbedder([]float32{1, 0}, nil), Catalog: cat})
	if _, err := m.Match(context.Background(), "goal text here", nil); !errors.Is(err, roadmap.ErrDatabaseSearch) {
		t.Fatalf("catalog failure: got=%v", err)
	}

	cat = &countingCatalog{items: thesisCatalog()[:3]}
	m = New(Deps{Embedder: goalEmbedder([]float32{1, 0}, nil), Catalog: cat})
	if _, err := m.Match(context.Background(), "goal text here", nil); !errors.Is(err, roadmap.ErrInsufficientContent) {
		t.Fatalf("three items: got=%v", err)
	}
}

type reverseSequencer struct{}

func (reverseSequencer) Sequence(in []Candidate) []Candidate {
	out := make([]Candidate, len(in))
	for i := range in {
		out[len(in)-1-i] = in[i]
	}
	return out
}

func TestMatchUsesSequencer(t *testing.T) {
	items := thesisCatalog()
	base := New(Deps{Embedder: goalEmbedder([]float32{1, 0}, nil), Catalog: &countingCatalog{items: items}})
	rev := New(Deps{Embedder: goalEmbedder([]float32{1, 0}, nil), Catalog: &countingCatalog{items: items}, Sequencer: reverseSequencer{}})

	a, _ := base.Match(context.Background(), "goal text here", nil)
	b, _ := rev.Match(context.Background(), "goal text here", nil)
	if len(a) != len(b) || a[0].ContentID != b[len(b)-1].ContentID || b[0].Order != 0 {
		t.Fatalf("sequencer not applied")
	}
}
