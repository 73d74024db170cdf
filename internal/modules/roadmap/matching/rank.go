package matching

import (
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/yungbote/roadmap-backend/internal/domain/catalog"
)

type Candidate struct {
	Content *catalog.KnowledgeContent
	Score   float64
}

func cosine(a, b []float32) (float64, bool) {
	if len(a) == 0 || len(a) != len(b) {
		return 0, false
	}
	var dot, na, nb float64
	for i := 0; i < len(a); i++ {
		x := float64(a[i])
		y := float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0, false
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb)), true
}

// Rank scores every non-excluded item against goal and sorts by score
// descending, then slug, then id. Items whose embedding cannot be compared are
// returned in skipped.
func Rank(goal []float32, items []*catalog.KnowledgeContent, exclude map[uuid.UUID]struct{}) (ranked []Candidate, skipped []*catalog.KnowledgeContent) {
	ranked = make([]Candidate, 0, len(items))
	seen := make(map[uuid.UUID]struct{}, len(items))
	for _, it := range items {
		if it == nil || it.ID == uuid.Nil {
			continue
		}
		if _, ok := exclude[it.ID]; ok {
			continue
		}
		if _, dup := seen[it.ID]; dup {
			continue
		}
		seen[it.ID] = struct{}{}
		vec, err := it.Vector()
		if err != nil {
			skipped = append(skipped, it)
			continue
		}
		score, ok := cosine(goal, vec)
		if !ok {
			skipped = append(skipped, it)
			continue
		}
		ranked = append(ranked, Candidate{Content: it, Score: score})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return less(ranked[i], ranked[j]) })
	return ranked, skipped
}

func less(a, b Candidate) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.Content.Slug != b.Content.Slug {
		return a.Content.Slug < b.Content.Slug
	}
	return a.Content.ID.String() < b.Content.ID.String()
}
