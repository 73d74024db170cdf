package matching

import (
	"fmt"
	"math"

	"github.com/yungbote/roadmap-backend/internal/domain/catalog"
	"github.com/yungbote/roadmap-backend/internal/domain/roadmap"
)

// Select picks between MinSteps and MaxSteps candidates from ranked, which
// must already be in rank order. The result keeps rank order.
//
// N is the number of candidates at or above the floor, clamped to the step
// bounds. No type may exceed floor(MaxTypeShare*N) slots until the passes
// run out: above-floor with the cap, above-floor without it, below-floor
// with the cap, then anything left.
func Select(ranked []Candidate, cfg Config) ([]Candidate, error) {
	cfg = cfg.normalized()
	if len(ranked) < cfg.MinSteps {
		return nil, roadmap.NewGenerationError(roadmap.KindInsufficientContent,
			fmt.Sprintf("found %d eligible items, need at least %d", len(ranked), cfg.MinSteps), nil)
	}

	aboveFloor := 0
	for _, c := range ranked {
		if c.Score >= cfg.SimilarityFloor {
			aboveFloor++
		}
	}
	n := aboveFloor
	if n < cfg.MinSteps {
		n = cfg.MinSteps
	}
	if n > cfg.MaxSteps {
		n = cfg.MaxSteps
	}
	typeCap := int(math.Floor(cfg.MaxTypeShare * float64(n)))
	if typeCap < 1 {
		typeCap = 1
	}

	picked := make([]bool, len(ranked))
	perType := make(map[catalog.ContentType]int, len(catalog.ContentTypes))
	count := 0

	pass := func(belowFloor, capped bool) {
		for i, c := range ranked {
			if count == n {
				return
			}
			if picked[i] {
				continue
			}
			if !belowFloor && c.Score < cfg.SimilarityFloor {
				continue
			}
			if capped && perType[c.Content.Type] >= typeCap {
				continue
			}
			picked[i] = true
			perType[c.Content.Type]++
			count++
		}
	}
	pass(false, true)
	pass(false, false)
	pass(true, true)
	pass(true, false)

	out := make([]Candidate, 0, n)
	for i, c := range ranked {
		if picked[i] {
			out = append(out, c)
		}
	}
	return out, nil
}

// Sequencer orders selected candidates into curriculum order.
type Sequencer interface {
	Sequence(selected []Candidate) []Candidate
}

// RelevanceSequencer keeps the most relevant item first. It is the only
// sequencer; relevance order is the curriculum order.
type RelevanceSequencer struct{}

func (RelevanceSequencer) Sequence(selected []Candidate) []Candidate { return selected }
