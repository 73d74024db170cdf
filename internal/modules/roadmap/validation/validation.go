package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/roadmap-backend/internal/domain/roadmap"
)

type Reason string

const (
	ReasonStepCount      Reason = "step_count_out_of_range"
	ReasonOrder          Reason = "order_not_contiguous"
	ReasonUnresolvable   Reason = "unresolvable_content"
	ReasonDuplicate      Reason = "duplicate_content"
	ReasonMissingRoadmap Reason = "missing_roadmap_fields"
)

type Shell struct {
	UserID uuid.UUID
	Goal   string
}

type Step struct {
	ContentID uuid.UUID
	Order     int
}

type Bounds struct {
	Min int
	Max int
}

type Result struct {
	Reasons []Reason
	Details []string
}

func (r Result) Valid() bool { return len(r.Reasons) == 0 }

// Err converts an invalid result to a validation_failed GenerationError.
func (r Result) Err() error {
	if r.Valid() {
		return nil
	}
	reasons := make([]string, len(r.Reasons))
	for i, rs := range r.Reasons {
		reasons[i] = string(rs)
	}
	ge := roadmap.NewGenerationError(roadmap.KindValidationFailed, strings.Join(r.Details, "; "), nil)
	ge.Reasons = reasons
	return ge
}

func (r *Result) add(reason Reason, detail string) {
	for _, have := range r.Reasons {
		if have == reason {
			r.Details = append(r.Details, detail)
			return
		}
	}
	r.Reasons = append(r.Reasons, reason)
	r.Details = append(r.Details, detail)
}

// Validate checks a generated roadmap before it is persisted. It reports
// every problem it finds and never repairs the input.
func Validate(shell Shell, steps []Step, resolvable map[uuid.UUID]struct{}, b Bounds) Result {
	if b.Min <= 0 {
		b.Min = 5
	}
	if b.Max < b.Min {
		b.Max = 7
	}
	var res Result

	if shell.UserID == uuid.Nil {
		res.add(ReasonMissingRoadmap, "user id missing")
	}
	if strings.TrimSpace(shell.Goal) == "" {
		res.add(ReasonMissingRoadmap, "goal missing")
	}

	if len(steps) < b.Min || len(steps) > b.Max {
		res.add(ReasonStepCount, fmt.Sprintf("got %d steps, want %d..%d", len(steps), b.Min, b.Max))
	}

	orders := make([]int, 0, len(steps))
	seen := make(map[uuid.UUID]struct{}, len(steps))
	for _, s := range steps {
		orders = append(orders, s.Order)
		if s.ContentID == uuid.Nil {
			res.add(ReasonUnresolvable, fmt.Sprintf("step %d has no content id", s.Order))
			continue
		}
		if _, ok := resolvable[s.ContentID]; !ok {
			res.add(ReasonUnresolvable, fmt.Sprintf("step %d content %s not in catalog", s.Order, s.ContentID))
		}
		if _, dup := seen[s.ContentID]; dup {
			res.add(ReasonDuplicate, fmt.Sprintf("content %s appears twice", s.ContentID))
		}
		seen[s.ContentID] = struct{}{}
	}

	sort.Ints(orders)
	for i, o := range orders {
		if o != i {
			res.add(ReasonOrder, fmt.Sprintf("orders %v are not 0..%d", orders, len(orders)-1))
			break
		}
	}
	return res
}
