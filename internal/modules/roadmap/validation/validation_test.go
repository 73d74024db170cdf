package validation

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/roadmap-backend/internal/domain/roadmap"
)

func fixture(n int) (Shell, []Step, map[uuid.UUID]struct{}) {
	steps := make([]Step, n)
	known := make(map[uuid.UUID]struct{}, n)
	for i := range steps {
		id := uuid.New()
		steps[i] = Step{ContentID: id, Order: i}
		known[id] = struct{}{}
	}
	return Shell{UserID: uuid.New(), Goal: "stop procrastinating"}, steps, known
}

func hasReason(r Result, want Reason) bool {
	for _, got := range r.Reasons {
		if got == want {
			return true
		}
	}
	return false
}

func TestValidateAcceptsWellFormed(t *testing.T) {
	for _, n := range []int{5, 6, 7} {
		shell, steps, known := fixture(n)
		if res := Validate(shell, steps, known, Bounds{Min: 5, Max: 7}); !res.Valid() || res.Err() != nil {
			t.Fatalf("n=%d: want valid got=%v", n, res.Reasons)
		}
	}
}

func TestValidateReasons(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Shell, []Step, map[uuid.UUID]struct{}) []Step
		want   Reason
	}{
		{"too few", func(_ *Shell, s []Step, _ map[uuid.UUID]struct{}) []Step { return s[:4] }, ReasonStepCount},
		{"gap", func(_ *Shell, s []Step, _ map[uuid.UUID]struct{}) []Step { s[4].Order = 7; return s }, ReasonOrder},
		{"repeat order", func(_ *Shell, s []Step, _ map[uuid.UUID]struct{}) []Step { s[3].Order = 2; return s }, ReasonOrder},
		{"unknown", func(_ *Shell, s []Step, k map[uuid.UUID]struct{}) []Step { delete(k, s[1].ContentID); return s }, ReasonUnresolvable},
		{"nil id", func(_ *Shell, s []Step, _ map[uuid.UUID]struct{}) []Step { s[0].ContentID = uuid.Nil; return s }, ReasonUnresolvable},
		{"duplicate", func(_ *Shell, s []Step, _ map[uuid.UUID]struct{}) []Step { s[2].ContentID = s[0].ContentID; return s }, ReasonDuplicate},
		{"no goal", func(sh *Shell, s []Step, _ map[uuid.UUID]struct{}) []Step { sh.Goal = " "; return s }, ReasonMissingRoadmap},
		{"no user", func(sh *Shell, s []Step, _ map[uuid.UUID]struct{}) []Step { sh.UserID = uuid.Nil; return s }, ReasonMissingRoadmap},
	}
	for _, tc := range cases {
		shell, steps, known := fixture(5)
		steps = tc.mutate(&shell, steps, known)
		res := Validate(shell, steps, known, Bounds{Min: 5, Max: 7})
		if !hasReason(res, tc.want) {
			t.Fatalf("%s: want reason %s got=%v", tc.name, tc.want, res.Reasons)
		}
		err := res.Err()
		if !errors.Is(err, roadmap.ErrValidationFailed) {
			t.Fatalf("%s: want ErrValidationFailed got=%v", tc.name, err)
		}
		ge, _ := roadmap.AsGenerationError(err)
		if len(ge.Reasons) != len(res.Reasons) {
			t.Fatalf("%s: reasons not carried: %v", tc.name, ge.Reasons)
		}
	}
}

func TestValidateReportsEachReasonOnce(t *testing.T) {
	shell, steps, known := fixture(5)
	steps[1].ContentID = steps[0].ContentID
	steps[2].ContentID = steps[0].ContentID
	res := Validate(shell, steps, known, Bounds{})
	if len(res.Reasons) != 1 || res.Reasons[0] != ReasonDuplicate {
		t.Fatalf("reasons: got=%v", res.Reasons)
	}
	if len(res.Details) != 2 {
		t.Fatalf("details: want=2 got=%d", len(res.Details))
	}
}
