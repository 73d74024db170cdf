package roadmap

import (
	"errors"
	"fmt"
	"testing"
)

func TestGenerationErrorIs(t *testing.T) {
	cause := errors.New("upstream 503")
	err := fmt.Errorf("generate: %w", NewGenerationError(KindEmbeddingService, "embed goal", cause))

	if !errors.Is(err, ErrEmbeddingService) {
		t.Fatalf("errors.Is(ErrEmbeddingService): want=true got=false")
	}
	if errors.Is(err, ErrDatabaseSearch) {
		t.Fatalf("errors.Is(ErrDatabaseSearch): want=false got=true")
	}
	if !errors.Is(err, cause) {
		t.Fatalf("errors.Is(cause): want=true got=false")
	}
	ge, ok := AsGenerationError(err)
	if !ok || !ge.Retryable() {
		t.Fatalf("retryable: want=true got=%v (ok=%v)", ge, ok)
	}
	if NewGenerationError(KindInvalidGoal, "", nil).Retryable() {
		t.Fatalf("invalid_goal should not be retryable")
	}
}

func TestStateErrorIs(t *testing.T) {
	err := fmt.Errorf("complete: %w", NewStateError(StateInvalidTransition, ReasonAlreadyCompleted, string(StepCompleted)))

	if !errors.Is(err, ErrInvalidStateTransition) {
		t.Fatalf("kind match: want=true got=false")
	}
	if !errors.Is(err, &StateError{Kind: StateInvalidTransition, Reason: ReasonAlreadyCompleted}) {
		t.Fatalf("reason match: want=true got=false")
	}
	if errors.Is(err, &StateError{Kind: StateInvalidTransition, Reason: ReasonStepLocked}) {
		t.Fatalf("reason mismatch: want=false got=true")
	}
	if errors.Is(err, ErrStateNotFound) {
		t.Fatalf("not_found: want=false got=true")
	}
	se, ok := AsStateError(err)
	if !ok || !se.AlreadyDone() {
		t.Fatalf("AlreadyDone: want=true got=%v", se)
	}
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to StepStatus
		want     bool
	}{
		{StepLocked, StepUnlocked, true},
		{StepUnlocked, StepCompleted, true},
		{StepLocked, StepCompleted, false},
		{StepCompleted, StepUnlocked, false},
		{StepUnlocked, StepLocked, false},
		{StepCompleted, StepCompleted, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Fatalf("%s->%s: want=%v got=%v", tc.from, tc.to, tc.want, got)
		}
	}
}

func TestPlanComplete(t *testing.T) {
	p := Plan{Situation: "  at my desk ", Trigger: "open laptop", Action: "write 1 paragraph"}
	if !p.Complete() {
		t.Fatalf("Complete: want=true got=false")
	}
	if got := p.Normalized().Situation; got != "at my desk" {
		t.Fatalf("Normalized: want=%q got=%q", "at my desk", got)
	}
	if (Plan{Situation: "x", Trigger: " ", Action: "y"}).Complete() {
		t.Fatalf("blank trigger: want incomplete")
	}
	cols := p.Columns()
	if cols["trigger_text"] != "open laptop" {
		t.Fatalf("Columns trigger_text: want=%q got=%v", "open laptop", cols["trigger_text"])
	}
}
