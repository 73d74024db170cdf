package aggregates

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorMatchesByCode(t *testing.T) {
	err := fmt.Errorf("complete: %w", NewError(CodeRetryable, "Roadmaps.Roadmap.CompleteStep", "lock timeout", errors.New("55P03")))
	if !errors.Is(err, &Error{Code: CodeRetryable}) {
		t.Fatalf("want match on retryable code")
	}
	if errors.Is(err, &Error{Code: CodeConflict}) {
		t.Fatalf("conflict must not match retryable")
	}
	if !IsRetryable(err) {
		t.Fatalf("IsRetryable: want=true")
	}
	if got := err.Error(); got != "complete: Roadmaps.Roadmap.CompleteStep: lock timeout (retryable)" {
		t.Fatalf("message: got=%q", got)
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(CodeInternal, "op", nil) != nil {
		t.Fatalf("Wrap(nil) should be nil")
	}
	if CodeOf(errors.New("plain")) != "" {
		t.Fatalf("plain error carries no code")
	}
}

func TestRoadmapContractOwns(t *testing.T) {
	if !RoadmapAggregateContract.Owns(OpArchiveRoadmap) || RoadmapAggregateContract.Owns("") {
		t.Fatalf("Owns mismatch: %+v", RoadmapAggregateContract.Ops)
	}
}
