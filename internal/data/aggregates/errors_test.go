package aggregates

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	domainagg "github.com/yungbote/roadmap-backend/internal/domain/aggregates"
	"github.com/yungbote/roadmap-backend/internal/domain/roadmap"
	"gorm.io/gorm"
)

func TestMapErrorCodes(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want domainagg.ErrorCode
	}{
		{"validation", ValidationError("bad input"), domainagg.CodeValidation},
		{"conflict", ConflictError("stale"), domainagg.CodeConflict},
		{"not found", gorm.ErrRecordNotFound, domainagg.CodeNotFound},
		{"pg unique", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), domainagg.CodeConflict},
		{"pg fk", &pgconn.PgError{Code: "23503"}, domainagg.CodePreconditionFailed},
		{"pg deadlock", &pgconn.PgError{Code: "40P01"}, domainagg.CodeRetryable},
		{"pg serialization", &pgconn.PgError{Code: "40001"}, domainagg.CodeRetryable},
		{"sqlite unique", errors.New("UNIQUE constraint failed: roadmap.user_id"), domainagg.CodeConflict},
		{"sqlite busy", errors.New("database is locked"), domainagg.CodeRetryable},
		{"other", errors.New("boom"), domainagg.CodeInternal},
	}
	for _, tc := range cases {
		if got := domainagg.CodeOf(MapError("op", tc.err)); got != tc.want {
			t.Fatalf("%s: want=%s got=%s", tc.name, tc.want, got)
		}
	}
}

func TestMapError_PassthroughAggregateError(t *testing.T) {
	in := domainagg.NewError(domainagg.CodeRetryable, "op", "retry", errors.New("boom"))
	if out := MapError("other", in); out != in {
		t.Fatalf("expected passthrough aggregate error")
	}
	if MapError("op", nil) != nil {
		t.Fatalf("nil should map to nil")
	}
}

func TestMapError_ActiveRoadmapIndexRace(t *testing.T) {
	cases := []error{
		&pgconn.PgError{Code: "23505", ConstraintName: "idx_roadmap_user_active"},
		errors.New("UNIQUE constraint failed: roadmap.user_id"),
	}
	for _, in := range cases {
		out := MapError("CreateRoadmap", in)
		if !domainagg.IsCode(out, domainagg.CodeConflict) {
			t.Fatalf("%v: want=conflict got=%s", in, domainagg.CodeOf(out))
		}
		if !errors.Is(out, roadmap.ErrActiveRoadmapExists) {
			t.Fatalf("%v: want ErrActiveRoadmapExists in chain", in)
		}
	}
	other := MapError("op", &pgconn.PgError{Code: "23505", ConstraintName: "idx_roadmap_step_order"})
	if errors.Is(other, roadmap.ErrActiveRoadmapExists) {
		t.Fatalf("step order violation must not read as active roadmap")
	}
}
