package goal

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/yungbote/roadmap-backend/internal/domain/roadmap"
)

const (
	MinRunes = 10
	MaxRunes = 500
)

// Goal is user goal text after Normalize. Raw is kept for storage.
type Goal struct {
	Raw        string
	Normalized string
}

// Normalize strips control characters and collapses whitespace. It does not
// otherwise rewrite the user's text.
func Normalize(raw string) (Goal, error) {
	var b strings.Builder
	b.Grow(len(raw))
	space := false
	letters := 0
	for _, r := range raw {
		if unicode.IsSpace(r) {
			space = b.Len() > 0
			continue
		}
		if unicode.IsControl(r) || r == utf8.RuneError {
			continue
		}
		if space {
			b.WriteByte(' ')
			space = false
		}
		if unicode.IsLetter(r) {
			letters++
		}
		b.WriteRune(r)
	}
	norm := b.String()

	n := utf8.RuneCountInString(norm)
	if n < MinRunes {
		return Goal{}, roadmap.NewGenerationError(roadmap.KindInvalidGoal,
			fmt.Sprintf("goal must be at least %d characters", MinRunes), nil)
	}
	if letters == 0 {
		return Goal{}, roadmap.NewGenerationError(roadmap.KindInvalidGoal, "goal must contain words", nil)
	}
	if n > MaxRunes {
		norm = strings.TrimSpace(string([]rune(norm)[:MaxRunes]))
	}
	return Goal{Raw: raw, Normalized: norm}, nil
}

type Fallback string

const (
	FallbackNone           Fallback = ""
	FallbackAwaitContent   Fallback = "await_new_content"
	FallbackReviewComplete Fallback = "review_completed"
)

type EdgeCaseReason string

const (
	EdgeCatalogTooSmall  EdgeCaseReason = "catalog_too_small"
	EdgeHistoryExhausted EdgeCaseReason = "history_exhausted"
)

// EdgeCaseDecision says whether matching should run at all.
type EdgeCaseDecision struct {
	ShouldProceed bool
	Reason        EdgeCaseReason
	Message       string
	Fallback      Fallback
}

// HandleEdgeCases refuses generation when the catalog, less what the user has
// already learned, cannot fill a roadmap of minSteps.
func HandleEdgeCases(catalogCount, learnedCount, minSteps int) EdgeCaseDecision {
	if minSteps <= 0 {
		minSteps = 5
	}
	if catalogCount < minSteps {
		return EdgeCaseDecision{
			Reason:   EdgeCatalogTooSmall,
			Message:  "Our library is still growing. Check back soon for new content to build your roadmap.",
			Fallback: FallbackAwaitContent,
		}
	}
	if learnedCount < 0 {
		learnedCount = 0
	}
	if catalogCount-learnedCount < minSteps {
		return EdgeCaseDecision{
			Reason:   EdgeHistoryExhausted,
			Message:  "You've already worked through most of our library. Review what you've completed while we add more.",
			Fallback: FallbackReviewComplete,
		}
	}
	return EdgeCaseDecision{ShouldProceed: true}
}
