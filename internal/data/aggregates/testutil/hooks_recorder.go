package testutil

import (
	"sync"

	"github.com/yungbote/roadmap-backend/internal/data/aggregates"
)

// HooksRecorder keeps every aggregate write outcome for later assertions.
type HooksRecorder struct {
	mu       sync.Mutex
	outcomes []aggregates.WriteOutcome
}

var _ aggregates.Hooks = (*HooksRecorder)(nil)

func (h *HooksRecorder) ObserveWrite(o aggregates.WriteOutcome) {
	h.mu.Lock()
	h.outcomes = append(h.outcomes, o)
	h.mu.Unlock()
}

// Outcomes returns the outcomes recorded for op, oldest first. An empty op
// returns all of them.
func (h *HooksRecorder) Outcomes(op string) []aggregates.WriteOutcome {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []aggregates.WriteOutcome
	for _, o := range h.outcomes {
		if op == "" || o.Op == op {
			out = append(out, o)
		}
	}
	return out
}

func (h *HooksRecorder) Statuses(op string) []string {
	var out []string
	for _, o := range h.Outcomes(op) {
		out = append(out, o.Status)
	}
	return out
}

func (h *HooksRecorder) ConflictCount(op string) int {
	n := 0
	for _, o := range h.Outcomes(op) {
		if o.Conflict {
			n++
		}
	}
	return n
}

func (h *HooksRecorder) RetryCount(op string) int {
	n := 0
	for _, o := range h.Outcomes(op) {
		if o.Retryable {
			n++
		}
	}
	return n
}
