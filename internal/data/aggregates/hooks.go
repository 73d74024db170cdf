package aggregates

import (
	"time"

	"github.com/yungbote/roadmap-backend/internal/observability"
)

// WriteOutcome is what executeWrite reports once a transaction has settled.
// Status is "success", an aggregate code, or a step state kind.
type WriteOutcome struct {
	Op        string
	Status    string
	Duration  time.Duration
	Conflict  bool
	Retryable bool
}

// Hooks receives one outcome per aggregate write.
type Hooks interface {
	ObserveWrite(WriteOutcome)
}

// HooksFunc adapts a plain function.
type HooksFunc func(WriteOutcome)

func (f HooksFunc) ObserveWrite(o WriteOutcome) { f(o) }

var noopHooks = HooksFunc(func(WriteOutcome) {})

// NewObservabilityHooks feeds outcomes into the aggregate collectors. A nil
// metrics set yields a no-op.
func NewObservabilityHooks(metrics *observability.Metrics) Hooks {
	if metrics == nil {
		return noopHooks
	}
	return HooksFunc(func(o WriteOutcome) {
		metrics.ObserveAggregateOperation(o.Op, o.Status, o.Duration)
		if o.Conflict {
			metrics.IncAggregateConflict(o.Op)
		}
		if o.Retryable {
			metrics.IncAggregateRetry(o.Op)
		}
	})
}
