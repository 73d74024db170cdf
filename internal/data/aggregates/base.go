package aggregates

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	domainagg "github.com/yungbote/roadmap-backend/internal/domain/aggregates"
	"github.com/yungbote/roadmap-backend/internal/domain/roadmap"
	"github.com/yungbote/roadmap-backend/internal/observability"
	"github.com/yungbote/roadmap-backend/internal/platform/dbctx"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
)

type BaseDeps struct {
	DB       *gorm.DB
	Log      *logger.Logger
	Runner   TxRunner
	Hooks    Hooks
	CASGuard CASGuard
	Now      func() time.Time
}

func (d BaseDeps) withDefaults() BaseDeps {
	if d.Runner == nil {
		d.Runner = NewGormTxRunner(d.DB)
	}
	if d.Hooks == nil {
		d.Hooks = noopHooks
	}
	if d.CASGuard.db == nil {
		d.CASGuard = NewCASGuard(d.DB)
	}
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	if d.Now == nil {
		d.Now = func() time.Time { return time.Now().UTC() }
	}
	return d
}

// executeWrite runs fn in one transaction, maps the error and reports the
// outcome to hooks. State rejections pass through unmapped.
func executeWrite(ctx context.Context, deps BaseDeps, op string, fn func(dbc dbctx.Context) error) error {
	deps = deps.withDefaults()
	if op = strings.TrimSpace(op); op == "" {
		op = "aggregate.write"
	}
	ctx, span := observability.StartSpan(ctx, op, attribute.String("aggregate.op", op))
	start := time.Now()

	err := MapError(op, deps.Runner.InTx(ctx, fn))

	out := WriteOutcome{
		Op:        op,
		Status:    aggregateErrorStatus(err),
		Duration:  time.Since(start),
		Conflict:  isConflictSignal(err),
		Retryable: domainagg.IsRetryable(err),
	}
	span.SetAttributes(attribute.String("aggregate.status", out.Status))
	observability.EndSpan(span, err)
	deps.Hooks.ObserveWrite(out)
	return err
}

func aggregateErrorStatus(err error) string {
	if err == nil {
		return "success"
	}
	if se, ok := roadmap.AsStateError(err); ok {
		return string(se.Kind)
	}
	code := strings.TrimSpace(string(domainagg.CodeOf(err)))
	if code == "" {
		code = strings.TrimSpace(string(domainagg.CodeOf(MapError("aggregate.status", err))))
	}
	if code == "" {
		return "failure"
	}
	return code
}

// isConflictSignal counts lost races and rejected step transitions.
func isConflictSignal(err error) bool {
	if err == nil {
		return false
	}
	if domainagg.IsCode(err, domainagg.CodeConflict) {
		return true
	}
	se, ok := roadmap.AsStateError(err)
	return ok && se.Kind == roadmap.StateInvalidTransition
}
