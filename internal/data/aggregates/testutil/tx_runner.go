package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/yungbote/roadmap-backend/internal/data/aggregates"
	"github.com/yungbote/roadmap-backend/internal/platform/dbctx"
)

// InjectedTxRunner injects transaction failures for aggregate tests.
// When Inner is set the body runs inside Inner's real transaction and an
// injected commit failure rolls that transaction back.
type InjectedTxRunner struct {
	mu sync.Mutex

	Inner aggregates.TxRunner

	FailBegin      error
	FailBeforeBody error
	FailCommit     error

	BeginCalls    int
	CommitCalls   int
	RollbackCalls int
}

var _ aggregates.TxRunner = (*InjectedTxRunner)(nil)

func (r *InjectedTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	r.mu.Lock()
	r.BeginCalls++
	failBegin, failBeforeBody, failCommit := r.FailBegin, r.FailBeforeBody, r.FailCommit
	inner := r.Inner
	r.mu.Unlock()

	if failBegin != nil {
		return failBegin
	}
	if failBeforeBody != nil {
		r.count(&r.RollbackCalls)
		return failBeforeBody
	}
	run := func(dbc dbctx.Context) error {
		if fn != nil {
			if err := fn(dbc); err != nil {
				return err
			}
		}
		return failCommit
	}

	var err error
	if inner != nil {
		err = inner.InTx(ctx, run)
	} else {
		err = run(dbctx.Context{Ctx: ctx})
	}
	if err != nil {
		r.count(&r.RollbackCalls)
		return err
	}
	r.count(&r.CommitCalls)
	return nil
}

func (r *InjectedTxRunner) count(n *int) {
	r.mu.Lock()
	*n++
	r.mu.Unlock()
}

// ErrInjected is a ready-made failure for FailCommit and friends.
var ErrInjected = errors.New("injected tx failure")
