package testutil

import (
	"context"
	"errors"
	"testing"

	"github.com/yungbote/roadmap-backend/internal/platform/dbctx"
)

func TestInjectedTxRunner(t *testing.T) {
	bodyErr := errors.New("step no longer unlocked")
	cases := []struct {
		name       string
		runner     *InjectedTxRunner
		body       error
		wantErr    error
		wantRan    bool
		wantCommit int
		wantRoll   int
	}{
		{"commit", &InjectedTxRunner{}, nil, nil, true, 1, 0},
		{"body error", &InjectedTxRunner{}, bodyErr, bodyErr, true, 0, 1},
		{"fail commit", &InjectedTxRunner{FailCommit: ErrInjected}, nil, ErrInjected, true, 0, 1},
		{"fail before body", &InjectedTxRunner{FailBeforeBody: ErrInjected}, nil, ErrInjected, false, 0, 1},
		{"fail begin", &InjectedTxRunner{FailBegin: ErrInjected}, nil, ErrInjected, false, 0, 0},
	}
	for _, tc := range cases {
		ran := false
		err := tc.runner.InTx(context.Background(), func(dbctx.Context) error {
			ran = true
			return tc.body
		})
		if !errors.Is(err, tc.wantErr) || (tc.wantErr == nil && err != nil) {
			t.Fatalf("%s: err want=%v got=%v", tc.name, tc.wantErr, err)
		}
		if ran != tc.wantRan {
			t.Fatalf("%s: body ran want=%v got=%v", tc.name, tc.wantRan, ran)
		}
		if tc.runner.BeginCalls != 1 || tc.runner.CommitCalls != tc.wantCommit || tc.runner.RollbackCalls != tc.wantRoll {
			t.Fatalf("%s: counters begin=%d commit=%d rollback=%d", tc.name, tc.runner.BeginCalls, tc.runner.CommitCalls, tc.runner.RollbackCalls)
		}
	}
}

func TestInjectedTxRunnerRollsBackInner(t *testing.T) {
	inner := &InjectedTxRunner{}
	r := &InjectedTxRunner{Inner: inner, FailCommit: ErrInjected}
	if err := r.InTx(context.Background(), func(dbctx.Context) error { return nil }); !errors.Is(err, ErrInjected) {
		t.Fatalf("want injected err got=%v", err)
	}
	if inner.BeginCalls != 1 || inner.RollbackCalls != 1 || inner.CommitCalls != 0 {
		t.Fatalf("inner counters begin=%d commit=%d rollback=%d", inner.BeginCalls, inner.CommitCalls, inner.RollbackCalls)
	}
}
