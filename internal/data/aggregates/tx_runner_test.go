package aggregates_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yungbote/roadmap-backend/internal/data/aggregates"
	repotest "github.com/yungbote/roadmap-backend/internal/data/repos/testutil"
	"github.com/yungbote/roadmap-backend/internal/domain/catalog"
	domainagg "github.com/yungbote/roadmap-backend/internal/domain/aggregates"
	"github.com/yungbote/roadmap-backend/internal/platform/dbctx"
)

func TestGormTxRunnerCommitAndRollback(t *testing.T) {
	db := repotest.SQLite(t)
	runner := aggregates.NewGormTxRunner(db, aggregates.WithLockTimeout(time.Second))
	ctx := context.Background()

	boom := errors.New("boom")
	err := runner.InTx(ctx, func(dbc dbctx.Context) error {
		repotest.SeedContent(t, dbc.Ctx, dbc.Tx, "rolled-back", catalog.MentalModel, []float32{1, 0})
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("rollback: want boom got=%v", err)
	}
	if err := runner.InTx(ctx, func(dbc dbctx.Context) error {
		repotest.SeedContent(t, dbc.Ctx, dbc.Tx, "committed", catalog.Fallacy, []float32{0, 1})
		return nil
	}); err != nil {
		t.Fatalf("commit: %v", err)
	}

	var slugs []string
	if err := db.Model(&catalog.KnowledgeContent{}).Order("slug").Pluck("slug", &slugs).Error; err != nil {
		t.Fatalf("pluck: %v", err)
	}
	if len(slugs) != 1 || slugs[0] != "committed" {
		t.Fatalf("rows after tx: want=[committed] got=%v", slugs)
	}
}

func TestGormTxRunnerNilDB(t *testing.T) {
	err := aggregates.NewGormTxRunner(nil).InTx(context.Background(), func(dbctx.Context) error { return nil })
	if !domainagg.IsCode(err, domainagg.CodeInternal) {
		t.Fatalf("nil db: want internal got=%v", err)
	}
}
