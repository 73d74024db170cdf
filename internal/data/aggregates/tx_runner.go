package aggregates

import (
	"context"
	"fmt"
	"time"

	domainagg "github.com/yungbote/roadmap-backend/internal/domain/aggregates"
	"github.com/yungbote/roadmap-backend/internal/platform/dbctx"
	"gorm.io/gorm"
)

// TxRunner is the all-or-nothing boundary for aggregate writes.
type TxRunner interface {
	InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error
}

type TxOption func(*gormTxRunner)

// WithLockTimeout bounds how long a transaction waits on a row lock.
// Postgres only; waiting past it surfaces as lock_not_available, which
// MapError reports as retryable.
func WithLockTimeout(d time.Duration) TxOption {
	return func(r *gormTxRunner) { r.lockTimeout = d }
}

type gormTxRunner struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

func NewGormTxRunner(db *gorm.DB, opts ...TxOption) TxRunner {
	r := &gormTxRunner{db: db}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// InTx commits when fn returns nil and rolls back otherwise. On a *gorm.DB
// that is already a transaction, gorm nests with a savepoint.
func (r *gormTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if fn == nil {
		return nil
	}
	if r == nil || r.db == nil {
		return domainagg.NewError(domainagg.CodeInternal, "aggregate.tx", "transaction runner has nil db", nil)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if r.lockTimeout > 0 && tx.Dialector.Name() == "postgres" {
			stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockTimeout.Milliseconds())
			if err := tx.Exec(stmt).Error; err != nil {
				return err
			}
		}
		return fn(dbctx.Context{Ctx: ctx, Tx: tx})
	})
}
