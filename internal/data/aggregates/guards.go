package aggregates

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/yungbote/roadmap-backend/internal/platform/dbctx"
	"gorm.io/gorm"
)

// CASGuard moves a row between statuses with a compare-and-set update
// inside the caller's aggregate transaction.
type CASGuard struct {
	db *gorm.DB
}

func NewCASGuard(db *gorm.DB) CASGuard {
	return CASGuard{db: db}
}

// Transition sets status to `to`, plus any extra columns, only while the
// row is still in `from`. A row that already left `from` is a conflict.
func (g CASGuard) Transition(dbc dbctx.Context, table string, id uuid.UUID, from, to string, extra map[string]any) error {
	if to == "" || from == to {
		return ValidationError(fmt.Sprintf("invalid transition %q -> %q", from, to))
	}
	updates := make(map[string]any, len(extra)+1)
	for k, v := range extra {
		updates[k] = v
	}
	updates["status"] = to
	return g.UpdateWhile(dbc, table, id, from, updates)
}

// UpdateWhile writes updates only while the row's status is still status.
func (g CASGuard) UpdateWhile(dbc dbctx.Context, table string, id uuid.UUID, status string, updates map[string]any) error {
	if table == "" || id == uuid.Nil || status == "" {
		return ValidationError("guarded update needs a table, row id and status")
	}
	if len(updates) == 0 {
		return ValidationError("guarded update has no columns")
	}
	db := dbc.Tx
	if db == nil {
		db = g.db
	}
	if db == nil {
		return ValidationError("missing db transaction context")
	}
	res := db.WithContext(dbc.Ctx).Table(table).
		Where("id = ? AND status = ?", id, status).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ConflictError(fmt.Sprintf("%s %s no longer %s", table, id, status))
	}
	return nil
}
