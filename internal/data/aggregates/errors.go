package aggregates

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	domainagg "github.com/yungbote/roadmap-backend/internal/domain/aggregates"
	"github.com/yungbote/roadmap-backend/internal/domain/roadmap"
)

// Tags for failures raised inside an aggregate transaction. MapError turns
// them into aggregate codes once the transaction has unwound.
var (
	ErrValidation = errors.New("aggregate validation")
	ErrInvariant  = errors.New("aggregate invariant violation")
	ErrConflict   = errors.New("aggregate conflict")
	ErrRetryable  = errors.New("aggregate retryable")
)

func tagged(tag error, msg string) error {
	return errors.Join(tag, errors.New(strings.TrimSpace(msg)))
}

func ValidationError(msg string) error { return tagged(ErrValidation, msg) }
func InvariantError(msg string) error  { return tagged(ErrInvariant, msg) }
func ConflictError(msg string) error   { return tagged(ErrConflict, msg) }
func RetryableError(msg string) error  { return tagged(ErrRetryable, msg) }

// Unique index backing the one-active-roadmap-per-user rule. Two creates
// racing past the read check land here.
const activeRoadmapIndex = "idx_roadmap_user_active"

var sentinelCodes = []struct {
	target error
	code   domainagg.ErrorCode
}{
	{ErrValidation, domainagg.CodeValidation},
	{ErrInvariant, domainagg.CodeInvariantViolation},
	{ErrConflict, domainagg.CodeConflict},
	{ErrRetryable, domainagg.CodeRetryable},
	{gorm.ErrRecordNotFound, domainagg.CodeNotFound},
	{context.Canceled, domainagg.CodeRetryable},
	{context.DeadlineExceeded, domainagg.CodeRetryable},
}

var sqlStateCodes = map[string]domainagg.ErrorCode{
	"23505": domainagg.CodeConflict,           // unique_violation
	"23503": domainagg.CodePreconditionFailed, // foreign_key_violation
	"40001": domainagg.CodeRetryable,          // serialization_failure
	"40P01": domainagg.CodeRetryable,          // deadlock_detected
	"55P03": domainagg.CodeRetryable,          // lock_not_available
}

// SQLite and wrapped driver errors only carry text.
var messageCodes = []struct {
	needles []string
	code    domainagg.ErrorCode
}{
	{[]string{"duplicate key", "unique constraint", "already exists"}, domainagg.CodeConflict},
	{[]string{"deadlock", "serialization", "database is locked", "timeout", "temporar"}, domainagg.CodeRetryable},
}

// MapError classifies err into an aggregate code. *domainagg.Error and
// *roadmap.StateError are returned as-is.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*domainagg.Error); ok {
		return err
	}
	if _, ok := err.(*roadmap.StateError); ok {
		return err
	}
	if isActiveRoadmapViolation(err) {
		return domainagg.NewError(domainagg.CodeConflict, op, "active roadmap exists", errors.Join(roadmap.ErrActiveRoadmapExists, err))
	}
	for _, s := range sentinelCodes {
		if errors.Is(err, s.target) {
			return domainagg.Wrap(s.code, op, err)
		}
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if code, ok := sqlStateCodes[strings.TrimSpace(pgErr.Code)]; ok {
			return domainagg.Wrap(code, op, err)
		}
	}
	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	for _, m := range messageCodes {
		for _, needle := range m.needles {
			if strings.Contains(msg, needle) {
				return domainagg.Wrap(m.code, op, err)
			}
		}
	}
	return domainagg.Wrap(domainagg.CodeInternal, op, err)
}

func isActiveRoadmapViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == activeRoadmapIndex
	}
	// sqlite reports partial unique index failures by column list.
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint failed: roadmap.user_id")
}
