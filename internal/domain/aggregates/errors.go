package aggregates

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode classifies the infrastructure and invariant failures of roadmap
// writes. Step state rejections are *roadmap.StateError, never an ErrorCode.
type ErrorCode string

const (
	CodeValidation         ErrorCode = "validation"
	CodeNotFound           ErrorCode = "not_found"
	CodeConflict           ErrorCode = "conflict"
	CodeInvariantViolation ErrorCode = "invariant_violation"
	CodePreconditionFailed ErrorCode = "precondition_failed"
	CodeRetryable          ErrorCode = "retryable"
	CodeInternal           ErrorCode = "internal"
)

type Error struct {
	Code    ErrorCode
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	parts := make([]string, 0, 2)
	if op := strings.TrimSpace(e.Op); op != "" {
		parts = append(parts, op)
	}
	if msg := strings.TrimSpace(e.Message); msg != "" {
		parts = append(parts, msg)
	}
	if len(parts) == 0 {
		return string(e.Code)
	}
	return fmt.Sprintf("%s (%s)", strings.Join(parts, ": "), e.Code)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches a target *Error by code, so errors.Is(err, &Error{Code: c})
// works through wrapping.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return t.Code != "" && t.Code == e.Code
}

func NewError(code ErrorCode, op, message string, cause error) error {
	return &Error{
		Code:    code,
		Op:      strings.TrimSpace(op),
		Message: strings.TrimSpace(message),
		Cause:   cause,
	}
}

// Wrap tags err with code, keeping it reachable through errors.Is/As.
func Wrap(code ErrorCode, op string, err error) error {
	if err == nil {
		return nil
	}
	return NewError(code, op, err.Error(), err)
}

func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// CodeOf returns "" when err carries no aggregate code.
func CodeOf(err error) ErrorCode {
	var aggErr *Error
	if !errors.As(err, &aggErr) {
		return ""
	}
	return aggErr.Code
}

// IsRetryable reports failures worth repeating the whole write for.
func IsRetryable(err error) bool {
	return IsCode(err, CodeRetryable)
}
