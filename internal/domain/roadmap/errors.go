package roadmap

import (
	"errors"
	"fmt"
)

type GenerationKind string

const (
	KindInvalidGoal         GenerationKind = "invalid_goal"
	KindInsufficientContent GenerationKind = "insufficient_content"
	KindEmbeddingService    GenerationKind = "embedding_service"
	KindDatabaseSearch      GenerationKind = "database_search"
	KindValidationFailed    GenerationKind = "validation_failed"
)

// Sentinels for errors.Is against a *GenerationError of the same kind.
var (
	ErrInvalidGoal         = &GenerationError{Kind: KindInvalidGoal}
	ErrInsufficientContent = &GenerationError{Kind: KindInsufficientContent}
	ErrEmbeddingService    = &GenerationError{Kind: KindEmbeddingService}
	ErrDatabaseSearch      = &GenerationError{Kind: KindDatabaseSearch}
	ErrValidationFailed    = &GenerationError{Kind: KindValidationFailed}
)

// ErrActiveRoadmapExists is returned when a user asks for a new roadmap
// while another one is still active.
var ErrActiveRoadmapExists = errors.New("user already has an active roadmap")

// GenerationError is the failure of GenerateRoadmap. Reasons carries the
// validator's reason codes for KindValidationFailed, or the edge case for
// KindInsufficientContent. Fallback names what the client should offer instead.
type GenerationError struct {
	Kind     GenerationKind
	Message  string
	Reasons  []string
	Fallback string
	Cause    error
}

func NewGenerationError(kind GenerationKind, msg string, cause error) *GenerationError {
	return &GenerationError{Kind: kind, Message: msg, Cause: cause}
}

func (e *GenerationError) Error() string {
	if e == nil {
		return ""
	}
	msg := string(e.Kind)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *GenerationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func (e *GenerationError) Is(target error) bool {
	t, ok := target.(*GenerationError)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Kind == t.Kind
}

// Retryable reports infrastructure failures a caller may retry.
func (e *GenerationError) Retryable() bool {
	return e != nil && (e.Kind == KindEmbeddingService || e.Kind == KindDatabaseSearch)
}

type StateKind string

const (
	StateInvalidTransition StateKind = "invalid_state_transition"
	StateNotFound          StateKind = "not_found"
)

type StateReason string

const (
	ReasonAlreadyCompleted StateReason = "already_completed"
	ReasonStepLocked       StateReason = "step_locked"
	ReasonRoadmapNotActive StateReason = "roadmap_not_active"
	ReasonStepNotFound     StateReason = "step_not_found"
	ReasonRoadmapNotFound  StateReason = "roadmap_not_found"
	ReasonPlanIncomplete   StateReason = "plan_incomplete"
)

var (
	ErrInvalidStateTransition = &StateError{Kind: StateInvalidTransition}
	ErrStateNotFound          = &StateError{Kind: StateNotFound}
)

// StateError rejects a state machine call without any change applied.
// From is the status observed when the call was rejected.
type StateError struct {
	Kind   StateKind
	Reason StateReason
	From   string
}

func NewStateError(kind StateKind, reason StateReason, from string) *StateError {
	return &StateError{Kind: kind, Reason: reason, From: from}
}

func (e *StateError) Error() string {
	if e == nil {
		return ""
	}
	if e.From != "" {
		return fmt.Sprintf("%s (%s, from=%s)", e.Kind, e.Reason, e.From)
	}
	if e.Reason != "" {
		return fmt.Sprintf("%s (%s)", e.Kind, e.Reason)
	}
	return string(e.Kind)
}

// Is matches on Kind, and on Reason when the target sets one.
func (e *StateError) Is(target error) bool {
	t, ok := target.(*StateError)
	if !ok || e == nil || t == nil {
		return false
	}
	if e.Kind != t.Kind {
		return false
	}
	return t.Reason == "" || e.Reason == t.Reason
}

// AlreadyDone reports the idempotency signal: the step was already completed.
func (e *StateError) AlreadyDone() bool {
	return e != nil && e.Kind == StateInvalidTransition && e.Reason == ReasonAlreadyCompleted
}

func AsStateError(err error) (*StateError, bool) {
	var se *StateError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

func AsGenerationError(err error) (*GenerationError, bool) {
	var ge *GenerationError
	if errors.As(err, &ge) {
		return ge, true
	}
	return nil, false
}
