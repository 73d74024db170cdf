package handlers

import (
	"errors"
	"net/http"

	domainagg "github.com/yungbote/roadmap-backend/internal/domain/aggregates"
	types "github.com/yungbote/roadmap-backend/internal/domain/roadmap"
	"github.com/yungbote/roadmap-backend/internal/platform/apierr"
)

const (
	msgRephrase    = "We couldn't build a roadmap for that goal. Try rephrasing it."
	msgUnavailable = "Roadmap generation is temporarily unavailable. Please try again."
)

// mapError turns a usecase error into the HTTP status, code and details
// the client sees.
func mapError(err error) (*apierr.Error, map[string]any) {
	if ge, ok := types.AsGenerationError(err); ok {
		return mapGenerationError(ge)
	}
	if errors.Is(err, types.ErrActiveRoadmapExists) {
		return apierr.WithMessage(http.StatusConflict, "active_roadmap_exists", types.ErrActiveRoadmapExists.Error(), err), nil
	}
	if se, ok := types.AsStateError(err); ok {
		return mapStateError(se, err)
	}
	switch domainagg.CodeOf(err) {
	case domainagg.CodeValidation:
		return apierr.New(http.StatusBadRequest, "invalid_request", err), nil
	case domainagg.CodeNotFound:
		return apierr.WithMessage(http.StatusNotFound, "not_found", "not found", err), nil
	case domainagg.CodeConflict, domainagg.CodePreconditionFailed:
		return apierr.WithMessage(http.StatusConflict, "conflict", "the resource was changed by another request", err), nil
	case domainagg.CodeRetryable:
		return apierr.WithMessage(http.StatusServiceUnavailable, "retryable", "please try again", err), nil
	}
	return apierr.As(err, "internal_error"), nil
}

func mapGenerationError(ge *types.GenerationError) (*apierr.Error, map[string]any) {
	var details map[string]any
	if len(ge.Reasons) > 0 || ge.Fallback != "" {
		details = map[string]any{}
		if len(ge.Reasons) > 0 {
			details["reasons"] = ge.Reasons
		}
		if ge.Fallback != "" {
			details["fallback"] = ge.Fallback
		}
	}
	switch ge.Kind {
	case types.KindInvalidGoal:
		return apierr.WithMessage(http.StatusBadRequest, string(ge.Kind), ge.Message, ge), details
	case types.KindInsufficientContent:
		return apierr.WithMessage(http.StatusUnprocessableEntity, string(ge.Kind), ge.Message, ge), details
	case types.KindEmbeddingService, types.KindDatabaseSearch:
		if details == nil {
			details = map[string]any{}
		}
		details["retryable"] = true
		return apierr.WithMessage(http.StatusServiceUnavailable, string(ge.Kind), msgUnavailable, ge), details
	case types.KindValidationFailed:
		return apierr.WithMessage(http.StatusUnprocessableEntity, "roadmap_validation_failed", msgRephrase, ge), details
	}
	return apierr.New(http.StatusInternalServerError, "internal_error", ge), nil
}

func mapStateError(se *types.StateError, err error) (*apierr.Error, map[string]any) {
	var details map[string]any
	if se.From != "" {
		details = map[string]any{"from": se.From}
	}
	if se.Kind == types.StateNotFound {
		code := "not_found"
		if se.Reason != "" {
			code = string(se.Reason)
		}
		return apierr.WithMessage(http.StatusNotFound, code, "not found", err), nil
	}
	switch se.Reason {
	case types.ReasonAlreadyCompleted:
		return apierr.WithMessage(http.StatusConflict, "step_already_completed", "this step is already completed", err), details
	case types.ReasonStepLocked:
		return apierr.WithMessage(http.StatusConflict, "step_locked", "complete the previous step first", err), details
	case types.ReasonRoadmapNotActive:
		return apierr.WithMessage(http.StatusConflict, "roadmap_not_active", "this roadmap is no longer active", err), details
	case types.ReasonPlanIncomplete:
		return apierr.WithMessage(http.StatusBadRequest, "plan_incomplete", "situation, trigger and action are required", err), details
	}
	return apierr.New(http.StatusConflict, string(se.Kind), err), details
}
