package handlers

import (
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/yungbote/roadmap-backend/internal/domain/catalog"
	types "github.com/yungbote/roadmap-backend/internal/domain/roadmap"
	"github.com/yungbote/roadmap-backend/internal/http/response"
	"github.com/yungbote/roadmap-backend/internal/platform/apierr"
)

var registerOnce sync.Once

// RegisterValidators adds the domain tags used in request bindings to gin's
// validator. Safe to call more than once.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("content_type", func(fl validator.FieldLevel) bool {
			return catalog.ContentType(fl.Field().String()).Valid()
		})
		_ = v.RegisterValidation("roadmap_status", func(fl validator.FieldLevel) bool {
			switch types.Status(fl.Field().String()) {
			case types.StatusActive, types.StatusCompleted, types.StatusArchived:
				return true
			}
			return false
		})
	})
}

// bindError writes a 400 with one entry per failed field.
func bindError(c *gin.Context, err error) {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		response.RespondAPIError(c, apierr.New(http.StatusBadRequest, "invalid_request", err), nil)
		return
	}
	fields := make(map[string]any, len(ve))
	for _, fe := range ve {
		fields[strings.ToLower(fe.Field())] = fe.Tag()
	}
	response.RespondAPIError(c,
		apierr.WithMessage(http.StatusBadRequest, "invalid_request", "request failed validation", err),
		map[string]any{"fields": fields},
	)
}
