package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/roadmap-backend/internal/platform/apierr"
)

type APIError struct {
	Message string         `json:"message"`
	Code    string         `json:"code,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondAPIError writes an *apierr.Error. 5xx messages are replaced so
// internals never reach the client.
func RespondAPIError(c *gin.Context, ae *apierr.Error, details map[string]any) {
	msg := ae.Error()
	if ae.Status >= http.StatusInternalServerError && ae.Message == "" {
		msg = http.StatusText(ae.Status)
	}
	if ae.Err != nil {
		_ = c.Error(ae.Err)
	}
	c.AbortWithStatusJSON(ae.Status, ErrorEnvelope{
		Error: APIError{Message: msg, Code: ae.Code, Details: details},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
