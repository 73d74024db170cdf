package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/roadmap-backend/internal/http/response"
	"github.com/yungbote/roadmap-backend/internal/platform/apierr"
	"github.com/yungbote/roadmap-backend/internal/platform/ctxutil"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
)

// TokenVerifier resolves an access token to the calling user.
type TokenVerifier interface {
	Verify(tokenString string) (uuid.UUID, error)
}

var (
	errMissingToken = errors.New("missing or invalid token")
	errNoSubject    = errors.New("token has no user")
)

type AuthMiddleware struct {
	log      *logger.Logger
	verifier TokenVerifier
}

func NewAuthMiddleware(log *logger.Logger, verifier TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{log: log.With("Middleware", "AuthMiddleware"), verifier: verifier}
}

// RequireAuth admits requests whose bearer token names a user and puts
// that user on the request context. Every roadmap route sits behind it.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ae := am.authenticate(c.GetHeader("Authorization"))
		if ae != nil {
			response.RespondAPIError(c, ae, nil)
			return
		}
		ctx := ctxutil.WithRequestData(c.Request.Context(), &ctxutil.RequestData{UserID: userID})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func (am *AuthMiddleware) authenticate(header string) (uuid.UUID, *apierr.Error) {
	tok, ok := bearerToken(header)
	if !ok {
		return uuid.Nil, apierr.WithMessage(http.StatusUnauthorized, "unauthorized", errMissingToken.Error(), errMissingToken)
	}
	userID, err := am.verifier.Verify(tok)
	if err != nil {
		am.log.Debug("Rejected access token", "error", err)
		return uuid.Nil, apierr.WithMessage(http.StatusUnauthorized, "unauthorized", errMissingToken.Error(), err)
	}
	if userID == uuid.Nil {
		return uuid.Nil, apierr.WithMessage(http.StatusForbidden, "forbidden", "forbidden", errNoSubject)
	}
	return userID, nil
}

func bearerToken(header string) (string, bool) {
	scheme, tok, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	tok = strings.TrimSpace(tok)
	return tok, tok != ""
}
