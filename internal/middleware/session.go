package middleware

import (
	"errors"
	"net/http"

	"github.com/edusync/edusync-portal/internal/response"
	"github.com/edusync/edusync-portal/internal/service"
	"github.com/edusync/edusync-portal/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ContextKeySession is the Gin context key for the caller's session context.
const ContextKeySession = "session"

// RequireSession loads the session record behind the token's jti. A token
// whose session was logged out or expired is rejected even if still signed.
func RequireSession(authService *service.AuthService, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		sc, err := authService.OpenSession(c.Request.Context(), claims)
		if errors.Is(err, service.ErrSessionInvalidated) {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrSessionInvalidated)
			return
		}
		if err != nil {
			log.Error().Err(err).Str("user_id", claims.UserID).Msg("Failed to open session")
			response.AbortFail(c, http.StatusInternalServerError, response.ErrInternal)
			return
		}

		c.Set(ContextKeySession, sc)
		c.Next()
	}
}

// GetSession retrieves the session context set by RequireSession.
func GetSession(c *gin.Context) *session.Context {
	val, exists := c.Get(ContextKeySession)
	if !exists {
		return nil
	}
	sc, ok := val.(*session.Context)
	if !ok {
		return nil
	}
	return sc
}
