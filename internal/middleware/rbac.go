package middleware

import (
	"net/http"

	"github.com/edusync/edusync-portal/internal/edusync"
	"github.com/edusync/edusync-portal/internal/response"
	"github.com/gin-gonic/gin"
)

// RequireRole checks that the JWT carries one of the given roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		for _, r := range roles {
			if claims.Role == r {
				c.Next()
				return
			}
		}

		if len(roles) == 1 && roles[0] == edusync.RoleInstructor {
			response.AbortFail(c, http.StatusForbidden, response.ErrInstructorOnly)
			return
		}
		response.AbortFail(c, http.StatusForbidden, response.ErrForbidden)
	}
}

// RequireInstructor admits instructors only.
func RequireInstructor() gin.HandlerFunc {
	return RequireRole(edusync.RoleInstructor)
}
