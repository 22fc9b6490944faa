package response

import (
	"github.com/edusync/edusync-portal/internal/edusync"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContextKeyRequestID is the Gin context key for the request ID.
const ContextKeyRequestID = "request_id"

// maxRequestIDLen bounds client-supplied ids; longer ones are replaced.
const maxRequestIDLen = 64

// RequestIDMiddleware assigns every request an id, echoes it in the response
// header and attaches it to the request context so EduSync calls forward it.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(edusync.HeaderRequestID)
		if !validRequestID(reqID) {
			reqID = uuid.NewString()
		}
		c.Set(ContextKeyRequestID, reqID)
		c.Header(edusync.HeaderRequestID, reqID)
		c.Request = c.Request.WithContext(edusync.WithRequestID(c.Request.Context(), reqID))
		c.Next()
	}
}

// validRequestID accepts short printable ASCII ids.
func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}
