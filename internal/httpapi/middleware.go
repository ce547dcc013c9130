package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"attendance-tracker/internal/logging"
)

const (
	contextUserID    = "userID"
	contextRequestID = "requestID"
	headerRequestID  = "X-Request-ID"
)

// RequestID attaches a request ID to every request, honoring one supplied
// by the client.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(headerRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(contextRequestID, requestID)
		c.Writer.Header().Set(headerRequestID, requestID)
		c.Next()
	}
}

// RequestLogger logs one line per request after it completes.
func RequestLogger(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Infof("%s %s -> %d (%s) request_id=%s",
			c.Request.Method,
			c.Request.URL.Path,
			c.Writer.Status(),
			time.Since(start).Round(time.Millisecond),
			c.GetString(contextRequestID),
		)
	}
}

// BearerAuth resolves the Authorization bearer token to a user ID and
// stores it on the request context. Requests without a valid token are
// rejected before reaching any handler.
func BearerAuth(provider UserProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Success: false,
				Error:   &ErrorBody{Code: "UNAUTHORIZED", Message: "missing bearer token"},
			})
			return
		}

		userID, ok := provider.UserForToken(token)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Success: false,
				Error:   &ErrorBody{Code: "UNAUTHORIZED", Message: "unknown token"},
			})
			return
		}

		c.Set(contextUserID, userID)
		c.Next()
	}
}

func currentUserID(c *gin.Context) string {
	return c.GetString(contextUserID)
}
