package mw

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"hostel-dashboard-backend/internal/session"
)

const sessionKey = "session"

// SessionResolver looks up a session by bearer token.
type SessionResolver interface {
	Get(token string) (*session.Session, bool)
}

// BearerToken extracts the token from the Authorization header. GET requests
// may pass it as the token query parameter instead, since EventSource cannot
// set headers.
func BearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if c.Request.Method == http.MethodGet {
		return c.Query("token")
	}
	return ""
}

// Session rejects requests without a live session and stores the session
// in the gin context.
func Session(resolver SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		sess, ok := resolver.Get(token)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session expired or unknown"})
			return
		}
		c.Set(sessionKey, sess)
		c.Next()
	}
}

// CurrentSession returns the session stored by Session. It panics when used
// on a route without the middleware.
func CurrentSession(c *gin.Context) *session.Session {
	return c.MustGet(sessionKey).(*session.Session)
}
