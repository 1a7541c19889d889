package api

import (
	"log"
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hostel-dashboard-backend/internal/apperr"
	"hostel-dashboard-backend/internal/query"
	"hostel-dashboard-backend/internal/session"
)

// defaultKeepAlive is the interval between SSE keep-alive comments.
const defaultKeepAlive = 25 * time.Second

// Handler holds shared dependencies for API handlers. db is nil when push
// subscriptions are not backed by a database.
type Handler struct {
	sessions  *session.Manager
	db        *gorm.DB
	webpush   *webpush.Options
	keepAlive time.Duration
}

// NewHandler creates a new API handler.
func NewHandler(sessions *session.Manager, db *gorm.DB, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		sessions:  sessions,
		db:        db,
		webpush:   webpushOptions,
		keepAlive: defaultKeepAlive,
	}
}

// writeError responds with the status matching err's kind.
func writeError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Printf("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error(), "kind": apperr.KindOf(err)})
}

func badRequest(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
}

// ensureLoaded performs the first fetch of a fresh session so read-state
// operations have a collection to work on.
func ensureLoaded(c *gin.Context, sess *session.Session) bool {
	if !sess.Notifications.Snapshot().HasMoreToLoad {
		return true
	}
	if _, err := sess.Notifications.Fetch(c.Request.Context(), query.Filter{}); err != nil {
		writeError(c, err)
		return false
	}
	return true
}
