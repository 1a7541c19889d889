package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hostel-dashboard-backend/internal/apperr"
	"hostel-dashboard-backend/internal/model"
	"hostel-dashboard-backend/internal/mw"
	"hostel-dashboard-backend/internal/parse"
	"hostel-dashboard-backend/internal/store"
)

// notificationResponse flattens a notification with the caller's read state.
type notificationResponse struct {
	model.Notification
	IsRead bool `json:"isRead"`
}

func withReadState(s *store.NotificationStore, ns []model.Notification) []notificationResponse {
	out := make([]notificationResponse, len(ns))
	for i, n := range ns {
		out[i] = notificationResponse{Notification: n, IsRead: s.IsRead(n.ID)}
	}
	return out
}

// ListNotifications handles GET /api/notifications.
func (h *Handler) ListNotifications(c *gin.Context) {
	f, err := parse.Filter(c.Request.URL.Query())
	if err != nil {
		writeError(c, err)
		return
	}

	s := mw.CurrentSession(c).Notifications
	ns, err := s.Fetch(c.Request.Context(), f)
	if err != nil {
		writeError(c, err)
		return
	}

	snap := s.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"notifications": withReadState(s, ns),
		"unreadCount":   s.UnreadCount(),
		"hasMoreToLoad": snap.HasMoreToLoad,
	})
}

// CreateNotification handles POST /api/notifications.
func (h *Handler) CreateNotification(c *gin.Context) {
	var in store.NotificationInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c)
		return
	}

	n, err := mw.CurrentSession(c).Notifications.Create(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, n)
}

// GetNotification handles GET /api/notifications/:id.
func (h *Handler) GetNotification(c *gin.Context) {
	sess := mw.CurrentSession(c)
	if !ensureLoaded(c, sess) {
		return
	}

	id := c.Param("id")
	n, ok := sess.Notifications.Get(id)
	if !ok {
		writeError(c, apperr.NotFound("api.GetNotification", "notification %q not found", id))
		return
	}
	c.JSON(http.StatusOK, notificationResponse{Notification: n, IsRead: sess.Notifications.IsRead(id)})
}

// MarkNotificationRead handles POST /api/notifications/:id/read.
func (h *Handler) MarkNotificationRead(c *gin.Context) {
	sess := mw.CurrentSession(c)
	if !ensureLoaded(c, sess) {
		return
	}

	r, err := sess.Notifications.MarkAsRead(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// UnreadCount handles GET /api/notifications/unread-count.
func (h *Handler) UnreadCount(c *gin.Context) {
	sess := mw.CurrentSession(c)
	if !ensureLoaded(c, sess) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": sess.Notifications.UnreadCount()})
}

// GetAnalytics handles GET /api/analytics. The statistics cover every
// notification of the caller's hostel, whatever list filter is in effect.
func (h *Handler) GetAnalytics(c *gin.Context) {
	sess := mw.CurrentSession(c)
	if !ensureLoaded(c, sess) {
		return
	}
	snap, err := sess.Notifications.Analytics(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}
