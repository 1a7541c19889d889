package api

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"hostel-dashboard-backend/internal/mw"
)

// Events handles GET /api/events, a server-sent event stream. The current
// notification and feedback snapshots are sent first, followed by every
// snapshot the session's stores publish.
func (h *Handler) Events(c *gin.Context) {
	sess := mw.CurrentSession(c)
	ctx := c.Request.Context()

	notifications := sess.Notifications.Subscribe(ctx)
	feedback := sess.Feedback.Subscribe(ctx)

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	c.SSEvent("notifications", sess.Notifications.Snapshot())
	c.SSEvent("feedback", sess.Feedback.Snapshot())
	c.Writer.Flush()

	keepAlive := time.NewTicker(h.keepAlive)
	defer keepAlive.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case snap, ok := <-notifications:
			if !ok {
				return false
			}
			c.SSEvent("notifications", snap)
		case snap, ok := <-feedback:
			if !ok {
				return false
			}
			c.SSEvent("feedback", snap)
		case t := <-keepAlive.C:
			c.SSEvent("ping", t.Unix())
		}
		return true
	})
}
