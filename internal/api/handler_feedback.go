package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hostel-dashboard-backend/internal/mw"
	"hostel-dashboard-backend/internal/store"
)

// ListFeedback handles GET /api/feedback.
func (h *Handler) ListFeedback(c *gin.Context) {
	items, err := mw.CurrentSession(c).Feedback.Fetch(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"feedbacks": items})
}

// CreateFeedback handles POST /api/feedback.
func (h *Handler) CreateFeedback(c *gin.Context) {
	var in store.FeedbackInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c)
		return
	}

	f, err := mw.CurrentSession(c).Feedback.Create(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, f)
}

type resolveRequest struct {
	Response string `json:"response"`
}

// ResolveFeedback handles POST /api/feedback/:id/resolve.
func (h *Handler) ResolveFeedback(c *gin.Context) {
	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	f, err := mw.CurrentSession(c).Feedback.Resolve(c.Request.Context(), c.Param("id"), req.Response)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}
