package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hostel-dashboard-backend/internal/mw"
)

type loginRequest struct {
	Email string `json:"email" binding:"required"`
}

// Login handles POST /api/session.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	sess, err := h.sessions.Login(c.Request.Context(), req.Email)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"token": sess.Token, "user": sess.User()})
}

// Logout handles DELETE /api/session.
func (h *Handler) Logout(c *gin.Context) {
	h.sessions.Logout(mw.CurrentSession(c).Token)
	c.Status(http.StatusNoContent)
}

// GetMe handles GET /api/me.
func (h *Handler) GetMe(c *gin.Context) {
	c.JSON(http.StatusOK, mw.CurrentSession(c).User())
}

type profileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// PatchMe handles PATCH /api/me. Omitted fields keep their current value.
func (h *Handler) PatchMe(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	sess := mw.CurrentSession(c)
	current := sess.User()
	if req.Name == "" {
		req.Name = current.Name
	}
	if req.Email == "" {
		req.Email = current.Email
	}

	u, err := h.sessions.UpdateProfile(c.Request.Context(), sess.Token, req.Name, req.Email)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}
