package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hostel-dashboard-backend/internal/model"
)

// MetaResponse lists the enumerations clients build their forms from.
type MetaResponse struct {
	Categories         []model.Category         `json:"categories"`
	Priorities         []model.Priority         `json:"priorities"`
	FeedbackCategories []model.FeedbackCategory `json:"feedbackCategories"`
	Roles              []model.Role             `json:"roles"`
	MinRating          int                      `json:"minRating"`
	MaxRating          int                      `json:"maxRating"`
}

// GetMeta handles the GET /api/meta request.
func GetMeta() gin.HandlerFunc {
	resp := MetaResponse{
		Categories:         model.Categories,
		Priorities:         model.Priorities,
		FeedbackCategories: model.FeedbackCategories,
		Roles:              []model.Role{model.RoleStudent, model.RoleWarden},
		MinRating:          model.MinRating,
		MaxRating:          model.MaxRating,
	}
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, resp)
	}
}
