package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"hostel-dashboard-backend/config"
	"hostel-dashboard-backend/internal/mw"
	"hostel-dashboard-backend/internal/session"
)

// NewRouter creates and configures a new Gin router. db may be nil, in which
// case the subscription endpoints report that push is unavailable.
func NewRouter(cfg *config.ServerConfig, sessions *session.Manager, db *gorm.DB, webpushOptions *webpush.Options) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(sessions, db, webpushOptions)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst, cfg.RequestIPHeader)

	cacheTTL := time.Duration(cfg.CacheTTLSeconds) * time.Second
	caching := mw.Cache(cache.New(cacheTTL, 2*cacheTTL), cacheTTL, mw.PublicKey)

	auth := mw.Session(sessions)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/meta", caching, GetMeta())
		api.GET("/vapid_public_key", caching, handler.GetVAPIDPublicKey)
		api.POST("/session", handler.Login)

		authed := api.Group("", auth)
		authed.DELETE("/session", handler.Logout)
		authed.GET("/me", handler.GetMe)
		authed.PATCH("/me", handler.PatchMe)

		authed.GET("/notifications", handler.ListNotifications)
		authed.POST("/notifications", handler.CreateNotification)
		authed.GET("/notifications/unread-count", handler.UnreadCount)
		authed.GET("/notifications/:id", handler.GetNotification)
		authed.POST("/notifications/:id/read", handler.MarkNotificationRead)

		authed.GET("/analytics", handler.GetAnalytics)

		authed.GET("/feedback", handler.ListFeedback)
		authed.POST("/feedback", handler.CreateFeedback)
		authed.POST("/feedback/:id/resolve", handler.ResolveFeedback)

		authed.GET("/events", handler.Events)

		authed.GET("/subscriptions", handler.GetSubscription)
		authed.PUT("/subscriptions", handler.PutSubscription)
		authed.DELETE("/subscriptions", handler.DeleteSubscription)
	}

	return r
}
