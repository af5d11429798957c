package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"venue-feedback-backend/internal/mw"
)

// RouterConfig carries the tunables the router needs from the config
// file.
type RouterConfig struct {
	RateLimitPerSec float64
	CacheTTL        time.Duration
}

// NewRouter creates and configures a new Gin router.
func NewRouter(handler *Handler, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	if cfg.RateLimitPerSec <= 0 {
		cfg.RateLimitPerSec = 10
	}
	if cfg.CacheTTL <= 0 {
		// Queue reads must stay near real time; the cache only absorbs
		// kiosks polling in lockstep.
		cfg.CacheTTL = 2 * time.Second
	}

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), 5)

	cacheStore := cache.New(cfg.CacheTTL, 10*cfg.CacheTTL)
	caching := mw.Cache(cacheStore, cfg.CacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter, mw.FlushOnWrite(cacheStore))
	{
		api.GET("/venues/:venue_id/queue", caching, handler.GetQueue)
		api.GET("/venues/:venue_id/floorplan", caching, handler.GetFloorplan)

		api.POST("/assistance/:request_id/acknowledge", handler.AcknowledgeAssistance)
		api.POST("/assistance/:request_id/resolve", handler.ResolveAssistance)
		api.POST("/venues/:venue_id/sessions/resolve", handler.ResolveSessions)
		api.POST("/venues/:venue_id/sessions/clear_positive", handler.ClearPositiveSessions)

		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
