// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/movie-seat-booking/internal/config"
	"github.com/iliyamo/movie-seat-booking/internal/handler"
	"github.com/iliyamo/movie-seat-booking/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterPublic registers the unauthenticated read endpoints: the
// seat map and the arrangement search.  Both are cheap reads hit hard
// while users browse, so they run behind the Redis response cache and
// the rate limiter when a Redis client is available.
func RegisterPublic(e *echo.Echo, seats *handler.SeatHandler, search *handler.ArrangementHandler, rdb *redis.Client) {
	g := e.Group(
		"/v1",
		middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
		middleware.NewRedisCache(config.LoadCacheConfig(), rdb),
	)
	g.GET("/shows/:id/seats", seats.GetShowSeats)
	g.GET("/shows/:id/arrangements", search.SearchArrangements)
}
