// Package router registers the HTTP routes on the Echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/rideloop/carpool/internal/config"
	"github.com/rideloop/carpool/internal/handler"
	"github.com/rideloop/carpool/internal/middleware"
)

// RegisterRoutes registers the unauthenticated routes: the health check and
// the public trip detail read. The trip read sits behind the Redis response
// cache; with a nil client the middleware passes through untouched.
func RegisterRoutes(e *echo.Echo, p *handler.PassengerHandler, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	e.GET("/v1/trips/:id", p.GetTrip, cache)
}
