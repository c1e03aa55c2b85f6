package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/rideloop/carpool/internal/config"
	"github.com/rideloop/carpool/internal/handler"
	"github.com/rideloop/carpool/internal/middleware"
)

// RegisterPassenger registers passenger-scoped endpoints under /v1: trip
// search, seat requests and the passenger's own active requests. Drivers
// can ride too, so both role claims are accepted.
func RegisterPassenger(e *echo.Echo, p *handler.PassengerHandler, jwtSecret string, rdb *redis.Client) {
	limit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(handler.RoleDriver, handler.RolePassenger),
		limit,
	)
	g.POST("/trips/search", p.SearchTrips)
	g.POST("/trips/:id/requests", p.RequestSeat)
	g.GET("/my-requests", p.ListActiveRequests)
}
