package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/rideloop/carpool/internal/config"
	"github.com/rideloop/carpool/internal/handler"
	"github.com/rideloop/carpool/internal/middleware"
)

// RegisterDriver registers driver-scoped endpoints under /v1. All routes
// require a valid JWT; vehicle registration is open to both roles because
// it is how a passenger becomes a driver in the first place. Trip
// publication and request decisions also accept either role claim since the
// claim can lag a fresh vehicle registration; the handlers verify driver
// ownership against the database.
func RegisterDriver(e *echo.Echo, v *handler.VehicleHandler, d *handler.DriverHandler, r *handler.RequestHandler, jwtSecret string, rdb *redis.Client) {
	limit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(handler.RoleDriver, handler.RolePassenger),
		limit,
	)
	g.POST("/vehicles", v.RegisterVehicle)
	g.GET("/my-vehicles", v.ListMyVehicles)
	g.POST("/trips", d.CreateTrips)
	g.PATCH("/trips/:id/complete", d.CompleteTrip)
	g.GET("/trips/:id/requests", d.ListTripRequests)
	g.GET("/my-trips", d.ListMyTrips)
	g.POST("/requests/:id/accept", r.AcceptRequest)
	g.POST("/requests/:id/reject", r.RejectRequest)
}
