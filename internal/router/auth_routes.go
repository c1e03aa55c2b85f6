package router

import (
	"github.com/labstack/echo/v4"

	"github.com/rideloop/carpool/internal/handler"
	"github.com/rideloop/carpool/internal/middleware"
)

// RegisterAuth registers the session endpoints. Register, login, refresh
// and logout exchange tokens and need no existing session; /v1/me requires
// a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
}
