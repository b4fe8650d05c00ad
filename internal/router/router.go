package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/meeting-room-reservation/internal/handler"
	"github.com/iliyamo/meeting-room-reservation/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication routes and the protected
// profile endpoints.  Unauthenticated operations live under /v1/auth,
// protected endpoints under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/captcha", a.Captcha)
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
	auth.PUT("/me", a.UpdateMe)
	auth.PUT("/me/password", a.UpdatePassword)
}

// RegisterUsers registers the administrator user management endpoints:
// the paginated user list and account freezing.
func RegisterUsers(e *echo.Echo, h *handler.UserHandler, jwtSecret string) {
	admin := e.Group("/v1/users")
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.Use(middleware.RequireAdmin())
	admin.GET("", h.List)
	admin.POST("/freeze/:id", h.Freeze)
	admin.POST("/unfreeze/:id", h.Unfreeze)
}

// RegisterRooms registers meeting room endpoints.  Reading is open to
// any authenticated user; create/update/delete require the admin flag.
func RegisterRooms(e *echo.Echo, h *handler.RoomHandler, jwtSecret string) {
	auth := e.Group("/v1/rooms")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("", h.List)
	auth.GET("/:id", h.Get)

	admin := e.Group("/v1/rooms")
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.Use(middleware.RequireAdmin())
	admin.POST("", h.Create)
	admin.PUT("/:id", h.Update)
	admin.DELETE("/:id", h.Delete)
}

// RegisterBookings registers the booking workflow endpoints.  Approving
// and rejecting are admin decisions; listing, creating, unbinding and
// urging are available to any authenticated user.
func RegisterBookings(e *echo.Echo, h *handler.BookingHandler, jwtSecret string) {
	auth := e.Group("/v1/bookings")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("", h.List)
	auth.POST("", h.Create)
	auth.GET("/unbind/:id", h.Unbind)
	auth.GET("/urge/:id", h.Urge)

	admin := e.Group("/v1/bookings")
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.Use(middleware.RequireAdmin())
	admin.GET("/apply/:id", h.Apply)
	admin.GET("/reject/:id", h.Reject)
}

// RegisterStatistics registers the aggregation endpoints (admin only).
func RegisterStatistics(e *echo.Echo, h *handler.StatisticHandler, jwtSecret string) {
	admin := e.Group("/v1/statistics")
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.Use(middleware.RequireAdmin())
	admin.GET("/user-booking-count", h.UserBookingCount)
	admin.GET("/room-used-count", h.RoomUsedCount)
}
