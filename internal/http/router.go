package api

import (
	"log"
	stdhttp "net/http"

	intconfig "busticket/internal/config"
	h "busticket/internal/http/handlers"
	"busticket/internal/http/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(env intconfig.Env) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS())

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	admin := middleware.RequireAuth(env.JWTSecret, "admin")
	staff := middleware.RequireAuth(env.JWTSecret, "admin", "staff")

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", h.DBCheck)

		// Auth
		auth := api.Group("/auth")
		auth.POST("/login", h.Login)
		auth.POST("/register", admin, h.Register)

		// Routes catalogue
		routes := api.Group("/routes")
		routes.GET("", h.GetRoutes)
		routes.GET("/:id", h.GetRouteByID)
		routes.POST("", admin, h.CreateRoute)
		routes.PUT("/:id", admin, h.UpdateRoute)
		routes.DELETE("/:id", admin, h.DeleteRoute)

		// Trips & seat maps
		trips := api.Group("/trips")
		trips.GET("", h.SearchTrips)
		trips.GET("/:id", h.GetTrip)
		trips.GET("/:id/stops", h.GetTripStops)
		trips.POST("", admin, h.CreateTrip)
		trips.PUT("/:id", admin, h.UpdateTrip)
		trips.DELETE("/:id", admin, h.DeleteTrip)

		// Bookings
		bookings := api.Group("/bookings")
		bookings.POST("", h.CreateBooking)
		bookings.POST("/change-seat", h.ChangeSeat)
		bookings.GET("/lookup", h.LookupTicket)
		bookings.GET("/lookup-phone", h.LookupBookings)
		bookings.GET("/confirmed", staff, h.GetConfirmedBookings)
		bookings.GET("/seat-trip", staff, h.GetBookingBySeatAndTrip)
		bookings.GET("/:id", h.GetBooking)
		bookings.GET("/:id/e-ticket", h.GetBookingETicket)

		// Payments (gateway callbacks are unauthenticated by contract; the
		// signature check is the authentication)
		payment := api.Group("/payment")
		payment.GET("", staff, h.GetPayments)
		payment.POST("/vnpay-url", h.CreatePaymentURL)
		payment.GET("/return", h.VNPayReturn)
		payment.POST("/ipn", h.VNPayIPN)
		payment.GET("/:id", staff, h.GetPaymentByID)

		// Users
		users := api.Group("/users", admin)
		users.GET("", h.GetUsers)
		users.GET("/:id", h.GetUserByID)
		users.DELETE("/:id", h.DeleteUser)

		// Vehicles
		vehicles := api.Group("/vehicles", staff)
		vehicles.GET("", h.GetVehicles)
		vehicles.POST("", h.CreateVehicle)
		vehicles.PUT("/:id", h.UpdateVehicle)
		vehicles.DELETE("/:id", h.DeleteVehicle)
	}

	return r
}
