// Package server assembles the HTTP surface.
package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"rideboard/internal/config"
	"rideboard/internal/controllers"
	"rideboard/internal/jwt"
	"rideboard/internal/logger"
	"rideboard/internal/middleware"
	"rideboard/internal/service"
)

// Deps are the collaborators the router wires into controllers.
type Deps struct {
	Config       *config.Config
	Log          logger.Logger
	JWT          *jwt.JWTService
	Auth         service.AuthService
	Rides        service.RideService
	Reservations service.ReservationService
	Stats        service.StatsService
}

// NewRouter builds the gin engine. Rate limiter housekeeping stops when ctx
// is cancelled.
func NewRouter(ctx context.Context, d Deps) *gin.Engine {
	cfg := d.Config

	authController := controllers.NewAuthController(d.Auth)
	rideController := controllers.NewRideController(d.Rides, cfg.FrontendURL)
	reservationController := controllers.NewReservationController(d.Reservations)
	qrcodeController := controllers.NewQRCodeController(d.Rides, cfg.FrontendURL)
	statsController := controllers.NewStatsController(d.Stats)

	generalRateLimiter := middleware.NewRateLimiter(ctx, rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	authRateLimiter := middleware.NewRateLimiter(ctx, rate.Limit(cfg.RateLimitAuthRPS), cfg.RateLimitAuthBurst)

	requireAuth := middleware.AuthMiddleware(d.JWT)
	optionalAuth := middleware.OptionalAuthMiddleware(d.JWT)

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(d.Log))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	api := router.Group("/api/v1")
	api.Use(generalRateLimiter.LimitMiddleware())
	{
		auth := api.Group("/auth")
		auth.Use(authRateLimiter.LimitMiddleware())
		{
			auth.POST("/register", authController.Register)
			auth.POST("/login", authController.Login)
		}

		rides := api.Group("/rides")
		{
			rides.GET("", rideController.ListRides)
			rides.POST("", optionalAuth, rideController.PublishRide)
			rides.GET("/:id", rideController.GetRide)
			rides.DELETE("/:id", optionalAuth, rideController.RemoveRide)
			rides.GET("/:id/qrcode", qrcodeController.GenerateQRCode)
			rides.POST("/:id/reservations", requireAuth, reservationController.Reserve)
			rides.DELETE("/:id/reservations", requireAuth, reservationController.Cancel)
		}

		me := api.Group("/me")
		me.Use(requireAuth)
		{
			me.GET("/rides", rideController.GetMyRides)
			me.GET("/reservations", reservationController.GetMyReservations)
		}

		api.GET("/stats", statsController.GetStats)
	}

	return router
}
