package commands

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"rideboard/internal/cache"
	"rideboard/internal/config"
	"rideboard/internal/events"
	"rideboard/internal/jwt"
	"rideboard/internal/logger"
	"rideboard/internal/server"
	"rideboard/internal/service"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the HTTP API until SIGINT or SIGTERM.

Migrations are not applied automatically; run "rideboard migrate up" first
when STORAGE=postgres.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return runServe(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	log := logger.New("rideboard", cfg.LogLevel)

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	repos, err := openRepositories(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer repos.close()

	// Redis is optional; stats are computed on every request without it.
	var cacheClient cache.Cache
	if cfg.RedisURL != "" {
		c, closeCache, err := cache.NewRedisCache(ctx, cfg.RedisURL)
		if err != nil {
			log.Error("redis_unavailable", err)
		} else {
			cacheClient = c
			defer closeCache()
			log.Info("redis_connected", "Connected to Redis cache")
		}
	}

	publisher := openPublisher(cfg, log)
	defer publisher.Close()

	jwtService := jwt.NewJWTService(cfg.JWTSecret, time.Duration(cfg.JWTTTL)*time.Hour)

	rideService := service.NewRideService(repos.rides, publisher, log, service.RideOptions{
		Location:   loc,
		SoftDelete: cfg.SoftDelete(),
	})
	reservationService := service.NewReservationService(repos.reservations, publisher, log, nil)
	authService := service.NewAuthService(repos.users, jwtService, cfg.AdminEmails, log)
	statsService := service.NewStatsService(repos.stats, cacheClient, cfg.StatsCacheTTL, cfg.CO2PerSeatKg, log)

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := server.NewRouter(ctx, server.Deps{
		Config:       cfg,
		Log:          log,
		JWT:          jwtService,
		Auth:         authService,
		Rides:        rideService,
		Reservations: reservationService,
		Stats:        statsService,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(logger.LogFields{
			"port":          cfg.Port,
			"storage":       cfg.Storage,
			"delete_policy": cfg.DeletePolicy,
			"timezone":      cfg.RideTimezone,
		}).Info("server_starting", "Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("server_stopping", "Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

type closingPublisher interface {
	service.EventPublisher
	Close() error
}

func openPublisher(cfg *config.Config, log logger.Logger) closingPublisher {
	if cfg.RabbitMQURL == "" {
		return events.NopPublisher{}
	}
	pub, err := events.NewRabbitPublisher(cfg.RabbitMQURL, cfg.EventsExchange)
	if err != nil {
		log.Error("rabbitmq_unavailable", err)
		return events.NopPublisher{}
	}
	log.WithFields(logger.LogFields{"exchange": cfg.EventsExchange}).Info("rabbitmq_connected", "Publishing events")
	return pub
}
