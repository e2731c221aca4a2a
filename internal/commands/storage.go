package commands

import (
	"context"
	"database/sql"
	"fmt"

	"rideboard/internal/config"
	"rideboard/internal/database"
	"rideboard/internal/logger"
	"rideboard/internal/repository"
	"rideboard/internal/repository/memory"
)

// repositories groups the storage-backed collaborators.
type repositories struct {
	users        repository.UserRepository
	rides        repository.RideRepository
	reservations repository.ReservationRepository
	stats        repository.StatsRepository
	close        func() error
}

func openRepositories(ctx context.Context, cfg *config.Config, log logger.Logger) (*repositories, error) {
	if cfg.Storage == config.StorageMemory {
		log.Info("storage_selected", "Using in-memory storage; data is lost on exit")
		store := memory.NewStore()
		return &repositories{
			users:        store.Users(),
			rides:        store.Rides(),
			reservations: store.Reservations(),
			stats:        store.Stats(),
			close:        func() error { return nil },
		}, nil
	}

	db, err := openDB(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	return &repositories{
		users:        repository.NewUserRepository(db),
		rides:        repository.NewRideRepository(db),
		reservations: repository.NewReservationRepository(db),
		stats:        repository.NewStatsRepository(db),
		close:        db.Close,
	}, nil
}

func openDB(ctx context.Context, cfg *config.Config, log logger.Logger) (*sql.DB, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	return database.NewConnection(ctx, cfg.DatabaseURL, log)
}
