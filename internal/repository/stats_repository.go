package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"rideboard/internal/entities"
)

type statsRepository struct {
	db *sql.DB
}

func NewStatsRepository(db *sql.DB) StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) Summary(ctx context.Context, now time.Time) (*entities.Stats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM rides WHERE active AND departure_ts >= $1),
			(SELECT COALESCE(SUM(seats), 0) FROM rides WHERE active AND departure_ts >= $1),
			(SELECT COUNT(*) FROM reservations res JOIN rides r ON r.id = res.ride_id
				WHERE res.status = 'confirmed' AND r.active AND r.departure_ts >= $1),
			(SELECT COUNT(*) FROM reservations res JOIN rides r ON r.id = res.ride_id
				WHERE res.status = 'waiting' AND r.active AND r.departure_ts >= $1),
			(SELECT COUNT(*) FROM users)
	`
	var s entities.Stats
	err := r.db.QueryRowContext(ctx, query, now.UTC()).Scan(
		&s.ActiveRides,
		&s.OpenSeats,
		&s.ConfirmedReservations,
		&s.WaitingReservations,
		&s.Users,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to compute stats: %w", err)
	}
	return &s, nil
}
