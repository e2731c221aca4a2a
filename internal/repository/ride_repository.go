package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"rideboard/internal/entities"
)

type rideRepository struct {
	db *sql.DB
}

// NewRideRepository creates a new ride repository
func NewRideRepository(db *sql.DB) RideRepository {
	return &rideRepository{db: db}
}

const rideColumns = `id, owner_id, departure, destination, ride_date, ride_time,
	departure_ts, seats, contact, active, secret, created_at`

func scanRide(row interface{ Scan(...any) error }) (*entities.Ride, error) {
	var ride entities.Ride
	var ownerID sql.NullString
	err := row.Scan(
		&ride.ID,
		&ownerID,
		&ride.Departure,
		&ride.Destination,
		&ride.Date,
		&ride.Time,
		&ride.DepartureTS,
		&ride.Seats,
		&ride.Contact,
		&ride.Active,
		&ride.Secret,
		&ride.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if ownerID.Valid {
		ride.OwnerID = &ownerID.String
	}
	return &ride, nil
}

func (r *rideRepository) queryRides(ctx context.Context, query string, args ...any) ([]*entities.Ride, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list rides: %w", err)
	}
	defer rows.Close()

	rides := []*entities.Ride{}
	for rows.Next() {
		ride, err := scanRide(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ride: %w", err)
		}
		rides = append(rides, ride)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rides: %w", err)
	}
	return rides, nil
}

// Create inserts a new ride into the database
func (r *rideRepository) Create(ctx context.Context, ride *entities.Ride) (*entities.Ride, error) {
	query := `
		INSERT INTO rides (owner_id, departure, destination, ride_date, ride_time,
			departure_ts, seats, contact, active, secret)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE, $9)
		RETURNING ` + rideColumns

	created, err := scanRide(r.db.QueryRowContext(ctx, query,
		ride.OwnerID,
		ride.Departure,
		ride.Destination,
		ride.Date,
		ride.Time,
		ride.DepartureTS.UTC(),
		ride.Seats,
		ride.Contact,
		ride.Secret,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create ride: %w", translate(err))
	}
	return created, nil
}

// FindByID returns the ride regardless of its active flag
func (r *rideRepository) FindByID(ctx context.Context, id int64) (*entities.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE id = $1`

	ride, err := scanRide(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to find ride: %w", translate(err))
	}
	return ride, nil
}

func (r *rideRepository) ListActive(ctx context.Context, now time.Time) ([]*entities.Ride, error) {
	query := `
		SELECT ` + rideColumns + `
		FROM rides
		WHERE active AND departure_ts >= $1
		ORDER BY departure_ts ASC, id ASC
	`
	return r.queryRides(ctx, query, now.UTC())
}

func (r *rideRepository) ListByOwner(ctx context.Context, ownerID string, now time.Time) ([]*entities.Ride, error) {
	query := `
		SELECT ` + rideColumns + `
		FROM rides
		WHERE owner_id = $1 AND active AND departure_ts >= $2
		ORDER BY departure_ts ASC, id ASC
	`
	return r.queryRides(ctx, query, ownerID, now.UTC())
}

func (r *rideRepository) ExpireBefore(ctx context.Context, now time.Time, soft bool) (int64, error) {
	query := `DELETE FROM rides WHERE departure_ts < $1`
	if soft {
		query = `UPDATE rides SET active = FALSE WHERE active AND departure_ts < $1`
	}

	result, err := r.db.ExecContext(ctx, query, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to expire rides: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

// Delete removes a ride; its reservations go with it via ON DELETE CASCADE
func (r *rideRepository) Delete(ctx context.Context, id int64) error {
	return r.execOne(ctx, `DELETE FROM rides WHERE id = $1`, id)
}

func (r *rideRepository) Deactivate(ctx context.Context, id int64) error {
	return r.execOne(ctx, `UPDATE rides SET active = FALSE WHERE id = $1 AND active`, id)
}

func (r *rideRepository) execOne(ctx context.Context, query string, id int64) error {
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to remove ride: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("ride %d: %w", id, ErrNotFound)
	}
	return nil
}

func (r *rideRepository) CountReservations(ctx context.Context, rideID int64) (int, int, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE status = 'confirmed'),
			COUNT(*) FILTER (WHERE status = 'waiting')
		FROM reservations
		WHERE ride_id = $1
	`
	var confirmed, waiting int
	if err := r.db.QueryRowContext(ctx, query, rideID).Scan(&confirmed, &waiting); err != nil {
		return 0, 0, fmt.Errorf("failed to count reservations: %w", err)
	}
	return confirmed, waiting, nil
}
