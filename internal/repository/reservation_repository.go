package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"rideboard/internal/entities"
)

type reservationRepository struct {
	db *sql.DB
}

// NewReservationRepository creates a new reservation repository
func NewReservationRepository(db *sql.DB) ReservationRepository {
	return &reservationRepository{db: db}
}

// RunInTx runs fn in a READ COMMITTED transaction. Conditional updates on
// the ride row serialize concurrent reservations against the same ride.
func (r *reservationRepository) RunInTx(ctx context.Context, fn func(tx ReservationTx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&reservationTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *reservationRepository) ListByUser(ctx context.Context, userID string, now time.Time) ([]*entities.UserReservation, error) {
	query := `
		SELECT res.id, res.user_id, res.ride_id, res.status, res.created_at,
			r.id, r.owner_id, r.departure, r.destination, r.ride_date, r.ride_time,
			r.departure_ts, r.seats, r.contact, r.active, r.secret, r.created_at
		FROM reservations res
		JOIN rides r ON r.id = res.ride_id
		WHERE res.user_id = $1 AND r.active AND r.departure_ts >= $2
		ORDER BY r.departure_ts ASC, res.id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, userID, now.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	defer rows.Close()

	out := []*entities.UserReservation{}
	for rows.Next() {
		var ur entities.UserReservation
		var ownerID sql.NullString
		err := rows.Scan(
			&ur.ID, &ur.UserID, &ur.RideID, &ur.Status, &ur.CreatedAt,
			&ur.Ride.ID, &ownerID, &ur.Ride.Departure, &ur.Ride.Destination, &ur.Ride.Date, &ur.Ride.Time,
			&ur.Ride.DepartureTS, &ur.Ride.Seats, &ur.Ride.Contact, &ur.Ride.Active, &ur.Ride.Secret, &ur.Ride.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		if ownerID.Valid {
			ur.Ride.OwnerID = &ownerID.String
		}
		out = append(out, &ur)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reservations: %w", err)
	}
	return out, nil
}

func (r *reservationRepository) ListByRide(ctx context.Context, rideID int64) ([]*entities.Reservation, error) {
	query := `
		SELECT id, user_id, ride_id, status, created_at
		FROM reservations
		WHERE ride_id = $1
		ORDER BY id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, rideID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	defer rows.Close()

	out := []*entities.Reservation{}
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reservations: %w", err)
	}
	return out, nil
}

func scanReservation(row interface{ Scan(...any) error }) (*entities.Reservation, error) {
	var res entities.Reservation
	if err := row.Scan(&res.ID, &res.UserID, &res.RideID, &res.Status, &res.CreatedAt); err != nil {
		return nil, err
	}
	return &res, nil
}

type reservationTx struct {
	tx *sql.Tx
}

func (t *reservationTx) LockRide(ctx context.Context, rideID int64) (*entities.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE id = $1 FOR UPDATE`

	ride, err := scanRide(t.tx.QueryRowContext(ctx, query, rideID))
	if err != nil {
		return nil, fmt.Errorf("failed to lock ride: %w", translate(err))
	}
	return ride, nil
}

func (t *reservationTx) TakeSeat(ctx context.Context, rideID int64) (bool, error) {
	result, err := t.tx.ExecContext(ctx, `
		UPDATE rides
		SET seats = seats - 1
		WHERE id = $1 AND seats > 0
	`, rideID)
	if err != nil {
		return false, fmt.Errorf("failed to take seat: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected == 1, nil
}

func (t *reservationTx) ReleaseSeat(ctx context.Context, rideID int64) error {
	result, err := t.tx.ExecContext(ctx, `UPDATE rides SET seats = seats + 1 WHERE id = $1`, rideID)
	if err != nil {
		return fmt.Errorf("failed to release seat: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("ride %d: %w", rideID, ErrNotFound)
	}
	return nil
}

func (t *reservationTx) Insert(ctx context.Context, userID string, rideID int64, status entities.ReservationStatus) (*entities.Reservation, error) {
	query := `
		INSERT INTO reservations (user_id, ride_id, status)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, ride_id, status, created_at
	`
	res, err := scanReservation(t.tx.QueryRowContext(ctx, query, userID, rideID, status))
	if err != nil {
		return nil, fmt.Errorf("failed to create reservation: %w", translate(err))
	}
	return res, nil
}

func (t *reservationTx) Delete(ctx context.Context, userID string, rideID int64) (*entities.Reservation, error) {
	query := `
		DELETE FROM reservations
		WHERE user_id = $1 AND ride_id = $2
		RETURNING id, user_id, ride_id, status, created_at
	`
	res, err := scanReservation(t.tx.QueryRowContext(ctx, query, userID, rideID))
	if err != nil {
		return nil, fmt.Errorf("failed to delete reservation: %w", translate(err))
	}
	return res, nil
}

func (t *reservationTx) OldestWaiting(ctx context.Context, rideID int64) (*entities.Reservation, error) {
	query := `
		SELECT id, user_id, ride_id, status, created_at
		FROM reservations
		WHERE ride_id = $1 AND status = 'waiting'
		ORDER BY id ASC
		LIMIT 1
		FOR UPDATE
	`
	res, err := scanReservation(t.tx.QueryRowContext(ctx, query, rideID))
	if err != nil {
		return nil, fmt.Errorf("failed to find waiting reservation: %w", translate(err))
	}
	return res, nil
}

func (t *reservationTx) SetStatus(ctx context.Context, id int64, status entities.ReservationStatus) error {
	result, err := t.tx.ExecContext(ctx, `UPDATE reservations SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update reservation: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("reservation %d: %w", id, ErrNotFound)
	}
	return nil
}
