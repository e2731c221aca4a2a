package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"rideboard/internal/entities"
)

var (
	// ErrNotFound is returned when the addressed row does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when a unique constraint is violated.
	ErrDuplicate = errors.New("duplicate record")
)

// UserRepository defines the interface for user database operations
type UserRepository interface {
	Create(ctx context.Context, email, passwordHash, name string, isAdmin bool) (*entities.User, error)
	FindByEmail(ctx context.Context, email string) (*entities.User, error)
	SetAdmin(ctx context.Context, email string, isAdmin bool) error
}

// RideRepository defines the interface for ride database operations
type RideRepository interface {
	Create(ctx context.Context, ride *entities.Ride) (*entities.Ride, error)
	FindByID(ctx context.Context, id int64) (*entities.Ride, error)
	// ListActive returns active rides departing at or after now, earliest
	// departure first, ties in insertion order.
	ListActive(ctx context.Context, now time.Time) ([]*entities.Ride, error)
	ListByOwner(ctx context.Context, ownerID string, now time.Time) ([]*entities.Ride, error)
	// ExpireBefore removes every ride departing strictly before now, either
	// deleting it or clearing its active flag.
	ExpireBefore(ctx context.Context, now time.Time, soft bool) (int64, error)
	Delete(ctx context.Context, id int64) error
	Deactivate(ctx context.Context, id int64) error
	CountReservations(ctx context.Context, rideID int64) (confirmed, waiting int, err error)
}

// ReservationRepository owns reservation rows and the seat counter they
// consume. State changes happen only inside RunInTx.
type ReservationRepository interface {
	RunInTx(ctx context.Context, fn func(tx ReservationTx) error) error
	// ListByUser returns the user's reservations on rides visible at now.
	ListByUser(ctx context.Context, userID string, now time.Time) ([]*entities.UserReservation, error)
	ListByRide(ctx context.Context, rideID int64) ([]*entities.Reservation, error)
}

// ReservationTx is the set of primitives available inside one transaction.
type ReservationTx interface {
	// LockRide loads the ride and holds it until the transaction ends, so
	// reserve and cancel calls on one ride run one after another.
	LockRide(ctx context.Context, rideID int64) (*entities.Ride, error)
	// TakeSeat decrements the ride's seat count if it is positive and
	// reports whether a seat was taken. The check and the decrement are a
	// single conditional update.
	TakeSeat(ctx context.Context, rideID int64) (bool, error)
	ReleaseSeat(ctx context.Context, rideID int64) error
	Insert(ctx context.Context, userID string, rideID int64, status entities.ReservationStatus) (*entities.Reservation, error)
	// Delete removes the (user, ride) reservation and returns it.
	Delete(ctx context.Context, userID string, rideID int64) (*entities.Reservation, error)
	// OldestWaiting locks and returns the earliest waiting reservation.
	OldestWaiting(ctx context.Context, rideID int64) (*entities.Reservation, error)
	SetStatus(ctx context.Context, id int64, status entities.ReservationStatus) error
}

// StatsRepository computes community figures.
type StatsRepository interface {
	Summary(ctx context.Context, now time.Time) (*entities.Stats, error)
}

// translate maps driver errors onto the repository's sentinel errors.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505": // unique_violation
			return ErrDuplicate
		case "23503": // foreign_key_violation: the referenced row is gone
			return ErrNotFound
		}
	}
	return err
}
