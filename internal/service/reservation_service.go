package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rideboard/internal/entities"
	"rideboard/internal/events"
	"rideboard/internal/logger"
	"rideboard/internal/repository"
)

// ReservationService books and releases seats. A reservation is confirmed
// while seats remain and waits otherwise; freeing a confirmed seat promotes
// the oldest waiting reservation.
type ReservationService interface {
	Reserve(ctx context.Context, userID string, rideID int64) (*entities.Reservation, error)
	Cancel(ctx context.Context, userID string, rideID int64) (*CancelResult, error)
	ListForUser(ctx context.Context, userID string) ([]*entities.UserReservation, error)
}

// CancelResult describes what a cancellation changed.
type CancelResult struct {
	Cancelled *entities.Reservation
	Promoted  *entities.Reservation // nil when nobody moved up
}

type reservationService struct {
	reservations repository.ReservationRepository
	publisher    EventPublisher
	log          logger.Logger
	now          func() time.Time
}

// NewReservationService creates a new reservation service
func NewReservationService(
	reservations repository.ReservationRepository,
	publisher EventPublisher,
	log logger.Logger,
	now func() time.Time,
) ReservationService {
	if now == nil {
		now = time.Now
	}
	return &reservationService{
		reservations: reservations,
		publisher:    publisher,
		log:          log,
		now:          now,
	}
}

func (s *reservationService) Reserve(ctx context.Context, userID string, rideID int64) (*entities.Reservation, error) {
	var reservation *entities.Reservation
	err := s.reservations.RunInTx(ctx, func(tx repository.ReservationTx) error {
		ride, err := s.lockVisibleRide(ctx, tx, rideID)
		if err != nil {
			return err
		}
		if ride.OwnedBy(userID) {
			return ErrOwnRide
		}

		taken, err := tx.TakeSeat(ctx, rideID)
		if err != nil {
			return err
		}

		status := entities.StatusWaiting
		if taken {
			status = entities.StatusConfirmed
		}

		reservation, err = tx.Insert(ctx, userID, rideID, status)
		return err
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, ErrAlreadyReserved
	}
	if isMissing(err) {
		return nil, notFound("ride", rideID)
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrForbidden) {
		return nil, err
	}
	if err != nil {
		s.log.WithFields(logger.LogFields{"ride_id": rideID, "user_id": userID}).Error("reserve_failed", err)
		return nil, fmt.Errorf("failed to reserve seat: %w", err)
	}

	s.log.WithFields(logger.LogFields{
		"ride_id":        rideID,
		"user_id":        userID,
		"reservation_id": reservation.ID,
		"status":         string(reservation.Status),
	}).Info("seat_reserved", "Reservation created")

	eventType := events.ReservationWaiting
	if reservation.Status == entities.StatusConfirmed {
		eventType = events.ReservationConfirmed
	}
	publish(ctx, s.publisher, s.log, events.Event{
		Type:          eventType,
		RideID:        rideID,
		UserID:        userID,
		ReservationID: reservation.ID,
	})

	return reservation, nil
}

func (s *reservationService) Cancel(ctx context.Context, userID string, rideID int64) (*CancelResult, error) {
	result := &CancelResult{}
	err := s.reservations.RunInTx(ctx, func(tx repository.ReservationTx) error {
		if _, err := s.lockVisibleRide(ctx, tx, rideID); err != nil {
			return err
		}

		cancelled, err := tx.Delete(ctx, userID, rideID)
		if err != nil {
			return err
		}
		result.Cancelled = cancelled

		if cancelled.Status != entities.StatusConfirmed {
			return nil
		}
		if err := tx.ReleaseSeat(ctx, rideID); err != nil {
			return err
		}

		next, err := tx.OldestWaiting(ctx, rideID)
		if isMissing(err) {
			return nil
		}
		if err != nil {
			return err
		}

		taken, err := tx.TakeSeat(ctx, rideID)
		if err != nil {
			return err
		}
		if !taken {
			return nil
		}
		if err := tx.SetStatus(ctx, next.ID, entities.StatusConfirmed); err != nil {
			return err
		}
		next.Status = entities.StatusConfirmed
		result.Promoted = next
		return nil
	})
	if isMissing(err) {
		return nil, notFound("reservation for ride", rideID)
	}
	if errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if err != nil {
		s.log.WithFields(logger.LogFields{"ride_id": rideID, "user_id": userID}).Error("cancel_failed", err)
		return nil, fmt.Errorf("failed to cancel reservation: %w", err)
	}

	s.log.WithFields(logger.LogFields{
		"ride_id":        rideID,
		"user_id":        userID,
		"reservation_id": result.Cancelled.ID,
		"status":         string(result.Cancelled.Status),
	}).Info("reservation_cancelled", "Reservation cancelled")
	publish(ctx, s.publisher, s.log, events.Event{
		Type:          events.ReservationCancelled,
		RideID:        rideID,
		UserID:        userID,
		ReservationID: result.Cancelled.ID,
	})

	if result.Promoted != nil {
		s.log.WithFields(logger.LogFields{
			"ride_id":        rideID,
			"user_id":        result.Promoted.UserID,
			"reservation_id": result.Promoted.ID,
		}).Info("reservation_promoted", "Waiting reservation promoted")
		publish(ctx, s.publisher, s.log, events.Event{
			Type:          events.ReservationPromoted,
			RideID:        rideID,
			UserID:        result.Promoted.UserID,
			ReservationID: result.Promoted.ID,
		})
	}

	return result, nil
}

// lockVisibleRide locks the ride row for the rest of the transaction and
// fails with NotFound unless the ride is active and has not departed.
func (s *reservationService) lockVisibleRide(ctx context.Context, tx repository.ReservationTx, rideID int64) (*entities.Ride, error) {
	ride, err := tx.LockRide(ctx, rideID)
	if isMissing(err) {
		return nil, notFound("ride", rideID)
	}
	if err != nil {
		return nil, err
	}
	if !ride.Visible(s.now()) {
		return nil, notFound("ride", rideID)
	}
	return ride, nil
}

func (s *reservationService) ListForUser(ctx context.Context, userID string) ([]*entities.UserReservation, error) {
	list, err := s.reservations.ListByUser(ctx, userID, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	return list, nil
}
