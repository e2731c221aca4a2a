package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"rideboard/internal/access"
	"rideboard/internal/entities"
	"rideboard/internal/events"
	"rideboard/internal/logger"
	"rideboard/internal/models"
	"rideboard/internal/repository"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// RideService owns publication, listing, expiry and removal of rides.
type RideService interface {
	Publish(ctx context.Context, owner *string, req *models.PublishRideRequest) (*entities.Ride, error)
	ListActive(ctx context.Context) ([]*entities.Ride, error)
	ExpireOlderThan(ctx context.Context, now time.Time) (int64, error)
	Remove(ctx context.Context, rideID int64, requester access.Requester) error
	Get(ctx context.Context, rideID int64) (*RideDetails, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*entities.Ride, error)
}

// RideDetails is a visible ride plus its reservation counts.
type RideDetails struct {
	Ride      *entities.Ride
	Confirmed int
	Waiting   int
}

// RideOptions carries deployment policy. Location is the reference time
// zone for declared departures; SoftDelete selects deactivation over row
// deletion for both expiry and removal.
type RideOptions struct {
	Location   *time.Location
	SoftDelete bool
	Now        func() time.Time
}

type rideService struct {
	rides     repository.RideRepository
	publisher EventPublisher
	log       logger.Logger
	loc       *time.Location
	soft      bool
	now       func() time.Time
}

// NewRideService creates a new ride service
func NewRideService(rides repository.RideRepository, publisher EventPublisher, log logger.Logger, opts RideOptions) RideService {
	svc := &rideService{
		rides:     rides,
		publisher: publisher,
		log:       log,
		loc:       opts.Location,
		soft:      opts.SoftDelete,
		now:       opts.Now,
	}
	if svc.loc == nil {
		svc.loc = time.UTC
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	return svc
}

// DepartureTime resolves a declared local date and time in loc.
func DepartureTime(date, clock string, loc *time.Location) (time.Time, error) {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return time.Time{}, invalid("date", "must be formatted as YYYY-MM-DD")
	}
	declared, err := time.Parse(timeLayout, clock)
	if err != nil {
		return time.Time{}, invalid("time", "must be formatted as HH:MM")
	}
	ts, err := time.ParseInLocation(dateLayout+" "+timeLayout, date+" "+clock, loc)
	if err != nil {
		return time.Time{}, invalid("date", "is not a valid calendar date")
	}
	// Wall-clock times skipped by a DST change come back shifted.
	if ts.Hour() != declared.Hour() || ts.Minute() != declared.Minute() {
		return time.Time{}, invalid("time", "does not exist on that date in the board's time zone")
	}
	return ts, nil
}

// generateSecret returns a random URL-safe capability token
func generateSecret() (string, error) {
	b := make([]byte, 18)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func (s *rideService) Publish(ctx context.Context, owner *string, req *models.PublishRideRequest) (*entities.Ride, error) {
	departure := strings.TrimSpace(req.Departure)
	destination := strings.TrimSpace(req.Destination)
	contact := strings.TrimSpace(req.Contact)

	if departure == "" {
		return nil, invalid("departure", "is required")
	}
	if destination == "" {
		return nil, invalid("destination", "is required")
	}
	if req.Seats < 1 {
		return nil, invalid("seats", "must be at least 1")
	}

	ts, err := DepartureTime(strings.TrimSpace(req.Date), strings.TrimSpace(req.Time), s.loc)
	if err != nil {
		return nil, err
	}
	if !ts.After(s.now()) {
		return nil, invalid("date", "departure must be in the future")
	}

	secret, err := generateSecret()
	if err != nil {
		return nil, err
	}

	ride, err := s.rides.Create(ctx, &entities.Ride{
		OwnerID:     owner,
		Departure:   departure,
		Destination: destination,
		Date:        ts.Format(dateLayout),
		Time:        ts.Format(timeLayout),
		DepartureTS: ts,
		Seats:       req.Seats,
		Contact:     contact,
		Active:      true,
		Secret:      secret,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to publish ride: %w", err)
	}

	s.log.WithFields(logger.LogFields{
		"ride_id": ride.ID,
		"seats":   ride.Seats,
	}).Info("ride_published", "Ride published")

	ev := events.Event{Type: events.RidePublished, RideID: ride.ID}
	if owner != nil {
		ev.UserID = *owner
	}
	publish(ctx, s.publisher, s.log, ev)

	return ride, nil
}

func (s *rideService) ListActive(ctx context.Context) ([]*entities.Ride, error) {
	now := s.now()
	if _, err := s.ExpireOlderThan(ctx, now); err != nil {
		return nil, err
	}

	rides, err := s.rides.ListActive(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list rides: %w", err)
	}
	return rides, nil
}

func (s *rideService) ExpireOlderThan(ctx context.Context, now time.Time) (int64, error) {
	n, err := s.rides.ExpireBefore(ctx, now, s.soft)
	if err != nil {
		s.log.Error("expire_rides_failed", err)
		return 0, fmt.Errorf("failed to expire rides: %w", err)
	}

	if n > 0 {
		s.log.WithFields(logger.LogFields{
			"count": n,
			"soft":  s.soft,
		}).Info("rides_expired", "Expired rides removed")
		publish(ctx, s.publisher, s.log, events.Event{Type: events.RidesExpired, Count: n})
	}
	return n, nil
}

// visibleRide loads a ride that is active and has not departed yet.
func (s *rideService) visibleRide(ctx context.Context, rideID int64) (*entities.Ride, error) {
	ride, err := s.rides.FindByID(ctx, rideID)
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

func (s *rideService) Remove(ctx context.Context, rideID int64, requester access.Requester) error {
	ride, err := s.visibleRide(ctx, rideID)
	if err != nil {
		return err
	}

	if !access.Allowed(requester, ride) {
		s.log.WithFields(logger.LogFields{
			"ride_id": rideID,
			"user_id": requester.UserID,
		}).Info("ride_remove_denied", "Requester may not remove ride")
		return fmt.Errorf("%w: only the owner or an admin can remove this ride", ErrForbidden)
	}

	if s.soft {
		err = s.rides.Deactivate(ctx, rideID)
	} else {
		err = s.rides.Delete(ctx, rideID)
	}
	if isMissing(err) {
		return notFound("ride", rideID)
	}
	if err != nil {
		return fmt.Errorf("failed to remove ride: %w", err)
	}

	s.log.WithFields(logger.LogFields{
		"ride_id": rideID,
		"user_id": requester.UserID,
		"admin":   requester.IsAdmin,
	}).Info("ride_removed", "Ride removed")
	publish(ctx, s.publisher, s.log, events.Event{
		Type:   events.RideRemoved,
		RideID: rideID,
		UserID: requester.UserID,
	})
	return nil
}

func (s *rideService) Get(ctx context.Context, rideID int64) (*RideDetails, error) {
	ride, err := s.visibleRide(ctx, rideID)
	if err != nil {
		return nil, err
	}

	confirmed, waiting, err := s.rides.CountReservations(ctx, rideID)
	if err != nil {
		return nil, err
	}
	return &RideDetails{Ride: ride, Confirmed: confirmed, Waiting: waiting}, nil
}

func (s *rideService) ListByOwner(ctx context.Context, ownerID string) ([]*entities.Ride, error) {
	rides, err := s.rides.ListByOwner(ctx, ownerID, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to list rides: %w", err)
	}
	return rides, nil
}
