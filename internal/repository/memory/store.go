// Package memory keeps the whole board in process memory. It backs
// STORAGE=memory for local runs and the service tests.
//
// A single mutex guards all state, so every call and every transaction is
// serialized. Transactions snapshot the mutable state on entry and restore
// it if the callback fails.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"rideboard/internal/entities"
	"rideboard/internal/repository"
)

type Store struct {
	mu sync.Mutex

	users        map[string]*entities.User
	rides        map[int64]*entities.Ride
	reservations map[int64]*entities.Reservation

	nextRideID        int64
	nextReservationID int64

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:        make(map[string]*entities.User),
		rides:        make(map[int64]*entities.Ride),
		reservations: make(map[int64]*entities.Reservation),
		now:          time.Now,
	}
}

func (s *Store) Users() repository.UserRepository               { return (*userRepo)(s) }
func (s *Store) Rides() repository.RideRepository               { return (*rideRepo)(s) }
func (s *Store) Reservations() repository.ReservationRepository { return (*reservationRepo)(s) }
func (s *Store) Stats() repository.StatsRepository              { return (*statsRepo)(s) }

// SeedRide stores ride as-is, bypassing publish validation. Tests use it to
// create rides with zero seats or in the past.
func (s *Store) SeedRide(ride entities.Ride) *entities.Ride {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextRideID++
	ride.ID = s.nextRideID
	if ride.CreatedAt.IsZero() {
		ride.CreatedAt = s.now()
	}
	s.rides[ride.ID] = &ride
	return copyRide(&ride)
}

func copyRide(r *entities.Ride) *entities.Ride {
	c := *r
	if r.OwnerID != nil {
		owner := *r.OwnerID
		c.OwnerID = &owner
	}
	return &c
}

func copyReservation(r *entities.Reservation) *entities.Reservation {
	c := *r
	return &c
}

type userRepo Store

func (u *userRepo) Create(_ context.Context, email, passwordHash, name string, isAdmin bool) (*entities.User, error) {
	s := (*Store)(u)
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, email) {
			return nil, repository.ErrDuplicate
		}
	}
	user := &entities.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		IsAdmin:      isAdmin,
		CreatedAt:    s.now(),
	}
	s.users[user.ID] = user
	c := *user
	return &c, nil
}

func (u *userRepo) FindByEmail(_ context.Context, email string) (*entities.User, error) {
	s := (*Store)(u)
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if strings.EqualFold(user.Email, email) {
			c := *user
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (u *userRepo) SetAdmin(_ context.Context, email string, isAdmin bool) error {
	s := (*Store)(u)
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if strings.EqualFold(user.Email, email) {
			user.IsAdmin = isAdmin
			return nil
		}
	}
	return repository.ErrNotFound
}

type rideRepo Store

func (r *rideRepo) Create(_ context.Context, ride *entities.Ride) (*entities.Ride, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	created := copyRide(ride)
	s.nextRideID++
	created.ID = s.nextRideID
	created.Active = true
	created.CreatedAt = s.now()
	s.rides[created.ID] = created
	return copyRide(created), nil
}

func (r *rideRepo) FindByID(_ context.Context, id int64) (*entities.Ride, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	ride, ok := s.rides[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyRide(ride), nil
}

func (r *rideRepo) list(keep func(*entities.Ride) bool) []*entities.Ride {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []*entities.Ride{}
	for _, ride := range s.rides {
		if keep(ride) {
			out = append(out, copyRide(ride))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DepartureTS.Equal(out[j].DepartureTS) {
			return out[i].DepartureTS.Before(out[j].DepartureTS)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *rideRepo) ListActive(_ context.Context, now time.Time) ([]*entities.Ride, error) {
	return r.list(func(ride *entities.Ride) bool { return ride.Visible(now) }), nil
}

func (r *rideRepo) ListByOwner(_ context.Context, ownerID string, now time.Time) ([]*entities.Ride, error) {
	return r.list(func(ride *entities.Ride) bool {
		return ride.OwnedBy(ownerID) && ride.Visible(now)
	}), nil
}

func (r *rideRepo) ExpireBefore(_ context.Context, now time.Time, soft bool) (int64, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, ride := range s.rides {
		if !ride.DepartureTS.Before(now) {
			continue
		}
		if soft {
			if ride.Active {
				ride.Active = false
				n++
			}
			continue
		}
		s.deleteRideLocked(id)
		n++
	}
	return n, nil
}

func (s *Store) deleteRideLocked(id int64) {
	delete(s.rides, id)
	for resID, res := range s.reservations {
		if res.RideID == id {
			delete(s.reservations, resID)
		}
	}
}

func (r *rideRepo) Delete(_ context.Context, id int64) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rides[id]; !ok {
		return repository.ErrNotFound
	}
	s.deleteRideLocked(id)
	return nil
}

func (r *rideRepo) Deactivate(_ context.Context, id int64) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	ride, ok := s.rides[id]
	if !ok || !ride.Active {
		return repository.ErrNotFound
	}
	ride.Active = false
	return nil
}

func (r *rideRepo) CountReservations(_ context.Context, rideID int64) (int, int, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	var confirmed, waiting int
	for _, res := range s.reservations {
		if res.RideID != rideID {
			continue
		}
		switch res.Status {
		case entities.StatusConfirmed:
			confirmed++
		case entities.StatusWaiting:
			waiting++
		}
	}
	return confirmed, waiting, nil
}

type statsRepo Store

func (r *statsRepo) Summary(_ context.Context, now time.Time) (*entities.Stats, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := &entities.Stats{Users: len(s.users)}
	for _, ride := range s.rides {
		if ride.Visible(now) {
			stats.ActiveRides++
			stats.OpenSeats += ride.Seats
		}
	}
	for _, res := range s.reservations {
		if ride, ok := s.rides[res.RideID]; !ok || !ride.Visible(now) {
			continue
		}
		switch res.Status {
		case entities.StatusConfirmed:
			stats.ConfirmedReservations++
		case entities.StatusWaiting:
			stats.WaitingReservations++
		}
	}
	return stats, nil
}
