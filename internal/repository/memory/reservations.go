package memory

import (
	"context"
	"sort"
	"time"

	"rideboard/internal/entities"
	"rideboard/internal/repository"
)

type reservationRepo Store

type snapshot struct {
	seats             map[int64]int
	reservations      map[int64]entities.Reservation
	nextReservationID int64
}

func (s *Store) takeSnapshot() snapshot {
	snap := snapshot{
		seats:             make(map[int64]int, len(s.rides)),
		reservations:      make(map[int64]entities.Reservation, len(s.reservations)),
		nextReservationID: s.nextReservationID,
	}
	for id, ride := range s.rides {
		snap.seats[id] = ride.Seats
	}
	for id, res := range s.reservations {
		snap.reservations[id] = *res
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	for id, seats := range snap.seats {
		if ride, ok := s.rides[id]; ok {
			ride.Seats = seats
		}
	}
	s.reservations = make(map[int64]*entities.Reservation, len(snap.reservations))
	for id, res := range snap.reservations {
		r := res
		s.reservations[id] = &r
	}
	s.nextReservationID = snap.nextReservationID
}

func (r *reservationRepo) RunInTx(ctx context.Context, fn func(tx repository.ReservationTx) error) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.takeSnapshot()
	if err := fn((*memoryTx)(s)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func (r *reservationRepo) ListByUser(_ context.Context, userID string, now time.Time) ([]*entities.UserReservation, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []*entities.UserReservation{}
	for _, res := range s.reservations {
		if res.UserID != userID {
			continue
		}
		ride, ok := s.rides[res.RideID]
		if !ok || !ride.Visible(now) {
			continue
		}
		out = append(out, &entities.UserReservation{Reservation: *res, Ride: *copyRide(ride)})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Ride.DepartureTS.Equal(out[j].Ride.DepartureTS) {
			return out[i].Ride.DepartureTS.Before(out[j].Ride.DepartureTS)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *reservationRepo) ListByRide(_ context.Context, rideID int64) ([]*entities.Reservation, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.rideReservationsLocked(rideID), nil
}

func (s *Store) rideReservationsLocked(rideID int64) []*entities.Reservation {
	out := []*entities.Reservation{}
	for _, res := range s.reservations {
		if res.RideID == rideID {
			out = append(out, copyReservation(res))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// memoryTx runs with Store.mu already held by RunInTx.
type memoryTx Store

func (t *memoryTx) LockRide(_ context.Context, rideID int64) (*entities.Ride, error) {
	ride, ok := t.rides[rideID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyRide(ride), nil
}

func (t *memoryTx) TakeSeat(_ context.Context, rideID int64) (bool, error) {
	ride, ok := t.rides[rideID]
	if !ok || ride.Seats <= 0 {
		return false, nil
	}
	ride.Seats--
	return true, nil
}

func (t *memoryTx) ReleaseSeat(_ context.Context, rideID int64) error {
	ride, ok := t.rides[rideID]
	if !ok {
		return repository.ErrNotFound
	}
	ride.Seats++
	return nil
}

func (t *memoryTx) Insert(_ context.Context, userID string, rideID int64, status entities.ReservationStatus) (*entities.Reservation, error) {
	if _, ok := t.rides[rideID]; !ok {
		return nil, repository.ErrNotFound
	}
	for _, res := range t.reservations {
		if res.UserID == userID && res.RideID == rideID {
			return nil, repository.ErrDuplicate
		}
	}

	t.nextReservationID++
	res := &entities.Reservation{
		ID:        t.nextReservationID,
		UserID:    userID,
		RideID:    rideID,
		Status:    status,
		CreatedAt: t.now(),
	}
	t.reservations[res.ID] = res
	return copyReservation(res), nil
}

func (t *memoryTx) Delete(_ context.Context, userID string, rideID int64) (*entities.Reservation, error) {
	for id, res := range t.reservations {
		if res.UserID == userID && res.RideID == rideID {
			delete(t.reservations, id)
			return copyReservation(res), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (t *memoryTx) OldestWaiting(_ context.Context, rideID int64) (*entities.Reservation, error) {
	for _, res := range (*Store)(t).rideReservationsLocked(rideID) {
		if res.Status == entities.StatusWaiting {
			return res, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (t *memoryTx) SetStatus(_ context.Context, id int64, status entities.ReservationStatus) error {
	res, ok := t.reservations[id]
	if !ok {
		return repository.ErrNotFound
	}
	res.Status = status
	return nil
}
