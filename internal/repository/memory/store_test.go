package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rideboard/internal/entities"
	"rideboard/internal/repository"
)

func TestListActiveOrdersByDepartureThenInsertion(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	now := time.Date(2030, 5, 1, 12, 0, 0, 0, time.UTC)

	late := s.SeedRide(entities.Ride{Departure: "A", DepartureTS: now.Add(3 * time.Hour), Seats: 1, Active: true})
	tieFirst := s.SeedRide(entities.Ride{Departure: "B", DepartureTS: now.Add(time.Hour), Seats: 1, Active: true})
	tieSecond := s.SeedRide(entities.Ride{Departure: "C", DepartureTS: now.Add(time.Hour), Seats: 1, Active: true})
	s.SeedRide(entities.Ride{Departure: "past", DepartureTS: now.Add(-time.Minute), Seats: 1, Active: true})
	s.SeedRide(entities.Ride{Departure: "inactive", DepartureTS: now.Add(time.Hour), Seats: 1, Active: false})

	rides, err := s.Rides().ListActive(ctx, now)
	require.NoError(t, err)
	require.Len(t, rides, 3)
	assert.Equal(t, []int64{tieFirst.ID, tieSecond.ID, late.ID}, []int64{rides[0].ID, rides[1].ID, rides[2].ID})
}

func TestExpireBefore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2030, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("soft", func(t *testing.T) {
		s := NewStore()
		old := s.SeedRide(entities.Ride{DepartureTS: now.Add(-time.Hour), Active: true})
		s.SeedRide(entities.Ride{DepartureTS: now, Active: true})

		n, err := s.Rides().ExpireBefore(ctx, now, true)
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)

		ride, err := s.Rides().FindByID(ctx, old.ID)
		require.NoError(t, err)
		assert.False(t, ride.Active)

		n, err = s.Rides().ExpireBefore(ctx, now, true)
		require.NoError(t, err)
		assert.EqualValues(t, 0, n, "second sweep is a no-op")
	})

	t.Run("hard cascades reservations", func(t *testing.T) {
		s := NewStore()
		old := s.SeedRide(entities.Ride{DepartureTS: now.Add(-time.Hour), Seats: 2, Active: true})
		require.NoError(t, s.Reservations().RunInTx(ctx, func(tx repository.ReservationTx) error {
			_, err := tx.Insert(ctx, "u1", old.ID, entities.StatusConfirmed)
			return err
		}))

		n, err := s.Rides().ExpireBefore(ctx, now, false)
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)

		_, err = s.Rides().FindByID(ctx, old.ID)
		assert.ErrorIs(t, err, repository.ErrNotFound)

		list, err := s.Reservations().ListByUser(ctx, "u1", now)
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}

func TestRunInTxRollsBackOnError(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	ride := s.SeedRide(entities.Ride{DepartureTS: time.Now().Add(time.Hour), Seats: 1, Active: true})

	boom := errors.New("boom")
	err := s.Reservations().RunInTx(ctx, func(tx repository.ReservationTx) error {
		taken, err := tx.TakeSeat(ctx, ride.ID)
		require.NoError(t, err)
		require.True(t, taken)
		_, err = tx.Insert(ctx, "u1", ride.ID, entities.StatusConfirmed)
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	after, err := s.Rides().FindByID(ctx, ride.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, after.Seats)

	list, err := s.Reservations().ListByRide(ctx, ride.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestTxInsertRejectsDuplicatePair(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	ride := s.SeedRide(entities.Ride{DepartureTS: time.Now().Add(time.Hour), Seats: 0, Active: true})

	err := s.Reservations().RunInTx(ctx, func(tx repository.ReservationTx) error {
		if _, err := tx.Insert(ctx, "u1", ride.ID, entities.StatusWaiting); err != nil {
			return err
		}
		_, err := tx.Insert(ctx, "u1", ride.ID, entities.StatusWaiting)
		return err
	})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestTakeSeatNeverGoesNegative(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	ride := s.SeedRide(entities.Ride{DepartureTS: time.Now().Add(time.Hour), Seats: 1, Active: true})

	var results []bool
	require.NoError(t, s.Reservations().RunInTx(ctx, func(tx repository.ReservationTx) error {
		for i := 0; i < 3; i++ {
			ok, err := tx.TakeSeat(ctx, ride.ID)
			if err != nil {
				return err
			}
			results = append(results, ok)
		}
		return nil
	}))
	assert.Equal(t, []bool{true, false, false}, results)

	after, err := s.Rides().FindByID(ctx, ride.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, after.Seats)
}

func TestUsersEmailUnique(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	_, err := s.Users().Create(ctx, "a@example.com", "hash", "A", false)
	require.NoError(t, err)
	_, err = s.Users().Create(ctx, "A@example.com", "hash", "A2", false)
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	require.NoError(t, s.Users().SetAdmin(ctx, "a@example.com", true))
	u, err := s.Users().FindByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.True(t, u.IsAdmin)
}

func TestHiddenRidesDropOutOfReservationViews(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	now := time.Date(2030, 5, 1, 12, 0, 0, 0, time.UTC)

	live := s.SeedRide(entities.Ride{DepartureTS: now.Add(time.Hour), Seats: 2, Active: true})
	removed := s.SeedRide(entities.Ride{DepartureTS: now.Add(time.Hour), Seats: 2, Active: true})
	require.NoError(t, s.Reservations().RunInTx(ctx, func(tx repository.ReservationTx) error {
		if _, err := tx.Insert(ctx, "u1", live.ID, entities.StatusConfirmed); err != nil {
			return err
		}
		_, err := tx.Insert(ctx, "u1", removed.ID, entities.StatusWaiting)
		return err
	}))
	require.NoError(t, s.Rides().Deactivate(ctx, removed.ID))

	list, err := s.Reservations().ListByUser(ctx, "u1", now)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, live.ID, list[0].Ride.ID)

	stats, err := s.Stats().Summary(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.ConfirmedReservations)
	assert.Equal(t, 0, stats.WaitingReservations)
}

func TestLockRide(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	ride := s.SeedRide(entities.Ride{DepartureTS: time.Now().Add(time.Hour), Seats: 3, Active: true})

	err := s.Reservations().RunInTx(ctx, func(tx repository.ReservationTx) error {
		locked, err := tx.LockRide(ctx, ride.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, locked.Seats)

		_, err = tx.LockRide(ctx, 999)
		assert.ErrorIs(t, err, repository.ErrNotFound)
		return nil
	})
	require.NoError(t, err)
}
