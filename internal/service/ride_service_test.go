package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"rideboard/internal/access"
	"rideboard/internal/entities"
	"rideboard/internal/events"
	"rideboard/internal/mocks"
	"rideboard/internal/models"
)

func validRequest() *models.PublishRideRequest {
	return &models.PublishRideRequest{
		Departure:   " Berlin ",
		Destination: "Hamburg",
		Date:        "2030-06-02",
		Time:        "08:30",
		Seats:       3,
		Contact:     "anna@example.com",
	}
}

func TestDepartureTime(t *testing.T) {
	ts, err := DepartureTime("2030-01-15", "07:05", berlin)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2030, 1, 15, 6, 5, 0, 0, time.UTC), ts.UTC())

	_, err = DepartureTime("15.01.2030", "07:05", berlin)
	requireValidation(t, err, "date")

	_, err = DepartureTime("2030-01-15", "7pm", berlin)
	requireValidation(t, err, "time")

	_, err = DepartureTime("2030-02-30", "07:05", berlin)
	requireValidation(t, err, "date")

	// clocks jump from 02:00 to 03:00 that night
	_, err = DepartureTime("2030-03-31", "02:30", berlin)
	requireValidation(t, err, "time")

	ts, err = DepartureTime("2030-03-31", "03:30", berlin)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2030, 3, 31, 1, 30, 0, 0, time.UTC), ts.UTC())
}

func TestPublish(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, true, nil)

	ride, err := f.rides.Publish(ctx, strPtr("owner-1"), validRequest())
	require.NoError(t, err)
	assert.NotZero(t, ride.ID)
	assert.Equal(t, "Berlin", ride.Departure)
	assert.Equal(t, "2030-06-02", ride.Date)
	assert.Equal(t, "08:30", ride.Time)
	assert.Equal(t, 3, ride.Seats)
	assert.True(t, ride.Active)
	assert.NotEmpty(t, ride.Secret)
	require.NotNil(t, ride.OwnerID)
	assert.Equal(t, "owner-1", *ride.OwnerID)

	other, err := f.rides.Publish(ctx, nil, validRequest())
	require.NoError(t, err)
	assert.Nil(t, other.OwnerID)
	assert.NotEqual(t, ride.Secret, other.Secret)
}

func TestPublishValidation(t *testing.T) {
	cases := map[string]struct {
		mutate func(r *models.PublishRideRequest)
		field  string
	}{
		"blank departure":   {func(r *models.PublishRideRequest) { r.Departure = "  " }, "departure"},
		"blank destination": {func(r *models.PublishRideRequest) { r.Destination = "" }, "destination"},
		"zero seats":        {func(r *models.PublishRideRequest) { r.Seats = 0 }, "seats"},
		"negative seats":    {func(r *models.PublishRideRequest) { r.Seats = -2 }, "seats"},
		"bad date":          {func(r *models.PublishRideRequest) { r.Date = "2030/06/02" }, "date"},
		"bad time":          {func(r *models.PublishRideRequest) { r.Time = "25:00" }, "time"},
		"past date":         {func(r *models.PublishRideRequest) { r.Date = "2030-05-31" }, "date"},
		"now is not future": {func(r *models.PublishRideRequest) { r.Date, r.Time = "2030-06-01", "10:00" }, "date"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t, true, nil)
			req := validRequest()
			tc.mutate(req)

			_, err := f.rides.Publish(ctx, nil, req)
			requireValidation(t, err, tc.field)

			rides, err := f.store.Rides().ListActive(ctx, fixedAt.Add(-24*time.Hour))
			require.NoError(t, err)
			assert.Empty(t, rides, "no ride is stored on validation failure")
		})
	}
}

func TestPublishEmitsEvent(t *testing.T) {
	ctrl := gomock.NewController(t)
	pub := mocks.NewMockEventPublisher(ctrl)
	pub.EXPECT().
		Publish(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, ev events.Event) error {
			assert.Equal(t, events.RidePublished, ev.Type)
			assert.Equal(t, "owner-1", ev.UserID)
			assert.False(t, ev.OccurredAt.IsZero())
			return errors.New("broker down")
		})

	f := newFixture(t, true, pub)
	_, err := f.rides.Publish(context.Background(), strPtr("owner-1"), validRequest())
	require.NoError(t, err, "publishing failures do not fail the operation")
}

func TestListActiveSweepsAndOrders(t *testing.T) {
	ctx := context.Background()

	for _, soft := range []bool{true, false} {
		t.Run(map[bool]string{true: "soft", false: "hard"}[soft], func(t *testing.T) {
			f := newFixture(t, soft, nil)
			late := f.store.SeedRide(entities.Ride{Departure: "late", DepartureTS: fixedAt.Add(5 * time.Hour), Seats: 1, Active: true})
			early := f.store.SeedRide(entities.Ride{Departure: "early", DepartureTS: fixedAt.Add(time.Hour), Seats: 1, Active: true})
			gone := f.store.SeedRide(entities.Ride{Departure: "gone", DepartureTS: fixedAt.Add(-time.Hour), Seats: 1, Active: true})

			rides, err := f.rides.ListActive(ctx)
			require.NoError(t, err)
			require.Len(t, rides, 2)
			assert.Equal(t, early.ID, rides[0].ID)
			assert.Equal(t, late.ID, rides[1].ID)

			stored, err := f.store.Rides().FindByID(ctx, gone.ID)
			if soft {
				require.NoError(t, err)
				assert.False(t, stored.Active)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestExpireOlderThanIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, true, nil)
	f.store.SeedRide(entities.Ride{DepartureTS: fixedAt.Add(-time.Minute), Active: true})
	f.store.SeedRide(entities.Ride{DepartureTS: fixedAt.Add(time.Minute), Active: true})

	n, err := f.rides.ExpireOlderThan(ctx, fixedAt)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = f.rides.ExpireOlderThan(ctx, fixedAt)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
}

func TestRemove(t *testing.T) {
	ctx := context.Background()

	seed := func(f *fixture) *entities.Ride {
		return f.store.SeedRide(entities.Ride{
			OwnerID:     strPtr("owner"),
			DepartureTS: fixedAt.Add(time.Hour),
			Seats:       2,
			Active:      true,
			Secret:      "s3cret",
		})
	}

	cases := []struct {
		name      string
		requester access.Requester
		wantErr   error
	}{
		{"owner", access.Requester{UserID: "owner"}, nil},
		{"admin", access.Requester{UserID: "someone", IsAdmin: true}, nil},
		{"secret holder", access.Requester{Secret: "s3cret"}, nil},
		{"stranger", access.Requester{UserID: "stranger"}, ErrForbidden},
		{"wrong secret", access.Requester{Secret: "guess"}, ErrForbidden},
		{"anonymous", access.Requester{}, ErrForbidden},
	}

	for _, soft := range []bool{true, false} {
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				f := newFixture(t, soft, nil)
				ride := seed(f)

				err := f.rides.Remove(ctx, ride.ID, tc.requester)
				if tc.wantErr != nil {
					require.ErrorIs(t, err, tc.wantErr)
					_, err := f.rides.Get(ctx, ride.ID)
					require.NoError(t, err, "ride stays visible")
					return
				}
				require.NoError(t, err)

				_, err = f.rides.Get(ctx, ride.ID)
				require.ErrorIs(t, err, ErrNotFound)

				stored, err := f.store.Rides().FindByID(ctx, ride.ID)
				if soft {
					require.NoError(t, err)
					assert.False(t, stored.Active)
				} else {
					assert.Error(t, err)
				}
			})
		}
	}
}

func TestRemoveMissingOrHiddenRide(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, true, nil)
	admin := access.Requester{UserID: "admin", IsAdmin: true}

	err := f.rides.Remove(ctx, 999, admin)
	require.ErrorIs(t, err, ErrNotFound)

	past := f.store.SeedRide(entities.Ride{DepartureTS: fixedAt.Add(-time.Hour), Active: true})
	err = f.rides.Remove(ctx, past.ID, admin)
	require.ErrorIs(t, err, ErrNotFound)

	inactive := f.store.SeedRide(entities.Ride{DepartureTS: fixedAt.Add(time.Hour), Active: false})
	err = f.rides.Remove(ctx, inactive.ID, admin)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGetIncludesCounts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, true, nil)
	ride := f.store.SeedRide(entities.Ride{DepartureTS: fixedAt.Add(time.Hour), Seats: 1, Active: true})

	_, err := f.reservations.Reserve(ctx, "a", ride.ID)
	require.NoError(t, err)
	_, err = f.reservations.Reserve(ctx, "b", ride.ID)
	require.NoError(t, err)

	details, err := f.rides.Get(ctx, ride.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, details.Confirmed)
	assert.Equal(t, 1, details.Waiting)
	assert.Equal(t, 0, details.Ride.Seats)
}

func TestListByOwner(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, true, nil)
	mine, err := f.rides.Publish(ctx, strPtr("me"), validRequest())
	require.NoError(t, err)
	_, err = f.rides.Publish(ctx, strPtr("you"), validRequest())
	require.NoError(t, err)
	_, err = f.rides.Publish(ctx, nil, validRequest())
	require.NoError(t, err)

	rides, err := f.rides.ListByOwner(ctx, "me")
	require.NoError(t, err)
	require.Len(t, rides, 1)
	assert.Equal(t, mine.ID, rides[0].ID)
}
