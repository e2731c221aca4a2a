package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"rideboard/internal/cache"
	"rideboard/internal/entities"
	"rideboard/internal/logger"
	"rideboard/internal/mocks"
	"rideboard/internal/models"
	"rideboard/internal/repository/memory"
)

func seededStats(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.NewStore()
	f := &fixture{store: store}
	ride := seedRide(f, 1)
	store.SeedRide(entities.Ride{DepartureTS: time.Now().Add(-time.Hour), Seats: 4, Active: true})

	svc := NewReservationService(store.Reservations(), nil, logger.Nop(), nil)
	ctx := context.Background()
	_, err := svc.Reserve(ctx, "a", ride.ID)
	require.NoError(t, err)
	_, err = svc.Reserve(ctx, "b", ride.ID)
	require.NoError(t, err)
	return store
}

func TestStatsWithoutCache(t *testing.T) {
	store := seededStats(t)
	svc := NewStatsService(store.Stats(), nil, time.Minute, 2.34, logger.Nop()).(*statsService)
	svc.now = fixedClock

	got, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, got.ActiveRides)
	assert.Equal(t, 0, got.OpenSeats)
	assert.Equal(t, 1, got.ConfirmedReservations)
	assert.Equal(t, 1, got.WaitingReservations)
	assert.InDelta(t, 2.3, got.CO2SavedKg, 1e-9)
}

func TestStatsSkipReservationsOnRemovedRides(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, true, nil)
	kept := seedRide(f, 2)
	removed := seedRide(f, 2)
	for _, id := range []int64{kept.ID, removed.ID} {
		_, err := f.reservations.Reserve(ctx, "a", id)
		require.NoError(t, err)
	}
	require.NoError(t, f.rides.Remove(ctx, removed.ID, adminRequester))

	svc := NewStatsService(f.store.Stats(), nil, time.Minute, 1, logger.Nop()).(*statsService)
	svc.now = fixedClock
	got, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, got.ActiveRides)
	assert.Equal(t, 1, got.OpenSeats)
	assert.Equal(t, 1, got.ConfirmedReservations)
}

func TestStatsCacheMissStoresResult(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mocks.NewMockCache(ctrl)
	store := seededStats(t)

	c.EXPECT().GetJSON(gomock.Any(), statsCacheKey, gomock.Any()).Return(cache.ErrMiss)
	c.EXPECT().
		SetJSON(gomock.Any(), statsCacheKey, gomock.Any(), 30*time.Second).
		DoAndReturn(func(_ context.Context, _ string, value any, _ time.Duration) error {
			resp, ok := value.(*models.StatsResponse)
			require.True(t, ok)
			assert.Equal(t, 1, resp.ConfirmedReservations)
			return nil
		})

	svc := NewStatsService(store.Stats(), c, 30*time.Second, 1, logger.Nop()).(*statsService)
	svc.now = fixedClock
	got, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1.0, got.CO2SavedKg)
}

func TestStatsCacheHit(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mocks.NewMockCache(ctrl)

	c.EXPECT().
		GetJSON(gomock.Any(), statsCacheKey, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, dest any) error {
			*dest.(*models.StatsResponse) = models.StatsResponse{ActiveRides: 42}
			return nil
		})

	var buf bytes.Buffer
	svc := NewStatsService(memory.NewStore().Stats(), c, time.Minute, 1, logger.NewWithOutput("rideboard", "debug", &buf))
	got, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, got.ActiveRides)
	assert.Contains(t, buf.String(), `"action":"stats_cache_hit"`)
}

func TestStatsCacheWriteFailureIsIgnored(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mocks.NewMockCache(ctrl)
	c.EXPECT().GetJSON(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("connection refused"))
	c.EXPECT().SetJSON(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("connection refused"))

	svc := NewStatsService(memory.NewStore().Stats(), c, time.Minute, 1, logger.Nop())
	got, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Zero(t, got.ActiveRides)
}
