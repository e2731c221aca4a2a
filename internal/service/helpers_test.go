package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"rideboard/internal/logger"
	"rideboard/internal/repository/memory"
)

var (
	berlin  = mustLocation("Europe/Berlin")
	fixedAt = time.Date(2030, 6, 1, 10, 0, 0, 0, berlin)
)

func mustLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

func fixedClock() time.Time { return fixedAt }

type fixture struct {
	store        *memory.Store
	rides        RideService
	reservations ReservationService
}

func newFixture(t *testing.T, soft bool, pub EventPublisher) *fixture {
	t.Helper()
	store := memory.NewStore()
	log := logger.Nop()
	return &fixture{
		store: store,
		rides: NewRideService(store.Rides(), pub, log, RideOptions{
			Location:   berlin,
			SoftDelete: soft,
			Now:        fixedClock,
		}),
		reservations: NewReservationService(store.Reservations(), pub, log, fixedClock),
	}
}

func strPtr(s string) *string { return &s }

func requireValidation(t *testing.T, err error, field string) {
	t.Helper()
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	require.Equal(t, field, ve.Field)
}
