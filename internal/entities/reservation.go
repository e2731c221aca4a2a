package entities

import "time"

type ReservationStatus string

const (
	StatusConfirmed ReservationStatus = "confirmed"
	StatusWaiting   ReservationStatus = "waiting"
)

// Reservation is a user's claim on a seat. IDs increase with creation
// order, which is the waitlist order.
type Reservation struct {
	ID        int64             `json:"id"`
	UserID    string            `json:"user_id"`
	RideID    int64             `json:"ride_id"`
	Status    ReservationStatus `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
}

// UserReservation joins a reservation with the ride it refers to.
type UserReservation struct {
	Reservation
	Ride Ride `json:"ride"`
}
