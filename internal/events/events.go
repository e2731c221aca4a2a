package events

import "time"

// Routing keys published to the rides exchange.
const (
	RidePublished        = "ride.published"
	RideRemoved          = "ride.removed"
	RidesExpired         = "rides.expired"
	ReservationConfirmed = "reservation.confirmed"
	ReservationWaiting   = "reservation.waiting"
	ReservationCancelled = "reservation.cancelled"
	ReservationPromoted  = "reservation.promoted"
)

// Event is the JSON body of every message. Unused fields are omitted.
type Event struct {
	Type          string    `json:"type"`
	RideID        int64     `json:"ride_id,omitempty"`
	UserID        string    `json:"user_id,omitempty"`
	ReservationID int64     `json:"reservation_id,omitempty"`
	Count         int64     `json:"count,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}
