package models

import (
	"time"

	"rideboard/internal/entities"
)

// RideResponse is the public view of a ride. It never carries the secret.
type RideResponse struct {
	ID          int64     `json:"id"`
	OwnerID     *string   `json:"owner_id,omitempty"`
	Departure   string    `json:"departure"`
	Destination string    `json:"destination"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	DepartureTS time.Time `json:"departure_ts"`
	Seats       int       `json:"seats"`
	Contact     string    `json:"contact"`
	CreatedAt   time.Time `json:"created_at"`
}

// PublishRideResponse is returned once, to the publisher only.
type PublishRideResponse struct {
	Ride     RideResponse `json:"ride"`
	Secret   string       `json:"secret"`
	ShareURL string       `json:"share_url"`
}

// RideDetailsResponse adds reservation counts to a ride
type RideDetailsResponse struct {
	RideResponse
	Confirmed int `json:"confirmed"`
	Waiting   int `json:"waiting"`
}

func NewRideResponse(r *entities.Ride) RideResponse {
	return RideResponse{
		ID:          r.ID,
		OwnerID:     r.OwnerID,
		Departure:   r.Departure,
		Destination: r.Destination,
		Date:        r.Date,
		Time:        r.Time,
		DepartureTS: r.DepartureTS,
		Seats:       r.Seats,
		Contact:     r.Contact,
		CreatedAt:   r.CreatedAt,
	}
}

func NewRideResponses(rides []*entities.Ride) []RideResponse {
	out := make([]RideResponse, len(rides))
	for i, r := range rides {
		out[i] = NewRideResponse(r)
	}
	return out
}
