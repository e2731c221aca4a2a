package models

import (
	"time"

	"rideboard/internal/entities"
)

type ReservationResponse struct {
	ID        int64                      `json:"id"`
	RideID    int64                      `json:"ride_id"`
	Status    entities.ReservationStatus `json:"status"`
	CreatedAt time.Time                  `json:"created_at"`
}

type UserReservationResponse struct {
	ReservationResponse
	Ride RideResponse `json:"ride"`
}

type CancelReservationResponse struct {
	Message        string `json:"message"`
	PromotedUserID string `json:"promoted_user_id,omitempty"`
}

func NewReservationResponse(r *entities.Reservation) ReservationResponse {
	return ReservationResponse{
		ID:        r.ID,
		RideID:    r.RideID,
		Status:    r.Status,
		CreatedAt: r.CreatedAt,
	}
}

func NewUserReservationResponses(list []*entities.UserReservation) []UserReservationResponse {
	out := make([]UserReservationResponse, len(list))
	for i, ur := range list {
		out[i] = UserReservationResponse{
			ReservationResponse: NewReservationResponse(&ur.Reservation),
			Ride:                NewRideResponse(&ur.Ride),
		}
	}
	return out
}
