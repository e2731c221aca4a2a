package models

// StatsResponse is the community impact summary
type StatsResponse struct {
	ActiveRides           int     `json:"active_rides"`
	OpenSeats             int     `json:"open_seats"`
	ConfirmedReservations int     `json:"confirmed_reservations"`
	WaitingReservations   int     `json:"waiting_reservations"`
	Users                 int     `json:"users"`
	CO2SavedKg            float64 `json:"co2_saved_kg"`
}
