package entities

// Stats is the raw community snapshot computed by the store.
type Stats struct {
	ActiveRides           int `json:"active_rides"`
	OpenSeats             int `json:"open_seats"`
	ConfirmedReservations int `json:"confirmed_reservations"`
	WaitingReservations   int `json:"waiting_reservations"`
	Users                 int `json:"users"`
}
