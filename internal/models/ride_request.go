package models

// PublishRideRequest represents the request body for offering a ride.
// Date and Time are local to the board's reference time zone.
type PublishRideRequest struct {
	Departure   string `json:"departure" binding:"required,max=200"`
	Destination string `json:"destination" binding:"required,max=200"`
	Date        string `json:"date" binding:"required,datetime=2006-01-02"`
	Time        string `json:"time" binding:"required,datetime=15:04"`
	Seats       int    `json:"seats"`
	Contact     string `json:"contact" binding:"max=200"`
}
