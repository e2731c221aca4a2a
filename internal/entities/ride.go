package entities

import "time"

// Ride represents a posted ride offer.
//
// Date and Time hold what the driver typed, DepartureTS is the same moment
// resolved in the board's reference time zone and is the only value used
// for ordering and expiry.
type Ride struct {
	ID          int64     `json:"id"`
	OwnerID     *string   `json:"owner_id,omitempty"` // nil for anonymous offers
	Departure   string    `json:"departure"`
	Destination string    `json:"destination"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	DepartureTS time.Time `json:"departure_ts"`
	Seats       int       `json:"seats"` // remaining, never negative
	Contact     string    `json:"contact"`
	Active      bool      `json:"active"`
	Secret      string    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

// OwnedBy reports whether userID is the ride's owner.
func (r *Ride) OwnedBy(userID string) bool {
	return r.OwnerID != nil && userID != "" && *r.OwnerID == userID
}

// Visible reports whether the ride may be shown at instant now.
func (r *Ride) Visible(now time.Time) bool {
	return r.Active && !r.DepartureTS.Before(now)
}
