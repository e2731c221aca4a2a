// Package access decides who may remove a ride.
package access

import (
	"crypto/subtle"

	"rideboard/internal/entities"
)

// Requester is the identity behind a mutating call. UserID and IsAdmin
// come from the authenticated token, Secret from the capability header.
// Any of them may be empty.
type Requester struct {
	UserID  string
	IsAdmin bool
	Secret  string
}

// CanDelete reports whether the authenticated user may remove ride.
func CanDelete(user Requester, ride *entities.Ride) bool {
	if user.UserID == "" {
		return false
	}
	return user.IsAdmin || ride.OwnedBy(user.UserID)
}

// SecretMatches treats the provided secret as a capability for ride.
func SecretMatches(provided string, ride *entities.Ride) bool {
	if provided == "" || ride.Secret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(provided), []byte(ride.Secret)) == 1
}

// Allowed combines both checks: identity first, then capability.
func Allowed(req Requester, ride *entities.Ride) bool {
	return CanDelete(req, ride) || SecretMatches(req.Secret, ride)
}
