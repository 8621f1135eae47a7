package model

import "github.com/google/uuid"

// Principal is the authenticated caller extracted from the access token.
// The tenant id is always threaded explicitly into the services; the
// principal itself never travels past the HTTP boundary.
type Principal struct {
	UserID   uuid.UUID
	TenantID uuid.UUID
	Role     string
}

func (p Principal) IsLandlord() bool {
	return p.Role == "LANDLORD"
}

func (p Principal) IsOccupant() bool {
	return p.Role == "OCCUPANT"
}
