package model

import (
	"time"

	"github.com/google/uuid"
)

// Tenant is one landlord organization. Every other row in the system is
// scoped to exactly one tenant.
type Tenant struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name               string
	SubscriptionStatus string `gorm:"default:ACTIVE"`
	CreatedAt          time.Time
}
