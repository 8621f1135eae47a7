package model

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

type UnitStatus string

const (
	UnitStatusAvailable   UnitStatus = "AVAILABLE"
	UnitStatusOccupied    UnitStatus = "OCCUPIED"
	UnitStatusMaintenance UnitStatus = "MAINTENANCE"
	UnitStatusReserved    UnitStatus = "RESERVED"
)

// MeteredBillingMode controls how a shared metered charge is divided among
// the active contracts on one unit.
type MeteredBillingMode string

const (
	// SplitEqually divides the metered charge evenly across all active
	// contracts on the unit.
	SplitEqually MeteredBillingMode = "SPLIT_EQUALLY"
	// SingleOccupant bills the full metered charge to the unit's primary
	// (earliest-starting) active contract.
	SingleOccupant MeteredBillingMode = "SINGLE_OCCUPANT"
)

func (m MeteredBillingMode) Validate() error {
	allowed := []MeteredBillingMode{SplitEqually, SingleOccupant}
	if !lo.Contains(allowed, m) {
		return fmt.Errorf("invalid metered billing mode %q", m)
	}
	return nil
}

type Unit struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID           uuid.UUID `gorm:"type:uuid;index"`
	BuildingID         uuid.UUID `gorm:"type:uuid;index"`
	UnitNumber         string
	FloorLevel         int
	MaxOccupancy       int
	DefaultRate        decimal.Decimal `gorm:"type:decimal(10,2)"`
	Status             UnitStatus      `gorm:"default:AVAILABLE"`
	MeteredBillingMode MeteredBillingMode
}

// UnitService is a billable utility or amenity attached to a unit. For flat
// services MonthlyPrice is the monthly fee; for metered services it is the
// rate per unit of consumption.
type UnitService struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID     uuid.UUID `gorm:"type:uuid;index"`
	UnitID       uuid.UUID `gorm:"type:uuid;index"`
	Name         string
	MonthlyPrice decimal.Decimal `gorm:"type:decimal(10,2)"`
	IsMetered    bool
	MeterNumber  *string
}
