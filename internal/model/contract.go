package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

type ContractStatus string

const (
	ContractStatusActive     ContractStatus = "ACTIVE"
	ContractStatusEnded      ContractStatus = "ENDED"
	ContractStatusReserved   ContractStatus = "RESERVED"
	ContractStatusTerminated ContractStatus = "TERMINATED"
)

func (s ContractStatus) Validate() error {
	allowed := []ContractStatus{
		ContractStatusActive,
		ContractStatusEnded,
		ContractStatusReserved,
		ContractStatusTerminated,
	}
	if !lo.Contains(allowed, s) {
		return fmt.Errorf("invalid contract status %q", s)
	}
	return nil
}

// Contract is a lease between one occupant and one unit. Only ACTIVE
// contracts are billable; status transitions happen outside the billing
// engine and billing never mutates them.
type Contract struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID   uuid.UUID `gorm:"type:uuid;index"`
	OccupantID uuid.UUID `gorm:"type:uuid;index"`
	UnitID     uuid.UUID `gorm:"type:uuid;index"`
	Status     ContractStatus
	StartDate  time.Time
	EndDate    *time.Time
	RentAmount decimal.Decimal `gorm:"type:decimal(10,2)"`
	// BillingDay is the configured day of month (1-31); months shorter than
	// the configured day bill on their last day.
	BillingDay int
}

// ContractAddOn is a per-contract instance of a ChargeDefinition with an
// agreed amount. IsProcessed is meaningful only for ONE_TIME charges: false
// until billed once, then true until reversed.
type ContractAddOn struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID           uuid.UUID `gorm:"type:uuid;index"`
	ContractID         uuid.UUID `gorm:"type:uuid;index"`
	ChargeDefinitionID uuid.UUID `gorm:"type:uuid"`
	AgreedAmount       decimal.Decimal `gorm:"type:decimal(10,2)"`
	IsProcessed        bool
}

// ContractIncludedService snapshots a unit service onto a contract with an
// optional price override, independent of meter state.
type ContractIncludedService struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID       uuid.UUID `gorm:"type:uuid;index"`
	ContractID     uuid.UUID `gorm:"type:uuid;index"`
	UnitServiceID  uuid.UUID `gorm:"type:uuid"`
	OverrideAmount *decimal.Decimal `gorm:"type:decimal(10,2)"`
}
