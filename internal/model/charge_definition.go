package model

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

type ChargeType string

const (
	// ChargeTypeRecurring charges are billed every cycle.
	ChargeTypeRecurring ChargeType = "RECURRING"
	// ChargeTypeOneTime charges are billed once and then marked processed.
	ChargeTypeOneTime ChargeType = "ONE_TIME"
	// ChargeTypeMetered charges are never resolved through add-ons; metered
	// amounts flow only through meter readings.
	ChargeTypeMetered ChargeType = "METERED"
)

func (t ChargeType) Validate() error {
	allowed := []ChargeType{ChargeTypeRecurring, ChargeTypeOneTime, ChargeTypeMetered}
	if !lo.Contains(allowed, t) {
		return fmt.Errorf("invalid charge type %q", t)
	}
	return nil
}

// ChargeDefinition is a tenant-level catalog entry for charges that can be
// attached to contracts as add-ons.
type ChargeDefinition struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID      uuid.UUID `gorm:"type:uuid;index"`
	Name          string
	ChargeType    ChargeType
	DefaultAmount decimal.Decimal `gorm:"type:decimal(10,2)"`
}
