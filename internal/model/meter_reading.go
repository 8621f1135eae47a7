package model

import (
	"time"

	"github.com/google/uuid"
)

// MeterReading is one consumption observation for a metered unit service.
// Readings are written by the entry screens with IsBilled=false; the billing
// engine only consumes them and flips the flag.
type MeterReading struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID      uuid.UUID `gorm:"type:uuid;index"`
	UnitServiceID uuid.UUID `gorm:"type:uuid;index"`
	PreviousValue float64
	CurrentValue  float64
	ReadingDate   time.Time
	IsBilled      bool
	Notes         *string
}

func (m MeterReading) Consumption() float64 {
	return m.CurrentValue - m.PreviousValue
}
