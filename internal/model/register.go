package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceRegisterRow is one line of the tenant's invoice register listing
// and xlsx export.
type InvoiceRegisterRow struct {
	InvoiceID    uuid.UUID
	InvoiceDate  time.Time
	DueDate      time.Time
	UnitNumber   string
	BuildingName string
	OccupantName string
	Status       InvoiceStatus
	IsPublished  bool
	TotalAmount  decimal.Decimal
	AmountPaid   decimal.Decimal
}

type InvoiceRegister struct {
	TenantName string
	DateFrom   time.Time
	DateTo     time.Time
	Rows       []InvoiceRegisterRow
}

// PendingMeter is one metered service blocking a unit's utility billing
// because no unbilled reading exists for it. Surfaced as an advisory, never
// as an engine error.
type PendingMeter struct {
	UnitServiceID uuid.UUID
	ServiceName   string
	UnitID        uuid.UUID
	UnitNumber    string
}

// InvoiceDocument is everything the printable invoice needs.
type InvoiceDocument struct {
	Invoice  Invoice
	Tenant   Tenant
	Occupant Occupant
	Unit     Unit
	Building Building
}
