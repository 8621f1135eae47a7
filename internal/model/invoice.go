package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

type InvoiceStatus string

const (
	InvoiceStatusUnpaid  InvoiceStatus = "UNPAID"
	InvoiceStatusPartial InvoiceStatus = "PARTIAL"
	InvoiceStatusPaid    InvoiceStatus = "PAID"
	InvoiceStatusVoid    InvoiceStatus = "VOID"
)

func (s InvoiceStatus) Validate() error {
	allowed := []InvoiceStatus{
		InvoiceStatusUnpaid,
		InvoiceStatusPartial,
		InvoiceStatusPaid,
		InvoiceStatusVoid,
	}
	if !lo.Contains(allowed, s) {
		return fmt.Errorf("invalid invoice status %q", s)
	}
	return nil
}

// Terminal reports whether no further status transition is allowed.
func (s InvoiceStatus) Terminal() bool {
	return s == InvoiceStatusPaid || s == InvoiceStatusVoid
}

type InvoiceItemType string

const (
	ItemTypeRent     InvoiceItemType = "RENT"
	ItemTypeService  InvoiceItemType = "SERVICE"
	ItemTypeUtility  InvoiceItemType = "UTILITY"
	ItemTypeAddOn    InvoiceItemType = "ADDON"
	ItemTypeDiscount InvoiceItemType = "DISCOUNT"
	ItemTypePenalty  InvoiceItemType = "PENALTY"
)

func (t InvoiceItemType) Validate() error {
	allowed := []InvoiceItemType{
		ItemTypeRent,
		ItemTypeService,
		ItemTypeUtility,
		ItemTypeAddOn,
		ItemTypeDiscount,
		ItemTypePenalty,
	}
	if !lo.Contains(allowed, t) {
		return fmt.Errorf("invalid invoice item type %q", t)
	}
	return nil
}

// Invoice is one billing event for one contract in one calendar month.
// BillingMonth/BillingYear are the period key: at most one non-VOID invoice
// may exist per (contract, month, year). IsPublished is visibility only and
// orthogonal to status.
type Invoice struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID     uuid.UUID `gorm:"type:uuid;index"`
	ContractID   uuid.UUID `gorm:"type:uuid;index"`
	OccupantID   uuid.UUID `gorm:"type:uuid"`
	InvoiceDate  time.Time
	DueDate      time.Time
	BillingMonth int
	BillingYear  int
	TotalAmount  decimal.Decimal `gorm:"type:decimal(10,2)"`
	AmountPaid   decimal.Decimal `gorm:"type:decimal(10,2)"`
	Status       InvoiceStatus
	IsPublished  bool
	CreatedAt    time.Time

	Items []InvoiceItem `gorm:"-"`
}

// BalanceDue is always derived, never stored.
func (i Invoice) BalanceDue() decimal.Decimal {
	return i.TotalAmount.Sub(i.AmountPaid)
}

// InvoiceItem is one charge line. ContractAddOnID and UnitServiceID are
// identifier back-references to the charge source; the reversal handler
// resolves them through the repositories to undo side effects.
type InvoiceItem struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID        uuid.UUID `gorm:"type:uuid;index"`
	InvoiceID       uuid.UUID `gorm:"type:uuid;index"`
	ItemType        InvoiceItemType
	Description     string
	Amount          decimal.Decimal `gorm:"type:decimal(10,2)"`
	ContractAddOnID *uuid.UUID      `gorm:"type:uuid"`
	UnitServiceID   *uuid.UUID      `gorm:"type:uuid"`
	Position        int
}
