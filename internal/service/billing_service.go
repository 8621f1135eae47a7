package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/askhat/rentflow/internal/config"
	"github.com/askhat/rentflow/internal/model"
	"github.com/askhat/rentflow/internal/repository"
)

// BillingService is the invoice generation engine. Every method takes the
// tenant id explicitly; the service holds no per-request state.
type BillingService struct {
	db  *gorm.DB
	cfg *config.Config
	log zerolog.Logger
}

func NewBillingService(db *gorm.DB, cfg *config.Config, log zerolog.Logger) *BillingService {
	return &BillingService{db: db, cfg: cfg, log: log}
}

// GenerateMonthlyInvoices runs the billing cycle for every active contract
// of the tenant that is due on runDate and returns how many invoices were
// created. A failing contract is logged and skipped; the batch continues.
//
// Readings consumed during the batch are collected and marked billed in one
// final pass after all contracts have been evaluated, so two contracts
// splitting one meter both see the same reading within the run.
func (s *BillingService) GenerateMonthlyInvoices(ctx context.Context, tenantID uuid.UUID, runDate time.Time, autoPublish bool) (int, error) {
	contracts := repository.NewContractRepository(s.db)
	active, err := contracts.ListActiveContracts(ctx, tenantID)
	if err != nil {
		return 0, err
	}

	sweep := NewReadingSweep(SweepDeferred)
	count := 0
	for _, contract := range active {
		if !DueOn(runDate, contract.BillingDay) {
			continue
		}
		invoice, err := s.generateOne(ctx, tenantID, contract, runDate, autoPublish, sweep)
		if err != nil {
			s.log.Error().Err(err).
				Str("tenant_id", tenantID.String()).
				Str("contract_id", contract.ID.String()).
				Msg("invoice generation failed, continuing batch")
			continue
		}
		if invoice != nil {
			count++
		}
	}

	meters := repository.NewMeterRepository(s.db)
	if err := meters.SetReadingsBilled(ctx, sweep.Drain(), true); err != nil {
		return count, fmt.Errorf("final reading sweep: %w", err)
	}
	return count, nil
}

// GenerateInvoiceForContract bills one contract for the month of targetDate.
// It returns (nil, nil) when the contract is already billed for that period,
// not active, or missing unit data. Consumed readings are flagged inside the
// same transaction as the invoice.
func (s *BillingService) GenerateInvoiceForContract(ctx context.Context, tenantID, contractID uuid.UUID, targetDate time.Time, autoPublish bool) (*model.Invoice, error) {
	contracts := repository.NewContractRepository(s.db)
	contract, err := contracts.GetContract(ctx, tenantID, contractID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s.generateOne(ctx, tenantID, *contract, targetDate, autoPublish, NewReadingSweep(SweepImmediate))
}

// ListPendingMeters returns the advisory list of metered services that will
// be skipped on the next run because no unbilled reading exists. Contracts
// inside the move-in grace window are not counted when grace is enabled.
func (s *BillingService) ListPendingMeters(ctx context.Context, tenantID uuid.UUID, period time.Time) ([]model.PendingMeter, error) {
	period = dateOnly(period)
	monthStart := time.Date(period.Year(), period.Month(), 1, 0, 0, 0, 0, time.UTC)
	cutoff := monthStart
	if !s.cfg.Billing.MoveInGrace {
		cutoff = monthStart.AddDate(0, 1, 0)
	}
	meters := repository.NewMeterRepository(s.db)
	return meters.ListPendingMeters(ctx, tenantID, cutoff)
}

// generateOne assembles and persists one invoice inside a single
// transaction: the invoice shell, every line item, one-time add-on flags and
// (in immediate sweep mode) reading flags commit or roll back together.
// Consumed readings are staged in a contract-local sweep and merged into the
// caller's sweep only after the transaction commits, so a rolled-back
// invoice cannot leak its readings into the batch's final marking pass.
func (s *BillingService) generateOne(ctx context.Context, tenantID uuid.UUID, contract model.Contract, targetDate time.Time, autoPublish bool, sweep *ReadingSweep) (*model.Invoice, error) {
	if contract.Status != model.ContractStatusActive {
		return nil, nil
	}

	period := dateOnly(targetDate)
	year, month := period.Year(), int(period.Month())

	// Duplicate guard, fails closed. The partial unique index on
	// (contract, year, month) backstops this check under concurrent runs.
	existing, err := repository.NewInvoiceRepository(s.db).FindForPeriod(ctx, contract.ID, year, month)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, nil
	}

	staged := NewReadingSweep(sweep.Mode())

	var created *model.Invoice
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoices := repository.NewInvoiceRepository(tx)
		contracts := repository.NewContractRepository(tx)
		units := repository.NewUnitRepository(tx)
		meters := repository.NewMeterRepository(tx)

		unit, err := units.GetUnit(ctx, contract.UnitID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errNotEligible
		}
		if err != nil {
			return err
		}

		invoiceDate := ResolveBillingDate(year, time.Month(month), contract.BillingDay)
		invoice := &model.Invoice{
			ID:           uuid.New(),
			TenantID:     tenantID,
			ContractID:   contract.ID,
			OccupantID:   contract.OccupantID,
			InvoiceDate:  invoiceDate,
			DueDate:      invoiceDate.AddDate(0, 0, s.cfg.Billing.DueDays),
			BillingMonth: month,
			BillingYear:  year,
			AmountPaid:   decimal.Zero,
			Status:       model.InvoiceStatusUnpaid,
			IsPublished:  autoPublish,
			CreatedAt:    time.Now().UTC(),
		}

		addItem := func(item model.InvoiceItem) {
			item.ID = uuid.New()
			item.TenantID = tenantID
			item.InvoiceID = invoice.ID
			item.Position = len(invoice.Items)
			invoice.Items = append(invoice.Items, item)
		}

		addItem(model.InvoiceItem{
			ItemType:    model.ItemTypeRent,
			Description: fmt.Sprintf("Base rent for %s", invoiceDate.Format("January 2006")),
			Amount:      contract.RentAmount,
		})

		services, err := units.ListUnitServices(ctx, unit.ID)
		if err != nil {
			return err
		}
		var metered []model.UnitService
		for _, svc := range services {
			if svc.IsMetered {
				metered = append(metered, svc)
				continue
			}
			svcID := svc.ID
			addItem(model.InvoiceItem{
				ItemType:      model.ItemTypeService,
				Description:   svc.Name,
				Amount:        svc.MonthlyPrice,
				UnitServiceID: &svcID,
			})
		}

		if err := s.addUtilityItems(ctx, contracts, meters, contract, *unit, metered, staged, addItem); err != nil {
			return err
		}

		if err := s.addAddOnItems(ctx, contracts, contract, addItem); err != nil {
			return err
		}

		included, err := contracts.ListIncludedServices(ctx, contract.ID)
		if err != nil {
			return err
		}
		for _, inc := range included {
			svc, err := units.GetUnitService(ctx, inc.UnitServiceID)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			amount := svc.MonthlyPrice
			if inc.OverrideAmount != nil {
				amount = *inc.OverrideAmount
			}
			svcID := svc.ID
			addItem(model.InvoiceItem{
				ItemType:      model.ItemTypeService,
				Description:   svc.Name,
				Amount:        amount,
				UnitServiceID: &svcID,
			})
		}

		total := decimal.Zero
		for _, item := range invoice.Items {
			total = total.Add(item.Amount)
		}
		invoice.TotalAmount = total

		if err := invoices.CreateWithItems(ctx, invoice); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// A concurrent run billed this period first.
				return errNotEligible
			}
			return err
		}

		if staged.Mode() == SweepImmediate {
			if err := meters.SetReadingsBilled(ctx, staged.Drain(), true); err != nil {
				return err
			}
		}

		created = invoice
		return nil
	})
	if errors.Is(err, errNotEligible) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	for _, id := range staged.Drain() {
		sweep.Add(id)
	}
	return created, nil
}

// addUtilityItems resolves consumption for each metered service and applies
// the unit's distribution mode. A service with no unbilled reading is
// skipped; the pending-meter advisory surfaces that at the UI boundary.
func (s *BillingService) addUtilityItems(
	ctx context.Context,
	contracts *repository.ContractRepository,
	meters *repository.MeterRepository,
	contract model.Contract,
	unit model.Unit,
	metered []model.UnitService,
	sweep *ReadingSweep,
	addItem func(model.InvoiceItem),
) error {
	if len(metered) == 0 {
		return nil
	}

	activeOnUnit, err := contracts.ListActiveContractsOnUnit(ctx, unit.ID)
	if err != nil {
		return err
	}
	occupants := len(activeOnUnit)

	for _, svc := range metered {
		reading, err := meters.LatestUnbilledReading(ctx, svc.ID)
		if err != nil {
			return err
		}
		if reading == nil {
			continue
		}

		consumption := reading.Consumption()
		raw := decimal.NewFromFloat(consumption).Mul(svc.MonthlyPrice)

		var amount decimal.Decimal
		var description string
		switch {
		case unit.MeteredBillingMode == model.SingleOccupant && occupants > 1:
			// The earliest-starting active contract carries the whole charge.
			if activeOnUnit[0].ID != contract.ID {
				continue
			}
			amount = raw.Round(2)
			description = fmt.Sprintf("%s (%.2f units)", svc.Name, consumption)
		case unit.MeteredBillingMode == model.SplitEqually && occupants > 1:
			amount = raw.Div(decimal.NewFromInt(int64(occupants))).Round(2)
			description = fmt.Sprintf("%s (%.2f units, split 1/%d)", svc.Name, consumption, occupants)
		default:
			amount = raw.Round(2)
			description = fmt.Sprintf("%s (%.2f units)", svc.Name, consumption)
		}

		svcID := svc.ID
		addItem(model.InvoiceItem{
			ItemType:      model.ItemTypeUtility,
			Description:   description,
			Amount:        amount,
			UnitServiceID: &svcID,
		})
		sweep.Add(reading.ID)
	}
	return nil
}

// addAddOnItems resolves contract add-ons for this cycle: recurring charges
// every time, one-time charges until first billed. Metered charge
// definitions never flow through add-ons.
func (s *BillingService) addAddOnItems(
	ctx context.Context,
	contracts *repository.ContractRepository,
	contract model.Contract,
	addItem func(model.InvoiceItem),
) error {
	addOns, err := contracts.ListAddOns(ctx, contract.ID)
	if err != nil {
		return err
	}
	for _, addOn := range addOns {
		def, err := contracts.GetChargeDefinition(ctx, addOn.ChargeDefinitionID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Warn().
				Str("contract_add_on_id", addOn.ID.String()).
				Msg("add-on references missing charge definition, skipping")
			continue
		}
		if err != nil {
			return err
		}

		addOnID := addOn.ID
		switch def.ChargeType {
		case model.ChargeTypeRecurring:
			addItem(model.InvoiceItem{
				ItemType:        model.ItemTypeAddOn,
				Description:     def.Name,
				Amount:          addOn.AgreedAmount,
				ContractAddOnID: &addOnID,
			})
		case model.ChargeTypeOneTime:
			if addOn.IsProcessed {
				continue
			}
			addItem(model.InvoiceItem{
				ItemType:        model.ItemTypeAddOn,
				Description:     def.Name,
				Amount:          addOn.AgreedAmount,
				ContractAddOnID: &addOnID,
			})
			if err := contracts.SetAddOnProcessed(ctx, addOn.ID, true); err != nil {
				return err
			}
		case model.ChargeTypeMetered:
			// Metered amounts come from meter readings only.
		}
	}
	return nil
}
