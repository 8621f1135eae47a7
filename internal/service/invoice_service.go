package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/askhat/rentflow/internal/config"
	"github.com/askhat/rentflow/internal/model"
	"github.com/askhat/rentflow/internal/repository"
)

type PDFGenerator interface {
	Generate(doc model.InvoiceDocument) ([]byte, error)
}

type ExcelGenerator interface {
	Generate(register model.InvoiceRegister) ([]byte, error)
}

// ExportResult is a generated file ready to send as an attachment.
type ExportResult struct {
	FileName string
	Content  []byte
}

// InvoiceService owns the invoice lifecycle after generation: reversal,
// publishing, payments, manual adjustments and exports.
type InvoiceService struct {
	db    *gorm.DB
	pdf   PDFGenerator
	excel ExcelGenerator
	cfg   *config.Config
	log   zerolog.Logger
}

func NewInvoiceService(db *gorm.DB, pdf PDFGenerator, excel ExcelGenerator, cfg *config.Config, log zerolog.Logger) *InvoiceService {
	return &InvoiceService{db: db, pdf: pdf, excel: excel, cfg: cfg, log: log}
}

func (s *InvoiceService) GetInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) (*model.Invoice, error) {
	invoice, err := repository.NewInvoiceRepository(s.db).GetInvoice(ctx, tenantID, invoiceID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *InvoiceService) ListRegister(ctx context.Context, tenantID uuid.UUID, filter repository.InvoiceFilter) ([]model.InvoiceRegisterRow, error) {
	return repository.NewInvoiceRepository(s.db).ListRegister(ctx, tenantID, filter)
}

// VoidInvoice cancels a published invoice: status becomes VOID, the draft
// flag is cleared, consumed add-on and reading flags are restored, and the
// row with its items is preserved for audit. Paid invoices cannot be voided.
func (s *InvoiceService) VoidInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoices := repository.NewInvoiceRepository(tx)
		invoice, err := s.loadReversible(ctx, invoices, tenantID, invoiceID)
		if err != nil {
			return err
		}
		if err := s.restoreSideEffects(ctx, tx, *invoice); err != nil {
			return err
		}
		return invoices.MarkVoid(ctx, invoice.ID)
	})
}

// DeleteDraftInvoice removes an unpublished invoice and its items entirely,
// restoring the same side effects as a void. Published invoices must be
// voided instead.
func (s *InvoiceService) DeleteDraftInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoices := repository.NewInvoiceRepository(tx)
		invoice, err := s.loadReversible(ctx, invoices, tenantID, invoiceID)
		if err != nil {
			return err
		}
		if invoice.IsPublished {
			return fmt.Errorf("%w: published invoices can only be voided", ErrInvoicePublished)
		}
		if err := s.restoreSideEffects(ctx, tx, *invoice); err != nil {
			return err
		}
		return invoices.DeleteWithItems(ctx, invoice.ID)
	})
}

func (s *InvoiceService) loadReversible(ctx context.Context, invoices *repository.InvoiceRepository, tenantID, invoiceID uuid.UUID) (*model.Invoice, error) {
	invoice, err := invoices.GetInvoice(ctx, tenantID, invoiceID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	switch invoice.Status {
	case model.InvoiceStatusPaid:
		return nil, fmt.Errorf("%w: paid invoices cannot be reversed", ErrInvoicePaid)
	case model.InvoiceStatusVoid:
		return nil, fmt.Errorf("%w: invoice is already void", ErrInvoiceVoid)
	}
	return invoice, nil
}

// restoreSideEffects undoes the shared-state mutations the invoice made when
// it was generated: one-time add-on processed flags and meter reading billed
// flags. State still referenced by another non-VOID invoice in the same
// unit and period is left untouched.
func (s *InvoiceService) restoreSideEffects(ctx context.Context, tx *gorm.DB, invoice model.Invoice) error {
	invoices := repository.NewInvoiceRepository(tx)
	contracts := repository.NewContractRepository(tx)
	meters := repository.NewMeterRepository(tx)

	contract, err := contracts.GetContract(ctx, invoice.TenantID, invoice.ContractID)
	if err != nil {
		return err
	}
	othersInUnit, err := invoices.CountOtherInUnitPeriod(ctx, contract.UnitID, invoice.BillingYear, invoice.BillingMonth, invoice.ID)
	if err != nil {
		return err
	}

	for _, item := range invoice.Items {
		if item.ContractAddOnID != nil {
			addOn, err := contracts.GetAddOn(ctx, *item.ContractAddOnID)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			def, err := contracts.GetChargeDefinition(ctx, addOn.ChargeDefinitionID)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			if def == nil || def.ChargeType != model.ChargeTypeOneTime {
				continue
			}
			refs, err := invoices.CountOtherItemsForAddOn(ctx, addOn.ID, invoice.ID)
			if err != nil {
				return err
			}
			if refs == 0 {
				if err := contracts.SetAddOnProcessed(ctx, addOn.ID, false); err != nil {
					return err
				}
			}
		}

		if item.ItemType == model.ItemTypeUtility && item.UnitServiceID != nil && othersInUnit == 0 {
			reading, err := meters.LatestBilledReading(ctx, *item.UnitServiceID)
			if err != nil {
				return err
			}
			if reading != nil {
				if err := meters.SetReadingsBilled(ctx, []uuid.UUID{reading.ID}, false); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (s *InvoiceService) PublishInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) error {
	invoices := repository.NewInvoiceRepository(s.db)
	invoice, err := invoices.GetInvoice(ctx, tenantID, invoiceID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if invoice.Status == model.InvoiceStatusVoid {
		return fmt.Errorf("%w: void invoices cannot be published", ErrInvoiceVoid)
	}
	return invoices.SetPublished(ctx, invoice.ID, true)
}

func (s *InvoiceService) PublishAllDrafts(ctx context.Context, tenantID uuid.UUID) (int, error) {
	return repository.NewInvoiceRepository(s.db).PublishAllDrafts(ctx, tenantID)
}

// RecordPayment adds a payment to the invoice, capping the paid amount at
// the total. Full payment moves the invoice to PAID (terminal); anything
// less moves it to PARTIAL.
func (s *InvoiceService) RecordPayment(ctx context.Context, tenantID, invoiceID uuid.UUID, amount decimal.Decimal) (*model.Invoice, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: payment amount must be greater than zero", ErrInvalidInput)
	}

	var updated *model.Invoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoices := repository.NewInvoiceRepository(tx)
		invoice, err := invoices.GetInvoice(ctx, tenantID, invoiceID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		switch invoice.Status {
		case model.InvoiceStatusVoid:
			return fmt.Errorf("%w: void invoices cannot accept payments", ErrInvoiceVoid)
		case model.InvoiceStatusPaid:
			return fmt.Errorf("%w: invoice is already settled", ErrInvoicePaid)
		}

		paid := invoice.AmountPaid.Add(amount)
		status := model.InvoiceStatusPartial
		if paid.GreaterThanOrEqual(invoice.TotalAmount) {
			paid = invoice.TotalAmount
			status = model.InvoiceStatusPaid
		}
		if err := invoices.UpdatePayment(ctx, invoice.ID, paid, status); err != nil {
			return err
		}
		invoice.AmountPaid = paid
		invoice.Status = status
		updated = invoice
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// AdjustmentKind is a manual post-generation correction type.
type AdjustmentKind string

const (
	AdjustmentDiscount AdjustmentKind = "DISCOUNT"
	AdjustmentPenalty  AdjustmentKind = "PENALTY"
)

// AddAdjustment appends a DISCOUNT or PENALTY line and updates the invoice
// total in the same transaction, keeping the sum invariant intact.
func (s *InvoiceService) AddAdjustment(ctx context.Context, tenantID, invoiceID uuid.UUID, kind AdjustmentKind, description string, amount decimal.Decimal) (*model.Invoice, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: adjustment amount must be greater than zero", ErrInvalidInput)
	}
	if strings.TrimSpace(description) == "" {
		return nil, fmt.Errorf("%w: description is required", ErrInvalidInput)
	}

	var itemType model.InvoiceItemType
	var finalAmount decimal.Decimal
	switch kind {
	case AdjustmentDiscount:
		itemType = model.ItemTypeDiscount
		finalAmount = amount.Neg()
	case AdjustmentPenalty:
		itemType = model.ItemTypePenalty
		finalAmount = amount
	default:
		return nil, fmt.Errorf("%w: invalid adjustment kind %q", ErrInvalidInput, kind)
	}

	var updated *model.Invoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoices := repository.NewInvoiceRepository(tx)
		invoice, err := invoices.GetInvoice(ctx, tenantID, invoiceID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		switch invoice.Status {
		case model.InvoiceStatusVoid:
			return fmt.Errorf("%w: void invoices cannot be adjusted", ErrInvoiceVoid)
		case model.InvoiceStatusPaid:
			return fmt.Errorf("%w: settled invoices cannot be adjusted", ErrInvoicePaid)
		}

		item := model.InvoiceItem{
			ID:          uuid.New(),
			TenantID:    tenantID,
			InvoiceID:   invoice.ID,
			ItemType:    itemType,
			Description: description,
			Amount:      finalAmount,
			Position:    len(invoice.Items),
		}
		if err := invoices.InsertItem(ctx, &item); err != nil {
			return err
		}
		total := invoice.TotalAmount.Add(finalAmount)
		if err := invoices.UpdateTotal(ctx, invoice.ID, total); err != nil {
			return err
		}
		invoice.TotalAmount = total
		invoice.Items = append(invoice.Items, item)
		updated = invoice
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// BuildInvoiceDocument collects everything the printable invoice needs.
func (s *InvoiceService) BuildInvoiceDocument(ctx context.Context, tenantID, invoiceID uuid.UUID) (*model.InvoiceDocument, error) {
	invoices := repository.NewInvoiceRepository(s.db)
	contracts := repository.NewContractRepository(s.db)
	units := repository.NewUnitRepository(s.db)

	invoice, err := invoices.GetInvoice(ctx, tenantID, invoiceID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	tenant, err := units.GetTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	occupant, err := contracts.GetOccupant(ctx, invoice.OccupantID)
	if err != nil {
		return nil, err
	}
	contract, err := contracts.GetContract(ctx, tenantID, invoice.ContractID)
	if err != nil {
		return nil, err
	}
	unit, err := units.GetUnit(ctx, contract.UnitID)
	if err != nil {
		return nil, err
	}
	building, err := units.GetBuilding(ctx, unit.BuildingID)
	if err != nil {
		return nil, err
	}

	return &model.InvoiceDocument{
		Invoice:  *invoice,
		Tenant:   *tenant,
		Occupant: *occupant,
		Unit:     *unit,
		Building: *building,
	}, nil
}

// BuildRegister collects the register rows for export.
func (s *InvoiceService) BuildRegister(ctx context.Context, tenantID uuid.UUID, filter repository.InvoiceFilter) (*model.InvoiceRegister, error) {
	units := repository.NewUnitRepository(s.db)
	tenant, err := units.GetTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	rows, err := repository.NewInvoiceRepository(s.db).ListRegister(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	return &model.InvoiceRegister{
		TenantName: tenant.Name,
		DateFrom:   filter.DateFrom,
		DateTo:     filter.DateTo,
		Rows:       rows,
	}, nil
}

// ExportInvoicePDF renders the printable invoice document.
func (s *InvoiceService) ExportInvoicePDF(ctx context.Context, tenantID, invoiceID uuid.UUID) (*ExportResult, error) {
	doc, err := s.BuildInvoiceDocument(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	content, err := s.pdf.Generate(*doc)
	if err != nil {
		return nil, err
	}
	fileName := fmt.Sprintf("invoice-%s-%s.pdf",
		sanitizeFileName(doc.Occupant.FullName()),
		doc.Invoice.InvoiceDate.Format("200601"))
	return &ExportResult{FileName: fileName, Content: content}, nil
}

// ExportRegister renders the xlsx invoice register for the filter.
func (s *InvoiceService) ExportRegister(ctx context.Context, tenantID uuid.UUID, filter repository.InvoiceFilter) (*ExportResult, error) {
	register, err := s.BuildRegister(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	content, err := s.excel.Generate(*register)
	if err != nil {
		return nil, err
	}
	return &ExportResult{
		FileName: RegisterFileName(register.TenantName, filter.DateFrom, filter.DateTo),
		Content:  content,
	}, nil
}

// RegisterFileName builds the attachment name for an xlsx export.
func RegisterFileName(tenantName string, from, to time.Time) string {
	name := sanitizeFileName(tenantName)
	if name == "" {
		name = "tenant"
	}
	period := "all"
	if !from.IsZero() || !to.IsZero() {
		period = fmt.Sprintf("%s-%s", formatPeriodPart(from), formatPeriodPart(to))
	}
	return fmt.Sprintf("invoices-%s-%s.xlsx", name, period)
}

func formatPeriodPart(t time.Time) string {
	if t.IsZero() {
		return "open"
	}
	return t.Format("20060102")
}

func sanitizeFileName(input string) string {
	result := make([]rune, 0, len(input))
	for _, r := range input {
		switch {
		case r >= 'a' && r <= 'z':
			result = append(result, r)
		case r >= 'A' && r <= 'Z':
			result = append(result, r)
		case r >= '0' && r <= '9':
			result = append(result, r)
		case r == '-', r == '_':
			result = append(result, r)
		default:
			result = append(result, '-')
		}
	}
	return strings.Trim(string(result), "-")
}
