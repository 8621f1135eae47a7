package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/askhat/rentflow/internal/model"
)

type InvoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// FindForPeriod implements the duplicate guard lookup: any non-VOID invoice
// for the contract in the given calendar period. Returns nil when the
// contract has not been billed for that period.
func (r *InvoiceRepository) FindForPeriod(ctx context.Context, contractID uuid.UUID, year, month int) (*model.Invoice, error) {
	var invoice model.Invoice
	err := r.db.WithContext(ctx).
		Where("contract_id = ? AND billing_year = ? AND billing_month = ? AND status <> ?",
			contractID, year, month, model.InvoiceStatusVoid).
		First(&invoice).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// CreateWithItems persists the invoice and its line items together. Callers
// that need atomicity with other writes construct the repository over a
// transaction handle.
func (r *InvoiceRepository) CreateWithItems(ctx context.Context, invoice *model.Invoice) error {
	if err := r.db.WithContext(ctx).Create(invoice).Error; err != nil {
		return err
	}
	for i := range invoice.Items {
		invoice.Items[i].InvoiceID = invoice.ID
		invoice.Items[i].TenantID = invoice.TenantID
	}
	if len(invoice.Items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&invoice.Items).Error
}

func (r *InvoiceRepository) GetInvoice(ctx context.Context, tenantID, id uuid.UUID) (*model.Invoice, error) {
	var invoice model.Invoice
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&invoice).Error
	if err != nil {
		return nil, err
	}
	items, err := r.ListItems(ctx, invoice.ID)
	if err != nil {
		return nil, err
	}
	invoice.Items = items
	return &invoice, nil
}

func (r *InvoiceRepository) ListItems(ctx context.Context, invoiceID uuid.UUID) ([]model.InvoiceItem, error) {
	var items []model.InvoiceItem
	err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("position, id").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *InvoiceRepository) InsertItem(ctx context.Context, item *model.InvoiceItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *InvoiceRepository) UpdateTotal(ctx context.Context, id uuid.UUID, total decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&model.Invoice{}).
		Where("id = ?", id).
		Update("total_amount", total).Error
}

func (r *InvoiceRepository) UpdatePayment(ctx context.Context, id uuid.UUID, amountPaid decimal.Decimal, status model.InvoiceStatus) error {
	return r.db.WithContext(ctx).
		Model(&model.Invoice{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"amount_paid": amountPaid,
			"status":      status,
		}).Error
}

func (r *InvoiceRepository) SetPublished(ctx context.Context, id uuid.UUID, published bool) error {
	return r.db.WithContext(ctx).
		Model(&model.Invoice{}).
		Where("id = ?", id).
		Update("is_published", published).Error
}

// PublishAllDrafts publishes every unpaid draft of the tenant and returns
// how many invoices were affected.
func (r *InvoiceRepository) PublishAllDrafts(ctx context.Context, tenantID uuid.UUID) (int, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Invoice{}).
		Where("tenant_id = ? AND is_published = ? AND status = ?",
			tenantID, false, model.InvoiceStatusUnpaid).
		Update("is_published", true)
	if result.Error != nil {
		return 0, result.Error
	}
	return int(result.RowsAffected), nil
}

func (r *InvoiceRepository) MarkVoid(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&model.Invoice{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       model.InvoiceStatusVoid,
			"is_published": false,
		}).Error
}

func (r *InvoiceRepository) DeleteWithItems(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).
		Where("invoice_id = ?", id).
		Delete(&model.InvoiceItem{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.Invoice{}).Error
}

func (r *InvoiceRepository) DeleteItems(ctx context.Context, invoiceID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Delete(&model.InvoiceItem{}).Error
}

// CountOtherInUnitPeriod counts non-VOID invoices in the same unit and
// calendar period, excluding the given invoice. The reversal handler uses it
// to decide whether shared meter/add-on state may be restored.
func (r *InvoiceRepository) CountOtherInUnitPeriod(ctx context.Context, unitID uuid.UUID, year, month int, excludeInvoiceID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Raw(`
		SELECT COUNT(*)
		FROM invoices i
		JOIN contracts c ON c.id = i.contract_id
		WHERE c.unit_id = ?
			AND i.billing_year = ?
			AND i.billing_month = ?
			AND i.status <> ?
			AND i.id <> ?
	`, unitID, year, month, model.InvoiceStatusVoid, excludeInvoiceID).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// InvoiceFilter narrows the invoice listing. Zero values mean "no filter".
type InvoiceFilter struct {
	Status   model.InvoiceStatus
	UnitID   uuid.UUID
	DateFrom time.Time
	DateTo   time.Time
}

func (r *InvoiceRepository) ListRegister(ctx context.Context, tenantID uuid.UUID, filter InvoiceFilter) ([]model.InvoiceRegisterRow, error) {
	query := `
		SELECT
			i.id AS invoice_id,
			i.invoice_date,
			i.due_date,
			u.unit_number,
			b.name AS building_name,
			o.first_name || ' ' || o.last_name AS occupant_name,
			i.status,
			i.is_published,
			i.total_amount,
			i.amount_paid
		FROM invoices i
		JOIN contracts c ON c.id = i.contract_id
		JOIN units u ON u.id = c.unit_id
		JOIN buildings b ON b.id = u.building_id
		JOIN occupants o ON o.id = i.occupant_id
		WHERE i.tenant_id = ?
	`
	args := []interface{}{tenantID}
	if filter.Status != "" {
		query += " AND i.status = ?"
		args = append(args, filter.Status)
	}
	if filter.UnitID != uuid.Nil {
		query += " AND c.unit_id = ?"
		args = append(args, filter.UnitID)
	}
	if !filter.DateFrom.IsZero() {
		query += " AND i.invoice_date >= ?"
		args = append(args, filter.DateFrom)
	}
	if !filter.DateTo.IsZero() {
		query += " AND i.invoice_date <= ?"
		args = append(args, filter.DateTo)
	}
	query += " ORDER BY i.invoice_date DESC, i.created_at DESC"

	var rows []model.InvoiceRegisterRow
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CountOtherItemsForAddOn counts line items on other non-VOID invoices that
// reference the same contract add-on. A reversal may only reset the add-on's
// processed flag when this is zero.
func (r *InvoiceRepository) CountOtherItemsForAddOn(ctx context.Context, addOnID, excludeInvoiceID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Raw(`
		SELECT COUNT(*)
		FROM invoice_items it
		JOIN invoices i ON i.id = it.invoice_id
		WHERE it.contract_add_on_id = ?
			AND i.status <> ?
			AND i.id <> ?
	`, addOnID, model.InvoiceStatusVoid, excludeInvoiceID).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
