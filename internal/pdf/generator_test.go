package pdf

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askhat/rentflow/internal/model"
)

func sampleDocument() model.InvoiceDocument {
	invoiceID := uuid.New()
	return model.InvoiceDocument{
		Invoice: model.Invoice{
			ID:           invoiceID,
			InvoiceDate:  time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC),
			DueDate:      time.Date(2026, time.July, 6, 0, 0, 0, 0, time.UTC),
			BillingMonth: 7,
			BillingYear:  2026,
			TotalAmount:  decimal.RequireFromString("1150.00"),
			AmountPaid:   decimal.RequireFromString("150.00"),
			Status:       model.InvoiceStatusPartial,
			Items: []model.InvoiceItem{
				{InvoiceID: invoiceID, ItemType: model.ItemTypeRent, Description: "Base rent for July 2026", Amount: decimal.RequireFromString("1000.00")},
				{InvoiceID: invoiceID, ItemType: model.ItemTypeUtility, Description: "Water (10.00 units)", Amount: decimal.RequireFromString("100.00"), Position: 1},
				{InvoiceID: invoiceID, ItemType: model.ItemTypePenalty, Description: "Late fee", Amount: decimal.RequireFromString("50.00"), Position: 2},
			},
		},
		Tenant:   model.Tenant{ID: uuid.New(), Name: "Aruzhan Estates"},
		Occupant: model.Occupant{ID: uuid.New(), FirstName: "Dana", LastName: "Seitkali", Email: "dana@example.com"},
		Unit:     model.Unit{ID: uuid.New(), UnitNumber: "101"},
		Building: model.Building{ID: uuid.New(), Name: "Riverside Block A", Address: "12 Abay Ave"},
	}
}

func TestGenerate(t *testing.T) {
	generator, err := NewGenerator()
	require.NoError(t, err)

	content, err := generator.Generate(sampleDocument())
	require.NoError(t, err)
	require.NotEmpty(t, content)
	assert.Equal(t, "%PDF", string(content[:4]))
}

func TestGenerate_VoidInvoice(t *testing.T) {
	generator, err := NewGenerator()
	require.NoError(t, err)

	doc := sampleDocument()
	doc.Invoice.Status = model.InvoiceStatusVoid

	content, err := generator.Generate(doc)
	require.NoError(t, err)
	require.NotEmpty(t, content)
}

func TestSafeValue(t *testing.T) {
	assert.Equal(t, "-", safeValue("   "))
	assert.Equal(t, "101", safeValue("101"))
}
