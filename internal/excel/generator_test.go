package excel

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/askhat/rentflow/internal/model"
)

func sampleRegister() model.InvoiceRegister {
	return model.InvoiceRegister{
		TenantName: "Aruzhan Estates",
		DateFrom:   time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC),
		DateTo:     time.Date(2026, time.July, 31, 0, 0, 0, 0, time.UTC),
		Rows: []model.InvoiceRegisterRow{
			{
				InvoiceID:    uuid.New(),
				InvoiceDate:  time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC),
				DueDate:      time.Date(2026, time.July, 6, 0, 0, 0, 0, time.UTC),
				UnitNumber:   "101",
				BuildingName: "Riverside Block A",
				OccupantName: "Dana Seitkali",
				Status:       model.InvoiceStatusPartial,
				IsPublished:  true,
				TotalAmount:  decimal.RequireFromString("1150.00"),
				AmountPaid:   decimal.RequireFromString("150.00"),
			},
			{
				InvoiceID:    uuid.New(),
				InvoiceDate:  time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC),
				DueDate:      time.Date(2026, time.July, 6, 0, 0, 0, 0, time.UTC),
				UnitNumber:   "102",
				BuildingName: "Riverside Block A",
				OccupantName: "Yerlan Abenov",
				Status:       model.InvoiceStatusVoid,
				TotalAmount:  decimal.RequireFromString("600.00"),
				AmountPaid:   decimal.Zero,
			},
		},
	}
}

func TestGenerate(t *testing.T) {
	generator := NewGenerator()

	content, err := generator.Generate(sampleRegister())
	require.NoError(t, err)
	require.NotEmpty(t, content)

	file, err := excelize.OpenReader(bytes.NewReader(content))
	require.NoError(t, err)
	defer file.Close()

	cell := func(ref string) string {
		value, err := file.GetCellValue("Invoices", ref)
		require.NoError(t, err)
		return value
	}

	assert.Equal(t, "Aruzhan Estates", cell("B1"))
	assert.Equal(t, "2026-07-01", cell("B2"))
	assert.Equal(t, "2", cell("B4"))
	// Void rows are excluded from the money summary but listed below.
	assert.Equal(t, "1150.00", cell("B5"))
	assert.Equal(t, "150.00", cell("B6"))

	assert.Equal(t, "Dana Seitkali", cell("E9"))
	assert.Equal(t, "yes", cell("G9"))
	assert.Equal(t, "1000.00", cell("J9"))
	assert.Equal(t, "VOID", cell("F10"))
	assert.Equal(t, "no", cell("G10"))
}

func TestGenerate_EmptyRegister(t *testing.T) {
	generator := NewGenerator()

	content, err := generator.Generate(model.InvoiceRegister{TenantName: "Aruzhan Estates"})
	require.NoError(t, err)

	file, err := excelize.OpenReader(bytes.NewReader(content))
	require.NoError(t, err)
	defer file.Close()

	value, err := file.GetCellValue("Invoices", "B4")
	require.NoError(t, err)
	assert.Equal(t, "0", value)
}
