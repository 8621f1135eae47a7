package excel

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/askhat/rentflow/internal/model"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) Generate(register model.InvoiceRegister) ([]byte, error) {
	file := excelize.NewFile()

	sheet := "Invoices"
	file.SetSheetName("Sheet1", sheet)
	if err := g.writeRegister(file, sheet, register); err != nil {
		return nil, err
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeRegister(file *excelize.File, sheet string, register model.InvoiceRegister) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	totalBilled, totalPaid := sumRegister(register)

	set("A1", "Landlord")
	set("B1", register.TenantName)
	set("A2", "Period start")
	set("B2", formatDate(register.DateFrom))
	set("A3", "Period end")
	set("B3", formatDate(register.DateTo))
	set("A4", "Invoices")
	set("B4", len(register.Rows))
	set("A5", "Total billed")
	set("B5", totalBilled.StringFixed(2))
	set("A6", "Total paid")
	set("B6", totalPaid.StringFixed(2))

	tableRow := 8
	headers := []string{
		"Invoice date",
		"Due date",
		"Building",
		"Unit",
		"Occupant",
		"Status",
		"Published",
		"Total",
		"Paid",
		"Balance",
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, tableRow)
		set(cell, header)
	}

	for i, row := range register.Rows {
		r := tableRow + 1 + i
		set(fmt.Sprintf("A%d", r), formatDate(row.InvoiceDate))
		set(fmt.Sprintf("B%d", r), formatDate(row.DueDate))
		set(fmt.Sprintf("C%d", r), row.BuildingName)
		set(fmt.Sprintf("D%d", r), row.UnitNumber)
		set(fmt.Sprintf("E%d", r), row.OccupantName)
		set(fmt.Sprintf("F%d", r), string(row.Status))
		set(fmt.Sprintf("G%d", r), formatBool(row.IsPublished))
		set(fmt.Sprintf("H%d", r), row.TotalAmount.StringFixed(2))
		set(fmt.Sprintf("I%d", r), row.AmountPaid.StringFixed(2))
		set(fmt.Sprintf("J%d", r), row.TotalAmount.Sub(row.AmountPaid).StringFixed(2))
	}

	_ = file.SetColWidth(sheet, "A", "B", 14)
	_ = file.SetColWidth(sheet, "C", "C", 28)
	_ = file.SetColWidth(sheet, "D", "D", 10)
	_ = file.SetColWidth(sheet, "E", "E", 28)
	_ = file.SetColWidth(sheet, "F", "G", 12)
	_ = file.SetColWidth(sheet, "H", "J", 12)
	return nil
}

func sumRegister(register model.InvoiceRegister) (decimal.Decimal, decimal.Decimal) {
	billed := decimal.Zero
	paid := decimal.Zero
	for _, row := range register.Rows {
		if row.Status == model.InvoiceStatusVoid {
			continue
		}
		billed = billed.Add(row.TotalAmount)
		paid = paid.Add(row.AmountPaid)
	}
	return billed, paid
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatBool(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
