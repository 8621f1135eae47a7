package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/askhat/rentflow/internal/model"
)

type Generator struct {
	fontName string
}

func NewGenerator() (*Generator, error) {
	return &Generator{fontName: "Helvetica"}, nil
}

func (g *Generator) Generate(doc model.InvoiceDocument) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	period := time.Date(doc.Invoice.BillingYear, time.Month(doc.Invoice.BillingMonth), 1, 0, 0, 0, 0, time.UTC)

	pdf.SetFont(g.fontName, "B", 16)
	pdf.CellFormat(0, 10, "INVOICE", "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Billing period: %s", period.Format("January 2006")), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Issued %s, due %s", formatDate(doc.Invoice.InvoiceDate), formatDate(doc.Invoice.DueDate)), "", 1, "C", false, 0, "")
	if doc.Invoice.Status == model.InvoiceStatusVoid {
		pdf.SetTextColor(200, 0, 0)
		pdf.SetFont(g.fontName, "B", 12)
		pdf.CellFormat(0, 8, "VOID", "", 1, "C", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	}
	pdf.Ln(4)

	addPartyBlock(pdf, g.fontName, "Billed by", []string{
		doc.Tenant.Name,
		fmt.Sprintf("Building: %s", safeValue(doc.Building.Name)),
		fmt.Sprintf("Address: %s", safeValue(doc.Building.Address)),
	})
	pdf.Ln(2)
	addPartyBlock(pdf, g.fontName, "Billed to", []string{
		doc.Occupant.FullName(),
		fmt.Sprintf("Unit: %s", safeValue(doc.Unit.UnitNumber)),
		fmt.Sprintf("Email: %s", safeValue(doc.Occupant.Email)),
		fmt.Sprintf("Phone: %s", safeValue(doc.Occupant.Phone)),
	})
	pdf.Ln(4)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Charges", "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 10)

	headers := []string{"#", "Description", "Type", "Amount"}
	colWidths := []float64{10, 105, 30, 35}
	drawTableRow(pdf, g.fontName, headers, colWidths, true)

	for i, item := range doc.Invoice.Items {
		row := []string{
			fmt.Sprintf("%d", i+1),
			item.Description,
			string(item.ItemType),
			formatAmount(item.Amount),
		}
		drawTableRow(pdf, g.fontName, row, colWidths, false)
	}

	pdf.Ln(2)
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Total: %s", formatAmount(doc.Invoice.TotalAmount)), "", 1, "R", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Paid: %s", formatAmount(doc.Invoice.AmountPaid)), "", 1, "R", false, 0, "")
	pdf.SetFont(g.fontName, "B", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Balance due: %s", formatAmount(doc.Invoice.BalanceDue())), "", 1, "R", false, 0, "")

	pdf.Ln(4)
	pdf.SetFont(g.fontName, "", 9)
	pdf.CellFormat(0, 5, fmt.Sprintf("Invoice %s, status %s", doc.Invoice.ID, doc.Invoice.Status), "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func addPartyBlock(pdf *gofpdf.Fpdf, fontName, title string, lines []string) {
	pdf.SetFont(fontName, "B", 11)
	pdf.CellFormat(0, 6, title, "", 1, "L", false, 0, "")
	pdf.SetFont(fontName, "", 10)
	for _, line := range lines {
		pdf.MultiCell(0, 5, line, "", "L", false)
	}
}

func drawTableRow(pdf *gofpdf.Fpdf, fontName string, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 10)
	for i, col := range cols {
		align := "L"
		if i == len(cols)-1 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 8, col, "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

// Built-in core fonts are cp1252 only, so the empty placeholder stays ASCII.
func safeValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func formatAmount(value decimal.Decimal) string {
	return value.StringFixed(2)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02.01.2006")
}
