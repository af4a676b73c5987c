package pdf

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"genpay/internal/models"
)

// ReceiptGenerator renders a payment receipt as an A6 PDF suitable for the
// small thermal printers the operators use. One generator is shared by all
// requests, so it holds no mutable state after construction.
type ReceiptGenerator struct {
	fontPath string // optional TTF with full Unicode coverage
	fontName string
}

func NewReceiptGenerator(fontPath string) *ReceiptGenerator {
	g := &ReceiptGenerator{fontPath: fontPath, fontName: "Helvetica"}
	if fontPath != "" {
		g.fontName = "receipt"
	}
	return g
}

// addFont registers the configured font on one Fpdf document.
func (g *ReceiptGenerator) addFont(pdf *gofpdf.Fpdf) {
	if g.fontPath == "" {
		return
	}
	pdf.AddUTF8Font(g.fontName, "", g.fontPath)
	pdf.AddUTF8Font(g.fontName, "B", g.fontPath)
}

func (g *ReceiptGenerator) hr(pdf *gofpdf.Fpdf) {
	x, y := pdf.GetXY()
	pageW, _ := pdf.GetPageSize()
	l, _, r, _ := pdf.GetMargins()
	pdf.Line(l, y, pageW-r, y)
	pdf.SetXY(x, y+2)
}

func (g *ReceiptGenerator) row(pdf *gofpdf.Fpdf, label, value string) {
	pdf.SetFont(g.fontName, "", 9)
	pdf.CellFormat(45, 5, label, "", 0, "L", false, 0, "")
	pdf.SetFont(g.fontName, "B", 9)
	pdf.CellFormat(0, 5, value, "", 1, "R", false, 0, "")
}

// Generate renders the receipt. header and currency come from the instance
// settings and may be empty.
func (g *ReceiptGenerator) Generate(r *models.Receipt, header, currency string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A6", "")
	pdf.SetTitle(fmt.Sprintf("Receipt #%s", r.PaymentID), true)
	pdf.SetMargins(8, 8, 8)
	pdf.SetAutoPageBreak(true, 8)

	g.addFont(pdf)
	pdf.AddPage()

	if header != "" {
		pdf.SetFont(g.fontName, "B", 12)
		pdf.CellFormat(0, 7, header, "", 1, "C", false, 0, "")
	}
	pdf.SetFont(g.fontName, "", 10)
	pdf.CellFormat(0, 5, fmt.Sprintf("Receipt #%s  %s", r.PaymentID, r.Date), "", 1, "C", false, 0, "")
	g.hr(pdf)

	money := func(v decimal.Decimal) string {
		if currency == "" {
			return v.StringFixed(2)
		}
		return v.StringFixed(2) + " " + currency
	}

	pdf.SetFont(g.fontName, "B", 10)
	pdf.CellFormat(0, 6, r.ClientName, "", 1, "L", false, 0, "")
	if r.CustID != "" {
		pdf.SetFont(g.fontName, "", 8)
		pdf.CellFormat(0, 4, fmt.Sprintf("Customer ID: %s", r.CustID), "", 1, "L", false, 0, "")
	}
	g.hr(pdf)

	g.row(pdf, "Previous counter", fmt.Sprintf("%d", r.PrevCounter))
	g.row(pdf, "Current counter", fmt.Sprintf("%d", r.CurrentCounter))
	g.row(pdf, "Usage (kWh)", fmt.Sprintf("%d", r.TotalUsage))
	g.row(pdf, "Price per kWh", money(r.KilowattPrice))
	g.row(pdf, "Usage amount", money(r.AmountUsage))
	g.row(pdf, "Monthly fee", money(r.MonthlyFee))
	g.row(pdf, "Amount due", money(r.AmountDue))
	g.hr(pdf)

	g.row(pdf, "Due before payment", money(r.TotalDueBefore))
	g.row(pdf, "Paid", money(r.PaymentAmount))
	g.row(pdf, "New balance", money(r.NewBalance))

	if r.IsFirstPayment {
		pdf.Ln(2)
		pdf.SetFont(g.fontName, "", 8)
		pdf.CellFormat(0, 4, "First recorded payment for this client.", "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render receipt pdf: %w", err)
	}
	return buf.Bytes(), nil
}
