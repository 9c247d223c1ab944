package invoice

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// Page geometry, A4 portrait in millimeters.
const (
	pageMargin   = 15.0
	contentWidth = 210 - 2*pageMargin

	colDescription = 90.0
	colQuantity    = 20.0
	colUnitPrice   = 35.0
	colTotal       = 35.0
)

// Render produces the invoice PDF. The same Data always renders the same
// document; the creation date is pinned to the invoice date so the byte
// stream is reproducible.
func Render(d Data) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(d.Date)
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, 25)
	pdf.AddPage()

	renderHeader(pdf, d)
	renderBillTo(pdf, d)
	renderItemTable(pdf, d)
	renderTotals(pdf, d)
	renderFooter(pdf, d)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render invoice %s: %w", d.InvoiceNumber, err)
	}
	return buf.Bytes(), nil
}

func renderHeader(pdf *gofpdf.Fpdf, d Data) {
	top := pdf.GetY()

	// Issuer block, left.
	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetTextColor(33, 37, 41)
	pdf.CellFormat(110, 9, d.Company.Name, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(108, 117, 125)
	if d.Company.Address != "" {
		pdf.CellFormat(110, 4.5, d.Company.Address, "", 1, "L", false, 0, "")
	}
	contact := d.Company.Email
	if d.Company.Phone != "" {
		if contact != "" {
			contact += "  |  "
		}
		contact += d.Company.Phone
	}
	if contact != "" {
		pdf.CellFormat(110, 4.5, contact, "", 1, "L", false, 0, "")
	}
	if d.Company.GSTNumber != "" {
		pdf.CellFormat(110, 4.5, "GSTIN: "+d.Company.GSTNumber, "", 1, "L", false, 0, "")
	}
	leftBottom := pdf.GetY()

	// Invoice identity block, right.
	pdf.SetY(top)
	pdf.SetX(pageMargin + 110)
	pdf.SetFont("Helvetica", "B", 20)
	pdf.SetTextColor(73, 80, 87)
	pdf.CellFormat(70, 9, "INVOICE", "", 1, "R", false, 0, "")

	pdf.SetX(pageMargin + 110)
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(33, 37, 41)
	pdf.CellFormat(70, 5.5, d.InvoiceNumber, "", 1, "R", false, 0, "")

	pdf.SetX(pageMargin + 110)
	pdf.SetTextColor(108, 117, 125)
	pdf.CellFormat(70, 5.5, "Date: "+d.Date.Format("02 Jan 2006"), "", 1, "R", false, 0, "")

	if d.IsPaid {
		pdf.SetX(pageMargin + 110 + 45)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetFillColor(40, 167, 69)
		pdf.SetTextColor(255, 255, 255)
		pdf.CellFormat(25, 7, "PAID", "", 1, "C", true, 0, "")
	}

	rightBottom := pdf.GetY()
	if leftBottom > rightBottom {
		pdf.SetY(leftBottom)
	}
	pdf.Ln(4)

	pdf.SetDrawColor(222, 226, 230)
	pdf.Line(pageMargin, pdf.GetY(), pageMargin+contentWidth, pdf.GetY())
	pdf.Ln(6)
}

func renderBillTo(pdf *gofpdf.Fpdf, d Data) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetTextColor(108, 117, 125)
	pdf.CellFormat(contentWidth, 5, "BILL TO", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetTextColor(33, 37, 41)
	pdf.CellFormat(contentWidth, 6, d.CustomerName, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(73, 80, 87)
	if d.CustomerEmail != "" {
		pdf.CellFormat(contentWidth, 4.5, d.CustomerEmail, "", 1, "L", false, 0, "")
	}
	if d.CustomerPhone != "" {
		pdf.CellFormat(contentWidth, 4.5, d.CustomerPhone, "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)
}

func renderItemTable(pdf *gofpdf.Fpdf, d Data) {
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(241, 243, 245)
	pdf.SetTextColor(73, 80, 87)
	pdf.SetDrawColor(222, 226, 230)
	pdf.CellFormat(colDescription, 8, "  Description", "B", 0, "L", true, 0, "")
	pdf.CellFormat(colQuantity, 8, "Qty", "B", 0, "C", true, 0, "")
	pdf.CellFormat(colUnitPrice, 8, "Unit Price", "B", 0, "R", true, 0, "")
	pdf.CellFormat(colTotal, 8, "Amount  ", "B", 1, "R", true, 0, "")

	for _, item := range d.Items {
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(33, 37, 41)
		pdf.CellFormat(colDescription, 7, "  "+item.Description, "", 0, "L", false, 0, "")
		pdf.CellFormat(colQuantity, 7, fmt.Sprintf("%d", item.Quantity), "", 0, "C", false, 0, "")
		pdf.CellFormat(colUnitPrice, 7, FormatINR(item.UnitPrice), "", 0, "R", false, 0, "")
		pdf.CellFormat(colTotal, 7, FormatINR(item.Total)+"  ", "", 1, "R", false, 0, "")

		if item.Details != "" {
			pdf.SetFont("Helvetica", "", 8)
			pdf.SetTextColor(108, 117, 125)
			pdf.CellFormat(colDescription, 4.5, "  "+item.Details, "", 1, "L", false, 0, "")
		}
		pdf.SetDrawColor(233, 236, 239)
		pdf.Line(pageMargin, pdf.GetY()+1, pageMargin+contentWidth, pdf.GetY()+1)
		pdf.Ln(2.5)
	}
	pdf.Ln(3)
}

func renderTotals(pdf *gofpdf.Fpdf, d Data) {
	labelW := contentWidth - 45 - 40
	totalsRow := func(label, value string, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 10)
		pdf.SetX(pageMargin + labelW)
		pdf.SetTextColor(73, 80, 87)
		pdf.CellFormat(45, 6.5, label, "", 0, "R", false, 0, "")
		pdf.SetTextColor(33, 37, 41)
		pdf.CellFormat(40, 6.5, value+"  ", "", 1, "R", false, 0, "")
	}

	totalsRow("Subtotal", FormatINR(d.Subtotal), false)
	if d.DiscountAmount > 0 {
		totalsRow("Discount", "- "+FormatINR(d.DiscountAmount), false)
	}
	if d.GSTEnabled && d.TaxAmount > 0 {
		totalsRow(fmt.Sprintf("GST (%s%%)", trimRate(d.TaxRate)), FormatINR(d.TaxAmount), false)
	}

	pdf.SetDrawColor(73, 80, 87)
	pdf.Line(pageMargin+labelW, pdf.GetY()+1, pageMargin+contentWidth, pdf.GetY()+1)
	pdf.Ln(2)
	totalsRow("Total", FormatINR(d.Total), true)

	if d.GSTEnabled {
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(108, 117, 125)
		pdf.CellFormat(contentWidth, 4.5, "* All prices are inclusive of GST.", "", 1, "R", false, 0, "")
	}

	if d.TransactionID != "" {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(73, 80, 87)
		pdf.CellFormat(contentWidth, 5, "Transaction ID: "+d.TransactionID, "", 1, "L", false, 0, "")
		if d.PaymentMethod != "" {
			pdf.CellFormat(contentWidth, 5, "Payment Method: "+d.PaymentMethod, "", 1, "L", false, 0, "")
		}
	}
}

func renderFooter(pdf *gofpdf.Fpdf, d Data) {
	pdf.SetY(-35)
	pdf.SetDrawColor(222, 226, 230)
	pdf.Line(pageMargin, pdf.GetY(), pageMargin+contentWidth, pdf.GetY())
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(108, 117, 125)
	pdf.CellFormat(contentWidth, 5, "Thank you for your business!", "", 1, "C", false, 0, "")
	if d.Company.Email != "" {
		pdf.CellFormat(contentWidth, 5, "Questions? Reach us at "+d.Company.Email, "", 1, "C", false, 0, "")
	}
}

// trimRate prints 18 instead of 18.00 but keeps fractional rates intact.
func trimRate(rate float64) string {
	if rate == float64(int64(rate)) {
		return fmt.Sprintf("%d", int64(rate))
	}
	return fmt.Sprintf("%g", rate)
}
