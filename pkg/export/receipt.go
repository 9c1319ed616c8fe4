package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// ReceiptLine is a single purchased item on the receipt.
type ReceiptLine struct {
	Title string
	Price float64
}

// Receipt carries the data rendered onto a purchase receipt.
type Receipt struct {
	OrderID      string
	UserEmail    string
	CategoryName string
	PurchaseKind string
	Lines        []ReceiptLine
	Total        float64
	Currency     string
	PaidAt       time.Time
}

// ReceiptExporter renders completed purchase orders as PDF receipts.
type ReceiptExporter struct{}

// NewReceiptExporter constructs a receipt exporter.
func NewReceiptExporter() *ReceiptExporter {
	return &ReceiptExporter{}
}

// Render creates a PDF receipt document.
func (e *ReceiptExporter) Render(r Receipt) ([]byte, error) {
	if r.OrderID == "" {
		return nil, fmt.Errorf("receipt requires an order id")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 20, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, "PAYMENT RECEIPT", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Order: %s", r.OrderID), "", 1, "", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Billed to: %s", r.UserEmail), "", 1, "", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Category: %s (%s)", r.CategoryName, r.PurchaseKind), "", 1, "", false, 0, "")
	if !r.PaidAt.IsZero() {
		pdf.CellFormat(0, 6, fmt.Sprintf("Paid at: %s", r.PaidAt.Format(time.RFC1123)), "", 1, "", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(140, 8, "Item", "1", 0, "", false, 0, "")
	pdf.CellFormat(40, 8, "Price", "1", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 9)
	for _, line := range r.Lines {
		pdf.CellFormat(140, 7, line.Title, "1", 0, "", false, 0, "")
		pdf.CellFormat(40, 7, fmt.Sprintf("%.2f %s", line.Price, r.Currency), "1", 1, "R", false, 0, "")
	}

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(140, 8, "Total", "1", 0, "", false, 0, "")
	pdf.CellFormat(40, 8, fmt.Sprintf("%.2f %s", r.Total, r.Currency), "1", 1, "R", false, 0, "")

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render receipt: %w", err)
	}
	return buf.Bytes(), nil
}
