package payment

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

// PDFReceiptRenderer renders fee receipts with fpdf.
type PDFReceiptRenderer struct{}

// NewPDFReceiptRenderer constructs a receipt renderer.
func NewPDFReceiptRenderer() *PDFReceiptRenderer {
	return &PDFReceiptRenderer{}
}

func (PDFReceiptRenderer) RenderReceipt(r Receipt) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, "Application Fee Receipt", "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "", 12)
	rows := [][2]string{
		{"Receipt No", r.ReceiptNo},
		{"Student", r.StudentName},
		{"Application ID", fmt.Sprintf("%d", r.ApplicationID)},
		{"Course ID", fmt.Sprintf("%d", r.CourseID)},
		{"Amount", fmt.Sprintf("%s %s", r.Amount.StringFixed(2), r.Currency)},
		{"Paid At", r.PaidAt.Format("02 Jan 2006 15:04")},
	}
	for _, row := range rows {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(50, 8, row[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 12)
		pdf.CellFormat(0, 8, row[1], "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render receipt: %w", err)
	}
	return buf.Bytes(), nil
}
