// Package admitcard renders and issues interview admit cards. A card is
// issued as a side effect of scheduling an interview and can be regenerated
// on demand.
package admitcard

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-pdf/fpdf"
)

// Card carries everything the PDF shows.
type Card struct {
	ApplicationID int64
	StudentName   string
	CourseName    string
	InterviewDate time.Time
	Venue         string
	// PhotoPath is optional; a card without a photo is still valid.
	PhotoPath *string
}

// Renderer turns a Card into PDF bytes.
type Renderer interface {
	Render(card Card) ([]byte, error)
}

// PDFRenderer renders admit cards with fpdf.
type PDFRenderer struct{}

// NewPDFRenderer constructs a card renderer.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

func (PDFRenderer) Render(card Card) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, "Interview Admit Card", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	if card.PhotoPath != nil {
		placePhoto(pdf, *card.PhotoPath)
	}

	pdf.SetFont("Helvetica", "", 12)
	rows := [][2]string{
		{"Application ID", fmt.Sprintf("%d", card.ApplicationID)},
		{"Candidate", card.StudentName},
		{"Course", card.CourseName},
		{"Interview Date", card.InterviewDate.Format("02 Jan 2006")},
		{"Reporting Time", card.InterviewDate.Format("15:04")},
		{"Venue", card.Venue},
	}
	for _, row := range rows {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(50, 8, row[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 12)
		pdf.CellFormat(0, 8, row[1], "", 1, "L", false, 0, "")
	}

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 5,
		"Carry this card and a government photo ID to the interview. "+
			"Reach the venue thirty minutes before the reporting time.",
		"", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render admit card: %w", err)
	}
	return buf.Bytes(), nil
}

// placePhoto embeds the candidate photo in the top-right corner. A missing or
// unreadable photo is skipped, not fatal.
func placePhoto(pdf *fpdf.Fpdf, path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	imgType := ""
	switch filepath.Ext(path) {
	case ".jpg", ".jpeg":
		imgType = "JPG"
	case ".png":
		imgType = "PNG"
	default:
		return
	}
	opts := fpdf.ImageOptions{ImageType: imgType, ReadDpi: true}
	pdf.ImageOptions(path, 160, 18, 35, 45, false, opts, 0, "")
}
