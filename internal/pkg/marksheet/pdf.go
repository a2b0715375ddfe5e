// Package marksheet renders transcript values into marksheet documents. The
// composer consumes the Transcript shape only; it never reaches back into
// the store.
package marksheet

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/sahasp/interntrack/internal/app/models"
)

const footerNote = "This is an official document of the university. Any alterations will render it invalid."

// PDFComposer renders transcripts as A4 PDF marksheets.
type PDFComposer struct {
	now func() time.Time
}

// NewPDFComposer creates a new PDFComposer
func NewPDFComposer() *PDFComposer {
	return &PDFComposer{now: time.Now}
}

// Render produces the marksheet PDF for a transcript.
func (c *PDFComposer) Render(t *models.Transcript) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 25)
	pdf.AliasNbPages("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "", 8)
		pdf.CellFormat(0, 5, footerNote, "", 1, "C", false, 0, "")
		pdf.CellFormat(0, 5, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "R", false, 0, "")
	})

	pdf.AddPage()

	// Title
	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 12, "INTERNSHIP MARKSHEET", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// Student information
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, fmt.Sprintf("Student Name: %s", t.Student.Name), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, fmt.Sprintf("Student ID: %d", t.Student.ID), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, fmt.Sprintf("Email: %s", t.Student.Email), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, fmt.Sprintf("Date Generated: %s", c.now().Format("2006-01-02")), "", 1, "L", false, 0, "")
	pdf.Ln(6)

	c.renderTable(pdf, t)

	// Total credits
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 8, fmt.Sprintf("Total Credits: %d", t.TotalCredits), "", 1, "L", false, 0, "")

	// Signature fields
	pdf.Ln(10)
	pdf.CellFormat(0, 8, "Signatures:", "", 1, "L", false, 0, "")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(95, 7, "_______________________", "", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, "_______________________", "", 1, "L", false, 0, "")
	pdf.CellFormat(95, 7, "Department Head", "", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, "Academic Registrar", "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render marksheet PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func (c *PDFComposer) renderTable(pdf *gofpdf.Fpdf, t *models.Transcript) {
	headers := []string{"Company", "Role", "Duration", "Period", "Credits", "Approved By"}
	widths := []float64{35, 30, 20, 40, 15, 50}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(66, 66, 66)
	pdf.SetTextColor(255, 255, 255)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(0, 0, 0)
	for i, line := range t.LineItems {
		fill := i%2 == 1
		pdf.SetFillColor(240, 240, 240)
		cells := []string{
			line.CompanyName,
			line.RoleTitle,
			fmt.Sprintf("%d weeks", line.DurationWeeks),
			fmt.Sprintf("%s to %s", line.StartDate, line.EndDate),
			fmt.Sprintf("%d", line.Credits),
			fmt.Sprintf("%s, %s", line.TeacherName, line.AdminName),
		}
		for j, cell := range cells {
			pdf.CellFormat(widths[j], 7, cell, "1", 0, "L", fill, 0, "")
		}
		pdf.Ln(-1)
	}
}
