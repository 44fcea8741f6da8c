// Package render draws the profile document.
package render

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
)

// Profile is the renderer input. DateOfBirthday is YYYY-MM-DD.
type Profile struct {
	Name           string
	Surname        string
	Email          string
	DateOfBirthday string
}

// PDFRenderer renders profiles as single-page A4 documents.
// The document timestamps come from now so equal inputs give equal bytes.
type PDFRenderer struct {
	now func() time.Time
}

func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{now: func() time.Time { return time.Unix(0, 0).UTC() }}
}

func (r *PDFRenderer) Render(p Profile) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(r.now())
	pdf.SetModificationDate(r.now())
	pdf.SetCatalogSort(true)
	pdf.SetTitle("User Profile", true)

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 12, "User Profile")
	pdf.Ln(16)

	pdf.SetFont("Helvetica", "", 12)
	for _, line := range []string{
		fmt.Sprintf("Name: %s %s", p.Name, p.Surname),
		fmt.Sprintf("Email: %s", p.Email),
		fmt.Sprintf("Date of birth: %s", p.DateOfBirthday),
	} {
		pdf.Cell(0, 8, tr(line))
		pdf.Ln(10)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
