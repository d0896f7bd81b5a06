package rendering

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-pdf/fpdf"
)

// MaxUploadBytes is the largest file the portal accepts
const MaxUploadBytes = 2 << 20

// Page layout in points
const (
	pageMargin = 50.0
	fontSize   = 12.0
	lineHeight = 16.0
)

// CoverLetterText wraps a generated body in the fixed salutation and closing
func CoverLetterText(body string) string {
	return "Dear Sir or Madam,\n\n" + strings.TrimSpace(body) + "\n\nThank you for your consideration."
}

// CoverLetterPath returns "<dir>/<title> - <company> Cover Letter.pdf".
// Path separators in title or company become "-".
func CoverLetterPath(dir, title, company string) string {
	clean := strings.NewReplacer("/", "-", `\`, "-")
	name := fmt.Sprintf("%s - %s Cover Letter.pdf", clean.Replace(strings.TrimSpace(title)), clean.Replace(strings.TrimSpace(company)))
	return filepath.Join(dir, name)
}

// RenderCoverLetter lays text out on A4 pages in 12pt Helvetica
func RenderCoverLetter(text string) ([]byte, error) {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.SetTitle("Cover Letter", true)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", fontSize)

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.MultiCell(0, lineHeight, tr(text), "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, &RenderError{Message: "failed to write PDF", Cause: err}
	}
	return buf.Bytes(), nil
}

// WriteCoverLetter renders body as a cover letter under dir and returns the file path.
// Nothing is written when the PDF exceeds MaxUploadBytes.
func WriteCoverLetter(dir, title, company, body string) (string, error) {
	data, err := RenderCoverLetter(CoverLetterText(body))
	if err != nil {
		return "", err
	}
	if len(data) > MaxUploadBytes {
		return "", &SizeError{Size: len(data), Limit: MaxUploadBytes}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &RenderError{Message: "failed to create cover letter directory", Cause: err}
	}
	path := CoverLetterPath(dir, title, company)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", &RenderError{Message: "failed to write cover letter", Cause: err}
	}
	return path, nil
}
