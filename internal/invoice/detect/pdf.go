package detect

import (
	"bytes"
	"regexp"

	"github.com/erechnung/erechnung-backend/internal/invoice/domain"
	"github.com/erechnung/erechnung-backend/pkg/i18n"
	"github.com/ledongthuc/pdf"
)

// maxPDFText caps how much extracted text is scanned for fields
const maxPDFText = 1 << 20

var (
	referenceLabelPattern = regexp.MustCompile(`(?i)(?:Rechnungsnummer|Rechnungs-Nr\.?|Invoice\s*No\.?)\s*[:\s]\s*([A-Za-z0-9][A-Za-z0-9\-/]*)`)
	referencePattern      = regexp.MustCompile(`\bRE-\d{4}-[A-Za-z0-9\-]+\b`)
	isoDatePattern        = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)
)

// inspectPDF extracts the text layer of a PDF and scans it for a
// reference and an issue date. A PDF whose text cannot be extracted is
// reported as unrecognized.
func (d *Detector) inspectPDF(data []byte) *domain.InspectionResult {
	text, ok := extractPDFText(data)
	if !ok {
		return unrecognized()
	}

	fields := domain.ExtractedFields{}

	if m := referenceLabelPattern.FindStringSubmatch(text); len(m) == 2 {
		fields.Reference = m[1]
	} else if m := referencePattern.FindString(text); m != "" {
		fields.Reference = m
	}

	if m := isoDatePattern.FindString(text); m != "" {
		fields.InvoiceDate = m
	}

	return &domain.InspectionResult{
		Dialect:    domain.DialectPDF,
		Recognized: true,
		Message:    i18n.T("inspect.pdf_recognized"),
		Fields:     fields,
	}
}

func extractPDFText(data []byte) (string, bool) {
	// The pdf reader panics on some malformed inputs; treat any panic
	// as an unrecognized file.
	defer func() {
		recover()
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", false
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", false
	}

	text, err := readAll(plain, maxPDFText)
	if err != nil {
		return "", false
	}

	return text, text != ""
}
