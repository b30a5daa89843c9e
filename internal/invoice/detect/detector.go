// Package detect inspects uploaded invoice files that already passed
// the security file check, decides which dialect they carry, and
// extracts a best-effort subset of fields for pre-populating the form.
package detect

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	"github.com/erechnung/erechnung-backend/internal/invoice/domain"
	"github.com/erechnung/erechnung-backend/internal/invoice/security"
	"github.com/erechnung/erechnung-backend/internal/invoice/xmlgen"
	"github.com/erechnung/erechnung-backend/pkg/i18n"
)

// Detector inspects inbound files
type Detector struct{}

// New creates a new detector
func New() *Detector {
	return &Detector{}
}

// Inspect decides the dialect of an uploaded file from its declared
// metadata and content. Unparseable or unrecognized content yields an
// unrecognized result with a user-facing message, never a low-level
// parse error.
func (d *Detector) Inspect(meta *security.FileMeta, data []byte) *domain.InspectionResult {
	if security.IsXMLUpload(meta) {
		return d.inspectXML(data)
	}
	if security.IsPDFUpload(meta) {
		return d.inspectPDF(data)
	}
	return unrecognized()
}

func unrecognized() *domain.InspectionResult {
	return &domain.InspectionResult{
		Dialect:    domain.DialectUnknown,
		Recognized: false,
		Message:    i18n.T("errors.unsupported_file"),
	}
}

// inspectXML scans the document tokens. The root element and its
// namespace decide the dialect; field extraction walks the remaining
// tokens by element name.
func (d *Detector) inspectXML(data []byte) *domain.InspectionResult {
	decoder := xml.NewDecoder(bytes.NewReader(data))

	root, err := firstStartElement(decoder)
	if err != nil || root == nil {
		return unrecognized()
	}

	switch {
	case root.Name.Local == "Invoice" && isUBLNamespace(root.Name.Space):
		fields := extractFields(decoder, ublFieldNames)
		return &domain.InspectionResult{
			Dialect:    domain.DialectXRechnung,
			Recognized: true,
			Message:    i18n.T("inspect.xml_recognized"),
			Fields:     fields,
		}
	case root.Name.Local == "SAPInvoice":
		fields := extractFields(decoder, sapFieldNames)
		return &domain.InspectionResult{
			Dialect:    domain.DialectSAP,
			Recognized: true,
			Message:    i18n.T("inspect.xml_recognized"),
			Fields:     fields,
		}
	default:
		return unrecognized()
	}
}

func firstStartElement(decoder *xml.Decoder) (*xml.StartElement, error) {
	for {
		tok, err := decoder.Token()
		if err != nil {
			return nil, err
		}
		if se, ok := tok.(xml.StartElement); ok {
			return &se, nil
		}
	}
}

func isUBLNamespace(space string) bool {
	return space == xmlgen.NamespaceUBLInvoice ||
		strings.Contains(space, "ubl:schema:xsd:Invoice")
}

// fieldNames maps element local names to extracted field keys. Only
// the first occurrence of each element is used, so line-level IDs do
// not overwrite the document ID.
type fieldNames map[string]string

var ublFieldNames = fieldNames{
	"ID":            "reference",
	"IssueDate":     "invoiceDate",
	"Name":          "senderName",
	"PayableAmount": "grossAmount",
}

var sapFieldNames = fieldNames{
	"Belegnummer":     "reference",
	"Belegdatum":      "invoiceDate",
	"Name":            "senderName",
	"Bruttobetrag":    "grossAmount",
	"KreditorID":      "kreditorId",
	"BuchungskreisID": "buchungskreisId",
}

func extractFields(decoder *xml.Decoder, names fieldNames) domain.ExtractedFields {
	values := make(map[string]string)
	var current string

	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if key, ok := names[t.Name.Local]; ok {
				if _, seen := values[key]; !seen {
					current = key
					continue
				}
			}
			current = ""
		case xml.CharData:
			if current != "" {
				text := strings.TrimSpace(string(t))
				if text != "" {
					values[current] = text
				}
			}
		case xml.EndElement:
			current = ""
		}
	}

	return domain.ExtractedFields{
		Reference:       values["reference"],
		InvoiceDate:     values["invoiceDate"],
		SenderName:      values["senderName"],
		GrossAmount:     values["grossAmount"],
		KreditorID:      values["kreditorId"],
		BuchungskreisID: values["buchungskreisId"],
	}
}

// readAll is a small indirection so the PDF path can cap how much text
// it pulls out of a document
func readAll(r io.Reader, limit int64) (string, error) {
	var buf bytes.Buffer
	_, err := io.Copy(&buf, io.LimitReader(r, limit))
	return buf.String(), err
}
