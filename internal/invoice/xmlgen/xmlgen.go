// Package xmlgen renders a validated invoice record into one of the
// two supported XML dialects. Every free-text value is routed through
// the security escape gate; a gate failure aborts generation with a
// VALIDATION error instead of emitting malformed markup.
package xmlgen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/erechnung/erechnung-backend/internal/invoice/domain"
	"github.com/erechnung/erechnung-backend/internal/invoice/security"
	"github.com/erechnung/erechnung-backend/pkg/errors"
)

// escapeField runs a value through the XML escape gate. The returned
// error names the offending field.
func escapeField(field, value string) (string, error) {
	res := security.ValidateAndEscapeXML(value)
	if !res.IsValid {
		return "", errors.Validation(fmt.Sprintf("Ungültiger Wert für Feld %s: %s", field, res.Error))
	}
	return res.Value, nil
}

// escapeOptional escapes a value that may be empty. Empty values pass
// through so optional elements can simply be skipped.
func escapeOptional(field, value string) (string, error) {
	if value == "" {
		return "", nil
	}
	return escapeField(field, value)
}

// parseAmount parses a form amount into a float
func parseAmount(field, value string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, errors.Validation(fmt.Sprintf("Ungültiger Betrag für Feld %s", field))
	}
	return f, nil
}

// formatAmount renders an amount with a fixed two-digit decimal point
// representation, never locale-formatted
func formatAmount(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// totals holds the monetary summary of a record. Missing totals are
// derived from the line items.
type totals struct {
	Net   float64
	Tax   float64
	Gross float64
	Rate  float64
}

func computeTotals(rec *domain.InvoiceRecord) (totals, error) {
	var t totals
	var err error

	lineSum := 0.0
	for i, item := range rec.LineItems {
		qty, perr := parseAmount(fmt.Sprintf("lineItems[%d].quantity", i), item.Quantity)
		if perr != nil {
			return t, perr
		}
		price, perr := parseAmount(fmt.Sprintf("lineItems[%d].unitPrice", i), item.UnitPrice)
		if perr != nil {
			return t, perr
		}
		lineSum += qty * price
	}

	if rec.TaxRate != "" {
		if t.Rate, err = parseAmount("taxRate", rec.TaxRate); err != nil {
			return t, err
		}
	}

	if rec.TotalNetAmount != "" {
		if t.Net, err = parseAmount("totalNetAmount", rec.TotalNetAmount); err != nil {
			return t, err
		}
	} else {
		t.Net = lineSum
	}

	if rec.TotalTaxAmount != "" {
		if t.Tax, err = parseAmount("totalTaxAmount", rec.TotalTaxAmount); err != nil {
			return t, err
		}
	} else {
		t.Tax = t.Net * t.Rate / 100
	}

	if rec.GrossAmount != "" {
		if t.Gross, err = parseAmount("grossAmount", rec.GrossAmount); err != nil {
			return t, err
		}
	} else {
		t.Gross = t.Net + t.Tax
	}

	return t, nil
}

// lineAmounts parses one line item and returns quantity, unit price
// and the extension amount
func lineAmounts(i int, item domain.LineItem) (qty, price, total float64, err error) {
	qty, err = parseAmount(fmt.Sprintf("lineItems[%d].quantity", i), item.Quantity)
	if err != nil {
		return
	}
	price, err = parseAmount(fmt.Sprintf("lineItems[%d].unitPrice", i), item.UnitPrice)
	if err != nil {
		return
	}
	total = qty * price
	return
}

// requireLineItems guards both generators: an invoice without at least
// one position cannot be rendered
func requireLineItems(rec *domain.InvoiceRecord) error {
	if len(rec.LineItems) == 0 {
		return errors.Validation("Mindestens eine Rechnungsposition ist erforderlich")
	}
	return nil
}

// xmlWriter accumulates indented XML
type xmlWriter struct {
	b      strings.Builder
	indent int
}

func newXMLWriter() *xmlWriter {
	w := &xmlWriter{}
	w.b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	return w
}

func (w *xmlWriter) writeIndent() {
	for i := 0; i < w.indent; i++ {
		w.b.WriteString("  ")
	}
}

// open writes an opening tag and increases the indent. attrs must
// already be escaped.
func (w *xmlWriter) open(tag string, attrs ...string) {
	w.writeIndent()
	w.b.WriteString("<" + tag)
	for _, a := range attrs {
		w.b.WriteString(" " + a)
	}
	w.b.WriteString(">\n")
	w.indent++
}

func (w *xmlWriter) close(tag string) {
	w.indent--
	w.writeIndent()
	w.b.WriteString("</" + tag + ">\n")
}

// element writes a leaf element. value must already have passed the
// escape gate.
func (w *xmlWriter) element(tag, value string, attrs ...string) {
	w.writeIndent()
	w.b.WriteString("<" + tag)
	for _, a := range attrs {
		w.b.WriteString(" " + a)
	}
	w.b.WriteString(">" + value + "</" + tag + ">\n")
}

// elementIf writes a leaf element only when value is non-empty
func (w *xmlWriter) elementIf(tag, value string, attrs ...string) {
	if value == "" {
		return
	}
	w.element(tag, value, attrs...)
}

func (w *xmlWriter) String() string {
	return w.b.String()
}
