package xmlgen

import (
	"fmt"

	"github.com/erechnung/erechnung-backend/internal/invoice/domain"
	"github.com/erechnung/erechnung-backend/pkg/errors"
)

// NamespaceSAP identifies the SAP interface dialect
const NamespaceSAP = "urn:erechnung:sap:invoice:1.0"

// GenerateSAP renders the record as a SAP interface document. Unlike
// the XRechnung dialect, the Kreditor-ID and Buchungskreis-ID are
// mandatory here; a missing identifier aborts generation with a
// VALIDATION error naming it.
func GenerateSAP(rec *domain.InvoiceRecord) (string, error) {
	if rec.KreditorID == "" {
		return "", errors.Validation("Kreditor-ID ist erforderlich")
	}
	if rec.BuchungskreisID == "" {
		return "", errors.Validation("Buchungskreis-ID ist erforderlich")
	}
	if err := requireLineItems(rec); err != nil {
		return "", err
	}

	kreditorID, err := escapeField("kreditorId", rec.KreditorID)
	if err != nil {
		return "", err
	}
	buchungskreisID, err := escapeField("buchungskreisId", rec.BuchungskreisID)
	if err != nil {
		return "", err
	}
	reference, err := escapeField("reference", rec.Reference)
	if err != nil {
		return "", err
	}
	invoiceDate, err := escapeField("invoiceDate", rec.InvoiceDate)
	if err != nil {
		return "", err
	}
	serviceDate, err := escapeOptional("serviceDate", rec.ServiceDate)
	if err != nil {
		return "", err
	}
	leitwegID, err := escapeOptional("leitwegId", rec.LeitwegID)
	if err != nil {
		return "", err
	}

	t, err := computeTotals(rec)
	if err != nil {
		return "", err
	}

	w := newXMLWriter()
	w.open("SAPInvoice", fmt.Sprintf("xmlns=%q", NamespaceSAP))

	w.open("Header")
	w.element("KreditorID", kreditorID)
	w.element("BuchungskreisID", buchungskreisID)
	w.element("Belegnummer", reference)
	w.element("Belegdatum", invoiceDate)
	w.elementIf("Leistungsdatum", serviceDate)
	w.elementIf("LeitwegID", leitwegID)
	w.element("Waehrung", defaultCurrency)
	w.close("Header")

	if err := writeSAPParty(w, "Lieferant", "sender",
		rec.SenderName, rec.SenderStreet, rec.SenderZip, rec.SenderCity,
		rec.SenderContactEmail, rec.SenderContactPhone); err != nil {
		return "", err
	}
	if err := writeSAPParty(w, "Rechnungsempfaenger", "recipient",
		rec.RecipientName, rec.RecipientStreet, rec.RecipientZip, rec.RecipientCity,
		"", ""); err != nil {
		return "", err
	}

	if rec.IBAN != "" || rec.BIC != "" {
		iban, perr := escapeOptional("iban", rec.IBAN)
		if perr != nil {
			return "", perr
		}
		bic, perr := escapeOptional("bic", rec.BIC)
		if perr != nil {
			return "", perr
		}
		w.open("Zahlung")
		w.elementIf("IBAN", iban)
		w.elementIf("BIC", bic)
		w.close("Zahlung")
	}

	w.open("Positionen")
	for i, item := range rec.LineItems {
		description, lerr := escapeField(fmt.Sprintf("lineItems[%d].description", i), item.Description)
		if lerr != nil {
			return "", lerr
		}
		qty, price, total, lerr := lineAmounts(i, item)
		if lerr != nil {
			return "", lerr
		}

		w.open("Position")
		w.element("Nummer", fmt.Sprintf("%d", i+1))
		w.element("Bezeichnung", description)
		w.element("Menge", formatAmount(qty))
		w.element("Einzelpreis", formatAmount(price))
		w.element("Gesamtpreis", formatAmount(total))
		w.close("Position")
	}
	w.close("Positionen")

	w.open("Summen")
	w.element("Nettobetrag", formatAmount(t.Net))
	w.element("Steuerbetrag", formatAmount(t.Tax))
	w.element("Steuersatz", formatAmount(t.Rate))
	w.element("Bruttobetrag", formatAmount(t.Gross))
	w.close("Summen")

	w.close("SAPInvoice")
	return w.String(), nil
}

func writeSAPParty(w *xmlWriter, tag, prefix, name, street, zip, city, email, phone string) error {
	escName, err := escapeField(prefix+"Name", name)
	if err != nil {
		return err
	}
	escStreet, err := escapeOptional(prefix+"Street", street)
	if err != nil {
		return err
	}
	escZip, err := escapeOptional(prefix+"Zip", zip)
	if err != nil {
		return err
	}
	escCity, err := escapeOptional(prefix+"City", city)
	if err != nil {
		return err
	}
	escEmail, err := escapeOptional(prefix+"ContactEmail", email)
	if err != nil {
		return err
	}
	escPhone, err := escapeOptional(prefix+"ContactPhone", phone)
	if err != nil {
		return err
	}

	w.open(tag)
	w.element("Name", escName)
	w.elementIf("Strasse", escStreet)
	w.elementIf("Plz", escZip)
	w.elementIf("Ort", escCity)
	w.elementIf("Email", escEmail)
	w.elementIf("Telefon", escPhone)
	w.close(tag)
	return nil
}
