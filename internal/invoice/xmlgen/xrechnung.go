package xmlgen

import (
	"fmt"

	"github.com/erechnung/erechnung-backend/internal/invoice/domain"
)

// UBL namespaces and XRechnung identifiers
const (
	NamespaceUBLInvoice = "urn:oasis:names:specification:ubl:schema:xsd:Invoice-2"
	NamespaceUBLCac     = "urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2"
	NamespaceUBLCbc     = "urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2"

	xrechnungCustomizationID = "urn:cen.eu:en16931:2017#compliant#urn:xeinkauf.de:kosit:xrechnung_3.0"
	ublProfileID             = "urn:fdc:peppol.eu:2017:poacc:billing:01:1.0"

	invoiceTypeCode  = "380" // commercial invoice
	paymentMeansSEPA = "58"  // SEPA credit transfer
	defaultCurrency  = "EUR"
	defaultUnitCode  = "C62" // unit (piece)
)

// GenerateXRechnung renders the record as an XRechnung (UBL 2.1)
// document. The record is expected to have passed ValidateRecord; all
// free-text values are additionally routed through the XML escape
// gate and any gate failure aborts generation.
func GenerateXRechnung(rec *domain.InvoiceRecord) (string, error) {
	if err := requireLineItems(rec); err != nil {
		return "", err
	}

	id, err := escapeField("reference", rec.Reference)
	if err != nil {
		return "", err
	}
	issueDate, err := escapeField("invoiceDate", rec.InvoiceDate)
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
	w.open("ubl:Invoice",
		fmt.Sprintf("xmlns:ubl=%q", NamespaceUBLInvoice),
		fmt.Sprintf("xmlns:cac=%q", NamespaceUBLCac),
		fmt.Sprintf("xmlns:cbc=%q", NamespaceUBLCbc),
	)

	w.element("cbc:CustomizationID", xrechnungCustomizationID)
	w.element("cbc:ProfileID", ublProfileID)
	w.element("cbc:ID", id)
	w.element("cbc:IssueDate", issueDate)
	w.element("cbc:InvoiceTypeCode", invoiceTypeCode)
	w.element("cbc:DocumentCurrencyCode", defaultCurrency)
	w.elementIf("cbc:BuyerReference", leitwegID)

	if rec.ServiceDate != "" {
		serviceDate, serr := escapeField("serviceDate", rec.ServiceDate)
		if serr != nil {
			return "", serr
		}
		w.open("cac:InvoicePeriod")
		w.element("cbc:StartDate", serviceDate)
		w.element("cbc:EndDate", serviceDate)
		w.close("cac:InvoicePeriod")
	}

	if err := writeUBLParty(w, "cac:AccountingSupplierParty", partyFields{
		prefix: "sender",
		name:   rec.SenderName,
		street: rec.SenderStreet,
		zip:    rec.SenderZip,
		city:   rec.SenderCity,
		email:  rec.SenderContactEmail,
		phone:  rec.SenderContactPhone,
	}); err != nil {
		return "", err
	}

	if err := writeUBLParty(w, "cac:AccountingCustomerParty", partyFields{
		prefix: "recipient",
		name:   rec.RecipientName,
		street: rec.RecipientStreet,
		zip:    rec.RecipientZip,
		city:   rec.RecipientCity,
	}); err != nil {
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

		w.open("cac:PaymentMeans")
		w.element("cbc:PaymentMeansCode", paymentMeansSEPA)
		w.open("cac:PayeeFinancialAccount")
		w.elementIf("cbc:ID", iban)
		if bic != "" {
			w.open("cac:FinancialInstitutionBranch")
			w.element("cbc:ID", bic)
			w.close("cac:FinancialInstitutionBranch")
		}
		w.close("cac:PayeeFinancialAccount")
		w.close("cac:PaymentMeans")
	}

	currencyAttr := fmt.Sprintf("currencyID=%q", defaultCurrency)

	w.open("cac:TaxTotal")
	w.element("cbc:TaxAmount", formatAmount(t.Tax), currencyAttr)
	w.open("cac:TaxSubtotal")
	w.element("cbc:TaxableAmount", formatAmount(t.Net), currencyAttr)
	w.element("cbc:TaxAmount", formatAmount(t.Tax), currencyAttr)
	w.open("cac:TaxCategory")
	w.element("cbc:ID", "S")
	w.element("cbc:Percent", formatAmount(t.Rate))
	w.open("cac:TaxScheme")
	w.element("cbc:ID", "VAT")
	w.close("cac:TaxScheme")
	w.close("cac:TaxCategory")
	w.close("cac:TaxSubtotal")
	w.close("cac:TaxTotal")

	w.open("cac:LegalMonetaryTotal")
	w.element("cbc:LineExtensionAmount", formatAmount(t.Net), currencyAttr)
	w.element("cbc:TaxExclusiveAmount", formatAmount(t.Net), currencyAttr)
	w.element("cbc:TaxInclusiveAmount", formatAmount(t.Gross), currencyAttr)
	w.element("cbc:PayableAmount", formatAmount(t.Gross), currencyAttr)
	w.close("cac:LegalMonetaryTotal")

	for i, item := range rec.LineItems {
		description, lerr := escapeField(fmt.Sprintf("lineItems[%d].description", i), item.Description)
		if lerr != nil {
			return "", lerr
		}
		qty, price, total, lerr := lineAmounts(i, item)
		if lerr != nil {
			return "", lerr
		}

		unitCode := defaultUnitCode
		if item.Unit != "" {
			if unitCode, lerr = escapeField(fmt.Sprintf("lineItems[%d].unit", i), item.Unit); lerr != nil {
				return "", lerr
			}
		}

		w.open("cac:InvoiceLine")
		w.element("cbc:ID", fmt.Sprintf("%d", i+1))
		w.element("cbc:InvoicedQuantity", formatAmount(qty), fmt.Sprintf("unitCode=%q", unitCode))
		w.element("cbc:LineExtensionAmount", formatAmount(total), currencyAttr)
		w.open("cac:Item")
		w.element("cbc:Name", description)
		w.close("cac:Item")
		w.open("cac:Price")
		w.element("cbc:PriceAmount", formatAmount(price), currencyAttr)
		w.close("cac:Price")
		w.close("cac:InvoiceLine")
	}

	w.close("ubl:Invoice")
	return w.String(), nil
}

type partyFields struct {
	prefix string
	name   string
	street string
	zip    string
	city   string
	email  string
	phone  string
}

func writeUBLParty(w *xmlWriter, tag string, p partyFields) error {
	name, err := escapeField(p.prefix+"Name", p.name)
	if err != nil {
		return err
	}
	street, err := escapeOptional(p.prefix+"Street", p.street)
	if err != nil {
		return err
	}
	zip, err := escapeOptional(p.prefix+"Zip", p.zip)
	if err != nil {
		return err
	}
	city, err := escapeOptional(p.prefix+"City", p.city)
	if err != nil {
		return err
	}
	email, err := escapeOptional(p.prefix+"ContactEmail", p.email)
	if err != nil {
		return err
	}
	phone, err := escapeOptional(p.prefix+"ContactPhone", p.phone)
	if err != nil {
		return err
	}

	w.open(tag)
	w.open("cac:Party")
	w.open("cac:PartyName")
	w.element("cbc:Name", name)
	w.close("cac:PartyName")

	if street != "" || zip != "" || city != "" {
		w.open("cac:PostalAddress")
		w.elementIf("cbc:StreetName", street)
		w.elementIf("cbc:CityName", city)
		w.elementIf("cbc:PostalZone", zip)
		w.open("cac:Country")
		w.element("cbc:IdentificationCode", "DE")
		w.close("cac:Country")
		w.close("cac:PostalAddress")
	}

	if email != "" || phone != "" {
		w.open("cac:Contact")
		w.elementIf("cbc:Telephone", phone)
		w.elementIf("cbc:ElectronicMail", email)
		w.close("cac:Contact")
	}

	w.close("cac:Party")
	w.close(tag)
	return nil
}
