package validation

import (
	"github.com/erechnung/erechnung-backend/internal/invoice/domain"
)

// ValidateRecord applies the field rules to an invoice record and
// accumulates every triggered error into one field-keyed map. There is
// no short-circuit: all fields are checked independently so the caller
// can display all problems at once. The message strings are the
// externally observed contract.
func ValidateRecord(rec *domain.InvoiceRecord) domain.ValidationResult {
	errors := make(map[string]string)

	// Sender
	if !Required(rec.SenderName) {
		errors["senderName"] = "Name des Senders ist erforderlich"
	} else if !StringLength(rec.SenderName, 1, 100) {
		errors["senderName"] = "Name des Senders ist zu lang (max. 100 Zeichen)"
	}

	if rec.SenderContactEmail != "" && !Email(rec.SenderContactEmail) {
		errors["senderContactEmail"] = "Ungültige E-Mail-Adresse"
	}

	if rec.SenderContactPhone != "" && !Phone(rec.SenderContactPhone) {
		errors["senderContactPhone"] = "Ungültige Telefonnummer"
	}

	if rec.SenderZip != "" && !PostalCode(rec.SenderZip) {
		errors["senderZip"] = "Ungültige Postleitzahl"
	}

	// Recipient
	if !Required(rec.RecipientName) {
		errors["recipientName"] = "Name des Empfängers ist erforderlich"
	} else if !StringLength(rec.RecipientName, 1, 100) {
		errors["recipientName"] = "Name des Empfängers ist zu lang (max. 100 Zeichen)"
	}

	if rec.RecipientZip != "" && !PostalCode(rec.RecipientZip) {
		errors["recipientZip"] = "Ungültige Postleitzahl"
	}

	// Invoice metadata
	if !Required(rec.Reference) {
		errors["reference"] = "Rechnungsnummer ist erforderlich"
	} else if !StringLength(rec.Reference, 1, 50) {
		errors["reference"] = "Rechnungsnummer ist zu lang (max. 50 Zeichen)"
	}

	if !Required(rec.InvoiceDate) {
		errors["invoiceDate"] = "Rechnungsdatum ist erforderlich"
	} else if !Date(rec.InvoiceDate) {
		errors["invoiceDate"] = "Ungültiges Datumsformat (YYYY-MM-DD)"
	}

	if rec.ServiceDate != "" && !Date(rec.ServiceDate) {
		errors["serviceDate"] = "Ungültiges Datumsformat (YYYY-MM-DD)"
	}

	// Payment
	if rec.IBAN != "" && !IBAN(rec.IBAN) {
		errors["iban"] = "Ungültige IBAN"
	}

	if rec.BIC != "" && !BIC(rec.BIC) {
		errors["bic"] = "Ungültiger BIC/SWIFT-Code"
	}

	// Amounts
	if rec.TotalNetAmount != "" && !Number(rec.TotalNetAmount) {
		errors["totalNetAmount"] = "Ungültiger Betrag"
	}

	if rec.TotalTaxAmount != "" && !Number(rec.TotalTaxAmount) {
		errors["totalTaxAmount"] = "Ungültiger Steuerbetrag"
	}

	if rec.GrossAmount != "" && !Number(rec.GrossAmount) {
		errors["grossAmount"] = "Ungültiger Bruttobetrag"
	}

	if rec.TaxRate != "" && !Number(rec.TaxRate) {
		errors["taxRate"] = "Ungültiger Steuersatz"
	}

	// Leitweg-ID
	if rec.LeitwegID != "" && !StringLength(rec.LeitwegID, 1, 100) {
		errors["leitwegId"] = "Leitweg-ID ist zu lang (max. 100 Zeichen)"
	}

	return domain.ValidationResult{
		IsValid: len(errors) == 0,
		Errors:  errors,
	}
}

// ValidateDateRange validates a start/end date pair. The range error
// is reported only when both dates are individually valid.
func ValidateDateRange(startDate, endDate string) domain.ValidationResult {
	errors := make(map[string]string)

	if !Required(startDate) {
		errors["startDate"] = "Startdatum ist erforderlich"
	} else if !Date(startDate) {
		errors["startDate"] = "Ungültiges Startdatum"
	}

	if !Required(endDate) {
		errors["endDate"] = "Enddatum ist erforderlich"
	} else if !Date(endDate) {
		errors["endDate"] = "Ungültiges Enddatum"
	}

	if len(errors) == 0 && startDate > endDate {
		// ISO dates order lexicographically
		errors["dateRange"] = "Enddatum muss nach dem Startdatum liegen"
	}

	return domain.ValidationResult{
		IsValid: len(errors) == 0,
		Errors:  errors,
	}
}
