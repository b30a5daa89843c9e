package domain

// InvoiceRecord is the editable invoice form data. All values arrive
// as strings from the form layer; the validation package decides what
// is acceptable. Fields not listed here are ignored by validation.
type InvoiceRecord struct {
	// Sender
	SenderName         string `json:"senderName"`
	SenderStreet       string `json:"senderStreet,omitempty"`
	SenderZip          string `json:"senderZip,omitempty"`
	SenderCity         string `json:"senderCity,omitempty"`
	SenderContactEmail string `json:"senderContactEmail,omitempty"`
	SenderContactPhone string `json:"senderContactPhone,omitempty"`

	// Recipient
	RecipientName   string `json:"recipientName"`
	RecipientStreet string `json:"recipientStreet,omitempty"`
	RecipientZip    string `json:"recipientZip,omitempty"`
	RecipientCity   string `json:"recipientCity,omitempty"`

	// Invoice metadata
	Reference   string `json:"reference"`
	InvoiceDate string `json:"invoiceDate"`
	ServiceDate string `json:"serviceDate,omitempty"`
	LeitwegID   string `json:"leitwegId,omitempty"`

	// Line items
	LineItems []LineItem `json:"lineItems,omitempty"`

	// Amounts
	TotalNetAmount string `json:"totalNetAmount,omitempty"`
	TotalTaxAmount string `json:"totalTaxAmount,omitempty"`
	GrossAmount    string `json:"grossAmount,omitempty"`
	TaxRate        string `json:"taxRate,omitempty"`

	// Payment
	IBAN string `json:"iban,omitempty"`
	BIC  string `json:"bic,omitempty"`

	// SAP identifiers, required for the SAP dialect only
	KreditorID      string `json:"kreditorId,omitempty"`
	BuchungskreisID string `json:"buchungskreisId,omitempty"`
}

// LineItem is a single invoice position
type LineItem struct {
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	UnitPrice   string `json:"unitPrice"`
	Unit        string `json:"unit,omitempty"`
}

// ValidationResult is the outcome of validating a record or a date
// range. Errors maps field names to localized messages and is empty
// iff IsValid is true.
type ValidationResult struct {
	IsValid bool              `json:"isValid"`
	Errors  map[string]string `json:"errors"`
}

// Dialect identifies an invoice XML dialect
type Dialect string

const (
	DialectXRechnung Dialect = "xrechnung"
	DialectSAP       Dialect = "sap"
	DialectPDF       Dialect = "pdf"
	DialectUnknown   Dialect = "unknown"
)

// ExtractedFields is the best-effort subset of fields pulled out of an
// inbound file for pre-populating the form
type ExtractedFields struct {
	Reference       string `json:"reference,omitempty"`
	InvoiceDate     string `json:"invoiceDate,omitempty"`
	SenderName      string `json:"senderName,omitempty"`
	RecipientName   string `json:"recipientName,omitempty"`
	GrossAmount     string `json:"grossAmount,omitempty"`
	KreditorID      string `json:"kreditorId,omitempty"`
	BuchungskreisID string `json:"buchungskreisId,omitempty"`
}

// InspectionResult is the outcome of inspecting an uploaded file
type InspectionResult struct {
	Dialect    Dialect         `json:"dialect"`
	Recognized bool            `json:"recognized"`
	Message    string          `json:"message"`
	Fields     ExtractedFields `json:"fields"`
}
