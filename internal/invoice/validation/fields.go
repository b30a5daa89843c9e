package validation

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// Validation constants
const (
	MaxStringLength = 1000
	DateLayout      = "2006-01-02"
)

var (
	postalCodePattern = regexp.MustCompile(`^\d{5}$`)
	phonePattern      = regexp.MustCompile(`^(\+49\s?)?(\d{2,4}\s?)?(\d{6,8})$`)
	emailPattern      = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	ibanPattern       = regexp.MustCompile(`^DE\d{20}$`)
	bicPattern        = regexp.MustCompile(`^[A-Z]{4}[A-Z]{2}[A-Z0-9]{2}([A-Z0-9]{3})?$`)
	datePattern       = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	numberPattern     = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
	whitespace        = regexp.MustCompile(`\s`)
)

// Required reports whether a value is present. Whitespace-only values
// count as absent.
func Required(value string) bool {
	return strings.TrimSpace(value) != ""
}

// Email validates an e-mail address
func Email(value string) bool {
	if value == "" {
		return false
	}
	return emailPattern.MatchString(strings.TrimSpace(value))
}

// IBAN validates a German IBAN: DE followed by 20 digits, embedded
// whitespace allowed. The check is structural only; the mod-97
// checksum is deliberately not verified.
func IBAN(value string) bool {
	if value == "" {
		return false
	}
	clean := whitespace.ReplaceAllString(value, "")
	if !ibanPattern.MatchString(clean) {
		return false
	}

	// DE + 2 check digits + 8 digit Bankleitzahl + 10 digit account number
	bankCode := clean[4:12]
	accountNumber := clean[12:]
	return len(bankCode) == 8 && len(accountNumber) == 10
}

// BIC validates a BIC/SWIFT code, upper-casing before matching
func BIC(value string) bool {
	if value == "" {
		return false
	}
	return bicPattern.MatchString(strings.ToUpper(value))
}

// Date validates an ISO date (YYYY-MM-DD). The value must round-trip
// through calendar normalization unchanged, so month 13 or day 32 are
// rejected.
func Date(value string) bool {
	if value == "" {
		return false
	}
	if !datePattern.MatchString(value) {
		return false
	}

	parsed, err := time.Parse(DateLayout, value)
	if err != nil {
		return false
	}
	return parsed.Format(DateLayout) == value
}

// Number validates a decimal number with optional leading minus and
// optional fraction
func Number(value string) bool {
	if value == "" {
		return false
	}
	return numberPattern.MatchString(value)
}

// StringLength validates the trimmed length of a value against the
// inclusive min/max bounds
func StringLength(value string, minLength, maxLength int) bool {
	if value == "" {
		return false
	}
	length := utf8.RuneCountInString(strings.TrimSpace(value))
	return length >= minLength && length <= maxLength
}

// PostalCode validates a German postal code (exactly 5 digits)
func PostalCode(value string) bool {
	if value == "" {
		return false
	}
	return postalCodePattern.MatchString(strings.TrimSpace(value))
}

// Phone validates a German phone number
func Phone(value string) bool {
	if value == "" {
		return false
	}
	return phonePattern.MatchString(strings.TrimSpace(value))
}
