package security

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Contract constants. MaxValueLength bounds every free-text value that
// enters a generated document; MaxFileSize bounds uploads.
const (
	MaxValueLength = 1000
	MaxFileSize    = 5 * 1024 * 1024 // 5MB
)

// EscapeResult is the outcome of the XML escape gate
type EscapeResult struct {
	IsValid bool   `json:"isValid"`
	Value   string `json:"value,omitempty"`
	Error   string `json:"error,omitempty"`
}

// FileMeta is the declared metadata of an uploaded file
type FileMeta struct {
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// FileCheck is the outcome of validating an uploaded file
type FileCheck struct {
	IsValid bool   `json:"isValid"`
	Error   string `json:"error,omitempty"`
}

var (
	// Control characters disallowed in well-formed XML 1.0 text
	invalidXMLChars = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`)

	// Characters never allowed in a filename
	dangerousFileChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)

	scriptBlocks  = regexp.MustCompile(`(?is)<script\b.*?</script>`)
	iframeBlocks  = regexp.MustCompile(`(?is)<iframe\b.*?</iframe>`)
	jsURIPrefix   = regexp.MustCompile(`(?i)javascript:`)
	eventHandlers = regexp.MustCompile(`(?i)on\w+\s*=`)

	markupEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&#39;",
	)

	xmlEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&apos;",
	)
)

// EscapeMarkup escapes markup-significant characters so the text can
// be embedded in HTML output. Total function: empty input yields "".
func EscapeMarkup(text string) string {
	if text == "" {
		return ""
	}
	return markupEscaper.Replace(text)
}

// ValidateAndEscapeXML validates a free-text value and escapes the
// five XML-reserved characters. This is the single gate every value
// must pass before it is embedded in a generated XML document; the
// well-formedness of the output depends on never bypassing it.
func ValidateAndEscapeXML(value string) EscapeResult {
	if value == "" {
		return EscapeResult{IsValid: false, Error: "Ungültiger Wert"}
	}

	if utf8.RuneCountInString(value) > MaxValueLength {
		return EscapeResult{IsValid: false, Error: "Wert ist zu lang (max. 1000 Zeichen)"}
	}

	if invalidXMLChars.MatchString(value) {
		return EscapeResult{IsValid: false, Error: "Wert enthält ungültige XML-Zeichen"}
	}

	return EscapeResult{IsValid: true, Value: xmlEscaper.Replace(value)}
}

// SanitizeFreeText strips known script-injection patterns from text
// that will be redisplayed as markup and truncates it to the maximum
// value length. This cleaner serves the display sink; XML payloads go
// through ValidateAndEscapeXML instead, which rejects rather than
// strips.
func SanitizeFreeText(input string) string {
	if input == "" {
		return ""
	}

	sanitized := scriptBlocks.ReplaceAllString(input, "")
	sanitized = iframeBlocks.ReplaceAllString(sanitized, "")
	sanitized = jsURIPrefix.ReplaceAllString(sanitized, "")
	sanitized = eventHandlers.ReplaceAllString(sanitized, "")

	if utf8.RuneCountInString(sanitized) > MaxValueLength {
		runes := []rune(sanitized)
		sanitized = string(runes[:MaxValueLength])
	}

	return sanitized
}

// ValidateFileUpload checks the declared metadata of an uploaded file.
// Only XML and PDF files up to 5MB with a clean filename are accepted.
// The error strings are part of the observed contract.
func ValidateFileUpload(file *FileMeta) FileCheck {
	if file == nil || file.Name == "" {
		return FileCheck{IsValid: false, Error: "Keine Datei ausgewählt"}
	}

	fileName := strings.ToLower(file.Name)
	fileType := strings.ToLower(file.ContentType)

	isXML := fileType == "text/xml" ||
		fileType == "application/xml" ||
		strings.HasSuffix(fileName, ".xml")
	isPDF := fileType == "application/pdf" ||
		strings.HasSuffix(fileName, ".pdf")

	if !isXML && !isPDF {
		return FileCheck{IsValid: false, Error: "Dateityp nicht unterstützt (nur XML und PDF)"}
	}

	if file.Size > MaxFileSize {
		return FileCheck{IsValid: false, Error: "Datei ist zu groß (max. 5MB)"}
	}

	if dangerousFileChars.MatchString(file.Name) {
		return FileCheck{IsValid: false, Error: "Dateiname enthält ungültige Zeichen"}
	}

	return FileCheck{IsValid: true}
}

// IsXMLUpload reports whether the file metadata indicates an XML file
func IsXMLUpload(file *FileMeta) bool {
	if file == nil {
		return false
	}
	fileType := strings.ToLower(file.ContentType)
	return fileType == "text/xml" ||
		fileType == "application/xml" ||
		strings.HasSuffix(strings.ToLower(file.Name), ".xml")
}

// IsPDFUpload reports whether the file metadata indicates a PDF file
func IsPDFUpload(file *FileMeta) bool {
	if file == nil {
		return false
	}
	return strings.ToLower(file.ContentType) == "application/pdf" ||
		strings.HasSuffix(strings.ToLower(file.Name), ".pdf")
}
