package errors

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/erechnung/erechnung-backend/pkg/i18n"
)

// Kind is the fixed error taxonomy. Every failure that crosses a
// package boundary is normalized into exactly one of these.
type Kind string

const (
	KindValidation Kind = "VALIDATION"
	KindNetwork    Kind = "NETWORK"
	KindSecurity   Kind = "SECURITY"
	KindSystem     Kind = "SYSTEM"
	KindUnknown    Kind = "UNKNOWN"
)

// ClassifiedError is a failure normalized into the taxonomy. It is
// created once at the boundary where the failure is caught and is not
// mutated afterwards.
type ClassifiedError struct {
	Kind        Kind              `json:"kind"`
	RawMessage  string            `json:"message"`
	UserMessage string            `json:"user_message"`
	Timestamp   time.Time         `json:"timestamp"`
	Stack       string            `json:"-"`
	Details     map[string]string `json:"details,omitempty"`
	Err         error             `json:"-"`
}

// Error implements the error interface
func (e *ClassifiedError) Error() string {
	return e.RawMessage
}

// Unwrap returns the wrapped error
func (e *ClassifiedError) Unwrap() error {
	return e.Err
}

// StatusCode maps the error kind to an HTTP status code
func (e *ClassifiedError) StatusCode() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindSecurity:
		return http.StatusForbidden
	case KindNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// userMessageKeys maps a kind to its i18n template. The German
// templates are the externally observed contract.
var userMessageKeys = map[Kind]string{
	KindValidation: "errors.user.validation",
	KindNetwork:    "errors.user.network",
	KindSecurity:   "errors.user.security",
	KindSystem:     "errors.user.system",
	KindUnknown:    "errors.user.unknown",
}

// UserMessageFor renders the user-facing sentence for a kind and raw message
func UserMessageFor(kind Kind, message string) string {
	key, ok := userMessageKeys[kind]
	if !ok {
		key = userMessageKeys[KindUnknown]
	}
	return i18n.T(key, map[string]string{"message": message})
}

func newClassified(kind Kind, message string, err error) *ClassifiedError {
	return &ClassifiedError{
		Kind:        kind,
		RawMessage:  message,
		UserMessage: UserMessageFor(kind, message),
		Timestamp:   time.Now().UTC(),
		Err:         err,
	}
}

// Validation creates a VALIDATION error
func Validation(message string) *ClassifiedError {
	return newClassified(KindValidation, message, nil)
}

// ValidationWithDetails creates a VALIDATION error carrying a
// field-keyed detail map
func ValidationWithDetails(message string, details map[string]string) *ClassifiedError {
	e := newClassified(KindValidation, message, nil)
	e.Details = details
	return e
}

// Security creates a SECURITY error
func Security(message string) *ClassifiedError {
	return newClassified(KindSecurity, message, nil)
}

// Network creates a NETWORK error
func Network(message string) *ClassifiedError {
	return newClassified(KindNetwork, message, nil)
}

// System creates a SYSTEM error
func System(message string) *ClassifiedError {
	return newClassified(KindSystem, message, nil)
}

// Unknown creates an UNKNOWN error
func Unknown(message string) *ClassifiedError {
	return newClassified(KindUnknown, message, nil)
}

// Keyword families for classifying errors of foreign origin, checked
// in priority order. The core itself raises typed errors; this path
// exists for failures handed in from the surrounding I/O layer.
var keywordFamilies = []struct {
	kind     Kind
	keywords []string
}{
	{KindValidation, []string{"validation", "ungültig", "erforderlich"}},
	{KindNetwork, []string{"network", "fetch", "timeout", "connection"}},
	{KindSecurity, []string{"security", "access", "permission", "forbidden"}},
	{KindSystem, []string{"system", "internal", "server"}},
}

// Classify normalizes an arbitrary error into a ClassifiedError. A
// *ClassifiedError passes through unchanged; a nil error classifies
// as UNKNOWN with a fixed placeholder message. Foreign errors are
// matched against the keyword families on their message text.
func Classify(err error) *ClassifiedError {
	if err == nil {
		return Unknown(i18n.T("errors.unknown"))
	}

	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified
	}

	message := err.Error()
	lower := strings.ToLower(message)

	for _, family := range keywordFamilies {
		for _, kw := range family.keywords {
			if strings.Contains(lower, kw) {
				return newClassified(family.kind, message, err)
			}
		}
	}

	return newClassified(KindUnknown, message, err)
}

// ClassifyWithStack classifies an error and attaches the current stack
// trace for diagnostics. The stack is never part of a user-facing
// message.
func ClassifyWithStack(err error) *ClassifiedError {
	classified := Classify(err)
	if classified.Stack == "" {
		classified.Stack = string(debug.Stack())
	}
	return classified
}

// Wrapf creates a SYSTEM error wrapping err with a formatted message
func Wrapf(err error, format string, args ...interface{}) *ClassifiedError {
	message := fmt.Sprintf(format, args...)
	if err != nil {
		message = fmt.Sprintf("%s: %v", message, err)
	}
	return newClassified(KindSystem, message, err)
}

// Is checks if the error matches a target error
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As attempts to convert an error to a specific type
func As(err error, target any) bool {
	return errors.As(err, target)
}
