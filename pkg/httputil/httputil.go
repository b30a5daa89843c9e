package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/erechnung/erechnung-backend/pkg/errors"
	"github.com/erechnung/erechnung-backend/pkg/i18n"
)

// Response is a standard API response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
}

// ErrorBody represents an error in the response. Message carries the
// pre-templated user-facing sentence, never a raw technical message.
type ErrorBody struct {
	Kind    string            `json:"kind"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// JSON sends a JSON response
func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := Response{
		Success: statusCode >= 200 && statusCode < 300,
		Data:    data,
	}

	json.NewEncoder(w).Encode(response)
}

// XML sends an XML document as a downloadable attachment
func XML(w http.ResponseWriter, filename string, document string) {
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(document))
}

// Error sends an error response. Any failure is normalized into the
// taxonomy first, so nothing crosses the HTTP boundary unclassified.
func Error(w http.ResponseWriter, err error) {
	classified := errors.Classify(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(classified.StatusCode())

	response := Response{
		Success: false,
		Error: &ErrorBody{
			Kind:    string(classified.Kind),
			Message: classified.UserMessage,
			Details: classified.Details,
		},
	}

	json.NewEncoder(w).Encode(response)
}

// NoContent sends a 204 No Content response
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// DecodeJSON decodes the request body into the provided struct
func DecodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Validation(i18n.TFromContext(r.Context(), "errors.invalid_json"))
	}
	return nil
}
