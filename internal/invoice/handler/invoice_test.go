package handler_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erechnung/erechnung-backend/internal/invoice/domain"
	"github.com/erechnung/erechnung-backend/internal/invoice/handler"
	"github.com/erechnung/erechnung-backend/internal/invoice/service"
	"github.com/erechnung/erechnung-backend/pkg/config"
	"github.com/erechnung/erechnung-backend/pkg/httputil"
	"github.com/erechnung/erechnung-backend/pkg/logger"
)

func newHandler() *handler.Handler {
	log := logger.New("test", "development")
	svc := service.NewInvoiceService(nil, log)
	limits := config.LimitsConfig{
		MaxUploadBytes: 6 << 20,
		MaxBodyBytes:   1 << 20,
		MaxLineItems:   100,
	}
	return handler.NewHandler(svc, limits, log)
}

func validPayload() map[string]interface{} {
	return map[string]interface{}{
		"senderName":    "Test Sender GmbH",
		"recipientName": "Test Empfänger AG",
		"reference":     "RE-2024-001",
		"invoiceDate":   "2024-01-15",
		"iban":          "DE89370400440532013000",
		"bic":           "DEUTDEFF",
		"taxRate":       "19",
		"lineItems": []map[string]string{
			{"description": "Beratung", "quantity": "1", "unitPrice": "100.00"},
		},
	}
}

func postJSON(t *testing.T, h http.HandlerFunc, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	h(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) httputil.Response {
	t.Helper()

	var resp httputil.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestValidate(t *testing.T) {
	h := newHandler()

	t.Run("valid record", func(t *testing.T) {
		rec := postJSON(t, h.Validate, validPayload())

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Success bool                    `json:"success"`
			Data    domain.ValidationResult `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.True(t, resp.Data.IsValid)
	})

	t.Run("empty record reports field errors", func(t *testing.T) {
		rec := postJSON(t, h.Validate, map[string]interface{}{})

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Data domain.ValidationResult `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.False(t, resp.Data.IsValid)
		assert.Equal(t, "Name des Senders ist erforderlich", resp.Data.Errors["senderName"])
	})

	t.Run("malformed json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{kaputt"))
		rec := httptest.NewRecorder()

		h.Validate(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decodeResponse(t, rec)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "VALIDATION", resp.Error.Kind)
		assert.Contains(t, resp.Error.Message, "Ungültiger JSON-Inhalt")
	})
}

func TestValidateDateRange(t *testing.T) {
	h := newHandler()

	rec := postJSON(t, h.ValidateDateRange, map[string]string{
		"startDate": "2024-02-01",
		"endDate":   "2024-01-01",
	})

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data domain.ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Data.IsValid)
	assert.Equal(t, "Enddatum muss nach dem Startdatum liegen", resp.Data.Errors["dateRange"])
}

func TestGenerateXRechnung(t *testing.T) {
	h := newHandler()

	rec := postJSON(t, h.GenerateXRechnung, validPayload())

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/xml; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="xrechnung-RE-2024-001.xml"`, rec.Header().Get("Content-Disposition"))
	assert.Contains(t, rec.Body.String(), "<cbc:ID>RE-2024-001</cbc:ID>")
}

func TestGenerateXRechnung_InvalidRecord(t *testing.T) {
	h := newHandler()

	payload := validPayload()
	payload["iban"] = "DE123"

	rec := postJSON(t, h.GenerateXRechnung, payload)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION", resp.Error.Kind)
	assert.Equal(t, "Eingabefehler: Validierung fehlgeschlagen. Bitte überprüfen Sie Ihre Eingaben und versuchen Sie es erneut.", resp.Error.Message)
	assert.Equal(t, "Ungültige IBAN", resp.Error.Details["iban"])
}

func TestGenerateSAP_MissingIdentifier(t *testing.T) {
	h := newHandler()

	rec := postJSON(t, h.GenerateSAP, validPayload())

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION", resp.Error.Kind)
	assert.Contains(t, resp.Error.Message, "Kreditor-ID ist erforderlich")
}

func TestGenerateSAP(t *testing.T) {
	h := newHandler()

	payload := validPayload()
	payload["kreditorId"] = "K-4711"
	payload["buchungskreisId"] = "1000"

	rec := postJSON(t, h.GenerateSAP, payload)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="sap-rechnung-RE-2024-001.xml"`, rec.Header().Get("Content-Disposition"))
	assert.Contains(t, rec.Body.String(), "<KreditorID>K-4711</KreditorID>")
}

func TestGenerate_TooManyLineItems(t *testing.T) {
	log := logger.New("test", "development")
	svc := service.NewInvoiceService(nil, log)
	h := handler.NewHandler(svc, config.LimitsConfig{
		MaxUploadBytes: 6 << 20,
		MaxBodyBytes:   1 << 20,
		MaxLineItems:   2,
	}, log)

	payload := validPayload()
	payload["lineItems"] = []map[string]string{
		{"description": "a", "quantity": "1", "unitPrice": "1"},
		{"description": "b", "quantity": "1", "unitPrice": "1"},
		{"description": "c", "quantity": "1", "unitPrice": "1"},
	}

	rec := postJSON(t, h.GenerateXRechnung, payload)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Contains(t, resp.Error.Message, "Zu viele Rechnungspositionen (max. 2)")
}

func TestInspect(t *testing.T) {
	h := newHandler()

	t.Run("recognized xml upload", func(t *testing.T) {
		doc := `<?xml version="1.0"?>
<SAPInvoice xmlns="urn:erechnung:sap:invoice:1.0">
  <Belegnummer>RE-2024-017</Belegnummer>
</SAPInvoice>`

		rec := postMultipart(t, h.Inspect, "rechnung.xml", "text/xml", []byte(doc))

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Success bool                     `json:"success"`
			Data    *domain.InspectionResult `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.NotNil(t, resp.Data)
		assert.True(t, resp.Data.Recognized)
		assert.Equal(t, domain.DialectSAP, resp.Data.Dialect)
		assert.Equal(t, "RE-2024-017", resp.Data.Fields.Reference)
	})

	t.Run("missing file part", func(t *testing.T) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		rec := httptest.NewRecorder()

		h.Inspect(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decodeResponse(t, rec)
		require.NotNil(t, resp.Error)
		assert.Contains(t, resp.Error.Message, "Keine Datei ausgewählt")
	})

	t.Run("unsupported file type", func(t *testing.T) {
		rec := postMultipart(t, h.Inspect, "notiz.txt", "text/plain", []byte("hallo"))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decodeResponse(t, rec)
		require.NotNil(t, resp.Error)
		assert.Contains(t, resp.Error.Message, "Dateityp nicht unterstützt (nur XML und PDF)")
	})
}

func TestRecentAudit_WithoutDatabase(t *testing.T) {
	h := newHandler()

	req := httptest.NewRequest(http.MethodGet, "/?limit=10", nil)
	rec := httptest.NewRecorder()

	h.RecentAudit(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRecentAudit_RejectsInvalidLimit(t *testing.T) {
	h := newHandler()

	req := httptest.NewRequest(http.MethodGet, "/?limit=10000", nil)
	rec := httptest.NewRecorder()

	h.RecentAudit(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION", resp.Error.Kind)
}

func postMultipart(t *testing.T, h http.HandlerFunc, filename, contentType string, data []byte) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	partHeader := make(map[string][]string)
	partHeader["Content-Disposition"] = []string{`form-data; name="file"; filename="` + filename + `"`}
	partHeader["Content-Type"] = []string{contentType}

	part, err := mw.CreatePart(partHeader)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()

	h(rec, req)
	return rec
}
