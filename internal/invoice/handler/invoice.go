package handler

import (
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/erechnung/erechnung-backend/internal/invoice/domain"
	"github.com/erechnung/erechnung-backend/internal/invoice/service"
	"github.com/erechnung/erechnung-backend/pkg/config"
	"github.com/erechnung/erechnung-backend/pkg/errors"
	"github.com/erechnung/erechnung-backend/pkg/httputil"
	"github.com/erechnung/erechnung-backend/pkg/logger"
)

// Handler handles HTTP requests for invoice validation and generation
type Handler struct {
	service *service.InvoiceService
	limits  config.LimitsConfig
	log     *logger.Logger
}

// NewHandler creates a new invoice handler
func NewHandler(svc *service.InvoiceService, limits config.LimitsConfig, log *logger.Logger) *Handler {
	return &Handler{
		service: svc,
		limits:  limits,
		log:     log,
	}
}

// Validate handles POST /invoices/validate
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.limits.MaxBodyBytes)

	var rec domain.InvoiceRecord
	if err := httputil.DecodeJSON(r, &rec); err != nil {
		httputil.Error(w, err)
		return
	}

	result := h.service.Validate(&rec)
	httputil.JSON(w, http.StatusOK, result)
}

// ValidateDateRange handles POST /invoices/validate/date-range
func (h *Handler) ValidateDateRange(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StartDate string `json:"startDate"`
		EndDate   string `json:"endDate"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	result := h.service.ValidateDateRange(req.StartDate, req.EndDate)
	httputil.JSON(w, http.StatusOK, result)
}

// GenerateXRechnung handles POST /invoices/generate/xrechnung
func (h *Handler) GenerateXRechnung(w http.ResponseWriter, r *http.Request) {
	h.generate(w, r, domain.DialectXRechnung, "xrechnung")
}

// GenerateSAP handles POST /invoices/generate/sap
func (h *Handler) GenerateSAP(w http.ResponseWriter, r *http.Request) {
	h.generate(w, r, domain.DialectSAP, "sap-rechnung")
}

func (h *Handler) generate(w http.ResponseWriter, r *http.Request, dialect domain.Dialect, filePrefix string) {
	r.Body = http.MaxBytesReader(w, r.Body, h.limits.MaxBodyBytes)

	var rec domain.InvoiceRecord
	if err := httputil.DecodeJSON(r, &rec); err != nil {
		httputil.Error(w, err)
		return
	}

	if len(rec.LineItems) > h.limits.MaxLineItems {
		httputil.Error(w, errors.Validation(fmt.Sprintf("Zu viele Rechnungspositionen (max. %d)", h.limits.MaxLineItems)))
		return
	}

	document, err := h.service.Generate(r.Context(), dialect, &rec)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.XML(w, downloadFilename(filePrefix, rec.Reference), document)
}

// downloadFilename builds a safe attachment name from the invoice
// reference, falling back to the current date
var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

func downloadFilename(prefix, reference string) string {
	name := unsafeFilenameChars.ReplaceAllString(reference, "-")
	if name == "" {
		name = time.Now().Format("2006-01-02")
	}
	return fmt.Sprintf("%s-%s.xml", prefix, name)
}
