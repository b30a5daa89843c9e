package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/erechnung/erechnung-backend/internal/invoice/security"
	"github.com/erechnung/erechnung-backend/pkg/errors"
	"github.com/erechnung/erechnung-backend/pkg/httputil"
)

// Inspect handles POST /invoices/inspect. It accepts a multipart form
// with a single "file" part and returns the dialect detection result
// with the extracted field subset.
func (h *Handler) Inspect(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.limits.MaxUploadBytes)

	if err := r.ParseMultipartForm(h.limits.MaxUploadBytes); err != nil {
		httputil.Error(w, errors.Validation("Datei ist zu groß (max. 5MB)"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.Error(w, errors.Validation("Keine Datei ausgewählt"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		httputil.Error(w, errors.System("Datei konnte nicht gelesen werden"))
		return
	}

	meta := &security.FileMeta{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
	}

	result, err := h.service.Inspect(r.Context(), meta, data)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, result)
}

// auditQuery is the query surface of the audit listing
type auditQuery struct {
	Limit int `validate:"gte=1,lte=500"`
}

// RecentAudit handles GET /invoices/audit
func (h *Handler) RecentAudit(w http.ResponseWriter, r *http.Request) {
	q := auditQuery{Limit: 100}
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			q.Limit = parsed
		}
	}

	if err := httputil.Validate(q); err != nil {
		httputil.Error(w, err)
		return
	}

	entries, err := h.service.RecentAudit(r.Context(), q.Limit)
	if err != nil {
		httputil.Error(w, errors.System("Audit-Einträge konnten nicht geladen werden"))
		return
	}

	httputil.JSON(w, http.StatusOK, entries)
}
