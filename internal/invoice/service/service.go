package service

import (
	"context"
	"time"

	"github.com/erechnung/erechnung-backend/internal/invoice/detect"
	"github.com/erechnung/erechnung-backend/internal/invoice/domain"
	"github.com/erechnung/erechnung-backend/internal/invoice/repository"
	"github.com/erechnung/erechnung-backend/internal/invoice/security"
	"github.com/erechnung/erechnung-backend/internal/invoice/validation"
	"github.com/erechnung/erechnung-backend/internal/invoice/xmlgen"
	"github.com/erechnung/erechnung-backend/pkg/errors"
	"github.com/erechnung/erechnung-backend/pkg/httputil"
	"github.com/erechnung/erechnung-backend/pkg/logger"
)

// InvoiceService orchestrates validation, generation and inspection.
// It holds no invoice state: every operation is a function of its
// inputs, and only audit metadata leaves the request scope.
type InvoiceService struct {
	audit    *repository.AuditRepository // nil when no audit database is configured
	detector *detect.Detector
	log      *logger.Logger
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(audit *repository.AuditRepository, log *logger.Logger) *InvoiceService {
	return &InvoiceService{
		audit:    audit,
		detector: detect.New(),
		log:      log,
	}
}

// Validate validates an invoice record
func (s *InvoiceService) Validate(rec *domain.InvoiceRecord) domain.ValidationResult {
	return validation.ValidateRecord(rec)
}

// ValidateDateRange validates a start/end date pair
func (s *InvoiceService) ValidateDateRange(start, end string) domain.ValidationResult {
	return validation.ValidateDateRange(start, end)
}

// Generate validates the record and renders it in the requested
// dialect. A failed validation or a rejected field aborts with a
// VALIDATION error; the caller never receives partial markup.
func (s *InvoiceService) Generate(ctx context.Context, dialect domain.Dialect, rec *domain.InvoiceRecord) (string, error) {
	start := time.Now()

	result := validation.ValidateRecord(rec)
	if !result.IsValid {
		return "", errors.ValidationWithDetails("Validierung fehlgeschlagen", result.Errors)
	}

	var document string
	var err error

	switch dialect {
	case domain.DialectXRechnung:
		document, err = xmlgen.GenerateXRechnung(rec)
	case domain.DialectSAP:
		document, err = xmlgen.GenerateSAP(rec)
	default:
		return "", errors.Validation("Unbekanntes Zielformat: " + string(dialect))
	}

	if err != nil {
		s.log.Warn().
			Str("dialect", string(dialect)).
			Err(err).
			Msg("generation rejected")
		return "", err
	}

	s.recordAudit(ctx, repository.ActionGenerate, string(dialect), rec.Reference, time.Since(start))

	s.log.Info().
		Str("dialect", string(dialect)).
		Str("reference", rec.Reference).
		Int("bytes", len(document)).
		Dur("duration", time.Since(start)).
		Msg("invoice generated")

	return document, nil
}

// Inspect validates an uploaded file and detects its dialect,
// returning a sanitized field subset for pre-population
func (s *InvoiceService) Inspect(ctx context.Context, meta *security.FileMeta, data []byte) (*domain.InspectionResult, error) {
	start := time.Now()

	check := security.ValidateFileUpload(meta)
	if !check.IsValid {
		return nil, errors.Validation(check.Error)
	}

	result := s.detector.Inspect(meta, data)

	// The extracted values will be redisplayed in the form, so they go
	// through the free-text cleaner before leaving the service.
	result.Fields = sanitizeFields(result.Fields)

	if result.Recognized {
		s.recordAudit(ctx, repository.ActionInspect, string(result.Dialect), result.Fields.Reference, time.Since(start))
	}

	s.log.Info().
		Str("file", meta.Name).
		Str("dialect", string(result.Dialect)).
		Bool("recognized", result.Recognized).
		Msg("upload inspected")

	return result, nil
}

func sanitizeFields(f domain.ExtractedFields) domain.ExtractedFields {
	return domain.ExtractedFields{
		Reference:       security.SanitizeFreeText(f.Reference),
		InvoiceDate:     security.SanitizeFreeText(f.InvoiceDate),
		SenderName:      security.SanitizeFreeText(f.SenderName),
		RecipientName:   security.SanitizeFreeText(f.RecipientName),
		GrossAmount:     security.SanitizeFreeText(f.GrossAmount),
		KreditorID:      security.SanitizeFreeText(f.KreditorID),
		BuchungskreisID: security.SanitizeFreeText(f.BuchungskreisID),
	}
}

// recordAudit writes an audit entry. Auditing is best-effort: a
// failure is logged, never surfaced to the caller.
func (s *InvoiceService) recordAudit(ctx context.Context, action, dialect, reference string, duration time.Duration) {
	if s.audit == nil {
		return
	}

	entry := &repository.GenerationAuditEntry{
		Action:     action,
		Dialect:    dialect,
		Reference:  reference,
		RequestID:  httputil.GetRequestID(ctx),
		DurationMs: duration.Milliseconds(),
	}

	if err := s.audit.Create(ctx, entry); err != nil {
		s.log.Warn().Err(err).Msg("failed to write generation audit entry")
	}
}

// RecentAudit returns recent audit entries, or nil when auditing is
// disabled
func (s *InvoiceService) RecentAudit(ctx context.Context, limit int) ([]*repository.GenerationAuditEntry, error) {
	if s.audit == nil {
		return nil, nil
	}
	return s.audit.List(ctx, limit)
}
