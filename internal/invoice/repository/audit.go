package repository

import (
	"context"
	"time"

	"github.com/erechnung/erechnung-backend/pkg/database"
	"github.com/google/uuid"
)

// GenerationAuditEntry records one generation or inspection event.
// Only metadata is stored; the invoice record itself is never
// persisted.
type GenerationAuditEntry struct {
	ID         string    `db:"id" json:"id"`
	Action     string    `db:"action" json:"action"`
	Dialect    string    `db:"dialect" json:"dialect"`
	Reference  string    `db:"reference" json:"reference"`
	RequestID  string    `db:"request_id" json:"requestId"`
	DurationMs int64     `db:"duration_ms" json:"durationMs"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

// Audit actions
const (
	ActionGenerate = "generate"
	ActionInspect  = "inspect"
)

// AuditRepository handles generation audit persistence
type AuditRepository struct {
	db *database.DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *database.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Create inserts a new audit entry
func (r *AuditRepository) Create(ctx context.Context, entry *GenerationAuditEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}

	query := `
		INSERT INTO generation_audit (id, action, dialect, reference, request_id, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	return r.db.QueryRowxContext(ctx, query,
		entry.ID,
		entry.Action,
		entry.Dialect,
		entry.Reference,
		entry.RequestID,
		entry.DurationMs,
	).Scan(&entry.CreatedAt)
}

// List returns the most recent audit entries
func (r *AuditRepository) List(ctx context.Context, limit int) ([]*GenerationAuditEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	query := `
		SELECT id, action, dialect, reference, request_id, duration_ms, created_at
		FROM generation_audit
		ORDER BY created_at DESC
		LIMIT $1
	`

	var entries []*GenerationAuditEntry
	if err := r.db.SelectContext(ctx, &entries, query, limit); err != nil {
		return nil, err
	}

	return entries, nil
}
