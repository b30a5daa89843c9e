package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erechnung/erechnung-backend/internal/invoice/repository"
	"github.com/erechnung/erechnung-backend/pkg/database"
	"github.com/erechnung/erechnung-backend/pkg/logger"
	"github.com/erechnung/erechnung-backend/pkg/testutil"
)

func newRepo(t *testing.T) (*repository.AuditRepository, *testutil.MockDB) {
	mockDB := testutil.NewMockDB(t)
	log := logger.New("test", "development")
	return repository.NewAuditRepository(database.Wrap(mockDB.DB, log)), mockDB
}

func TestAuditRepository_Create(t *testing.T) {
	repo, mockDB := newRepo(t)
	defer mockDB.Close()

	created := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	mockDB.ExpectQuery("INSERT INTO generation_audit").
		WithArgs(sqlmock.AnyArg(), "generate", "xrechnung", "RE-2024-001", "req-1", int64(12)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))

	entry := &repository.GenerationAuditEntry{
		Action:     repository.ActionGenerate,
		Dialect:    "xrechnung",
		Reference:  "RE-2024-001",
		RequestID:  "req-1",
		DurationMs: 12,
	}

	err := repo.Create(context.Background(), entry)
	require.NoError(t, err)

	assert.NotEmpty(t, entry.ID, "a missing ID is generated")
	assert.Equal(t, created, entry.CreatedAt)
	mockDB.AssertExpectations(t)
}

func TestAuditRepository_Create_KeepsExplicitID(t *testing.T) {
	repo, mockDB := newRepo(t)
	defer mockDB.Close()

	mockDB.ExpectQuery("INSERT INTO generation_audit").
		WithArgs("fixed-id", "inspect", "sap", "", "", int64(0)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	entry := &repository.GenerationAuditEntry{
		ID:      "fixed-id",
		Action:  repository.ActionInspect,
		Dialect: "sap",
	}

	require.NoError(t, repo.Create(context.Background(), entry))
	assert.Equal(t, "fixed-id", entry.ID)
	mockDB.AssertExpectations(t)
}

func TestAuditRepository_List(t *testing.T) {
	repo, mockDB := newRepo(t)
	defer mockDB.Close()

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "action", "dialect", "reference", "request_id", "duration_ms", "created_at"}).
		AddRow("id-2", "generate", "sap", "RE-2", "req-2", int64(5), now).
		AddRow("id-1", "generate", "xrechnung", "RE-1", "req-1", int64(3), now.Add(-time.Minute))

	mockDB.ExpectQuery("SELECT id, action, dialect, reference, request_id, duration_ms, created_at").
		WithArgs(50).
		WillReturnRows(rows)

	entries, err := repo.List(context.Background(), 50)
	require.NoError(t, err)

	require.Len(t, entries, 2)
	assert.Equal(t, "id-2", entries[0].ID)
	assert.Equal(t, "sap", entries[0].Dialect)
	mockDB.AssertExpectations(t)
}

func TestAuditRepository_List_ClampsLimit(t *testing.T) {
	tests := []struct {
		name      string
		limit     int
		wantLimit int
	}{
		{"zero falls back", 0, 100},
		{"negative falls back", -5, 100},
		{"over maximum falls back", 1000, 100},
		{"in range passes through", 250, 250},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mockDB := newRepo(t)
			defer mockDB.Close()

			mockDB.ExpectQuery("SELECT id, action, dialect, reference, request_id, duration_ms, created_at").
				WithArgs(tt.wantLimit).
				WillReturnRows(sqlmock.NewRows([]string{"id", "action", "dialect", "reference", "request_id", "duration_ms", "created_at"}))

			_, err := repo.List(context.Background(), tt.limit)
			require.NoError(t, err)
			mockDB.AssertExpectations(t)
		})
	}
}
