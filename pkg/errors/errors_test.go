package errors_test

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erechnung/erechnung-backend/pkg/errors"
	"github.com/erechnung/erechnung-backend/pkg/logger"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *errors.ClassifiedError
		wantKind errors.Kind
		wantUser string
	}{
		{
			name:     "validation",
			err:      errors.Validation("Ungültige IBAN"),
			wantKind: errors.KindValidation,
			wantUser: "Eingabefehler: Ungültige IBAN. Bitte überprüfen Sie Ihre Eingaben und versuchen Sie es erneut.",
		},
		{
			name:     "network",
			err:      errors.Network("Zeitüberschreitung"),
			wantKind: errors.KindNetwork,
			wantUser: "Verbindungsfehler: Zeitüberschreitung. Bitte überprüfen Sie Ihre Internetverbindung und versuchen Sie es später erneut.",
		},
		{
			name:     "security",
			err:      errors.Security("Zugriff verweigert"),
			wantKind: errors.KindSecurity,
			wantUser: "Sicherheitsfehler: Zugriff verweigert. Bitte kontaktieren Sie den Administrator.",
		},
		{
			name:     "system",
			err:      errors.System("Datenbank nicht erreichbar"),
			wantKind: errors.KindSystem,
			wantUser: "Systemfehler: Datenbank nicht erreichbar. Bitte versuchen Sie es später erneut.",
		},
		{
			name:     "unknown",
			err:      errors.Unknown("etwas"),
			wantKind: errors.KindUnknown,
			wantUser: "Unbekannter Fehler: etwas. Bitte versuchen Sie es später erneut.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantKind, tt.err.Kind)
			assert.Equal(t, tt.wantUser, tt.err.UserMessage)
			assert.False(t, tt.err.Timestamp.IsZero())
		})
	}
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, errors.Validation("x").StatusCode())
	assert.Equal(t, http.StatusForbidden, errors.Security("x").StatusCode())
	assert.Equal(t, http.StatusBadGateway, errors.Network("x").StatusCode())
	assert.Equal(t, http.StatusInternalServerError, errors.System("x").StatusCode())
	assert.Equal(t, http.StatusInternalServerError, errors.Unknown("x").StatusCode())
}

func TestClassify_KeywordFamilies(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind errors.Kind
	}{
		{"validation keyword", stderrors.New("validation failed for field"), errors.KindValidation},
		{"german validation keyword", stderrors.New("Wert ist ungültig"), errors.KindValidation},
		{"required keyword", stderrors.New("Feld ist erforderlich"), errors.KindValidation},
		{"network keyword", stderrors.New("fetch failed"), errors.KindNetwork},
		{"timeout keyword", stderrors.New("request timeout exceeded"), errors.KindNetwork},
		{"connection keyword", stderrors.New("connection refused"), errors.KindNetwork},
		{"security keyword", stderrors.New("access denied"), errors.KindSecurity},
		{"forbidden keyword", stderrors.New("operation forbidden"), errors.KindSecurity},
		{"system keyword", stderrors.New("internal failure"), errors.KindSystem},
		{"server keyword", stderrors.New("server unavailable"), errors.KindSystem},
		{"no keyword", stderrors.New("irgendwas ging schief"), errors.KindUnknown},
		{"case insensitive", stderrors.New("CONNECTION lost"), errors.KindNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classified := errors.Classify(tt.err)
			assert.Equal(t, tt.wantKind, classified.Kind)
			assert.Equal(t, tt.err.Error(), classified.RawMessage)
		})
	}
}

func TestClassify_PriorityOrder(t *testing.T) {
	// "validation" outranks "server" when both appear
	classified := errors.Classify(stderrors.New("server-side validation failed"))
	assert.Equal(t, errors.KindValidation, classified.Kind)

	// "network" outranks "security"
	classified = errors.Classify(stderrors.New("network access blocked"))
	assert.Equal(t, errors.KindNetwork, classified.Kind)
}

func TestClassify_Nil(t *testing.T) {
	classified := errors.Classify(nil)

	assert.Equal(t, errors.KindUnknown, classified.Kind)
	assert.Equal(t, "Unbekannter Fehler", classified.RawMessage)
}

func TestClassify_PassesThroughClassified(t *testing.T) {
	original := errors.Security("manipulierter Inhalt")

	classified := errors.Classify(original)
	assert.Same(t, original, classified)

	// Also through wrapping
	wrapped := fmt.Errorf("beim Upload: %w", original)
	classified = errors.Classify(wrapped)
	assert.Same(t, original, classified)
}

func TestClassifyWithStack(t *testing.T) {
	classified := errors.ClassifyWithStack(stderrors.New("kaputt"))

	assert.NotEmpty(t, classified.Stack)
	assert.NotContains(t, classified.UserMessage, "goroutine")
}

func TestWrapf(t *testing.T) {
	cause := stderrors.New("kaputt")
	wrapped := errors.Wrapf(cause, "beim Schreiben von %s", "audit")

	assert.Equal(t, errors.KindSystem, wrapped.Kind)
	assert.Equal(t, "beim Schreiben von audit: kaputt", wrapped.RawMessage)
	assert.True(t, errors.Is(wrapped, cause))
}

func TestValidationWithDetails(t *testing.T) {
	details := map[string]string{"iban": "Ungültige IBAN"}
	err := errors.ValidationWithDetails("Validierung fehlgeschlagen", details)

	assert.Equal(t, errors.KindValidation, err.Kind)
	assert.Equal(t, details, err.Details)
}

func TestHandle_NeverFails(t *testing.T) {
	log := logger.New("test", "development")

	classified := errors.Handle(log, nil)
	require.NotNil(t, classified)
	assert.Equal(t, errors.KindUnknown, classified.Kind)

	classified = errors.Handle(log, stderrors.New("connection reset"))
	require.NotNil(t, classified)
	assert.Equal(t, errors.KindNetwork, classified.Kind)
}

func TestWithHandling(t *testing.T) {
	log := logger.New("test", "development")

	t.Run("success passes through", func(t *testing.T) {
		fn := errors.WithHandling(log, func(ctx context.Context) error {
			return nil
		}, nil)

		assert.NoError(t, fn(context.Background()))
	})

	t.Run("failure is classified and reported", func(t *testing.T) {
		var seen *errors.ClassifiedError
		fn := errors.WithHandling(log, func(ctx context.Context) error {
			return stderrors.New("fetch failed")
		}, func(e *errors.ClassifiedError) {
			seen = e
		})

		err := fn(context.Background())
		require.Error(t, err)

		var classified *errors.ClassifiedError
		require.True(t, errors.As(err, &classified))
		assert.Equal(t, errors.KindNetwork, classified.Kind)
		assert.Same(t, classified, seen)
	})
}
