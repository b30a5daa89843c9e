package errors

import (
	"context"

	"github.com/erechnung/erechnung-backend/pkg/logger"
)

// Handle normalizes a failure into a ClassifiedError and logs the
// structured result. It never fails: a nil error yields the UNKNOWN
// placeholder.
func Handle(log *logger.Logger, err error) *ClassifiedError {
	classified := ClassifyWithStack(err)

	log.Error().
		Str("kind", string(classified.Kind)).
		Str("message", classified.RawMessage).
		Time("timestamp", classified.Timestamp).
		Msg("error handled")

	return classified
}

// Func is an operation guarded by WithHandling
type Func func(ctx context.Context) error

// WithHandling wraps fn so that any failure is normalized through
// Handle before it reaches the caller. The optional onError callback
// receives the classified error; without one the error is only
// logged. Callers of the wrapped function observe a *ClassifiedError,
// never the original error.
func WithHandling(log *logger.Logger, fn Func, onError func(*ClassifiedError)) Func {
	return func(ctx context.Context) error {
		err := fn(ctx)
		if err == nil {
			return nil
		}

		classified := Handle(log, err)
		if onError != nil {
			onError(classified)
		}

		return classified
	}
}
