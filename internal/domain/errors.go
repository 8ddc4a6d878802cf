package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the services wraps exactly one of them.
var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidID      = errors.New("invalid identifier")
	ErrConflict       = errors.New("conflict")
	ErrMalformedInput = errors.New("malformed input")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrImportFailed   = errors.New("template import failed")
)

// Not-found errors, one per entity so callers can tell which level of a path failed.
var (
	ErrUserNotFound                 = fmt.Errorf("user %w", ErrNotFound)
	ErrWorkoutNotFound              = fmt.Errorf("workout %w", ErrNotFound)
	ErrExerciseNotFound             = fmt.Errorf("exercise %w", ErrNotFound)
	ErrSeriesNotFound               = fmt.Errorf("series %w", ErrNotFound)
	ErrWorkoutTemplateNotFound      = fmt.Errorf("workout template %w", ErrNotFound)
	ErrTemplateWeekNotFound         = fmt.Errorf("template week %w", ErrNotFound)
	ErrTemplateWorkoutNotFound      = fmt.Errorf("template workout %w", ErrNotFound)
	ErrTemplateExerciseNotFound     = fmt.Errorf("template exercise %w", ErrNotFound)
	ErrUserWorkoutTemplateNotFound  = fmt.Errorf("user workout template %w", ErrNotFound)
	ErrUserExerciseProgressNotFound = fmt.Errorf("user exercise progress %w", ErrNotFound)
)

var (
	ErrTemplateNameExists = fmt.Errorf("workout template name already exists: %w", ErrConflict)
	ErrAlreadySubscribed  = fmt.Errorf("user already subscribed to template: %w", ErrConflict)
	ErrTemplateInUse      = fmt.Errorf("workout template has subscriptions: %w", ErrConflict)
	ErrProgressExists     = fmt.Errorf("progress already logged for exercise: %w", ErrConflict)
	ErrMissingIdentity    = fmt.Errorf("missing user identity: %w", ErrUnauthorized)
)

// TemplateCreationError reports a failed import. It matches ErrImportFailed and
// unwraps to the underlying cause.
type TemplateCreationError struct {
	Name string
	Err  error
}

func (e *TemplateCreationError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("failed to create workout template: %v", e.Err)
	}
	return fmt.Sprintf("failed to create workout template %q: %v", e.Name, e.Err)
}

func (e *TemplateCreationError) Unwrap() error { return e.Err }

func (e *TemplateCreationError) Is(target error) bool { return target == ErrImportFailed }

// Malformed wraps a validation message as ErrMalformedInput.
func Malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedInput, fmt.Sprintf(format, args...))
}

// Kind returns the stable code of err's kind, or "internal".
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrImportFailed):
		return "import_failed"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidID):
		return "invalid_id"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrMalformedInput):
		return "malformed_input"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	default:
		return "internal"
	}
}
