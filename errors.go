package reagent

import (
	"errors"
	"fmt"
)

// Parse errors
var (
	ErrInvalidJSON     = errors.New("invalid JSON in action")
	ErrMissingToolName = errors.New("action missing 'name' field")
	ErrInvalidAction   = errors.New("invalid action")
)

// Tool errors
var (
	ErrUnknownTool      = errors.New("unknown tool")
	ErrDuplicateTool    = errors.New("tool already registered")
	ErrReservedToolName = errors.New("tool name is reserved")
	ErrInvalidToolSpec  = errors.New("invalid tool spec")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrToolPanic        = errors.New("tool panicked")
	ErrNilTool          = errors.New("tool is nil")
)

// Model errors. A *ModelError matches exactly one of these with errors.Is.
var (
	ErrConnection = errors.New("model connection error")
	ErrStatus     = errors.New("model status error")
	ErrUnknown    = errors.New("model error")
)

// ModelErrorKind distinguishes model client failures so callers can decide
// whether to retry.
type ModelErrorKind int

const (
	ModelErrorUnknown ModelErrorKind = iota
	ModelErrorConnection
	ModelErrorStatus
)

func (k ModelErrorKind) String() string {
	switch k {
	case ModelErrorConnection:
		return "connection"
	case ModelErrorStatus:
		return "status"
	default:
		return "unknown"
	}
}

// ModelError is returned by model adapters.
type ModelError struct {
	Kind ModelErrorKind

	// StatusCode is the remote HTTP status for ModelErrorStatus, 0 otherwise.
	StatusCode int

	Err error
}

func (e *ModelError) Error() string {
	if e.Kind == ModelErrorStatus && e.StatusCode != 0 {
		return fmt.Sprintf("model %s error (status %d): %v", e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("model %s error: %v", e.Kind, e.Err)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for e.Kind.
func (e *ModelError) Is(target error) bool {
	switch target {
	case ErrConnection:
		return e.Kind == ModelErrorConnection
	case ErrStatus:
		return e.Kind == ModelErrorStatus
	case ErrUnknown:
		return e.Kind == ModelErrorUnknown
	}
	return false
}

// AsModelError returns err as a *ModelError, wrapping it as ModelErrorUnknown
// when it is not one already. Returns nil for a nil error.
func AsModelError(err error) *ModelError {
	if err == nil {
		return nil
	}
	var me *ModelError
	if errors.As(err, &me) {
		return me
	}
	return &ModelError{Kind: ModelErrorUnknown, Err: err}
}
