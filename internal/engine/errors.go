package engine

import "fmt"

// The error taxonomy listeners signal with. Any of these aborts the
// whole transaction: the engine performs no partial commit and no
// retry, and the staged writes are discarded by the state store.

// ValidationError reports a payload that violates a business rule.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a referenced entity whose address holds no
// state.
type NotFoundError struct {
	Kind string // "account" or "asset"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// PermissionError reports an actor lacking authority for the action.
type PermissionError struct {
	Message string
}

func (e *PermissionError) Error() string {
	return e.Message
}

// Permissionf builds a PermissionError from a format string.
func Permissionf(format string, args ...any) *PermissionError {
	return &PermissionError{Message: fmt.Sprintf(format, args...)}
}
