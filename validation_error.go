package modal

import (
	"encoding/gob"
)

var (
	_ error = (*validationError)(nil)
	_ error = (*ValidationErrors)(nil)

	_ ValidationError   = (*validationError)(nil)
	_ ValidationErrorer = (*validationError)(nil)
	_ ValidationErrorer = (*ValidationErrors)(nil)
)

const DefaultErrorBag = ""

//nolint:gochecknoinits
func init() {
	gob.Register(&validationError{}) //nolint:exhaustruct
	gob.Register(ValidationErrors{})
}

// ValidationError is a single field validation failure.
type ValidationError interface {
	// Field returns the name of the invalid field.
	Field() string

	// Error returns the message shown next to the field.
	Error() string
}

// ValidationErrorer is a collection of validation errors sent to the client
// under the "errors" prop.
type ValidationErrorer interface {
	error

	ValidationErrors() []ValidationError
	Len() int
}

// validationError fields are exported for gob, which stores them in the
// flash session between a failed submission and the redirect back.
type validationError struct {
	Field_   string //nolint:revive
	Message_ string //nolint:revive
}

// NewValidationError creates a validation error for field.
func NewValidationError(field string, message string) ValidationError {
	return &validationError{Field_: field, Message_: message}
}

func (err *validationError) Error() string                       { return err.Message_ }
func (err *validationError) Field() string                       { return err.Field_ }
func (err *validationError) ValidationErrors() []ValidationError { return []ValidationError{err} }
func (err *validationError) Len() int                            { return 1 }

// ValidationErrors is a list of validation errors.
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string                       { return "validation errors" }
func (errs ValidationErrors) ValidationErrors() []ValidationError { return errs }
func (errs ValidationErrors) Len() int                            { return len(errs) }

// ValidationErrorMap maps field names to messages.
type ValidationErrorMap map[string]string

var _ ValidationErrorer = (ValidationErrorMap)(nil)

func (m ValidationErrorMap) Error() string { return "validation errors" }
func (m ValidationErrorMap) Len() int      { return len(m) }

func (m ValidationErrorMap) ValidationErrors() []ValidationError {
	errs := make([]ValidationError, 0, len(m))
	for field, msg := range m {
		errs = append(errs, NewValidationError(field, msg))
	}

	return errs
}
