package common

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrBusy              = errors.New("a submission for this post is already in flight")
	ErrQuotaExceeded     = errors.New("monthly post quota exceeded")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrForbidden         = errors.New("forbidden")
)

// ValidationError is raised before any network call and belongs to one form field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// UploadError aborts a whole submission; nothing has been written when it is returned.
type UploadError struct {
	File string
	Err  error
}

func (e *UploadError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("upload failed: %v", e.Err)
	}
	return fmt.Sprintf("upload of %s failed: %v", e.File, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// MutationError wraps a failed backend call together with the step that issued it.
type MutationError struct {
	Step string
	Err  error
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Step, e.Err)
}

func (e *MutationError) Unwrap() error { return e.Err }

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func IsUpload(err error) bool {
	var u *UploadError
	return errors.As(err, &u)
}
