package errors

import (
	"errors"
	"fmt"
	"io/fs"
)

// EngineError is the structured error type for the indexing and query engine.
// It carries the code, category and severity used for run summaries, logging
// and user presentation.
type EngineError struct {
	// Code is the unique error code (e.g., "ERR_201_FILE_NOT_FOUND").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, IO, Extraction, ...).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Path is the file the error relates to, when applicable.
	Path string

	// Cause is the underlying error that caused this error.
	Cause error
}

// Error implements the error interface.
func (e *EngineError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Path, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *EngineError) Unwrap() error {
	return e.Cause
}

// Is matches errors by code, enabling errors.Is with sentinel instances.
func (e *EngineError) Is(target error) bool {
	var t *EngineError
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// WithPath attaches the related file path. Returns the error for chaining.
func (e *EngineError) WithPath(path string) *EngineError {
	e.Path = path
	return e
}

// New creates a new EngineError with the given code and message.
// Category and severity are derived from the code.
func New(code string, message string, cause error) *EngineError {
	return &EngineError{
		Code:     code,
		Message:  message,
		Category: categoryFromCode(code),
		Severity: severityFromCode(code),
		Cause:    cause,
	}
}

// Wrap creates an EngineError from an existing error.
// Returns nil when err is nil.
func Wrap(code string, err error) *EngineError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// FromIO classifies a filesystem error into the IO taxonomy: vanished
// files map to ERR_201, permission problems to ERR_202, anything else to
// the internal code.
func FromIO(path string, err error) *EngineError {
	code := ErrCodeInternal
	switch {
	case errors.Is(err, fs.ErrNotExist):
		code = ErrCodeFileNotFound
	case errors.Is(err, fs.ErrPermission):
		code = ErrCodeFilePermission
	}
	return Wrap(code, err).WithPath(path)
}

// StoreCorrupt creates the fatal store-corruption error that demands a full
// re-index before the engine may serve queries again.
func StoreCorrupt(message string, cause error) *EngineError {
	return New(ErrCodeStoreCorrupt, message, cause)
}

// InvalidQuery creates a query-syntax error. It is diagnostic only: the
// query engine reports it alongside an empty result set, never as a failure.
func InvalidQuery(message string) *EngineError {
	return New(ErrCodeInvalidQuery, message, nil)
}

// IsFatal reports whether an error has fatal severity.
// Fatal errors abort the current operation; everything else is contained.
func IsFatal(err error) bool {
	var ee *EngineError
	if errors.As(err, &ee) {
		return ee.Severity == SeverityFatal
	}
	return false
}

// GetCode extracts the error code, or empty string for plain errors.
func GetCode(err error) string {
	var ee *EngineError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return ""
}
