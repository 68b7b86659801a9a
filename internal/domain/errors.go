package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrPathRejected = errors.New("path rejected")
	ErrFilesystem   = errors.New("filesystem failure")
)

// NotFoundMessage is the only message ever shown for a missing folder, PDF
// or file. Callers must not be able to tell which lookup failed.
const NotFoundMessage = "resource not found"

type (
	// NotFoundError indicates a folder, PDF record or file could not be resolved.
	NotFoundError struct {
		// Detail is logged server-side only; Error() never includes it.
		Detail string
	}

	// ValidationError indicates caller-fixable input
	ValidationError struct {
		Message string
	}

	// PathRejectedError indicates a candidate path escaped its base directory.
	PathRejectedError struct {
		Path string
	}
)

func (e *NotFoundError) Error() string     { return NotFoundMessage }
func (e *ValidationError) Error() string   { return e.Message }
func (e *PathRejectedError) Error() string { return "invalid file path" }

func (e *NotFoundError) StatusCode() int     { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int   { return http.StatusBadRequest }
func (e *PathRejectedError) StatusCode() int { return http.StatusBadRequest }

func (e *NotFoundError) Is(target error) bool     { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool   { return target == ErrValidation }
func (e *PathRejectedError) Is(target error) bool { return target == ErrPathRejected }

// NewNotFound returns the uniform not-found error. detail is for logs.
func NewNotFound(format string, args ...interface{}) error {
	return &NotFoundError{Detail: fmt.Sprintf(format, args...)}
}

// NewValidation returns a ValidationError with a user-facing message.
func NewValidation(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// FilesystemErrorKind classifies filesystem failures for the caller.
type FilesystemErrorKind string

const (
	FileMissing      FilesystemErrorKind = "missing"
	FilePermission   FilesystemErrorKind = "permission"
	FileExists       FilesystemErrorKind = "exists"
	FileOtherFailure FilesystemErrorKind = "other"
)

// FilesystemError reports a failed filesystem side effect. The operation that
// produced it has not committed any store mutation.
type FilesystemError struct {
	Op   string
	Kind FilesystemErrorKind
	Err  error
}

func (e *FilesystemError) Error() string {
	switch e.Kind {
	case FileMissing:
		return "file not found"
	case FilePermission:
		return "permission denied"
	case FileExists:
		return "a file with that name already exists"
	default:
		return fmt.Sprintf("%s failed", e.Op)
	}
}

func (e *FilesystemError) Unwrap() error { return e.Err }

func (e *FilesystemError) Is(target error) bool { return target == ErrFilesystem }

func (e *FilesystemError) StatusCode() int {
	switch e.Kind {
	case FileMissing:
		return http.StatusNotFound
	case FilePermission:
		return http.StatusForbidden
	case FileExists:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
