package errx

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	// SystemErrorMessage is a user-facing fallback when internal errors occur.
	SystemErrorMessage = "internal server error"
	// RedisErrorMessage describes Redis related failures.
	RedisErrorMessage = "redis operation failed"
	// RedisNotFoundMessage describes a missing Redis key.
	RedisNotFoundMessage = "redis key not found"
	// PostgresErrorMessage describes vector index failures.
	PostgresErrorMessage = "postgres operation failed"
	// SynthesisErrorMessage is returned when the generative backend fails.
	SynthesisErrorMessage = "failed to generate response"
	// InvalidRequestMessage is returned for malformed or incomplete input.
	InvalidRequestMessage = "invalid request"
	// MethodNotAllowedMessage is returned for disallowed HTTP methods.
	MethodNotAllowedMessage = "method not allowed"
)

// AppError wraps an underlying error with an HTTP status and safe message.
type AppError struct {
	Err     error
	Status  int
	Message string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Details returns the underlying error text, or the message when there is none.
func (e *AppError) Details() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Err.Error()
}

// New creates a new AppError with the provided information.
func New(err error, status int, message string) *AppError {
	return &AppError{
		Err:     err,
		Status:  status,
		Message: message,
	}
}

// BadRequest reports caller input that prevents the pipeline from running.
func BadRequest(err error) *AppError {
	return New(err, http.StatusBadRequest, InvalidRequestMessage)
}

// MethodNotAllowed reports a disallowed HTTP method.
func MethodNotAllowed(method string) *AppError {
	return New(fmt.Errorf("method %s is not allowed", method), http.StatusMethodNotAllowed, MethodNotAllowedMessage)
}

// Synthesis wraps a generative backend failure. It is always fatal to the run.
func Synthesis(err error) error {
	if err == nil {
		return nil
	}
	return New(err, http.StatusInternalServerError, SynthesisErrorMessage)
}

// StatusOf returns the HTTP status carried by err, or 500 when err is not an AppError.
func StatusOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Status != 0 {
		return appErr.Status
	}
	return http.StatusInternalServerError
}

// Is reports whether the target matches the underlying error or the AppError itself.
func (e *AppError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// As allows casting to AppError or the wrapped error in a chain.
func (e *AppError) As(target any) bool {
	if errors.As(e.Err, target) {
		return true
	}
	if t, ok := target.(**AppError); ok {
		*t = e
		return true
	}
	return false
}
