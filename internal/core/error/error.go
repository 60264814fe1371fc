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
	// VideoIDMessage describes a YouTube link whose video id could not be read.
	VideoIDMessage = "youtube video id not found"
	// QuotaMessage describes a refused generation because the daily quota is spent.
	QuotaMessage = "daily usage limit reached"
)

var (
	// ErrVideoIDNotFound marks a YouTube-shaped URL that yields no video id.
	ErrVideoIDNotFound = errors.New("no extractable video id")
	// ErrQuotaExceeded marks a turn refused by the usage gate.
	ErrQuotaExceeded = errors.New("usage quota exceeded")
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

// New creates a new AppError with the provided information.
func New(err error, status int, message string) *AppError {
	return &AppError{
		Err:     err,
		Status:  status,
		Message: message,
	}
}

// VideoIDNotFound reports a malformed YouTube link. The url is kept in the
// wrapped error so logs show which link failed.
func VideoIDNotFound(url string) *AppError {
	return New(fmt.Errorf("%w: %s", ErrVideoIDNotFound, url), http.StatusUnprocessableEntity, VideoIDMessage)
}

// QuotaExceeded reports a generation refused by the daily usage gate.
func QuotaExceeded(count, limit int) *AppError {
	return New(fmt.Errorf("%w: %d/%d", ErrQuotaExceeded, count, limit), http.StatusTooManyRequests, QuotaMessage)
}

// StatusOf returns the HTTP status carried by err, or 500 when err is not an AppError.
func StatusOf(err error) int {
	var app *AppError
	if errors.As(err, &app) {
		return app.Status
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
