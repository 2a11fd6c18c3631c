package apperror

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindInsufficientCredits
	KindRateLimited
	KindMediaSource
	KindTranscription
	KindContentGeneration
)

var (
	ErrNotFound            = errors.New("resource not found")
	ErrInsufficientCredits = errors.New("insufficient credits")
)

// Error carries a user-facing message alongside the underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Status() int {
	return e.Kind.Status()
}

func (k Kind) Status() int {
	switch k {
	case KindValidation, KindMediaSource:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindInsufficientCredits:
		return http.StatusPaymentRequired
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func New(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Validation(message string) *Error {
	return New(KindValidation, message, nil)
}

func Unauthorized(message string) *Error {
	return New(KindUnauthorized, message, nil)
}

func Forbidden(message string) *Error {
	return New(KindForbidden, message, nil)
}

func NotFound(message string) *Error {
	return New(KindNotFound, message, ErrNotFound)
}

func InsufficientCredits() *Error {
	return New(KindInsufficientCredits, "Insufficient credits. Please upgrade your plan.", ErrInsufficientCredits)
}

func RateLimited(message string) *Error {
	return New(KindRateLimited, message, nil)
}

func MediaSource(message string, err error) *Error {
	return New(KindMediaSource, message, err)
}

func Transcription(message string, err error) *Error {
	return New(KindTranscription, message, err)
}

func ContentGeneration(message string, err error) *Error {
	return New(KindContentGeneration, message, err)
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Message returns the user-facing message for err. Unknown errors yield fallback.
func Message(err error, fallback string) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return fallback
}
