package service

import (
	"errors"
	"fmt"
)

// ErrorKind classifies an external-call failure at the point it happens,
// so callers branch on the kind instead of inspecting message text.
type ErrorKind int

const (
	// ErrKindTransient covers rate limits, timeouts and 5xx responses.
	// Transient failures are retried with backoff.
	ErrKindTransient ErrorKind = iota
	// ErrKindAuth covers invalid or expired credentials. Never retried;
	// requires manual intervention.
	ErrKindAuth
	// ErrKindBadRequest covers malformed requests the platform rejected.
	ErrKindBadRequest
)

type PlatformError struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
}

func (e *PlatformError) Error() string {
	return fmt.Sprintf("platform error (status %d): %s", e.StatusCode, e.Message)
}

// ClassifyStatus maps an HTTP response code to an error kind.
func ClassifyStatus(code int, message string) *PlatformError {
	kind := ErrKindTransient
	switch {
	case code == 401 || code == 403:
		kind = ErrKindAuth
	case code == 429 || code >= 500:
		kind = ErrKindTransient
	case code >= 400:
		kind = ErrKindBadRequest
	}
	return &PlatformError{Kind: kind, StatusCode: code, Message: message}
}

// IsAuthError reports whether err carries a credential failure anywhere
// in its chain.
func IsAuthError(err error) bool {
	var pe *PlatformError
	return errors.As(err, &pe) && pe.Kind == ErrKindAuth
}

// IsRetryable reports whether err is worth another attempt.
func IsRetryable(err error) bool {
	var pe *PlatformError
	if errors.As(err, &pe) {
		return pe.Kind == ErrKindTransient
	}
	return true
}
