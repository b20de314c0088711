package api

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnavailable wraps transport failures (DNS, refused connections,
	// timeouts).
	ErrUnavailable = errors.New("backend unavailable")

	// ErrUnexpectedStatus is the sentinel behind every StatusError.
	ErrUnexpectedStatus = errors.New("unexpected backend status")
)

const maxErrorBodyPreview = 300

// StatusError carries HTTP context for a non-2xx backend response.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("HTTP error! status: %d (%s %s)", e.StatusCode, e.Method, e.Path)
	if preview := compactBodyPreview(e.Body); preview != "" {
		msg += ": " + preview
	}
	return msg
}

func (e *StatusError) Unwrap() error {
	return ErrUnexpectedStatus
}

// IsNotFound reports whether err is a 404 StatusError.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == 404
}

func compactBodyPreview(body string) string {
	body = strings.Join(strings.Fields(body), " ")
	if len(body) > maxErrorBodyPreview {
		return body[:maxErrorBodyPreview] + "..."
	}
	return body
}
