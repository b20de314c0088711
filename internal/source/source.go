// Package source defines where announcement messages come from.
package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/nhle/pulseph/internal/model"
)

// AuthError indicates that authentication has failed for a source.
// It is returned by the mailbox source when the IMAP login is rejected.
type AuthError struct {
	SourceType SourceType
	Message    string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth error (%s): %s", e.SourceType, e.Message)
}

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// SourceType identifies the kind of message source.
type SourceType string

const (
	SourceTypeBackend SourceType = "backend"
	SourceTypeDemo    SourceType = "demo"
	SourceTypeMailbox SourceType = "mailbox"
)

// Fetcher returns the latest messages addressed to a phone number. The
// backend contract yields at most one message per call.
type Fetcher interface {
	Fetch(ctx context.Context, phoneNumber string) ([]model.Message, error)
}

// FetcherFunc adapts a plain function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, phoneNumber string) ([]model.Message, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, phoneNumber string) ([]model.Message, error) {
	return f(ctx, phoneNumber)
}

// Multi combines several fetchers. Results are concatenated in order; the
// first error is returned alongside whatever the other fetchers produced.
type Multi []Fetcher

// Fetch implements Fetcher.
func (m Multi) Fetch(ctx context.Context, phoneNumber string) ([]model.Message, error) {
	var (
		out      []model.Message
		firstErr error
	)
	for _, f := range m {
		msgs, err := f.Fetch(ctx, phoneNumber)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		out = append(out, msgs...)
	}
	return out, firstErr
}
