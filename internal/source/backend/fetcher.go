// Package backend fetches messages from the PulsePH REST API.
package backend

import (
	"context"
	"log/slog"

	"github.com/nhle/pulseph/internal/model"
	"github.com/nhle/pulseph/internal/source"
)

// MessageClient is the subset of the API client the fetcher needs.
type MessageClient interface {
	GetMessages(ctx context.Context, number string) (*model.MessageEnvelope, error)
}

// Fetcher issues one GET per call and returns at most one message. It never
// returns an error: failures are logged and yield an empty list, or the
// fallback's result when one is attached.
type Fetcher struct {
	client   MessageClient
	fallback source.Fetcher
	logger   *slog.Logger
}

// Option customises a Fetcher.
type Option func(*Fetcher)

// WithFallback attaches a source used when the backend request fails.
func WithFallback(f source.Fetcher) Option {
	return func(b *Fetcher) { b.fallback = f }
}

// WithLogger sets the logger for swallowed failures.
func WithLogger(l *slog.Logger) Option {
	return func(b *Fetcher) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewFetcher creates a backend fetcher.
func NewFetcher(client MessageClient, opts ...Option) *Fetcher {
	f := &Fetcher{client: client, logger: slog.Default()}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch implements source.Fetcher.
func (f *Fetcher) Fetch(ctx context.Context, phoneNumber string) ([]model.Message, error) {
	const op = "backend.Fetcher.Fetch"

	if phoneNumber == "" {
		return []model.Message{}, nil
	}

	env, err := f.client.GetMessages(ctx, phoneNumber)
	if err != nil {
		f.logger.Error("fetching messages failed",
			slog.String("op", op),
			slog.Any("error", err),
		)
		return f.fallbackMessages(ctx, phoneNumber), nil
	}

	res := CheckEnvelope(env)
	if !res.Valid {
		if env != nil && env.Data != nil {
			f.logger.Warn("discarding malformed message payload",
				slog.String("op", op),
				slog.String("reason", res.Reason),
			)
		}
		return []model.Message{}, nil
	}

	return []model.Message{Transform(res.Data)}, nil
}

func (f *Fetcher) fallbackMessages(ctx context.Context, phoneNumber string) []model.Message {
	if f.fallback == nil {
		return []model.Message{}
	}
	msgs, err := f.fallback.Fetch(ctx, phoneNumber)
	if err != nil {
		f.logger.Error("fallback source failed",
			slog.String("op", "backend.Fetcher.fallbackMessages"),
			slog.Any("error", err),
		)
		return []model.Message{}
	}
	if msgs == nil {
		msgs = []model.Message{}
	}
	return msgs
}
