package api

import (
	"context"
	"log/slog"
)

// FallbackLocationNames is used when the backend cannot list LGUs.
var FallbackLocationNames = []string{
	"General Trias",
	"Noveleta",
	"Manila",
	"Quezon City",
	"Makati",
	"Taguig",
	"Pasig",
}

// FetchLocationNames performs GET /lgus/names.
func (c *Client) FetchLocationNames(ctx context.Context) ([]string, error) {
	var names []string
	if err := c.do(ctx, "GET", "/lgus/names", nil, &names); err != nil {
		return nil, err
	}
	return names, nil
}

// LocationNames returns the selectable LGU names, falling back to
// FallbackLocationNames when the request fails.
func (c *Client) LocationNames(ctx context.Context) []string {
	names, err := c.FetchLocationNames(ctx)
	if err != nil {
		c.logger.Warn("fetching location names failed, using fallback",
			slog.String("op", "api.Client.LocationNames"),
			slog.Any("error", err),
		)
		out := make([]string, len(FallbackLocationNames))
		copy(out, FallbackLocationNames)
		return out
	}
	return names
}

// Probe checks that baseURL answers GET /lgus/names. Rate-limit responses
// are not retried.
func Probe(ctx context.Context, baseURL string, opts ...Option) error {
	opts = append(opts, WithMaxRetries(0), WithRateLimit(0))
	_, err := NewClient(baseURL, opts...).FetchLocationNames(ctx)
	return err
}
