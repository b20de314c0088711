package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nhle/pulseph/internal/api"
	"github.com/nhle/pulseph/internal/auth"
	"github.com/nhle/pulseph/internal/credential"
	"github.com/nhle/pulseph/internal/model"
	"github.com/nhle/pulseph/internal/notify"
	"github.com/nhle/pulseph/internal/source"
	"github.com/nhle/pulseph/internal/source/backend"
	"github.com/nhle/pulseph/internal/source/demo"
	"github.com/nhle/pulseph/internal/source/mailbox"
	"github.com/nhle/pulseph/internal/store"
	appsync "github.com/nhle/pulseph/internal/sync"
)

// Runtime is the set of services shared by the TUI and the headless
// commands. Close releases them.
type Runtime struct {
	Config     *model.AppConfig
	Store      *store.SQLiteStore
	Vault      *credential.Vault
	Session    *auth.Session
	API        *api.Client
	Poller     *appsync.Poller
	Dispatcher *notify.Dispatcher
	Logger     *slog.Logger
}

// OpenRuntime opens the local database and the OS keyring and builds a
// Runtime on top of them. A missing keyring is logged and tolerated.
func OpenRuntime(cfg *model.AppConfig, logger *slog.Logger) (*Runtime, error) {
	st, err := store.NewSQLiteStore(cfg.Storage.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening local store: %w", err)
	}

	vault, err := credential.Open()
	if err != nil {
		logger.Warn("keyring unavailable",
			slog.String("op", "cli.OpenRuntime"),
			slog.Any("error", err),
		)
	}

	return NewRuntime(cfg, st, vault, logger), nil
}

// NewRuntime wires the API client, message sources, dispatcher and poller.
// vault may be nil.
func NewRuntime(cfg *model.AppConfig, st *store.SQLiteStore, vault *credential.Vault, logger *slog.Logger) *Runtime {
	client := api.NewClient(cfg.API.BaseURL,
		api.WithTimeout(cfg.APITimeout()),
		api.WithRateLimit(cfg.API.RequestsPerSecond),
		api.WithLogger(logger),
	)

	var secrets auth.SecretStore
	if vault != nil {
		secrets = vault
	}

	dispatcher := notify.NewDispatcher(
		notify.WithHistory(st),
		notify.WithDefaultDuration(cfg.NotificationDuration()),
		notify.WithLogger(logger),
	)

	fetcher, marker := buildSources(cfg, client, vault, logger)

	poller := appsync.New(fetcher, appsync.Options{
		Interval:          cfg.PollInterval(),
		AutoMarkRead:      cfg.Poll.AutoMarkRead,
		ShowNotifications: cfg.Poll.ShowNotifications,
		Marker:            marker,
		Notifier:          dispatcher,
		Cache:             st,
		Logger:            logger,
	})

	return &Runtime{
		Config:     cfg,
		Store:      st,
		Vault:      vault,
		Session:    auth.NewSession(st, secrets, logger),
		API:        client,
		Poller:     poller,
		Dispatcher: dispatcher,
		Logger:     logger,
	}
}

// buildSources returns the fetcher the poller runs and the matching
// mark-read target. The backend always takes part; the demo store is its
// fallback when enabled and the mailbox is appended when configured.
func buildSources(
	cfg *model.AppConfig,
	client *api.Client,
	vault *credential.Vault,
	logger *slog.Logger,
) (source.Fetcher, appsync.ReadMarker) {
	opts := []backend.Option{backend.WithLogger(logger)}
	var marker appsync.ReadMarker = client
	if cfg.Demo.Fallback {
		offline := demo.NewStore()
		opts = append(opts, backend.WithFallback(offline))
		marker = fallbackMarker{primary: client, demo: offline, logger: logger}
	}
	primary := backend.NewFetcher(client, opts...)

	if !cfg.Mailbox.Enabled {
		return primary, marker
	}

	mcfg := mailbox.Config{
		Host:     cfg.Mailbox.Host,
		Port:     cfg.Mailbox.Port,
		Username: cfg.Mailbox.Username,
		TLS:      cfg.Mailbox.TLS,
		Mailbox:  cfg.Mailbox.Mailbox,
	}
	if vault != nil {
		password, err := vault.Get(credential.KeyMailboxPassword)
		if err != nil {
			logger.Warn("mailbox password not found in keyring",
				slog.String("op", "cli.buildSources"),
				slog.Any("error", err),
			)
		}
		mcfg.Password = password
	}

	box := mailbox.New(mcfg)
	return source.Multi{primary, box}, readMarkers{marker, box}
}

// readMarkers forwards mark-read to every source. Each one ignores ids it
// does not own.
type readMarkers []appsync.ReadMarker

func (m readMarkers) MarkMessagesRead(ctx context.Context, number string, ids []string) error {
	var errs []error
	for _, marker := range m {
		if err := marker.MarkMessagesRead(ctx, number, ids); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// fallbackMarker sends mark-read to the backend and, when that fails,
// marks the ids the demo store served. The backend error is returned
// only if some ids are not demo messages.
type fallbackMarker struct {
	primary appsync.ReadMarker
	demo    *demo.Store
	logger  *slog.Logger
}

func (m fallbackMarker) MarkMessagesRead(ctx context.Context, number string, ids []string) error {
	err := m.primary.MarkMessagesRead(ctx, number, ids)
	if err == nil {
		return nil
	}

	owned := m.demo.Owned(ids)
	if len(owned) == 0 {
		return err
	}
	m.logger.Warn("backend mark-read failed, marking demo messages",
		slog.String("op", "cli.fallbackMarker.MarkMessagesRead"),
		slog.Int("count", len(owned)),
		slog.Any("error", err),
	)
	if derr := m.demo.MarkMessagesRead(ctx, number, owned); derr != nil {
		return errors.Join(err, derr)
	}
	if len(owned) < len(ids) {
		return err
	}
	return nil
}

// Close stops polling, cancels pending toasts and closes the store.
func (r *Runtime) Close() error {
	r.Poller.Close()
	r.Dispatcher.ClearAll()
	return r.Store.Close()
}
