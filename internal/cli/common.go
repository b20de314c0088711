package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nhle/pulseph/internal/logging"
	"github.com/nhle/pulseph/internal/model"
	"github.com/nhle/pulseph/internal/phone"
)

type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return ""
}

// errNotSignedIn is returned by commands that need a phone number when
// none is stored and none was given.
var errNotSignedIn = errors.New("not signed in: run pulseph to sign in, or pass --phone")

type globalFlags struct {
	ConfigPath string
	Verbose    bool
}

func addGlobalFlags(cmd *cobra.Command, flags *globalFlags) {
	cmd.PersistentFlags().StringVar(&flags.ConfigPath, "config", model.DefaultConfigPath(), "Path to the YAML configuration file.")
	cmd.PersistentFlags().BoolVar(&flags.Verbose, "verbose", false, "Log at debug level.")
}

func loadConfig(deps Dependencies, flags *globalFlags) (*model.AppConfig, error) {
	cfg, err := deps.LoadConfig(flags.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func logLevel(cfg *model.AppConfig, flags *globalFlags) slog.Level {
	if flags.Verbose {
		return slog.LevelDebug
	}
	return logging.ParseLevel(cfg.Log.Level)
}

// openHeadless loads config and opens a Runtime that logs to the
// command's stderr. Fetches never mark anything read; only the read
// command does.
func openHeadless(cmd *cobra.Command, deps Dependencies, flags *globalFlags) (*Runtime, error) {
	cfg, err := loadConfig(deps, flags)
	if err != nil {
		return nil, err
	}
	logger := logging.New(cmd.ErrOrStderr(), logLevel(cfg, flags))
	rt, err := deps.Open(cfg, logger)
	if err != nil {
		return nil, err
	}
	rt.Poller.SetAutoMarkRead(false)
	return rt, nil
}

func closeRuntime(cmd *cobra.Command, rt *Runtime) {
	if err := rt.Close(); err != nil {
		rt.Logger.Warn("closing runtime failed",
			slog.String("op", "cli."+cmd.Name()),
			slog.Any("error", err),
		)
	}
}

// resolvePhone returns the --phone value when given, otherwise the number
// of the signed-in user.
func resolvePhone(ctx context.Context, rt *Runtime, flagValue string) (string, error) {
	if v := strings.TrimSpace(flagValue); v != "" {
		if err := phone.Validate(v); err != nil {
			return "", err
		}
		return phone.Clean(v), nil
	}

	a, err := rt.Session.CurrentAuth(ctx)
	if err != nil {
		return "", err
	}
	if a == nil {
		return "", errNotSignedIn
	}
	return a.PhoneNumber, nil
}

func addPhoneFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVar(target, "phone", "", "Phone number to use instead of the signed-in user, e.g. +639171234567.")
}

// formatMessage renders one conversation entry as a single line.
func formatMessage(m model.Message) string {
	sender := "PulsePH"
	if m.IsFromUser {
		sender = "You"
	}
	marker := " "
	if !m.IsFromUser && !m.IsRead {
		marker = "*"
	}
	ts := m.Timestamp
	if ts == "" {
		ts = "--"
	}
	return fmt.Sprintf("%s [%s] %s: %s", marker, ts, sender, m.Text)
}
