package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nhle/pulseph/internal/api"
	"github.com/nhle/pulseph/internal/app"
	"github.com/nhle/pulseph/internal/logging"
	"github.com/nhle/pulseph/internal/model"
)

// NewRootCommand builds the complete command tree. Without a subcommand
// the interactive client starts.
func NewRootCommand(deps Dependencies) *cobra.Command {
	version := resolvedVersion(deps.Version)
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "pulseph",
		Short:         "Local government announcements for your phone number, in the terminal.",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			showVersion, _ := cmd.Flags().GetBool("version")
			if showVersion {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), version)
				return errVersionShown
			}
			return runInteractive(cmd, deps, flags)
		},
	}
	root.Flags().BoolP("version", "v", false, "Show version and exit.")
	addGlobalFlags(root, flags)

	root.AddCommand(newWatchCommand(deps, flags))
	root.AddCommand(newReadCommand(deps, flags))
	root.AddCommand(newNearestCommand(deps, flags))
	root.AddCommand(newLGUsCommand(deps, flags))
	root.AddCommand(newSubscribeCommand(deps, flags))
	root.AddCommand(newNotificationsCommand(deps, flags))
	root.AddCommand(newMailboxCommand(deps, flags))
	root.AddCommand(newLogoutCommand(deps, flags))
	root.AddCommand(newVersionCommand(version))

	return root
}

// runInteractive starts the TUI. Logs go to the configured file so they
// do not draw over the screen.
func runInteractive(cmd *cobra.Command, deps Dependencies, flags *globalFlags) error {
	cfg, err := loadConfig(deps, flags)
	if err != nil {
		return err
	}

	logger, closer, err := logging.SetupFile(cfg.Log.File, logLevel(cfg, flags))
	if err != nil {
		return err
	}
	defer closer.Close()

	rt, err := deps.Open(cfg, logger)
	if err != nil {
		return err
	}
	defer closeRuntime(cmd, rt)

	var coord *model.Coordinate
	if c, ok := cfg.DefaultLocation(); ok {
		coord = &c
	}

	logger.Info("starting interactive client",
		slog.String("api", cfg.API.BaseURL),
		slog.Duration("poll_interval", cfg.PollInterval()),
	)

	d := app.Deps{
		Session:    rt.Session,
		Directory:  rt.API,
		Poller:     rt.Poller,
		Dispatcher: rt.Dispatcher,
		History:    rt.Store,
		Coordinate: coord,
		Config:     cfg,
		ConfigPath: flags.ConfigPath,
		Probe: func(ctx context.Context, baseURL string) error {
			return api.Probe(ctx, baseURL, api.WithTimeout(cfg.APITimeout()), api.WithLogger(logger))
		},
		Logger: logger,
	}
	if rt.Vault != nil {
		d.Secrets = rt.Vault
	}

	m := app.New(d)
	return deps.RunProgram(cmd.Context(), m)
}

func newVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version)
			return err
		},
	}
}
