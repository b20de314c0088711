package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/pulseph/internal/model"
)

var unknownCommandPattern = regexp.MustCompile(`unknown command "([^"]+)"`)

// ConfigLoader reads the configuration file at path.
type ConfigLoader func(path string) (*model.AppConfig, error)

// RuntimeOpener builds the services a command works with.
type RuntimeOpener func(cfg *model.AppConfig, logger *slog.Logger) (*Runtime, error)

// ProgramRunner runs the TUI until the user quits.
type ProgramRunner func(ctx context.Context, m tea.Model) error

// Dependencies wires runtime services.
type Dependencies struct {
	LoadConfig ConfigLoader
	Open       RuntimeOpener
	RunProgram ProgramRunner
	Version    string
}

// DefaultDependencies returns the production wiring.
func DefaultDependencies(version string) Dependencies {
	return Dependencies{
		LoadConfig: model.LoadConfig,
		Open:       OpenRuntime,
		RunProgram: runProgram,
		Version:    version,
	}
}

var errVersionShown = fmt.Errorf("version shown")

// Execute runs the CLI with injected dependencies.
func Execute(ctx context.Context, args []string, deps Dependencies, stdout io.Writer, stderr io.Writer) int {
	cmd := NewRootCommand(deps)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err == nil || err == errVersionShown {
		return 0
	}
	var controlled *exitError
	if errors.As(err, &controlled) {
		return controlled.code
	}

	if matches := unknownCommandPattern.FindStringSubmatch(err.Error()); len(matches) > 1 {
		_, _ = fmt.Fprintf(stderr, "No such command '%s'\n", matches[1])
		return 2
	}

	if msg := err.Error(); msg != "" {
		_, _ = fmt.Fprintln(stderr, msg)
	}
	return 1
}

func runProgram(ctx context.Context, m tea.Model) error {
	p := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithReportFocus(),
	)
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
