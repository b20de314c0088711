// Package settings is the in-app editor for the backend, polling and
// mailbox sections of the configuration file.
package settings

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/pulseph/internal/credential"
	"github.com/nhle/pulseph/internal/model"
	"github.com/nhle/pulseph/internal/theme"
)

// probeTimeout bounds the connection test run before saving.
const probeTimeout = 15 * time.Second

// ErrNoKeyring is reported when a mailbox password is entered but no
// keyring is available to hold it.
var ErrNoKeyring = errors.New("no system keyring available, password not saved")

// Mode represents the current state of the settings view.
type Mode int

const (
	ModeForm       Mode = iota // Editing
	ModeValidating             // Testing the backend, then saving
	ModeResult                 // Show the outcome
)

// DoneMsg signals the settings view should close.
type DoneMsg struct{}

// SavedMsg is dispatched after the configuration file was written.
type SavedMsg struct {
	Config model.AppConfig
}

// resultMsg carries the outcome of probe-then-save.
type resultMsg struct {
	cfg *model.AppConfig
	err error
}

// Prober checks that a backend base URL answers.
type Prober func(ctx context.Context, baseURL string) error

// SecretSetter stores the mailbox password.
type SecretSetter interface {
	Set(key, value string) error
}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	baseURL           string
	pollSeconds       string
	autoMarkRead      bool
	showNotifications bool

	mailboxEnabled bool
	mailHost       string
	mailPort       string
	mailUser       string
	mailPassword   string
	mailTLS        bool
}

// Model is the Bubble Tea model for the settings view.
type Model struct {
	mode    Mode
	path    string
	current model.AppConfig
	probe   Prober
	secrets SecretSetter

	form    *huh.Form
	fb      *formBindings
	spinner spinner.Model

	pending *model.AppConfig
	err     error

	width, height int
}

// New creates a settings view that edits cfg and writes it to path.
// secrets may be nil when no keyring is available.
func New(path string, cfg model.AppConfig, probe Prober, secrets SecretSetter, width, height int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.ColorBlue)

	return Model{
		path:    path,
		current: cfg,
		probe:   probe,
		secrets: secrets,
		fb:      &formBindings{},
		spinner: sp,
		width:   width,
		height:  height,
	}
}

// Start fills the form from the current configuration. The password
// field is never pre-filled.
func (m *Model) Start() tea.Cmd {
	c := m.current
	*m.fb = formBindings{
		baseURL:           c.API.BaseURL,
		pollSeconds:       strconv.Itoa(max(c.Poll.IntervalMS/1000, 1)),
		autoMarkRead:      c.Poll.AutoMarkRead,
		showNotifications: c.Poll.ShowNotifications,
		mailboxEnabled:    c.Mailbox.Enabled,
		mailHost:          c.Mailbox.Host,
		mailPort:          c.Mailbox.Port,
		mailUser:          c.Mailbox.Username,
		mailTLS:           c.Mailbox.TLS,
	}
	m.err = nil
	m.pending = nil
	return m.showForm()
}

// Mode returns the current view state.
func (m Model) Mode() Mode {
	return m.mode
}

// Config returns the configuration as last saved.
func (m Model) Config() model.AppConfig {
	return m.current
}

// Update handles messages and dispatches based on current mode.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case resultMsg:
		m.mode = ModeResult
		m.err = msg.err
		if msg.cfg == nil {
			return m, nil
		}
		m.current = *msg.cfg
		m.pending = nil
		cfg := *msg.cfg
		return m, func() tea.Msg { return SavedMsg{Config: cfg} }

	case spinner.TickMsg:
		if m.mode != ModeValidating {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch m.mode {
		case ModeValidating:
			return m, nil
		case ModeResult:
			return m.handleResultKeys(msg)
		case ModeForm:
			if msg.String() == "esc" {
				return m, done
			}
		}
	}

	return m.updateForm(msg)
}

func (m Model) handleResultKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		if m.err != nil {
			return m, m.showForm()
		}
		return m, done
	case "r":
		if m.err != nil && m.pending != nil {
			return m, m.run(*m.pending)
		}
	}
	return m, nil
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.mode != ModeForm || m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		cfg, err := m.apply()
		if err != nil {
			m.err = err
			return m, m.showForm()
		}
		return m, m.run(cfg)
	case huh.StateAborted:
		return m, done
	}

	return m, cmd
}

// apply merges the form values into a copy of the current configuration.
func (m Model) apply() (model.AppConfig, error) {
	cfg := m.current

	secs, err := strconv.Atoi(strings.TrimSpace(m.fb.pollSeconds))
	if err != nil || secs <= 0 {
		return cfg, fmt.Errorf("poll interval must be a positive number of seconds")
	}

	cfg.API.BaseURL = strings.TrimRight(strings.TrimSpace(m.fb.baseURL), "/")
	cfg.Poll.IntervalMS = secs * 1000
	cfg.Poll.AutoMarkRead = m.fb.autoMarkRead
	cfg.Poll.ShowNotifications = m.fb.showNotifications
	cfg.Mailbox.Enabled = m.fb.mailboxEnabled
	cfg.Mailbox.Host = strings.TrimSpace(m.fb.mailHost)
	cfg.Mailbox.Port = strings.TrimSpace(m.fb.mailPort)
	cfg.Mailbox.Username = strings.TrimSpace(m.fb.mailUser)
	cfg.Mailbox.TLS = m.fb.mailTLS
	return cfg, nil
}

// run starts the probe-then-save command for cfg.
func (m *Model) run(cfg model.AppConfig) tea.Cmd {
	m.mode = ModeValidating
	m.err = nil
	m.pending = &cfg
	return tea.Batch(m.spinner.Tick, m.probeAndSave(cfg))
}

// probeAndSave tests the backend, writes the file, then stores the
// mailbox password when one was entered.
func (m Model) probeAndSave(cfg model.AppConfig) tea.Cmd {
	probe := m.probe
	secrets := m.secrets
	path := m.path
	password := m.fb.mailPassword

	return func() tea.Msg {
		if probe != nil {
			ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
			defer cancel()
			if err := probe(ctx, cfg.API.BaseURL); err != nil {
				return resultMsg{err: fmt.Errorf("backend unreachable: %w", err)}
			}
		}

		if err := model.SaveConfig(path, &cfg); err != nil {
			return resultMsg{err: err}
		}

		if cfg.Mailbox.Enabled && password != "" {
			if secrets == nil {
				return resultMsg{cfg: &cfg, err: ErrNoKeyring}
			}
			if err := secrets.Set(credential.KeyMailboxPassword, password); err != nil {
				return resultMsg{cfg: &cfg, err: fmt.Errorf("config saved but password was not: %w", err)}
			}
		}

		return resultMsg{cfg: &cfg}
	}
}

func done() tea.Msg { return DoneMsg{} }

func (m *Model) showForm() tea.Cmd {
	m.mode = ModeForm
	m.fb.mailPassword = ""
	m.form = m.buildForm()
	return m.form.Init()
}

func (m *Model) buildForm() *huh.Form {
	fb := m.fb
	mailboxOff := func() bool { return !fb.mailboxEnabled }

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Backend URL").
				Description("PulsePH API base URL").
				Placeholder(model.DefaultBaseURL).
				Value(&fb.baseURL).
				Validate(validateURL),
			huh.NewInput().
				Title("Poll interval").
				Description("Seconds between message checks").
				Placeholder("5").
				Value(&fb.pollSeconds).
				Validate(validateSeconds),
			huh.NewConfirm().
				Title("Mark messages read").
				Description("Mark announcements read while the inbox is visible").
				Affirmative("Yes").
				Negative("No").
				Value(&fb.autoMarkRead),
			huh.NewConfirm().
				Title("Notifications").
				Description("Show a toast when a new announcement arrives").
				Affirmative("Yes").
				Negative("No").
				Value(&fb.showNotifications),
			huh.NewConfirm().
				Title("Mailbox source").
				Description("Also read announcements from an IMAP mailbox").
				Affirmative("Enabled").
				Negative("Disabled").
				Value(&fb.mailboxEnabled),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("IMAP Host").
				Placeholder("imap.example.com").
				Value(&fb.mailHost).
				Validate(validateRequired("IMAP Host")),
			huh.NewInput().
				Title("IMAP Port").
				Placeholder("993").
				Value(&fb.mailPort).
				Validate(validatePort),
			huh.NewInput().
				Title("Username").
				Placeholder("alerts@example.com").
				Value(&fb.mailUser).
				Validate(validateRequired("Username")),
			huh.NewInput().
				Title("Password").
				Description("Leave empty to keep the stored password").
				EchoMode(huh.EchoModePassword).
				Value(&fb.mailPassword),
			huh.NewConfirm().
				Title("Use TLS").
				Affirmative("Yes").
				Negative("No").
				Value(&fb.mailTLS),
		).WithHideFunc(mailboxOff),
	).WithWidth(m.formWidth()).WithShowHelp(false)
}

// View renders the settings view based on the current mode.
func (m Model) View() string {
	parts := []string{theme.TitleStyle.Render("Settings"), ""}

	switch m.mode {
	case ModeValidating:
		parts = append(parts, m.spinner.View()+" Testing connection...")
	case ModeResult:
		parts = append(parts, m.viewResult())
	default:
		if m.err != nil {
			parts = append(parts, theme.ErrorBannerStyle.Render(m.err.Error()), "")
		}
		if m.form != nil {
			parts = append(parts, m.form.View())
		}
		parts = append(parts, theme.HelpStyle.Render("enter next | esc back"))
	}

	return lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Height(m.height).
		Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (m Model) viewResult() string {
	if m.err != nil {
		hint := "enter/esc edit"
		if m.pending != nil {
			hint = "r retry | " + hint
		}
		return lipgloss.NewStyle().Bold(true).Foreground(theme.ColorRed).Render("Not saved") +
			"\n\n" + m.err.Error() + "\n\n" + theme.HelpStyle.Render(hint)
	}
	return lipgloss.NewStyle().Bold(true).Foreground(theme.ColorGreen).Render("Saved. Restart pulseph to apply.") +
		"\n\n" + theme.HelpStyle.Render("enter/esc back")
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

// --- Validators ---

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validateURL(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("URL is required")
	}
	parsed, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("URL must include scheme and host (e.g., http://localhost:8000)")
	}
	return nil
}

func validatePort(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("port is required")
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return fmt.Errorf("port must be a number")
		}
	}
	return nil
}

func validateSeconds(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return fmt.Errorf("enter a whole number of seconds")
	}
	return nil
}
