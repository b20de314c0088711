package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/pulseph/internal/auth"
	"github.com/nhle/pulseph/internal/keys"
	"github.com/nhle/pulseph/internal/model"
	"github.com/nhle/pulseph/internal/notify"
	"github.com/nhle/pulseph/internal/phone"
	appsync "github.com/nhle/pulseph/internal/sync"
	"github.com/nhle/pulseph/internal/ui"
	"github.com/nhle/pulseph/internal/ui/authview"
	helpview "github.com/nhle/pulseph/internal/ui/help"
	"github.com/nhle/pulseph/internal/ui/inbox"
	"github.com/nhle/pulseph/internal/ui/onboarding"
	"github.com/nhle/pulseph/internal/ui/settings"
	"github.com/nhle/pulseph/internal/ui/toast"
)

// Toast copy shown after onboarding.
const (
	allSetTitle   = "All Set!"
	allSetMessage = "You'll now receive notifications for your selected locations."
)

// routeSettings is the in-app configuration editor.
const routeSettings = "/settings"

// Session is the sign-in surface the root model routes on.
type Session interface {
	authview.Signer
	onboarding.ProfileSaver
	CurrentAuth(ctx context.Context) (*model.UserAuth, error)
	Profile(ctx context.Context) (*model.UserProfile, error)
	Route(ctx context.Context) (string, error)
	Logout(ctx context.Context) error
}

// NotificationLog is the notification history the header counts.
type NotificationLog interface {
	GetUnreadNotifications(ctx context.Context) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error
}

// Deps holds everything the TUI needs. Poller and Dispatcher are shared
// with the rest of the process.
type Deps struct {
	Session    Session
	Directory  onboarding.Directory
	Poller     *appsync.Poller
	Dispatcher *notify.Dispatcher
	History    NotificationLog

	// Coordinate, when set, drives nearest-LGU detection in onboarding.
	Coordinate *model.Coordinate

	// Config enables the settings screen, which writes to ConfigPath.
	// Secrets may be nil when no keyring is available.
	Config     *model.AppConfig
	ConfigPath string
	Probe      settings.Prober
	Secrets    settings.SecretSetter

	Logger *slog.Logger
}

// Model is the root Bubble Tea model that manages routing, layout and the
// shared poller and dispatcher subscriptions.
type Model struct {
	route    string
	showHelp bool
	layout   ui.Layout
	keys     *keys.KeyMap

	authView       authview.Model
	onboardingView onboarding.Model
	inboxView      inbox.Model
	helpView       helpview.Model
	settingsView   settings.Model
	toasts         toast.Model
	hasSettings    bool

	session    Session
	poller     *appsync.Poller
	dispatcher *notify.Dispatcher
	history    NotificationLog
	notifyCh   <-chan notify.ChangedMsg
	routeCh    chan string
	coord      *model.Coordinate
	logger     *slog.Logger

	phone          string
	locations      []string
	announceLatest bool
	unreadCount    int
	statusMessage  string
	ready          bool
}

// New creates the root application model. It installs a navigator on the
// dispatcher so toast clicks route through the model.
func New(d Deps) Model {
	k := keys.DefaultKeyMap()
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	routeCh := make(chan string, 4)
	d.Dispatcher.SetNavigator(func(route string) {
		select {
		case routeCh <- route:
		default:
		}
	})

	var sv settings.Model
	if d.Config != nil {
		sv = settings.New(d.ConfigPath, *d.Config, d.Probe, d.Secrets, 80, 24)
	}

	return Model{
		keys:           k,
		authView:       authview.New(d.Session, 80, 24),
		onboardingView: onboarding.New(d.Directory, d.Session, 80, 24),
		inboxView:      inbox.New(d.Poller, k, 80, 24),
		helpView:       helpview.New(k, 80, 24),
		settingsView:   sv,
		hasSettings:    d.Config != nil,
		toasts:         toast.New(36),
		session:        d.Session,
		poller:         d.Poller,
		dispatcher:     d.Dispatcher,
		history:        d.History,
		notifyCh:       d.Dispatcher.Subscribe(),
		routeCh:        routeCh,
		coord:          d.Coordinate,
		logger:         logger,
	}
}

// Init resolves the starting route and subscribes to poller results,
// toast changes and toast navigation.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("PulsePH"),
		m.resolveRoute(),
		m.poller.WaitForNextResult(),
		notify.WaitForChange(m.notifyCh),
		waitForRoute(m.routeCh),
		m.fetchUnreadCount(),
	)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		contentWidth := m.layout.ContentWidth()
		contentHeight := m.layout.ContentHeight()
		m.authView.SetSize(contentWidth, contentHeight)
		m.onboardingView.SetSize(contentWidth, contentHeight)
		m.inboxView.SetSize(contentWidth, contentHeight)
		m.helpView.SetSize(contentWidth, contentHeight)
		m.settingsView.SetSize(contentWidth, contentHeight)
		m.toasts.SetWidth(toastWidth(contentWidth))
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case routeResolvedMsg:
		if msg.err != nil {
			m.logger.Error("resolving start route failed",
				slog.String("op", "app.Model.Update"),
				slog.Any("error", msg.err),
			)
		}
		if msg.auth != nil {
			m.phone = msg.auth.PhoneNumber
		}
		if msg.profile != nil {
			m.locations = msg.profile.Locations
		}
		return m, m.navigate(msg.route)

	case routeRequestMsg:
		return m, tea.Batch(m.navigate(msg.route), waitForRoute(m.routeCh))

	case authview.SignedInMsg:
		m.phone = msg.Auth.PhoneNumber
		m.locations = nil
		return m, m.navigate(auth.RouteOnboarding)

	case onboarding.CompletedMsg:
		m.locations = msg.Profile.Locations
		m.announceLatest = true
		m.dispatcher.Show(model.NotificationData{
			Title:   allSetTitle,
			Message: allSetMessage,
			Time:    "now",
		})
		return m, m.navigate(auth.RouteMessages)

	case onboarding.CancelMsg:
		return m, m.navigate(auth.RouteMessages)

	case settings.SavedMsg:
		m.logger.Info("configuration saved",
			slog.String("base_url", msg.Config.API.BaseURL),
			slog.Bool("mailbox", msg.Config.Mailbox.Enabled),
		)
		return m, nil

	case settings.DoneMsg:
		return m, m.navigate(auth.RouteMessages)

	case appsync.ResultMsg:
		m.inboxView.Refresh()
		if m.announceLatest && len(msg.Messages) > 0 {
			m.announceLatest = false
			m.showLatest(msg.Messages)
		}
		return m, m.poller.WaitForNextResult()

	case notify.ChangedMsg:
		m.toasts.SetItems(msg.Active)
		return m, tea.Batch(notify.WaitForChange(m.notifyCh), m.fetchUnreadCount())

	case unreadCountMsg:
		m.unreadCount = msg.count
		return m, nil

	case loggedOutMsg:
		if msg.err != nil {
			m.statusMessage = msg.err.Error()
			return m, nil
		}
		m.phone = ""
		m.locations = nil
		m.statusMessage = ""
		m.dispatcher.ClearAll()
		return m, m.navigate(auth.RouteAuth)

	case tea.FocusMsg:
		if m.route == auth.RouteMessages {
			m.poller.SetVisible(true)
		}
		return m, nil

	case tea.BlurMsg:
		m.poller.SetVisible(false)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.poller.Stop()
			return m, tea.Quit
		}

		if m.showHelp {
			if key.Matches(msg, m.keys.Help) || key.Matches(msg, m.keys.Back) {
				m.showHelp = false
			}
			return m, nil
		}

		if m.route == auth.RouteMessages && !m.inboxView.Composing() {
			if cmd, handled := m.handleInboxKey(msg); handled {
				return m, cmd
			}
		}
	}

	// Delegate to active sub-view
	return m.updateActiveView(msg)
}

// handleInboxKey processes global keys that only apply while the inbox is
// shown and the compose line is not focused.
func (m *Model) handleInboxKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.poller.Stop()
		return tea.Quit, true

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return nil, true

	case key.Matches(msg, m.keys.NextToast):
		m.toasts.Next()
		return nil, true

	case key.Matches(msg, m.keys.OpenToast):
		n, ok := m.toasts.Focused()
		if !ok {
			return nil, false
		}
		m.dispatcher.Click(n.ID)
		return m.markNotificationRead(n.ID), true

	case key.Matches(msg, m.keys.DismissToast):
		n, ok := m.toasts.Focused()
		if !ok {
			return nil, false
		}
		m.dispatcher.Hide(n.ID)
		return m.markNotificationRead(n.ID), true

	case key.Matches(msg, m.keys.Locations):
		return m.navigate(auth.RouteOnboarding), true

	case key.Matches(msg, m.keys.Settings):
		if !m.hasSettings {
			return nil, false
		}
		return m.navigate(routeSettings), true

	case key.Matches(msg, m.keys.Logout):
		return m.logout(), true
	}
	return nil, false
}

// navigate switches the active screen. The poller only runs on the inbox.
func (m *Model) navigate(route string) tea.Cmd {
	if route != auth.RouteAuth && m.phone == "" {
		route = auth.RouteAuth
	}
	if route == m.route && route == auth.RouteMessages {
		return nil
	}

	m.logger.Debug("navigating",
		slog.String("from", m.route),
		slog.String("to", route),
	)
	m.route = route
	m.showHelp = false

	switch route {
	case auth.RouteAuth:
		m.poller.SetPhoneNumber("")
		return m.authView.Start()

	case auth.RouteOnboarding:
		m.poller.Stop()
		return m.onboardingView.Start(m.phone, m.locations, m.coord)

	case routeSettings:
		if !m.hasSettings {
			return m.navigate(auth.RouteMessages)
		}
		m.poller.Stop()
		return m.settingsView.Start()

	default:
		m.route = auth.RouteMessages
		m.poller.SetPhoneNumber(m.phone)
		m.poller.SetVisible(true)
		m.inboxView.Refresh()
		return m.inboxView.Init()
	}
}

// showLatest toasts the newest PulsePH message once onboarding finishes.
func (m *Model) showLatest(msgs []model.Message) {
	for i := len(msgs) - 1; i >= 0; i-- {
		latest := msgs[i]
		if latest.IsFromUser {
			continue
		}
		ts := latest.Timestamp
		if ts == "" {
			ts = "now"
		}
		m.dispatcher.Show(model.NotificationData{
			Title:       appsync.NotificationTitle,
			Message:     latest.Text,
			Time:        ts,
			Duration:    appsync.NewMessageNotificationDuration,
			ClickAction: model.ClickActionNavigate,
			NavigateTo:  appsync.MessagesRoute,
		})
		return
	}
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.route {
	case auth.RouteAuth:
		m.authView, cmd = m.authView.Update(msg)
	case auth.RouteOnboarding:
		m.onboardingView, cmd = m.onboardingView.Update(msg)
	case routeSettings:
		m.settingsView, cmd = m.settingsView.Update(msg)
	case auth.RouteMessages:
		m.inboxView, cmd = m.inboxView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	headerTitle := "PulsePH"
	if m.phone != "" && m.route != auth.RouteAuth {
		headerTitle = fmt.Sprintf("PulsePH · %s", phone.FormatDisplay(m.phone))
	}
	if m.unreadCount > 0 {
		headerTitle = fmt.Sprintf("%s [%d new]", headerTitle, m.unreadCount)
	}

	header := m.layout.RenderHeader(headerTitle, m.pollStatus())
	content := ui.Overlay(m.renderContent(), m.toasts.View(), m.layout.ContentWidth())
	statusBar := m.layout.RenderStatusBar(m.keyHints())

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// renderContent returns the rendered string for the current route.
func (m Model) renderContent() string {
	if m.showHelp {
		return m.helpView.View()
	}

	switch m.route {
	case auth.RouteAuth:
		return m.authView.View()
	case auth.RouteOnboarding:
		return m.onboardingView.View()
	case routeSettings:
		return m.settingsView.View()
	case auth.RouteMessages:
		return m.inboxView.View()
	default:
		return ""
	}
}

// pollStatus returns a short string describing the poller state.
func (m Model) pollStatus() string {
	if m.route != auth.RouteMessages {
		return ""
	}
	if m.poller.Error() != "" {
		return "⚠ offline"
	}
	if m.poller.Loading() {
		return "loading"
	}
	return m.poller.State().String()
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	if m.statusMessage != "" {
		return m.statusMessage
	}
	if m.showHelp {
		return "? close help | esc back"
	}

	switch m.route {
	case auth.RouteAuth:
		return "enter continue | ctrl+c quit"
	case auth.RouteOnboarding:
		return "enter confirm | esc back | ctrl+c quit"
	case routeSettings:
		return "tab next field | enter continue | esc back | ctrl+c quit"
	default:
		if m.inboxView.Composing() {
			return "enter send | esc cancel"
		}
		if m.toasts.Len() > 0 {
			return "enter open toast | tab next | x dismiss | q quit"
		}
		return m.helpView.ShortView()
	}
}

// Route returns the active route.
func (m Model) Route() string {
	return m.route
}

func toastWidth(contentWidth int) int {
	w := contentWidth / 2
	if w > 44 {
		w = 44
	}
	if w < 24 {
		w = 24
	}
	return w
}
