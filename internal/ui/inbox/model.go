// Package inbox renders the conversation with PulsePH.
package inbox

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/nhle/pulseph/internal/keys"
	"github.com/nhle/pulseph/internal/model"
	"github.com/nhle/pulseph/internal/theme"
)

// refetchTimeout bounds a manual retry.
const refetchTimeout = 30 * time.Second

// Conversation is the poller surface the inbox reads and drives.
type Conversation interface {
	Messages() []model.Message
	Error() string
	Loading() bool
	Refetch(ctx context.Context) error
	AppendLocal(msg model.Message)
}

// Model is the inbox view component.
type Model struct {
	conv      Conversation
	keys      *keys.KeyMap
	viewport  viewport.Model
	input     textinput.Model
	spinner   spinner.Model
	composing bool
	lastCount int
	width     int
	height    int
	now       func() time.Time
}

// New creates an inbox view.
func New(conv Conversation, keys *keys.KeyMap, width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "Message"
	ti.Prompt = "› "
	ti.CharLimit = 500

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.ColorBlue)

	m := Model{
		conv:     conv,
		keys:     keys,
		viewport: viewport.New(width, 1),
		input:    ti,
		spinner:  sp,
		now:      time.Now,
	}
	m.SetSize(width, height)
	return m
}

// Init starts the loading spinner.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Composing reports whether the compose line has focus, in which case
// global single-letter keys must not be intercepted.
func (m Model) Composing() bool {
	return m.composing
}

// Refresh re-renders the conversation from the poller. The view follows
// new messages when it was already scrolled to the bottom.
func (m *Model) Refresh() {
	msgs := m.conv.Messages()
	follow := m.viewport.AtBottom() || m.lastCount == 0
	m.viewport.SetContent(RenderConversation(msgs, m.viewport.Width))
	if follow || len(msgs) > m.lastCount {
		m.viewport.GotoBottom()
	}
	m.lastCount = len(msgs)
}

// Update handles messages for the inbox.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.conv.Loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.composing {
			return m.updateCompose(msg)
		}

		switch {
		case key.Matches(msg, m.keys.Compose):
			m.composing = true
			return m, m.input.Focus()

		case key.Matches(msg, m.keys.Retry):
			return m, m.retry()

		case key.Matches(msg, m.keys.Top):
			m.viewport.GotoTop()
			return m, nil

		case key.Matches(msg, m.keys.End):
			m.viewport.GotoBottom()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) updateCompose(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.composing = false
		m.input.Blur()
		return m, nil

	case key.Matches(msg, m.keys.Send):
		text := strings.TrimSpace(m.input.Value())
		m.input.Reset()
		if text != "" {
			m.conv.AppendLocal(m.localMessage(text))
			m.Refresh()
			m.viewport.GotoBottom()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// localMessage builds a user-authored message stamped with the current
// time.
func (m Model) localMessage(text string) model.Message {
	now := m.now()
	return model.Message{
		ID:          uuid.NewString(),
		Text:        text,
		Timestamp:   now.Format(model.DisplayTimeLayout),
		IsFromUser:  true,
		IsDelivered: true,
		CreatedAt:   now.UTC().Format(time.RFC3339Nano),
	}
}

// retry runs a manual refetch. The outcome arrives as a poller result.
func (m Model) retry() tea.Cmd {
	conv := m.conv
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), refetchTimeout)
		defer cancel()
		_ = conv.Refetch(ctx)
		return nil
	}
}

// View renders the inbox.
func (m Model) View() string {
	var parts []string

	if errMsg := m.conv.Error(); errMsg != "" {
		parts = append(parts, theme.ErrorBannerStyle.
			Width(m.width-2).
			Render("⚠ "+errMsg+"   r retry"))
	}

	if m.conv.Loading() && len(m.conv.Messages()) == 0 {
		parts = append(parts, lipgloss.Place(
			m.width, m.viewport.Height,
			lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading messages...",
		))
	} else if len(m.conv.Messages()) == 0 {
		parts = append(parts, lipgloss.Place(
			m.width, m.viewport.Height,
			lipgloss.Center, lipgloss.Center,
			theme.HelpStyle.Render("No announcements yet. New ones appear here as they arrive."),
		))
	} else {
		parts = append(parts, m.viewport.View())
	}

	if m.composing {
		parts = append(parts, m.input.View())
	} else {
		parts = append(parts, theme.HelpStyle.Render("i to reply"))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// SetSize updates the inbox dimensions. Two lines are reserved for the
// error banner and the compose line.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	vh := height - 2
	if vh < 1 {
		vh = 1
	}
	m.viewport.Width = width
	m.viewport.Height = vh
	m.input.Width = width - 4
	m.viewport.SetContent(RenderConversation(m.conv.Messages(), width))
}
