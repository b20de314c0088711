// Package toast renders the dispatcher's active notifications as a stack
// of cards.
package toast

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/pulseph/internal/model"
	"github.com/nhle/pulseph/internal/theme"
)

// maxVisible caps how many toasts are drawn at once; older ones stay
// queued until the newer ones expire or are dismissed.
const maxVisible = 3

// Model holds the toasts currently on screen and which one has focus.
type Model struct {
	items   []model.Notification
	focused int
	width   int
}

// New creates an empty toast stack with the given card width.
func New(width int) Model {
	return Model{width: width}
}

// SetItems replaces the stack with a fresh dispatcher snapshot. Focus
// follows the previously focused id when it is still present.
func (m *Model) SetItems(items []model.Notification) {
	var focusedID string
	if m.focused < len(m.items) {
		focusedID = m.items[m.focused].ID
	}

	m.items = items
	m.focused = 0
	for i, n := range items {
		if n.ID == focusedID {
			m.focused = i
			break
		}
	}
}

// SetWidth sets the card width.
func (m *Model) SetWidth(width int) {
	m.width = width
}

// Len returns the number of active toasts.
func (m Model) Len() int {
	return len(m.items)
}

// Next moves focus to the next toast, wrapping around.
func (m *Model) Next() {
	if len(m.items) == 0 {
		return
	}
	m.focused = (m.focused + 1) % len(m.items)
}

// Focused returns the toast enter or x acts on.
func (m Model) Focused() (model.Notification, bool) {
	if m.focused >= len(m.items) {
		return model.Notification{}, false
	}
	return m.items[m.focused], true
}

// View renders the newest toasts first, stacked vertically.
func (m Model) View() string {
	if len(m.items) == 0 {
		return ""
	}

	cardWidth := m.width
	if cardWidth < 20 {
		cardWidth = 20
	}

	var cards []string
	for i := len(m.items) - 1; i >= 0 && len(cards) < maxVisible; i-- {
		cards = append(cards, m.renderCard(m.items[i], i == m.focused, cardWidth))
	}

	if hidden := len(m.items) - len(cards); hidden > 0 {
		cards = append(cards, theme.HelpStyle.Render(pluralMore(hidden)))
	}

	return lipgloss.JoinVertical(lipgloss.Right, cards...)
}

func (m Model) renderCard(n model.Notification, focused bool, width int) string {
	style := theme.ToastStyle
	if focused {
		style = theme.FocusedToastStyle
	}

	head := theme.ToastTitleStyle.Render(n.Title)
	if n.Time != "" {
		head += "  " + theme.HelpStyle.Render(n.Time)
	}

	body := n.Message
	if n.Clickable() {
		body += "\n" + theme.HelpStyle.Render("enter to open")
	}

	return style.Width(width).Render(head + "\n" + body)
}

func pluralMore(n int) string {
	return fmt.Sprintf("+%d more", n)
}
