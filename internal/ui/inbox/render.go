package inbox

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/pulseph/internal/model"
	"github.com/nhle/pulseph/internal/theme"
)

// Delivery labels shown under the latest user message.
const (
	StatusRead      = "Read"
	StatusDelivered = "Delivered"
	StatusSending   = "Sending..."
)

// DeliveryStatus returns the label for a user message.
func DeliveryStatus(m model.Message) string {
	switch {
	case m.IsRead:
		return StatusRead
	case m.IsDelivered:
		return StatusDelivered
	default:
		return StatusSending
	}
}

// RenderConversation lays msgs out as chat bubbles: PulsePH on the left,
// the user on the right, each at most 70% of width.
func RenderConversation(msgs []model.Message, width int) string {
	if width <= 0 {
		width = 80
	}
	bubbleWidth := width * 7 / 10
	if bubbleWidth < 10 {
		bubbleWidth = width
	}

	lastUser := -1
	for i, m := range msgs {
		if m.IsFromUser {
			lastUser = i
		}
	}

	blocks := make([]string, 0, len(msgs))
	for i, m := range msgs {
		blocks = append(blocks, renderBubble(m, i == lastUser, width, bubbleWidth))
	}
	return strings.Join(blocks, "\n\n")
}

func renderBubble(m model.Message, showStatus bool, width, bubbleWidth int) string {
	style := theme.IncomingBubbleStyle
	align := lipgloss.Left
	if m.IsFromUser {
		style = theme.OutgoingBubbleStyle
		align = lipgloss.Right
	}

	text := m.Text
	if lipgloss.Width(text)+style.GetHorizontalPadding() > bubbleWidth {
		style = style.Width(bubbleWidth)
	}
	bubble := style.Render(text)

	meta := m.Timestamp
	if m.IsFromUser && showStatus {
		status := DeliveryStatus(m)
		if meta != "" {
			meta += " "
		}
		meta += theme.DeliveryStatusStyle(m.IsRead).UnsetPadding().Render(status)
	}
	if !m.IsFromUser && !m.IsRead {
		meta = theme.UnreadMarkerStyle.Render("•") + " " + meta
	}

	lines := []string{bubble}
	if meta != "" {
		lines = append(lines, theme.TimestampStyle.Render(meta))
	}

	block := lipgloss.JoinVertical(align, lines...)
	return lipgloss.PlaceHorizontal(width, align, block)
}
