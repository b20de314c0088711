package theme

import "github.com/charmbracelet/lipgloss"

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue   = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen  = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed    = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorGray   = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite  = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}

	// Bubble fills: grey for PulsePH, blue for the user.
	ColorIncoming = lipgloss.AdaptiveColor{Dark: "#343A40", Light: "#E9ECEF"}
	ColorOutgoing = lipgloss.AdaptiveColor{Dark: "#1C7ED6", Light: "#228BE6"}
)

// HeaderStyle is used for the top bar and the application title.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// PanelStyle wraps form screens (sign-in, onboarding, help).
var PanelStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// TitleStyle is used for panel titles.
var TitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	MarginBottom(1)

// HelpStyle is used for keyboard shortcut hints and secondary text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// IncomingBubbleStyle renders messages from PulsePH on the left.
var IncomingBubbleStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorIncoming).
	Padding(0, 1)

// OutgoingBubbleStyle renders the user's own messages on the right.
var OutgoingBubbleStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#FFFFFF")).
	Background(ColorOutgoing).
	Padding(0, 1)

// TimestampStyle is used for the line under each bubble.
var TimestampStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	PaddingLeft(1).
	PaddingRight(1)

// UnreadMarkerStyle marks PulsePH messages that are still unread.
var UnreadMarkerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorBlue)

// ErrorBannerStyle is the inline error strip shown above the conversation.
var ErrorBannerStyle = lipgloss.NewStyle().
	Foreground(ColorRed).
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderForeground(ColorRed).
	PaddingLeft(1)

// WarningStyle highlights non-fatal notices such as a failed location
// lookup.
var WarningStyle = lipgloss.NewStyle().
	Foreground(ColorYellow)

// SuccessStyle is used for completion screens.
var SuccessStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorGreen)

// ToastStyle is the card used for notification toasts.
var ToastStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBlue).
	Padding(0, 1)

// FocusedToastStyle highlights the toast that enter will click.
var FocusedToastStyle = ToastStyle.
	BorderForeground(ColorYellow)

// ToastTitleStyle renders the toast title line.
var ToastTitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite)

// DeliveryStatusStyle returns the style for the "Read"/"Delivered" label
// under a user message.
func DeliveryStatusStyle(read bool) lipgloss.Style {
	base := TimestampStyle
	if read {
		return base.Foreground(ColorBlue)
	}
	return base
}

// PollStateStyle returns a color-coded style for the poller state label.
func PollStateStyle(state string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch state {
	case "polling":
		return base.Foreground(ColorGreen)
	case "idle":
		return base.Foreground(ColorGray)
	case "error":
		return base.Foreground(ColorRed)
	default:
		return base.Foreground(ColorGray)
	}
}
