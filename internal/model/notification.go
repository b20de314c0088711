package model

import "time"

// Click actions for notifications.
const (
	ClickActionNavigate = "navigate"
	ClickActionCustom   = "custom"
)

// DefaultNotificationDuration is how long a notification stays visible when
// no duration is given.
const DefaultNotificationDuration = 5 * time.Second

// NotificationData is what callers pass to show a notification.
type NotificationData struct {
	Title   string
	Message string
	Time    string

	// Duration is the visible lifetime. Zero means
	// DefaultNotificationDuration.
	Duration time.Duration

	// ClickAction is ClickActionNavigate, ClickActionCustom or empty
	// (not clickable).
	ClickAction   string
	NavigateTo    string
	OnCustomClick func()
}

// Notification is a transient toast shown over the UI.
type Notification struct {
	// ID is generated from the current time when the notification is shown.
	ID string `json:"id" db:"id"`

	Title    string        `json:"title" db:"title"`
	Message  string        `json:"message" db:"message"`
	Time     string        `json:"time" db:"time"`
	Duration time.Duration `json:"duration" db:"-"`

	ClickAction   string `json:"click_action" db:"click_action"`
	NavigateTo    string `json:"navigate_to" db:"navigate_to"`
	OnCustomClick func() `json:"-" db:"-"`

	// Read indicates whether the user has dismissed this notification.
	Read bool `json:"read" db:"read"`

	// CreatedAt is when this notification was shown.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Clickable reports whether clicking the notification does anything besides
// hiding it.
func (n Notification) Clickable() bool {
	return n.ClickAction != ""
}
