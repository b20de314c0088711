// Package notify keeps the queue of transient toast notifications.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/pulseph/internal/model"
)

// Navigator handles "navigate" click actions.
type Navigator func(route string)

// History records every shown notification.
type History interface {
	CreateNotification(ctx context.Context, n model.Notification) error
}

// ChangedMsg is a tea.Msg-compatible event carrying the active queue after
// any change.
type ChangedMsg struct {
	Active []model.Notification
}

// Dispatcher is the process-wide notification queue. Notifications stack
// in show order and are removed after their duration, on Hide, on Click or
// by ClearAll.
type Dispatcher struct {
	mu     sync.Mutex
	items  []model.Notification
	timers map[string]*time.Timer
	subs   []chan ChangedMsg

	navigate        Navigator
	history         History
	logger          *slog.Logger
	now             func() time.Time
	defaultDuration time.Duration
}

// Option customises a Dispatcher.
type Option func(*Dispatcher)

// WithNavigator sets the handler for navigate click actions.
func WithNavigator(n Navigator) Option {
	return func(d *Dispatcher) { d.navigate = n }
}

// WithHistory records shown notifications.
func WithHistory(h History) Option {
	return func(d *Dispatcher) { d.history = h }
}

// WithDefaultDuration sets the lifetime used when NotificationData has
// none. Non-positive values keep model.DefaultNotificationDuration.
func WithDefaultDuration(dur time.Duration) Option {
	return func(d *Dispatcher) {
		if dur > 0 {
			d.defaultDuration = dur
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		timers:          make(map[string]*time.Timer),
		logger:          slog.Default(),
		now:             time.Now,
		defaultDuration: model.DefaultNotificationDuration,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// SetNavigator replaces the navigate handler. The TUI installs it once
// the router exists.
func (d *Dispatcher) SetNavigator(n Navigator) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.navigate = n
}

// Show queues a notification and schedules its removal. It returns the
// generated id.
func (d *Dispatcher) Show(data model.NotificationData) string {
	now := d.now()
	id := newID()

	duration := data.Duration
	if duration <= 0 {
		duration = d.defaultDuration
	}

	n := model.Notification{
		ID:            id,
		Title:         data.Title,
		Message:       data.Message,
		Time:          data.Time,
		Duration:      duration,
		ClickAction:   data.ClickAction,
		NavigateTo:    data.NavigateTo,
		OnCustomClick: data.OnCustomClick,
		CreatedAt:     now,
	}

	d.mu.Lock()
	d.items = append(d.items, n)
	d.timers[id] = time.AfterFunc(duration, func() { d.Hide(id) })
	d.mu.Unlock()

	if d.history != nil {
		if err := d.history.CreateNotification(context.Background(), n); err != nil {
			d.logger.Warn("recording notification failed",
				slog.String("op", "notify.Dispatcher.Show"),
				slog.Any("error", err),
			)
		}
	}

	d.publish()
	return id
}

// Hide removes a notification by id. Unknown ids are ignored.
func (d *Dispatcher) Hide(id string) {
	d.mu.Lock()
	removed := false
	for i, n := range d.items {
		if n.ID == id {
			d.items = append(d.items[:i:i], d.items[i+1:]...)
			removed = true
			break
		}
	}
	if t, ok := d.timers[id]; ok {
		t.Stop()
		delete(d.timers, id)
	}
	d.mu.Unlock()

	if removed {
		d.publish()
	}
}

// ClearAll removes every notification.
func (d *Dispatcher) ClearAll() {
	d.mu.Lock()
	for id, t := range d.timers {
		t.Stop()
		delete(d.timers, id)
	}
	hadItems := len(d.items) > 0
	d.items = nil
	d.mu.Unlock()

	if hadItems {
		d.publish()
	}
}

// Click runs the notification's action and hides it. It reports whether
// the id was active.
func (d *Dispatcher) Click(id string) bool {
	d.mu.Lock()
	var (
		n     model.Notification
		found bool
	)
	for _, item := range d.items {
		if item.ID == id {
			n, found = item, true
			break
		}
	}
	navigate := d.navigate
	d.mu.Unlock()

	if !found {
		return false
	}

	switch {
	case n.ClickAction == model.ClickActionNavigate && n.NavigateTo != "":
		if navigate != nil {
			navigate(n.NavigateTo)
		}
	case n.ClickAction == model.ClickActionCustom && n.OnCustomClick != nil:
		n.OnCustomClick()
	}

	d.Hide(id)
	return true
}

// Active returns a snapshot of the queue in show order.
func (d *Dispatcher) Active() []model.Notification {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]model.Notification, len(d.items))
	copy(out, d.items)
	return out
}

// Subscribe returns a channel receiving the queue after every change.
// Slow subscribers miss intermediate states, never the latest one.
func (d *Dispatcher) Subscribe() <-chan ChangedMsg {
	ch := make(chan ChangedMsg, 1)
	d.mu.Lock()
	d.subs = append(d.subs, ch)
	d.mu.Unlock()
	return ch
}

func (d *Dispatcher) publish() {
	d.mu.Lock()
	msg := ChangedMsg{Active: make([]model.Notification, len(d.items))}
	copy(msg.Active, d.items)
	subs := d.subs
	d.mu.Unlock()

	for _, ch := range subs {
		// Replace a stale pending event with the newest one.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- msg:
		default:
		}
	}
}

// newID returns a time-ordered UUIDv7, falling back to a random v4 if the
// clock source fails.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
