package app

import (
	"context"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/pulseph/internal/model"
)

// storeTimeout bounds local store calls made from commands.
const storeTimeout = 5 * time.Second

// routeResolvedMsg carries the starting route and the saved session.
type routeResolvedMsg struct {
	route   string
	auth    *model.UserAuth
	profile *model.UserProfile
	err     error
}

// routeRequestMsg is sent when a toast click asks to navigate.
type routeRequestMsg struct {
	route string
}

// unreadCountMsg carries the number of unread notifications to the UI.
type unreadCountMsg struct {
	count int
}

// loggedOutMsg is sent after the session has been cleared.
type loggedOutMsg struct {
	err error
}

// resolveRoute loads the saved session and decides the first screen.
func (m Model) resolveRoute() tea.Cmd {
	s := m.session
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()

		route, err := s.Route(ctx)
		if err != nil {
			return routeResolvedMsg{route: route, err: err}
		}
		a, err := s.CurrentAuth(ctx)
		if err != nil {
			return routeResolvedMsg{route: route, err: err}
		}
		p, err := s.Profile(ctx)
		return routeResolvedMsg{route: route, auth: a, profile: p, err: err}
	}
}

// waitForRoute blocks until a navigate request arrives on ch.
func waitForRoute(ch <-chan string) tea.Cmd {
	return func() tea.Msg {
		route, ok := <-ch
		if !ok {
			return nil
		}
		return routeRequestMsg{route: route}
	}
}

// logout clears the saved session.
func (m Model) logout() tea.Cmd {
	s := m.session
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		return loggedOutMsg{err: s.Logout(ctx)}
	}
}

// fetchUnreadCount returns a tea.Cmd that queries the store for the
// number of unread notifications.
func (m Model) fetchUnreadCount() tea.Cmd {
	h := m.history
	if h == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()

		return countUnread(ctx, h)
	}
}

func countUnread(ctx context.Context, h NotificationLog) unreadCountMsg {
	notifications, err := h.GetUnreadNotifications(ctx)
	if err != nil {
		return unreadCountMsg{count: 0}
	}
	return unreadCountMsg{count: len(notifications)}
}

// markNotificationRead records that the user acted on a toast.
func (m Model) markNotificationRead(id string) tea.Cmd {
	h := m.history
	if h == nil {
		return nil
	}
	logger := m.logger
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()

		if err := h.MarkNotificationRead(ctx, id); err != nil {
			logger.Warn("marking notification read failed",
				slog.String("op", "app.Model.markNotificationRead"),
				slog.Any("error", err),
			)
		}
		return countUnread(ctx, h)
	}
}
