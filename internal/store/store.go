package store

import (
	"context"

	"github.com/nhle/pulseph/internal/model"
)

// Store defines the local persistence interface: the signed-in user, their
// LGU subscriptions, the cached conversation and notification history.
type Store interface {
	// === Session ===

	SaveAuth(ctx context.Context, auth model.UserAuth) error
	// GetAuth returns nil when nobody is signed in.
	GetAuth(ctx context.Context) (*model.UserAuth, error)
	SaveProfile(ctx context.Context, profile model.UserProfile) error
	// GetProfile returns nil when no profile has been saved.
	GetProfile(ctx context.Context) (*model.UserProfile, error)
	// ClearSession removes auth and profile records.
	ClearSession(ctx context.Context) error

	// === Message cache ===

	UpsertMessages(ctx context.Context, owner string, msgs []model.Message) error
	GetMessages(ctx context.Context, owner string) ([]model.Message, error)
	MarkMessagesRead(ctx context.Context, owner string, ids []string) error
	DeleteMessages(ctx context.Context, owner string) error

	// === Notifications ===

	CreateNotification(ctx context.Context, n model.Notification) error
	GetNotifications(ctx context.Context, limit int) ([]model.Notification, error)
	GetUnreadNotifications(ctx context.Context) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error
}
