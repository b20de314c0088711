package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/pulseph/internal/model"
	"github.com/nhle/pulseph/internal/testutil"
)

func TestAuthRoundTrip(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	got, err := s.GetAuth(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	at := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, s.SaveAuth(ctx, model.UserAuth{
		PhoneNumber:     "+639171234567",
		IsAuthenticated: true,
		AuthenticatedAt: at,
	}))

	got, err = s.GetAuth(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "+639171234567", got.PhoneNumber)
	assert.True(t, got.IsAuthenticated)
	assert.True(t, got.AuthenticatedAt.Equal(at))
	assert.True(t, got.Valid())
}

func TestProfileRoundTripAndClear(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	completed := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	profile := model.UserProfile{
		UserAuth: model.UserAuth{
			PhoneNumber:     "+639171234567",
			IsAuthenticated: true,
			AuthenticatedAt: completed.Add(-time.Hour),
		},
		Locations:             []string{"Manila", "Makati"},
		OnboardingCompleted:   true,
		OnboardingCompletedAt: &completed,
	}
	require.NoError(t, s.SaveProfile(ctx, profile))
	require.NoError(t, s.SaveAuth(ctx, profile.UserAuth))

	got, err := s.GetProfile(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, []string{"Manila", "Makati"}, got.Locations)
	assert.True(t, got.OnboardingCompleted)
	require.NotNil(t, got.OnboardingCompletedAt)
	assert.True(t, got.OnboardingCompletedAt.Equal(completed))

	require.NoError(t, s.ClearSession(ctx))

	gotProfile, err := s.GetProfile(ctx)
	require.NoError(t, err)
	assert.Nil(t, gotProfile)
	gotAuth, err := s.GetAuth(ctx)
	require.NoError(t, err)
	assert.Nil(t, gotAuth)
}

func TestProfileWithoutOnboarding(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveProfile(ctx, model.UserProfile{
		UserAuth: model.UserAuth{PhoneNumber: "+639171234567", AuthenticatedAt: time.Now()},
	}))

	got, err := s.GetProfile(ctx)
	require.NoError(t, err)
	assert.Empty(t, got.Locations)
	assert.False(t, got.OnboardingCompleted)
	assert.Nil(t, got.OnboardingCompletedAt)
}

func TestMessageCache(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	owner := "+639171234567"

	require.NoError(t, s.UpsertMessages(ctx, owner, []model.Message{
		{ID: "m1", Text: "first", Timestamp: "9:00 AM", IsDelivered: true, CreatedAt: "2025-06-01T01:00:00Z"},
		{ID: "m2", Text: "second", Timestamp: "10:00 AM", IsDelivered: true, CreatedAt: "2025-06-01T02:00:00Z"},
	}))
	require.NoError(t, s.UpsertMessages(ctx, "+639998887777", []model.Message{{ID: "other", Text: "x"}}))

	require.NoError(t, s.MarkMessagesRead(ctx, owner, []string{"m1"}))
	require.NoError(t, s.MarkMessagesRead(ctx, owner, nil))

	// Re-upserting an unread copy keeps the read flag.
	require.NoError(t, s.UpsertMessages(ctx, owner, []model.Message{
		{ID: "m1", Text: "first (edited)", Timestamp: "9:00 AM", IsDelivered: true, CreatedAt: "2025-06-01T01:00:00Z"},
	}))

	msgs, err := s.GetMessages(ctx, owner)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "m1", msgs[0].ID)
	assert.Equal(t, "first (edited)", msgs[0].Text)
	assert.True(t, msgs[0].IsRead)
	assert.True(t, msgs[0].IsDelivered)
	assert.False(t, msgs[1].IsRead)
	assert.Equal(t, "2025-06-01T02:00:00Z", msgs[1].CreatedAt)

	require.NoError(t, s.DeleteMessages(ctx, owner))
	msgs, err = s.GetMessages(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, msgs)

	others, err := s.GetMessages(ctx, "+639998887777")
	require.NoError(t, err)
	assert.Len(t, others, 1)
}

func TestNotificationHistory(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	require.NoError(t, s.CreateNotification(ctx, model.Notification{
		ID: "n1", Title: "PulsePH", Message: "older", Time: "8:00 AM",
		ClickAction: model.ClickActionNavigate, NavigateTo: "/messages", CreatedAt: base,
	}))
	require.NoError(t, s.CreateNotification(ctx, model.Notification{
		ID: "n2", Title: "PulsePH", Message: "newer", CreatedAt: base.Add(time.Minute),
	}))
	// Generated id and timestamp.
	require.NoError(t, s.CreateNotification(ctx, model.Notification{Message: "auto"}))

	all, err := s.GetNotifications(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	latest, err := s.GetNotifications(ctx, 2)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, "auto", latest[0].Message)
	assert.Equal(t, "n2", latest[1].ID)

	require.NoError(t, s.MarkNotificationRead(ctx, "n1"))
	unread, err := s.GetUnreadNotifications(ctx)
	require.NoError(t, err)
	require.Len(t, unread, 2)
	for _, n := range unread {
		assert.NotEqual(t, "n1", n.ID)
		assert.False(t, n.Read)
	}
}
