package mockapi_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/pulseph/internal/api"
	"github.com/nhle/pulseph/internal/mockapi"
	"github.com/nhle/pulseph/internal/model"
	"github.com/nhle/pulseph/internal/source/backend"
)

func newServer(t *testing.T, cfg mockapi.RouterConfig) (*mockapi.Backend, *httptest.Server) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	b := mockapi.NewBackend([]string{"Manila", "Makati", "Pasig"})
	srv := httptest.NewServer(mockapi.NewRouter(mockapi.NewHandler(logger, b), cfg, logger))
	t.Cleanup(srv.Close)
	return b, srv
}

func TestEndToEndAnnouncementFlow(t *testing.T) {
	b, srv := newServer(t, mockapi.RouterConfig{})
	c := api.NewClient(srv.URL, api.WithRateLimit(0))
	ctx := context.Background()

	names, err := c.FetchLocationNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Makati", "Manila", "Pasig"}, names)

	resp, err := c.CreateUser(ctx, model.CreateUserRequest{
		Number:         "+639171234567",
		SubscribedLGUs: []string{"Manila"},
	})
	require.NoError(t, err)
	assert.True(t, resp.Success)

	// Nothing delivered yet: envelope without data.
	env, err := c.GetMessages(ctx, "+639171234567")
	require.NoError(t, err)
	assert.Nil(t, env.Data)

	data, err := b.Publish("manila", "Class suspension in Manila")
	require.NoError(t, err)
	assert.Equal(t, []string{"639171234567"}, data.SubscribedNumbers)

	msgs, err := backend.NewFetcher(c).Fetch(ctx, "+63 917 123 4567")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, data.ID, msgs[0].ID)
	assert.Equal(t, "Class suspension in Manila", msgs[0].Text)

	require.NoError(t, c.MarkMessagesRead(ctx, "+639171234567", []string{data.ID}))
	assert.True(t, b.IsRead("639171234567", data.ID))
}

func TestPublishToUnknownLGU(t *testing.T) {
	_, srv := newServer(t, mockapi.RouterConfig{})

	res, err := http.Post(srv.URL+"/announcements", "application/json",
		strings.NewReader(`{"lgu":"Atlantis","message":"hi"}`))
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestPublishValidation(t *testing.T) {
	_, srv := newServer(t, mockapi.RouterConfig{})

	res, err := http.Post(srv.URL+"/announcements", "application/json",
		strings.NewReader(`{"lgu":"Manila"}`))
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)

	body, _ := io.ReadAll(res.Body)
	assert.Contains(t, string(body), "message is required")
}

func TestCreateUserReplacesSubscriptions(t *testing.T) {
	b, srv := newServer(t, mockapi.RouterConfig{})
	c := api.NewClient(srv.URL, api.WithRateLimit(0))
	ctx := context.Background()

	_, err := c.CreateUser(ctx, model.CreateUserRequest{Number: "+639171234567", SubscribedLGUs: []string{"Manila"}})
	require.NoError(t, err)
	_, err = c.CreateUser(ctx, model.CreateUserRequest{Number: "+639171234567", SubscribedLGUs: []string{"Pasig", "Makati"}})
	require.NoError(t, err)

	subs, ok := b.Subscriptions("+639171234567")
	require.True(t, ok)
	assert.Equal(t, []string{"Pasig", "Makati"}, subs)
}

func TestRateLimit(t *testing.T) {
	_, srv := newServer(t, mockapi.RouterConfig{RequestsPerSecond: 0.001, Burst: 1})

	first, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	first.Body.Close()
	assert.Equal(t, http.StatusOK, first.StatusCode)

	second, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	second.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, second.StatusCode)
	assert.Equal(t, "1", second.Header.Get("Retry-After"))
}

func TestDefaultCatalogueNames(t *testing.T) {
	b := mockapi.NewBackend(nil)
	names := b.LGUNames()
	assert.Contains(t, names, "Manila")
	assert.True(t, len(names) > 7)
}
