package app

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/pulseph/internal/auth"
	"github.com/nhle/pulseph/internal/model"
	"github.com/nhle/pulseph/internal/notify"
	"github.com/nhle/pulseph/internal/source"
	appsync "github.com/nhle/pulseph/internal/sync"
	"github.com/nhle/pulseph/internal/ui/authview"
	"github.com/nhle/pulseph/internal/ui/onboarding"
	"github.com/nhle/pulseph/internal/ui/settings"
)

const testNumber = "+639171234567"

type fakeSession struct {
	auth      *model.UserAuth
	profile   *model.UserProfile
	loggedOut bool
}

func (f *fakeSession) SignIn(_ context.Context, c *auth.Challenge, code string) (*model.UserAuth, error) {
	if err := c.Verify(code); err != nil {
		return nil, err
	}
	f.auth = &model.UserAuth{PhoneNumber: c.PhoneNumber, IsAuthenticated: true, AuthenticatedAt: time.Now()}
	return f.auth, nil
}

func (f *fakeSession) CompleteOnboarding(_ context.Context, locations []string) (*model.UserProfile, error) {
	f.profile = &model.UserProfile{UserAuth: *f.auth, Locations: locations, OnboardingCompleted: true}
	return f.profile, nil
}

func (f *fakeSession) CurrentAuth(context.Context) (*model.UserAuth, error) { return f.auth, nil }
func (f *fakeSession) Profile(context.Context) (*model.UserProfile, error)  { return f.profile, nil }

func (f *fakeSession) Route(context.Context) (string, error) {
	switch {
	case f.auth == nil:
		return auth.RouteAuth, nil
	case f.profile == nil || !f.profile.OnboardingCompleted:
		return auth.RouteOnboarding, nil
	default:
		return auth.RouteMessages, nil
	}
}

func (f *fakeSession) Logout(context.Context) error {
	f.auth = nil
	f.profile = nil
	f.loggedOut = true
	return nil
}

type staticDirectory struct{}

func (staticDirectory) LocationNames(context.Context) []string { return []string{"Manila"} }

func (staticDirectory) CreateUser(context.Context, model.CreateUserRequest) (*model.CreateUserResponse, error) {
	return &model.CreateUserResponse{Success: true}, nil
}

func newTestModel(t *testing.T, session *fakeSession, msgs []model.Message) (Model, *appsync.Poller, *notify.Dispatcher) {
	t.Helper()

	fetcher := source.FetcherFunc(func(context.Context, string) ([]model.Message, error) {
		return msgs, nil
	})
	p := appsync.New(fetcher, appsync.Options{Interval: time.Hour})
	t.Cleanup(p.Close)

	d := notify.NewDispatcher()
	t.Cleanup(d.ClearAll)

	m := New(Deps{
		Session:    session,
		Directory:  staticDirectory{},
		Poller:     p,
		Dispatcher: d,
	})
	return m, p, d
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

func signedIn() *fakeSession {
	a := &model.UserAuth{PhoneNumber: testNumber, IsAuthenticated: true, AuthenticatedAt: time.Now()}
	return &fakeSession{
		auth:    a,
		profile: &model.UserProfile{UserAuth: *a, Locations: []string{"Manila"}, OnboardingCompleted: true},
	}
}

func TestStartRouteForSignedOutUser(t *testing.T) {
	m, p, _ := newTestModel(t, &fakeSession{}, nil)

	msg := m.resolveRoute()()
	m, _ = update(t, m, msg)
	assert.Equal(t, auth.RouteAuth, m.Route())
	assert.Equal(t, appsync.StateIdle, p.State())
}

func TestStartRouteForOnboardedUserStartsPolling(t *testing.T) {
	m, p, _ := newTestModel(t, signedIn(), nil)

	m, _ = update(t, m, m.resolveRoute()())
	assert.Equal(t, auth.RouteMessages, m.Route())
	assert.Equal(t, appsync.StatePolling, p.State())
	assert.Equal(t, testNumber, p.PhoneNumber())
}

func TestSignedInGoesToOnboarding(t *testing.T) {
	m, p, _ := newTestModel(t, &fakeSession{}, nil)
	m, _ = update(t, m, m.resolveRoute()())

	m, _ = update(t, m, authview.SignedInMsg{Auth: model.UserAuth{PhoneNumber: testNumber, IsAuthenticated: true}})
	assert.Equal(t, auth.RouteOnboarding, m.Route())
	assert.Equal(t, appsync.StateIdle, p.State())
}

func TestOnboardingCompletionAnnouncesLatest(t *testing.T) {
	session := &fakeSession{}
	msgs := []model.Message{{ID: "m1", Text: "Flood warning", Timestamp: "2:30 PM"}}
	m, p, d := newTestModel(t, session, msgs)
	m, _ = update(t, m, m.resolveRoute()())
	m, _ = update(t, m, authview.SignedInMsg{Auth: model.UserAuth{PhoneNumber: testNumber, IsAuthenticated: true}})

	profile := model.UserProfile{Locations: []string{"Manila"}, OnboardingCompleted: true}
	m, _ = update(t, m, onboarding.CompletedMsg{Profile: profile})
	assert.Equal(t, auth.RouteMessages, m.Route())

	active := d.Active()
	require.Len(t, active, 1)
	assert.Equal(t, allSetTitle, active[0].Title)

	result, ok := p.WaitForNextResult()().(appsync.ResultMsg)
	require.True(t, ok)
	m, _ = update(t, m, result)

	active = d.Active()
	require.Len(t, active, 2)
	assert.Equal(t, "Flood warning", active[1].Message)
	assert.Equal(t, appsync.MessagesRoute, active[1].NavigateTo)

	// Only announced once.
	_, _ = update(t, m, result)
	assert.Len(t, d.Active(), 2)
}

func TestToastClickNavigatesThroughChannel(t *testing.T) {
	m, _, d := newTestModel(t, signedIn(), nil)
	m, _ = update(t, m, m.resolveRoute()())
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("L")})
	require.Equal(t, auth.RouteOnboarding, m.Route())

	id := d.Show(model.NotificationData{
		Title:       "PulsePH",
		Message:     "Road closure",
		ClickAction: model.ClickActionNavigate,
		NavigateTo:  auth.RouteMessages,
	})
	require.True(t, d.Click(id))

	msg := waitForRoute(m.routeCh)()
	m, _ = update(t, m, msg)
	assert.Equal(t, auth.RouteMessages, m.Route())
}

func TestLogoutReturnsToSignIn(t *testing.T) {
	session := signedIn()
	m, p, _ := newTestModel(t, session, nil)
	m, _ = update(t, m, m.resolveRoute()())

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlL})
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())

	assert.True(t, session.loggedOut)
	assert.Equal(t, auth.RouteAuth, m.Route())
	assert.Equal(t, appsync.StateIdle, p.State())
	assert.Empty(t, p.PhoneNumber())
}

func TestBlurPausesPolling(t *testing.T) {
	m, p, _ := newTestModel(t, signedIn(), nil)
	m, _ = update(t, m, m.resolveRoute()())
	require.Equal(t, appsync.StatePolling, p.State())

	m, _ = update(t, m, tea.BlurMsg{})
	assert.Equal(t, appsync.StateIdle, p.State())

	_, _ = update(t, m, tea.FocusMsg{})
	assert.Equal(t, appsync.StatePolling, p.State())
}

func TestViewRendersFrame(t *testing.T) {
	m, _, _ := newTestModel(t, signedIn(), nil)
	assert.Equal(t, "Loading...", m.View())

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	m, _ = update(t, m, m.resolveRoute()())
	view := m.View()
	assert.Contains(t, view, "PulsePH · +63 917 123 4567")
}

func TestSettingsRoundTrip(t *testing.T) {
	fetcher := source.FetcherFunc(func(context.Context, string) ([]model.Message, error) {
		return nil, nil
	})
	p := appsync.New(fetcher, appsync.Options{Interval: time.Hour})
	t.Cleanup(p.Close)
	d := notify.NewDispatcher()
	t.Cleanup(d.ClearAll)

	cfg := &model.AppConfig{API: model.APIConfig{BaseURL: model.DefaultBaseURL}, Poll: model.PollConfig{IntervalMS: 5000}}
	m := New(Deps{
		Session:    signedIn(),
		Directory:  staticDirectory{},
		Poller:     p,
		Dispatcher: d,
		Config:     cfg,
		ConfigPath: t.TempDir() + "/config.yaml",
	})
	m, _ = update(t, m, m.resolveRoute()())
	require.Equal(t, auth.RouteMessages, m.Route())

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	assert.Equal(t, routeSettings, m.Route())
	assert.Equal(t, appsync.StateIdle, p.State())

	m, _ = update(t, m, settings.DoneMsg{})
	assert.Equal(t, auth.RouteMessages, m.Route())
	assert.Equal(t, appsync.StatePolling, p.State())
}

func TestSettingsKeyIgnoredWithoutConfig(t *testing.T) {
	m, _, _ := newTestModel(t, signedIn(), nil)
	m, _ = update(t, m, m.resolveRoute()())

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	assert.Equal(t, auth.RouteMessages, m.Route())
}
