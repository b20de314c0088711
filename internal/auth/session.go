package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nhle/pulseph/internal/credential"
	"github.com/nhle/pulseph/internal/model"
)

// Routes a signed-in user can land on.
const (
	RouteAuth       = "/auth"
	RouteOnboarding = "/onboarding"
	RouteMessages   = "/messages"
)

// SessionStore is the persistence the session needs.
type SessionStore interface {
	SaveAuth(ctx context.Context, auth model.UserAuth) error
	GetAuth(ctx context.Context) (*model.UserAuth, error)
	SaveProfile(ctx context.Context, profile model.UserProfile) error
	GetProfile(ctx context.Context) (*model.UserProfile, error)
	ClearSession(ctx context.Context) error
}

// SecretStore mirrors the phone number into the OS keyring.
type SecretStore interface {
	Set(key, value string) error
	Delete(key string) error
}

// Session tracks who is signed in and how far they got through onboarding.
type Session struct {
	store   SessionStore
	secrets SecretStore
	logger  *slog.Logger
	now     func() time.Time
}

// NewSession creates a session. secrets may be nil when no keyring is
// available.
func NewSession(store SessionStore, secrets SecretStore, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{store: store, secrets: secrets, logger: logger, now: time.Now}
}

// SignIn completes a challenge: the code is verified and the UserAuth
// record saved.
func (s *Session) SignIn(ctx context.Context, c *Challenge, code string) (*model.UserAuth, error) {
	if err := c.Verify(code); err != nil {
		return nil, err
	}

	auth := model.UserAuth{
		PhoneNumber:     c.PhoneNumber,
		IsAuthenticated: true,
		AuthenticatedAt: s.now().UTC(),
	}
	if err := s.store.SaveAuth(ctx, auth); err != nil {
		return nil, fmt.Errorf("saving sign-in: %w", err)
	}

	if s.secrets != nil {
		if err := s.secrets.Set(credential.KeyPhoneNumber, auth.PhoneNumber); err != nil {
			s.logger.Warn("mirroring phone number to keyring failed",
				slog.String("op", "auth.Session.SignIn"),
				slog.Any("error", err),
			)
		}
	}

	return &auth, nil
}

// CurrentAuth returns the valid auth record, or nil.
func (s *Session) CurrentAuth(ctx context.Context) (*model.UserAuth, error) {
	auth, err := s.store.GetAuth(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading auth: %w", err)
	}
	if auth == nil || !auth.Valid() {
		return nil, nil
	}
	return auth, nil
}

// Profile returns the saved profile, or nil.
func (s *Session) Profile(ctx context.Context) (*model.UserProfile, error) {
	p, err := s.store.GetProfile(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading profile: %w", err)
	}
	return p, nil
}

// CompleteOnboarding saves the chosen LGUs and marks onboarding done.
func (s *Session) CompleteOnboarding(ctx context.Context, locations []string) (*model.UserProfile, error) {
	auth, err := s.CurrentAuth(ctx)
	if err != nil {
		return nil, err
	}
	if auth == nil {
		return nil, fmt.Errorf("completing onboarding: not signed in")
	}
	if len(locations) == 0 {
		return nil, ErrNoLocations
	}

	now := s.now().UTC()
	profile := model.UserProfile{
		UserAuth:              *auth,
		Locations:             append([]string(nil), locations...),
		OnboardingCompleted:   true,
		OnboardingCompletedAt: &now,
	}
	if err := s.store.SaveProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("saving profile: %w", err)
	}
	return &profile, nil
}

// Route returns where the user should start: RouteAuth when signed out,
// RouteOnboarding until onboarding is complete, otherwise RouteMessages.
func (s *Session) Route(ctx context.Context) (string, error) {
	auth, err := s.CurrentAuth(ctx)
	if err != nil {
		return RouteAuth, err
	}
	if auth == nil {
		return RouteAuth, nil
	}

	profile, err := s.Profile(ctx)
	if err != nil {
		return RouteOnboarding, err
	}
	if profile == nil || !profile.OnboardingCompleted {
		return RouteOnboarding, nil
	}
	return RouteMessages, nil
}

// Logout clears auth, profile and the keyring entry.
func (s *Session) Logout(ctx context.Context) error {
	if err := s.store.ClearSession(ctx); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	if s.secrets != nil {
		if err := s.secrets.Delete(credential.KeyPhoneNumber); err != nil {
			return fmt.Errorf("clearing keyring: %w", err)
		}
	}
	return nil
}
