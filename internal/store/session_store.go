package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nhle/pulseph/internal/model"
)

// SaveAuth replaces the signed-in user record.
func (s *SQLiteStore) SaveAuth(ctx context.Context, auth model.UserAuth) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO auth (slot, phone_number, is_authenticated, authenticated_at)
		VALUES (1, ?, ?, ?)`,
		auth.PhoneNumber, boolToInt(auth.IsAuthenticated), auth.AuthenticatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("saving auth for %s: %w", auth.PhoneNumber, err)
	}
	return nil
}

// GetAuth returns the signed-in user record, or nil if there is none.
func (s *SQLiteStore) GetAuth(ctx context.Context) (*model.UserAuth, error) {
	var auth model.UserAuth
	err := s.db.GetContext(ctx, &auth, `
		SELECT phone_number, is_authenticated, authenticated_at
		FROM auth WHERE slot = 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting auth: %w", err)
	}
	return &auth, nil
}

// SaveProfile replaces the user profile.
func (s *SQLiteStore) SaveProfile(ctx context.Context, p model.UserProfile) error {
	locations := p.Locations
	if locations == nil {
		locations = []string{}
	}
	locJSON, err := json.Marshal(locations)
	if err != nil {
		return fmt.Errorf("marshaling locations: %w", err)
	}

	var completedAt *time.Time
	if p.OnboardingCompletedAt != nil {
		t := p.OnboardingCompletedAt.UTC()
		completedAt = &t
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO profile (
			slot, phone_number, is_authenticated, authenticated_at,
			locations, onboarding_completed, onboarding_completed_at
		) VALUES (1, ?, ?, ?, ?, ?, ?)`,
		p.PhoneNumber, boolToInt(p.IsAuthenticated), p.AuthenticatedAt.UTC(),
		string(locJSON), boolToInt(p.OnboardingCompleted), completedAt,
	)
	if err != nil {
		return fmt.Errorf("saving profile for %s: %w", p.PhoneNumber, err)
	}
	return nil
}

// GetProfile returns the saved profile, or nil if there is none.
func (s *SQLiteStore) GetProfile(ctx context.Context) (*model.UserProfile, error) {
	var (
		p           model.UserProfile
		isAuth      int
		locJSON     string
		completed   int
		completedAt sql.NullTime
	)

	row := s.db.QueryRowxContext(ctx, `
		SELECT phone_number, is_authenticated, authenticated_at,
			locations, onboarding_completed, onboarding_completed_at
		FROM profile WHERE slot = 1`)
	err := row.Scan(
		&p.PhoneNumber, &isAuth, &p.AuthenticatedAt,
		&locJSON, &completed, &completedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning profile row: %w", err)
	}

	p.IsAuthenticated = isAuth != 0
	p.OnboardingCompleted = completed != 0
	if completedAt.Valid {
		t := completedAt.Time
		p.OnboardingCompletedAt = &t
	}
	if locJSON != "" {
		if err := json.Unmarshal([]byte(locJSON), &p.Locations); err != nil {
			return nil, fmt.Errorf("unmarshaling locations: %w", err)
		}
	}

	return &p, nil
}

// ClearSession removes the auth and profile records in one transaction.
func (s *SQLiteStore) ClearSession(ctx context.Context) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM auth"); err != nil {
		return fmt.Errorf("clearing auth: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM profile"); err != nil {
		return fmt.Errorf("clearing profile: %w", err)
	}

	return tx.Commit()
}
