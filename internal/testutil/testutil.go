// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"testing"

	"github.com/99designs/keyring"

	"github.com/nhle/pulseph/internal/credential"
	"github.com/nhle/pulseph/internal/store"
)

// NewTestStore creates an in-memory SQLiteStore with all migrations applied.
// It automatically closes the store when the test completes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// NewTestVault returns a Vault backed by an in-memory keyring.
func NewTestVault() *credential.Vault {
	return credential.NewVault(keyring.NewArrayKeyring(nil))
}
