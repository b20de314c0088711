package auth

import "errors"

// ErrNoLocations is returned when onboarding is confirmed with nothing
// selected.
var ErrNoLocations = errors.New("Please select at least one location.")
