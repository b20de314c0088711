package model

import "time"

// UserAuth is the local record of a verified phone number.
type UserAuth struct {
	PhoneNumber     string    `json:"phone_number" db:"phone_number"`
	IsAuthenticated bool      `json:"is_authenticated" db:"is_authenticated"`
	AuthenticatedAt time.Time `json:"authenticated_at" db:"authenticated_at"`
}

// Valid reports whether the record carries everything needed to skip
// sign-in.
func (a UserAuth) Valid() bool {
	return a.IsAuthenticated && a.PhoneNumber != "" && !a.AuthenticatedAt.IsZero()
}

// UserProfile extends UserAuth with the user's LGU subscriptions.
type UserProfile struct {
	UserAuth

	// Locations holds the subscribed LGU names.
	Locations []string `json:"locations"`

	OnboardingCompleted   bool       `json:"onboarding_completed"`
	OnboardingCompletedAt *time.Time `json:"onboarding_completed_at,omitempty"`
}

// CreateUserRequest is the body of POST /users.
type CreateUserRequest struct {
	Number         string   `json:"number" validate:"required"`
	SubscribedLGUs []string `json:"subscribed_lgus" validate:"required,min=1,dive,required"`
}

// CreateUserResponse is the client-side outcome of POST /users.
type CreateUserResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}
