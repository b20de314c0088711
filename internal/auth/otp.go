// Package auth implements the simulated phone sign-in and the session
// gate that decides which screen a user starts on.
package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"

	"github.com/nhle/pulseph/internal/phone"
)

// CodeLength is the number of digits in a verification code.
const CodeLength = 6

var (
	ErrCodeFormat = errors.New("Please enter a valid 6-digit code")
	ErrCodeWrong  = errors.New("Invalid verification code. Please try again.")
)

// Challenge is a pending verification for one phone number. Only the
// bcrypt hash of the code is kept after creation; the plain code is
// exposed for display because no SMS is sent.
type Challenge struct {
	PhoneNumber string

	demoCode string
	hash     []byte
}

// NewChallenge validates number and generates a random 6-digit code.
func NewChallenge(number string) (*Challenge, error) {
	if err := phone.Validate(number); err != nil {
		return nil, err
	}

	code, err := randomCode()
	if err != nil {
		return nil, fmt.Errorf("generating verification code: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing verification code: %w", err)
	}

	return &Challenge{
		PhoneNumber: phone.Clean(number),
		demoCode:    code,
		hash:        hash,
	}, nil
}

// DemoCode returns the code to show the user in place of an SMS.
func (c *Challenge) DemoCode() string {
	return c.demoCode
}

// Verify checks code against the challenge.
func (c *Challenge) Verify(code string) error {
	if !isCode(code) {
		return ErrCodeFormat
	}
	if err := bcrypt.CompareHashAndPassword(c.hash, []byte(code)); err != nil {
		return ErrCodeWrong
	}
	return nil
}

// ValidateCodeInput is a huh-compatible validator for the code field.
func ValidateCodeInput(code string) error {
	if !isCode(code) {
		return ErrCodeFormat
	}
	return nil
}

func isCode(s string) bool {
	if len(s) != CodeLength {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// randomCode returns a uniformly random number in [100000, 999999].
func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
