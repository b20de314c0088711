package source

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/pulseph/internal/model"
)

func TestIsAuthError(t *testing.T) {
	err := fmt.Errorf("polling mailbox: %w", &AuthError{SourceType: SourceTypeMailbox, Message: "bad password"})
	assert.True(t, IsAuthError(err))
	assert.Equal(t, "polling mailbox: auth error (mailbox): bad password", err.Error())
	assert.False(t, IsAuthError(errors.New("other")))
}

func TestMultiConcatenatesAndKeepsFirstError(t *testing.T) {
	boom := errors.New("boom")
	m := Multi{
		FetcherFunc(func(context.Context, string) ([]model.Message, error) {
			return []model.Message{{ID: "a"}}, nil
		}),
		FetcherFunc(func(context.Context, string) ([]model.Message, error) {
			return nil, boom
		}),
		FetcherFunc(func(context.Context, string) ([]model.Message, error) {
			return []model.Message{{ID: "b"}}, nil
		}),
	}

	msgs, err := m.Fetch(context.Background(), "+639171234567")
	assert.ErrorIs(t, err, boom)
	assert.Len(t, msgs, 2)
	assert.Equal(t, "a", msgs[0].ID)
	assert.Equal(t, "b", msgs[1].ID)
}
