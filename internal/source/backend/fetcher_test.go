package backend

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nhle/pulseph/internal/model"
	"github.com/nhle/pulseph/internal/source"
)

type mockClient struct {
	mock.Mock
}

func (m *mockClient) GetMessages(ctx context.Context, number string) (*model.MessageEnvelope, error) {
	args := m.Called(ctx, number)
	env, _ := args.Get(0).(*model.MessageEnvelope)
	return env, args.Error(1)
}

func validEnvelope() *model.MessageEnvelope {
	return &model.MessageEnvelope{
		Message: "ok",
		Data: &model.MessageData{
			ID:                "m1",
			SMSMessage:        "Typhoon signal no. 2 raised",
			SubscribedNumbers: []string{"639171234567"},
			CreatedAt:         "2025-06-01T08:30:00Z",
		},
	}
}

func TestFetchReturnsTransformedMessage(t *testing.T) {
	client := new(mockClient)
	client.On("GetMessages", mock.Anything, "+639171234567").Return(validEnvelope(), nil)

	msgs, err := NewFetcher(client).Fetch(context.Background(), "+639171234567")
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	m := msgs[0]
	assert.Equal(t, "m1", m.ID)
	assert.Equal(t, "Typhoon signal no. 2 raised", m.Text)
	assert.False(t, m.IsFromUser)
	assert.True(t, m.IsDelivered)
	assert.False(t, m.IsRead)
	assert.Equal(t, "2025-06-01T08:30:00Z", m.CreatedAt)

	want := time.Date(2025, 6, 1, 8, 30, 0, 0, time.UTC).Local().Format(model.DisplayTimeLayout)
	assert.Equal(t, want, m.Timestamp)
	client.AssertExpectations(t)
}

func TestFetchSwallowsErrors(t *testing.T) {
	tests := []struct {
		name string
		env  *model.MessageEnvelope
		err  error
	}{
		{name: "network failure", err: errors.New("connection refused")},
		{name: "absent data", env: &model.MessageEnvelope{Message: "no messages"}},
		{name: "missing id", env: &model.MessageEnvelope{Data: &model.MessageData{
			SMSMessage: "hi", CreatedAt: "2025-06-01T08:30:00Z",
		}}},
		{name: "bad timestamp", env: &model.MessageEnvelope{Data: &model.MessageData{
			ID: "m1", SMSMessage: "hi", CreatedAt: "not a date",
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := new(mockClient)
			client.On("GetMessages", mock.Anything, mock.Anything).Return(tt.env, tt.err)

			msgs, err := NewFetcher(client).Fetch(context.Background(), "+639171234567")
			require.NoError(t, err)
			assert.NotNil(t, msgs)
			assert.Empty(t, msgs)
		})
	}
}

func TestFetchEmptyNumberSkipsRequest(t *testing.T) {
	client := new(mockClient)

	msgs, err := NewFetcher(client).Fetch(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, msgs)
	client.AssertNotCalled(t, "GetMessages", mock.Anything, mock.Anything)
}

func TestFetchUsesFallbackOnFailure(t *testing.T) {
	client := new(mockClient)
	client.On("GetMessages", mock.Anything, mock.Anything).Return(nil, errors.New("offline"))

	fallback := source.FetcherFunc(func(context.Context, string) ([]model.Message, error) {
		return []model.Message{{ID: "demo-1", Text: "offline notice"}}, nil
	})

	msgs, err := NewFetcher(client, WithFallback(fallback)).Fetch(context.Background(), "+639171234567")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "demo-1", msgs[0].ID)
}

func TestFallbackNotUsedForMalformedPayload(t *testing.T) {
	client := new(mockClient)
	client.On("GetMessages", mock.Anything, mock.Anything).
		Return(&model.MessageEnvelope{Data: &model.MessageData{ID: "m1"}}, nil)

	called := false
	fallback := source.FetcherFunc(func(context.Context, string) ([]model.Message, error) {
		called = true
		return nil, nil
	})

	msgs, err := NewFetcher(client, WithFallback(fallback)).Fetch(context.Background(), "+639171234567")
	require.NoError(t, err)
	assert.Empty(t, msgs)
	assert.False(t, called)
}

func TestCheckEnvelope(t *testing.T) {
	res := CheckEnvelope(nil)
	assert.False(t, res.Valid)
	assert.Equal(t, "empty response", res.Reason)

	res = CheckEnvelope(&model.MessageEnvelope{})
	assert.False(t, res.Valid)
	assert.Equal(t, "no message data", res.Reason)

	res = CheckEnvelope(&model.MessageEnvelope{Data: &model.MessageData{ID: "m1", CreatedAt: "2025-06-01T08:30:00Z"}})
	assert.False(t, res.Valid)
	assert.Equal(t, "sms_message is required", res.Reason)

	res = CheckEnvelope(validEnvelope())
	assert.True(t, res.Valid)
	assert.Empty(t, res.Reason)
	assert.Equal(t, "m1", res.Data.ID)
}
