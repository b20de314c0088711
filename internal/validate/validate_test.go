package validate

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/pulseph/internal/model"
)

func TestRegisterCustomValidations(t *testing.T) {
	v := validator.New()
	require.NotPanics(t, func() { RegisterCustomValidations(v) })

	assert.NoError(t, v.Var("2024-11-15T06:30:00Z", "timestamp"))
	assert.Error(t, v.Var("yesterday", "timestamp"))
	assert.NoError(t, v.Var("+639171234567", "ph_mobile"))
	assert.Error(t, v.Var("09171234567", "ph_mobile"))
}

func TestStructMessageData(t *testing.T) {
	ok := model.MessageData{ID: "m1", SMSMessage: "hi", CreatedAt: "2024-11-15T06:30:00Z"}
	require.NoError(t, Struct(ok))

	err := Struct(model.MessageData{SMSMessage: "hi", CreatedAt: "yesterday"})
	require.Error(t, err)
	assert.Equal(t, "_id is required; created_at is not a valid timestamp", Describe(err))
}

func TestStructCoordinate(t *testing.T) {
	require.NoError(t, Struct(model.Coordinate{Latitude: 14.6, Longitude: 121}))

	err := Struct(model.Coordinate{Latitude: 91, Longitude: 121})
	require.Error(t, err)
	assert.Equal(t, "latitude is out of range", Describe(err))
}

func TestStructCreateUserRequest(t *testing.T) {
	err := Struct(model.CreateUserRequest{Number: "+639171234567"})
	require.Error(t, err)
	assert.Contains(t, Describe(err), "subscribed_lgus")

	require.NoError(t, Struct(model.CreateUserRequest{
		Number:         "+639171234567",
		SubscribedLGUs: []string{"Manila"},
	}))
}

func TestVarPHMobile(t *testing.T) {
	assert.NoError(t, Var("+63 917 123 4567", "ph_mobile"))
	assert.Error(t, Var("09171234567", "ph_mobile"))
}

func TestDescribeNil(t *testing.T) {
	assert.Equal(t, "", Describe(nil))
}
