package backend

import (
	"github.com/nhle/pulseph/internal/model"
	"github.com/nhle/pulseph/internal/validate"
)

// SchemaResult is the outcome of checking a response envelope. Data is
// only meaningful when Valid is true; Reason explains a rejection.
type SchemaResult struct {
	Valid  bool
	Data   model.MessageData
	Reason string
}

// CheckEnvelope validates a decoded GET /messages response.
func CheckEnvelope(env *model.MessageEnvelope) SchemaResult {
	if env == nil {
		return SchemaResult{Reason: "empty response"}
	}
	if env.Data == nil {
		return SchemaResult{Reason: "no message data"}
	}
	if err := validate.Struct(env.Data); err != nil {
		return SchemaResult{Data: *env.Data, Reason: validate.Describe(err)}
	}
	return SchemaResult{Valid: true, Data: *env.Data}
}

// Transform converts a validated record into a Message from PulsePH.
func Transform(data model.MessageData) model.Message {
	ts := ""
	if t, err := model.ParseTimestamp(data.CreatedAt); err == nil {
		ts = t.Local().Format(model.DisplayTimeLayout)
	}
	return model.Message{
		ID:          data.ID,
		Text:        data.SMSMessage,
		Timestamp:   ts,
		IsFromUser:  false,
		IsDelivered: true,
		IsRead:      false,
		CreatedAt:   data.CreatedAt,
	}
}
