package model

import "time"

// DisplayTimeLayout is the 12-hour clock format used for message timestamps.
const DisplayTimeLayout = "3:04 PM"

// Message is a single entry in the conversation with PulsePH.
type Message struct {
	// ID is unique within a conversation. Backend messages use the
	// server-side record id.
	ID string `json:"id" db:"id"`

	// Text is the announcement body.
	Text string `json:"text" db:"text"`

	// Timestamp is the display form of CreatedAt (e.g. "3:04 PM").
	Timestamp string `json:"timestamp" db:"timestamp"`

	IsFromUser  bool `json:"is_from_user" db:"is_from_user"`
	IsDelivered bool `json:"is_delivered" db:"is_delivered"`
	IsRead      bool `json:"is_read" db:"is_read"`

	// CreatedAt is an ISO-8601 string used for ordering.
	CreatedAt string `json:"created_at" db:"created_at"`
}

// CreatedTime parses CreatedAt. Unparseable or empty values sort as the
// Unix epoch.
func (m Message) CreatedTime() time.Time {
	t, err := ParseTimestamp(m.CreatedAt)
	if err != nil {
		return time.Unix(0, 0).UTC()
	}
	return t
}

// timestampLayouts are the ISO-8601 variants the backend is known to emit.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseTimestamp parses an ISO-8601 timestamp. Values without a zone are
// taken as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// MessageData is the message record inside a backend envelope.
type MessageData struct {
	ID                string   `json:"_id" validate:"required"`
	SMSMessage        string   `json:"sms_message" validate:"required"`
	SubscribedNumbers []string `json:"subscribed_numbers"`
	CreatedAt         string   `json:"created_at" validate:"required,timestamp"`
}

// MessageEnvelope is the response of GET /messages/{number}. Data is nil
// when the backend has nothing for the number.
type MessageEnvelope struct {
	Message string       `json:"message"`
	Data    *MessageData `json:"data"`
}

// MarkReadRequest is the body of PATCH /messages/{number}/read.
type MarkReadRequest struct {
	MessageIDs []string `json:"messageIds"`
}
