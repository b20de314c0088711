package api

import (
	"context"
	"net/url"

	"github.com/nhle/pulseph/internal/model"
	"github.com/nhle/pulseph/internal/phone"
)

func messagesPath(number string) string {
	return "/messages/" + url.PathEscape(phone.PathSegment(number))
}

// GetMessages performs GET /messages/{number} and returns the raw envelope.
// The number is normalised (whitespace and a leading "+" removed).
func (c *Client) GetMessages(ctx context.Context, number string) (*model.MessageEnvelope, error) {
	var env model.MessageEnvelope
	if err := c.do(ctx, "GET", messagesPath(number), nil, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// MarkMessagesRead performs PATCH /messages/{number}/read.
func (c *Client) MarkMessagesRead(ctx context.Context, number string, ids []string) error {
	body := model.MarkReadRequest{MessageIDs: ids}
	if body.MessageIDs == nil {
		body.MessageIDs = []string{}
	}
	return c.do(ctx, "PATCH", messagesPath(number)+"/read", body, nil)
}
