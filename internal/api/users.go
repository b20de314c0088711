package api

import (
	"context"
	"fmt"

	"github.com/nhle/pulseph/internal/model"
	"github.com/nhle/pulseph/internal/validate"
)

// CreateUser performs POST /users, creating the user or replacing their
// LGU subscriptions. The request is validated before it is sent.
func (c *Client) CreateUser(ctx context.Context, req model.CreateUserRequest) (*model.CreateUserResponse, error) {
	if err := validate.Struct(req); err != nil {
		return &model.CreateUserResponse{Message: validate.Describe(err)},
			fmt.Errorf("invalid user payload: %s", validate.Describe(err))
	}

	var data map[string]any
	if err := c.do(ctx, "POST", "/users", req, &data); err != nil {
		return &model.CreateUserResponse{Message: err.Error()}, err
	}

	return &model.CreateUserResponse{Success: true, Data: data}, nil
}
