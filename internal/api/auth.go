package api

import (
	"context"
	"net/http"

	"crewdeck/internal/model"
)

type sessionStatusPayload struct {
	IsAuthenticated bool               `json:"isAuthenticated"`
	User            *model.UserProfile `json:"user"`
}

// SessionStatus reports whether the current session cookie is still good.
// A nil profile with a nil error means "no active session".
func (c *Client) SessionStatus(ctx context.Context) (*model.UserProfile, error) {
	var p sessionStatusPayload
	if err := c.do(ctx, http.MethodGet, "/auth/status", nil, nil, &p); err != nil {
		return nil, err
	}
	if !p.IsAuthenticated {
		return nil, nil
	}
	return p.User, nil
}

type userPayload struct {
	User model.UserProfile `json:"user"`
}

func (c *Client) Login(ctx context.Context, creds model.Credentials) (*model.UserProfile, error) {
	var p userPayload
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, creds, &p); err != nil {
		return nil, err
	}
	return &p.User, nil
}

func (c *Client) Register(ctx context.Context, reg model.Registration) (*model.UserProfile, error) {
	var p userPayload
	if err := c.do(ctx, http.MethodPost, "/auth/register", nil, reg, &p); err != nil {
		return nil, err
	}
	return &p.User, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil, nil)
}

func (c *Client) Profile(ctx context.Context) (*model.UserProfile, error) {
	var p userPayload
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, nil, &p); err != nil {
		return nil, err
	}
	return &p.User, nil
}
