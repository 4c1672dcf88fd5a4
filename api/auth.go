// ABOUTME: Session endpoints: session check, login, logout, register, Google redirect URL
// ABOUTME: The session itself is the cookie the backend sets; the jar carries it
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/harperreed/crmtui/models"
)

// AuthStatus is the answer to "is a cookie session present".
type AuthStatus struct {
	Authenticated bool
	User          *models.User
}

type authResponse struct {
	User    *models.User `json:"user"`
	Message string       `json:"message,omitempty"`
}

func (c *Client) probe(ctx context.Context, method, path string, body, out any) error {
	r := request{method: method, path: path, out: out, probe: true}
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return NewAPIError(operation(method, path), 0, fmt.Errorf("failed to encode body: %w", err))
		}
		r.body = bytes.NewReader(data)
		r.contentType = "application/json"
	}
	return c.send(Quiet(ctx), r)
}

// Me checks the session. A 401 is reported as unauthenticated with a nil error.
func (c *Client) Me(ctx context.Context) (AuthStatus, error) {
	var resp authResponse
	err := c.probe(ctx, http.MethodGet, "/api/auth/me", nil, &resp)
	if IsUnauthorized(err) {
		return AuthStatus{}, nil
	}
	if err != nil {
		return AuthStatus{}, err
	}
	return AuthStatus{Authenticated: resp.User != nil, User: resp.User}, nil
}

// Login posts credentials; on success the backend's Set-Cookie lands in the jar.
// Failures carry the backend message, e.g. "Invalid credentials".
func (c *Client) Login(ctx context.Context, email, password string) (*models.User, error) {
	var resp authResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.probe(ctx, http.MethodPost, "/api/auth/login", body, &resp); err != nil {
		return nil, err
	}
	if resp.User == nil {
		// Some deployments only set the cookie; ask who we are.
		status, err := c.Me(ctx)
		if err != nil {
			return nil, err
		}
		return status.User, nil
	}
	return resp.User, nil
}

// Logout ends the session server-side.
func (c *Client) Logout(ctx context.Context) error {
	return c.probe(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
}

// RegisterInput is the sign-up form.
type RegisterInput struct {
	Name     string `json:"name"`
	Company  string `json:"company"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an account. The backend may or may not log the user in.
func (c *Client) Register(ctx context.Context, in RegisterInput) error {
	for _, f := range []struct{ name, value string }{
		{"name", in.Name},
		{"email", in.Email},
		{"password", in.Password},
	} {
		if f.value == "" {
			return &models.ValidationError{Field: f.name, Message: "is required"}
		}
	}
	return c.probe(ctx, http.MethodPost, "/api/auth/register", in, nil)
}

// GoogleAuthURL is the OAuth entry point. It is opened in a browser, never called as an API.
func (c *Client) GoogleAuthURL() string {
	return c.URL("/api/auth/google")
}
