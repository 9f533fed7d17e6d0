// Package client talks to the location-sharing API and drives the map
// client's login and map states.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"locationShare/internal/mapview"
	"locationShare/models"
)

// DefaultTimeout bounds every request made by a Client.
const DefaultTimeout = 10 * time.Second

// User is the identity reported by the server.
type User struct {
	ID       int64       `json:"id"`
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
}

// IsAdmin reports whether u holds the admin role.
func (u *User) IsAdmin() bool { return u != nil && u.Role == models.RoleAdmin }

// APIError is a non-2xx response. Message is the server's error text.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string { return e.Message }

// Client is an API client that keeps the session cookie between calls.
type Client struct {
	base *url.URL
	http *http.Client
}

// New returns a client for the server at baseURL.
func New(baseURL string) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("server url %q must include scheme and host", baseURL)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &Client{base: u, http: &http.Client{Jar: jar, Timeout: DefaultTimeout}}, nil
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AdminExists asks whether the server has been bootstrapped.
func (c *Client) AdminExists(ctx context.Context) (bool, error) {
	var out struct {
		Exists bool `json:"exists"`
	}
	if err := c.call(ctx, http.MethodGet, "/api/admin-exists", nil, &out); err != nil {
		return false, err
	}
	return out.Exists, nil
}

// Init creates the first admin and signs in as it.
func (c *Client) Init(ctx context.Context, username, password string) error {
	return c.call(ctx, http.MethodPost, "/api/init", credentials{Username: username, Password: password}, nil)
}

// Login signs in and returns the user summary.
func (c *Client) Login(ctx context.Context, username, password string) (*User, error) {
	var out struct {
		User User `json:"user"`
	}
	if err := c.call(ctx, http.MethodPost, "/api/login", credentials{Username: username, Password: password}, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// CreateUser creates a user with role "user" and returns its id.
func (c *Client) CreateUser(ctx context.Context, username, password string) (int64, error) {
	var out struct {
		ID int64 `json:"id"`
	}
	if err := c.call(ctx, http.MethodPost, "/api/users", credentials{Username: username, Password: password}, &out); err != nil {
		return 0, err
	}
	return out.ID, nil
}

// Me returns the signed-in user, or nil when there is no session.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var out struct {
		User *User `json:"user"`
	}
	if err := c.call(ctx, http.MethodGet, "/api/me", nil, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

// Logout ends the session.
func (c *Client) Logout(ctx context.Context) error {
	return c.call(ctx, http.MethodPost, "/api/logout", nil, nil)
}

// Locations fetches the location history table.
func (c *Client) Locations(ctx context.Context) (mapview.History, error) {
	var out struct {
		Locations mapview.History `json:"locations"`
	}
	if err := c.call(ctx, http.MethodGet, "/api/locations", nil, &out); err != nil {
		return nil, err
	}
	return out.Locations, nil
}

func (c *Client) call(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read %s response: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp.StatusCode, data)
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func decodeError(status int, data []byte) error {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err != nil || body.Error == "" {
		body.Error = "Failed"
	}
	return &APIError{Status: status, Message: body.Error}
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Status == status
}
