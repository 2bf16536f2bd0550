package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// maxResponseBytes caps how much of a backend response body is read.
const maxResponseBytes = 4 << 20

// Client is a thin client for the platform REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// NewClient creates a Client for the API rooted at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Login exchanges credentials for a user record and bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	body := map[string]string{"email": email, "password": password}

	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/login", "", body, &raw); err != nil {
		return nil, err
	}

	var res LoginResult
	if err := decodeField(raw, "data", &res); err != nil {
		return nil, fmt.Errorf("decoding login response: %w", err)
	}
	if res.Token == "" {
		return nil, &APIError{StatusCode: http.StatusBadGateway, Message: "login response did not include a token"}
	}
	if res.User.ID <= 0 {
		return nil, &APIError{StatusCode: http.StatusBadGateway, Message: "login response did not include a user id"}
	}

	return &res, nil
}

// Logout invalidates token on the backend.
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/logout", token, nil, nil)
}

// CurrentUser resolves a bearer token to its user.
func (c *Client) CurrentUser(ctx context.Context, token string) (*User, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/user", token, nil, &raw); err != nil {
		return nil, err
	}

	var u User
	if err := decodeField(raw, "user", &u); err != nil {
		return nil, fmt.Errorf("decoding user response: %w", err)
	}
	return &u, nil
}

// Organization fetches an organization profile by slug.
func (c *Client) Organization(ctx context.Context, slug string) (*Organization, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/organizations/"+url.PathEscape(slug), "", nil, &raw); err != nil {
		return nil, err
	}

	var org Organization
	if err := decodeField(raw, "data", &org); err != nil {
		return nil, fmt.Errorf("decoding organization: %w", err)
	}
	return &org, nil
}

// Team fetches a team profile by slug.
func (c *Client) Team(ctx context.Context, slug string) (*Team, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/teams/"+url.PathEscape(slug), "", nil, &raw); err != nil {
		return nil, err
	}

	var t Team
	if err := decodeField(raw, "data", &t); err != nil {
		return nil, fmt.Errorf("decoding team: %w", err)
	}
	return &t, nil
}

// ListEvents returns the events visible to token's user.
func (c *Client) ListEvents(ctx context.Context, token string) ([]Event, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/events", token, nil, &raw); err != nil {
		return nil, err
	}

	var events []Event
	if err := decodeField(raw, "data", &events); err != nil {
		return nil, fmt.Errorf("decoding events: %w", err)
	}
	if events == nil {
		events = []Event{}
	}
	return events, nil
}

// GetEvent fetches a single event.
func (c *Client) GetEvent(ctx context.Context, token string, id int64) (*Event, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, eventPath(id), token, nil, &raw); err != nil {
		return nil, err
	}

	var ev Event
	if err := decodeField(raw, "data", &ev); err != nil {
		return nil, fmt.Errorf("decoding event: %w", err)
	}
	return &ev, nil
}

// CreateEvent creates an event and returns the stored record.
func (c *Client) CreateEvent(ctx context.Context, token string, in EventInput) (*Event, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/events", token, in, &raw); err != nil {
		return nil, err
	}

	var ev Event
	if err := decodeField(raw, "data", &ev); err != nil {
		return nil, fmt.Errorf("decoding event: %w", err)
	}
	return &ev, nil
}

// UpdateEvent replaces the writable fields of an event.
func (c *Client) UpdateEvent(ctx context.Context, token string, id int64, in EventInput) (*Event, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPut, eventPath(id), token, in, &raw); err != nil {
		return nil, err
	}

	var ev Event
	if err := decodeField(raw, "data", &ev); err != nil {
		return nil, fmt.Errorf("decoding event: %w", err)
	}
	return &ev, nil
}

// DeleteEvent removes an event.
func (c *Client) DeleteEvent(ctx context.Context, token string, id int64) error {
	return c.do(ctx, http.MethodDelete, eventPath(id), token, nil, nil)
}

// Ping reports whether the backend answers HTTP at all. Any status code
// counts as reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("building ping request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: "ping", Err: err}
	}
	resp.Body.Close()
	return nil
}

func eventPath(id int64) string {
	return "/events/" + strconv.FormatInt(id, 10)
}

// do sends a JSON request and decodes a JSON response into out when out is
// non-nil. Non-2xx responses become *APIError.
func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &TransportError{Op: "reading " + path, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(data)}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// decodeField decodes raw[key] into out when raw is an object carrying key,
// and raw itself otherwise. The API is not consistent about wrapping.
func decodeField(raw json.RawMessage, key string, out any) error {
	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapper); err == nil {
		if inner, ok := wrapper[key]; ok && len(inner) > 0 && string(inner) != "null" {
			return json.Unmarshal(inner, out)
		}
	}
	return json.Unmarshal(raw, out)
}

// errorMessage extracts a human message from a backend error body.
func errorMessage(data []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   any    `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	switch e := body.Error.(type) {
	case string:
		return e
	case map[string]any:
		if m, ok := e["message"].(string); ok {
			return m
		}
	}
	return ""
}
