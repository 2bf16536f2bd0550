package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kanakk365/ysntest-sub001/internal/backend"
)

// ExchangeClient calls the server's token-exchange route.
type ExchangeClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewExchangeClient creates an ExchangeClient for the server at baseURL.
func NewExchangeClient(baseURL string, timeout time.Duration) *ExchangeClient {
	return &ExchangeClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// exchangeReply covers both shapes of the route: a bare {customToken} on
// success and the API envelope's error object otherwise.
type exchangeReply struct {
	CustomToken string `json:"customToken"`
	Error       *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Exchange posts req and returns the custom token.
func (c *ExchangeClient) Exchange(ctx context.Context, req ExchangeRequest) (string, error) {
	const op = "POST /api/chat/token"

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encoding exchange request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat/token", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building exchange request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+req.Token)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &backend.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	var reply exchangeReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil && resp.StatusCode < 300 {
		return "", fmt.Errorf("decoding exchange response: %w", err)
	}

	if resp.StatusCode >= 300 {
		apiErr := &backend.APIError{StatusCode: resp.StatusCode}
		if reply.Error != nil {
			apiErr.Message = reply.Error.Message
		}
		return "", apiErr
	}
	if reply.CustomToken == "" {
		return "", errors.New("exchange response has no custom token")
	}
	return reply.CustomToken, nil
}
