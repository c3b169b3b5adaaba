package ubereats

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	defaultAPIURL   = "https://sandbox-api.uber.com/v1.2/eats"
	defaultTokenURL = "https://sandbox-login.uber.com/oauth/v2/token"
	tokenScope      = "eats.get_feed_by_id"
)

// APIError is an error response from the Uber API, carrying the
// provider's status code and message.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Uber API error (status %d): %s", e.StatusCode, e.Message)
}

// tokenCache holds one OAuth access token with its expiry. It is owned
// by the Client rather than being process-global state.
type tokenCache struct {
	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

func (tc *tokenCache) get() (string, bool) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if tc.token == "" || time.Now().After(tc.expiresAt) {
		return "", false
	}
	return tc.token, true
}

func (tc *tokenCache) set(token string, ttl time.Duration) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.token = token
	tc.expiresAt = time.Now().Add(ttl)
}

// Client searches restaurants through the Uber Eats API using
// client-credentials OAuth.
type Client struct {
	httpClient   *http.Client
	apiURL       string
	tokenURL     string
	clientID     string
	clientSecret string
	tokens       *tokenCache
}

// NewClient creates a new Uber Eats client.
func NewClient(clientID, clientSecret string) *Client {
	return &Client{
		httpClient:   &http.Client{},
		apiURL:       defaultAPIURL,
		tokenURL:     defaultTokenURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		tokens:       &tokenCache{},
	}
}

// NewClientWithURLs points the client at alternate endpoints.
func NewClientWithURLs(clientID, clientSecret, apiURL, tokenURL string) *Client {
	c := NewClient(clientID, clientSecret)
	c.apiURL = apiURL
	c.tokenURL = tokenURL
	return c
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	if token, ok := c.tokens.get(); ok {
		return token, nil
	}

	params := url.Values{
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
		"grant_type":    {"client_credentials"},
		"scope":         {tokenScope},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to request access token: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	var token tokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("no access token in response")
	}

	c.tokens.set(token.AccessToken, time.Duration(token.ExpiresIn)*time.Second)
	return token.AccessToken, nil
}

// SearchRestaurants returns the raw restaurant feed near the given
// coordinates. The payload passes through to the caller unmodified.
func (c *Client) SearchRestaurants(ctx context.Context, latitude, longitude float64) (json.RawMessage, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	params := url.Values{
		"latitude":  {fmt.Sprintf("%f", latitude)},
		"longitude": {fmt.Sprintf("%f", longitude)},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"/restaurants?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("no response from Uber API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read search response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		message := strings.TrimSpace(string(body))
		var errBody struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &errBody) == nil && errBody.Message != "" {
			message = errBody.Message
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: message}
	}

	return json.RawMessage(body), nil
}
