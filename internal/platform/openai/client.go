package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/ASamedWalker/breakfast-buddy/internal/suggestion"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Client calls an OpenAI-compatible chat-completions endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

// NewClient creates a client for the hosted OpenAI API.
func NewClient(apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{},
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		model:      "gpt-4o",
	}
}

// NewClientWithBaseURL points the client at a compatible server, e.g. a
// locally hosted model.
func NewClientWithBaseURL(apiKey, baseURL, model string) *Client {
	c := NewClient(apiKey)
	c.baseURL = baseURL
	c.model = model
	return c
}

// request is the chat-completions request body.
type request struct {
	Model     string               `json:"model"`
	Messages  []suggestion.Message `json:"messages"`
	MaxTokens int                  `json:"max_tokens"`
}

// response is the subset of the chat-completions response we read.
type response struct {
	Choices []choice `json:"choices"`
	Error   *apiErr  `json:"error,omitempty"`
}

type choice struct {
	Message suggestion.Message `json:"message"`
}

type apiErr struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// Complete sends the messages to the chat-completions endpoint and
// returns the raw text of the first choice.
func (c *Client) Complete(ctx context.Context, messages []suggestion.Message, maxTokens int) (string, error) {
	reqBytes, err := json.Marshal(request{
		Model:     c.model,
		Messages:  messages,
		MaxTokens: maxTokens,
	})
	if err != nil {
		return "", &suggestion.UpstreamError{
			Kind: suggestion.UpstreamRequestSetup,
			Err:  fmt.Errorf("failed to marshal request body: %w", err),
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewBuffer(reqBytes))
	if err != nil {
		return "", &suggestion.UpstreamError{
			Kind: suggestion.UpstreamRequestSetup,
			Err:  fmt.Errorf("failed to create request: %w", err),
		}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &suggestion.UpstreamError{
			Kind: suggestion.UpstreamNoResponse,
			Err:  fmt.Errorf("failed to send request: %w", err),
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &suggestion.UpstreamError{
			Kind: suggestion.UpstreamNoResponse,
			Err:  fmt.Errorf("failed to read response body: %w", err),
		}
	}

	var completion response
	if resp.StatusCode != http.StatusOK {
		providerErr := fmt.Errorf("unexpected provider response")
		if json.Unmarshal(body, &completion) == nil && completion.Error != nil {
			providerErr = fmt.Errorf("%s: %s", completion.Error.Type, completion.Error.Message)
		}
		return "", &suggestion.UpstreamError{
			Kind:       suggestion.UpstreamErrorResponse,
			StatusCode: resp.StatusCode,
			Err:        providerErr,
		}
	}

	if err := json.Unmarshal(body, &completion); err != nil {
		return "", &suggestion.UpstreamError{
			Kind:       suggestion.UpstreamErrorResponse,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("failed to decode response body: %w", err),
		}
	}

	if len(completion.Choices) == 0 {
		return "", &suggestion.UpstreamError{
			Kind:       suggestion.UpstreamErrorResponse,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("no choices in response"),
		}
	}

	return completion.Choices[0].Message.Content, nil
}
