package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/ASamedWalker/breakfast-buddy/internal/suggestion"
)

// Client is a completion client backed by the Gemini API.
type Client struct {
	client *genai.Client
	model  string
}

// NewClient creates a new Gemini client.
func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &Client{client: client, model: "gemini-1.5-flash"}, nil
}

// Complete sends the system and user messages to Gemini and returns the
// raw reply text. Gemini takes the system message as a separate
// instruction rather than a chat turn.
func (c *Client) Complete(ctx context.Context, messages []suggestion.Message, maxTokens int) (string, error) {
	model := c.client.GenerativeModel(c.model)
	model.SetMaxOutputTokens(int32(maxTokens))

	var userParts []genai.Part
	for _, m := range messages {
		switch m.Role {
		case "system":
			model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(m.Content)}}
		case "user":
			userParts = append(userParts, genai.Text(m.Content))
		}
	}
	if len(userParts) == 0 {
		return "", &suggestion.UpstreamError{
			Kind: suggestion.UpstreamRequestSetup,
			Err:  fmt.Errorf("no user message to send"),
		}
	}

	resp, err := model.GenerateContent(ctx, userParts...)
	if err != nil {
		return "", &suggestion.UpstreamError{
			Kind: suggestion.UpstreamNoResponse,
			Err:  fmt.Errorf("gemini call failed: %w", err),
		}
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", &suggestion.UpstreamError{
			Kind: suggestion.UpstreamErrorResponse,
			Err:  fmt.Errorf("empty response from Gemini"),
		}
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", &suggestion.UpstreamError{
			Kind: suggestion.UpstreamErrorResponse,
			Err:  fmt.Errorf("unexpected response format from Gemini"),
		}
	}

	return sb.String(), nil
}
