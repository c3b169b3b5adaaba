package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ASamedWalker/breakfast-buddy/internal/suggestion"
)

func TestComplete(t *testing.T) {
	var gotReq request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		json.NewEncoder(w).Encode(response{
			Choices: []choice{{Message: suggestion.Message{Role: "assistant", Content: "Item: Bagel"}}},
		})
	}))
	defer server.Close()

	client := NewClientWithBaseURL("test-key", server.URL, "gpt-4o")
	reply, err := client.Complete(context.Background(), []suggestion.Message{
		{Role: "system", Content: "respond with labels"},
		{Role: "user", Content: "breakfast please"},
	}, 150)

	assert.NoError(t, err)
	assert.Equal(t, "Item: Bagel", reply)
	assert.Equal(t, "gpt-4o", gotReq.Model)
	assert.Equal(t, 150, gotReq.MaxTokens)
	assert.Len(t, gotReq.Messages, 2)
}

func TestComplete_ErrorResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(response{Error: &apiErr{Message: "rate limit reached", Type: "rate_limit_error"}})
	}))
	defer server.Close()

	client := NewClientWithBaseURL("test-key", server.URL, "gpt-4o")
	_, err := client.Complete(context.Background(), []suggestion.Message{{Role: "user", Content: "hi"}}, 150)

	var upstream *suggestion.UpstreamError
	assert.True(t, errors.As(err, &upstream))
	assert.Equal(t, suggestion.UpstreamErrorResponse, upstream.Kind)
	assert.Equal(t, http.StatusTooManyRequests, upstream.StatusCode)
	assert.Contains(t, upstream.Error(), "rate limit reached")
}

func TestComplete_NoResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	client := NewClientWithBaseURL("test-key", server.URL, "gpt-4o")
	_, err := client.Complete(context.Background(), []suggestion.Message{{Role: "user", Content: "hi"}}, 150)

	var upstream *suggestion.UpstreamError
	assert.True(t, errors.As(err, &upstream))
	assert.Equal(t, suggestion.UpstreamNoResponse, upstream.Kind)
}

func TestComplete_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(response{})
	}))
	defer server.Close()

	client := NewClientWithBaseURL("test-key", server.URL, "gpt-4o")
	_, err := client.Complete(context.Background(), []suggestion.Message{{Role: "user", Content: "hi"}}, 150)

	var upstream *suggestion.UpstreamError
	assert.True(t, errors.As(err, &upstream))
	assert.Equal(t, suggestion.UpstreamErrorResponse, upstream.Kind)
}
