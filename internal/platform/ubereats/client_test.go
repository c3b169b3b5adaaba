package ubereats

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestServers(t *testing.T, tokenCalls *int, searchStatus int, searchBody string) (*Client, func()) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*tokenCalls++
		assert.Equal(t, "client_credentials", r.URL.Query().Get("grant_type"))
		json.NewEncoder(w).Encode(tokenResponse{AccessToken: "test-token", ExpiresIn: 3600})
	}))

	apiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.WriteHeader(searchStatus)
		w.Write([]byte(searchBody))
	}))

	client := NewClientWithURLs("id", "secret", apiServer.URL, tokenServer.URL)
	return client, func() {
		tokenServer.Close()
		apiServer.Close()
	}
}

func TestSearchRestaurants(t *testing.T) {
	tokenCalls := 0
	client, cleanup := newTestServers(t, &tokenCalls, http.StatusOK, `{"restaurants":[{"name":"Deli Corner"}]}`)
	defer cleanup()

	payload, err := client.SearchRestaurants(context.Background(), 40.7128, -74.006)
	assert.NoError(t, err)
	assert.JSONEq(t, `{"restaurants":[{"name":"Deli Corner"}]}`, string(payload))
	assert.Equal(t, 1, tokenCalls)
}

func TestSearchRestaurants_TokenCached(t *testing.T) {
	tokenCalls := 0
	client, cleanup := newTestServers(t, &tokenCalls, http.StatusOK, `{}`)
	defer cleanup()

	for i := 0; i < 3; i++ {
		_, err := client.SearchRestaurants(context.Background(), 40.7128, -74.006)
		assert.NoError(t, err)
	}
	// The token is fetched once and reused until it expires.
	assert.Equal(t, 1, tokenCalls)
}

func TestSearchRestaurants_ExpiredTokenRefetched(t *testing.T) {
	tokenCalls := 0
	client, cleanup := newTestServers(t, &tokenCalls, http.StatusOK, `{}`)
	defer cleanup()

	_, err := client.SearchRestaurants(context.Background(), 40.7128, -74.006)
	assert.NoError(t, err)

	client.tokens.set("test-token", -time.Second)

	_, err = client.SearchRestaurants(context.Background(), 40.7128, -74.006)
	assert.NoError(t, err)
	assert.Equal(t, 2, tokenCalls)
}

func TestSearchRestaurants_ProviderError(t *testing.T) {
	tokenCalls := 0
	client, cleanup := newTestServers(t, &tokenCalls, http.StatusUnauthorized, `{"message":"invalid scope"}`)
	defer cleanup()

	_, err := client.SearchRestaurants(context.Background(), 40.7128, -74.006)
	var apiErr *APIError
	assert.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "invalid scope", apiErr.Message)
}

func TestSearchRestaurants_NoResponse(t *testing.T) {
	tokenCalls := 0
	client, cleanup := newTestServers(t, &tokenCalls, http.StatusOK, `{}`)
	cleanup() // both servers down

	_, err := client.SearchRestaurants(context.Background(), 40.7128, -74.006)
	assert.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}
