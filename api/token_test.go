package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTokenServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func TestTokenManagerFetch(t *testing.T) {
	var gotContentType, gotGrantType, gotClientID, gotClientSecret string
	server := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, r.ParseForm())
		gotGrantType = r.PostFormValue("grant_type")
		gotClientID = r.PostFormValue("client_id")
		gotClientSecret = r.PostFormValue("client_secret")
		fmt.Fprint(w, `{"access_token":"tok-1","expires_in":600}`)
	})

	tm := newTokenManager(server.URL, "my-id", "my-secret", server.Client(), zap.NewNop())

	token, err := tm.Token(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "tok-1", token)
	assert.Equal(t, "application/x-www-form-urlencoded", gotContentType)
	assert.Equal(t, "client_credentials", gotGrantType)
	assert.Equal(t, "my-id", gotClientID)
	assert.Equal(t, "my-secret", gotClientSecret)
}

func TestTokenManagerCachesUntilExpiry(t *testing.T) {
	var calls atomic.Int32
	server := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		fmt.Fprintf(w, `{"access_token":"tok-%d","expires_in":600}`, n)
	})

	clock := newFakeClock()
	tm := newTokenManager(server.URL, "id", "secret", server.Client(), zap.NewNop())
	tm.now = clock.Now

	ctx := context.Background()
	token, err := tm.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)

	// Still inside the lifetime, the cached token is reused
	clock.Advance(5 * time.Minute)
	token, err = tm.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)
	assert.Equal(t, int32(1), calls.Load())

	// Within the 30s margin before expiry a fresh token is fetched
	clock.Advance(5 * time.Minute)
	token, err = tm.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-2", token)
	assert.Equal(t, int32(2), calls.Load())
}

func TestTokenManagerDefaultTTL(t *testing.T) {
	var calls atomic.Int32
	server := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		// No expires_in in the response
		fmt.Fprintf(w, `{"access_token":"tok-%d"}`, n)
	})

	clock := newFakeClock()
	tm := newTokenManager(server.URL, "id", "secret", server.Client(), zap.NewNop())
	tm.now = clock.Now

	ctx := context.Background()
	_, err := tm.Token(ctx)
	require.NoError(t, err)

	// Default lifetime is 300s with a 30s margin, so 200s in the cache holds
	clock.Advance(200 * time.Second)
	token, err := tm.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)

	// 280s in it does not
	clock.Advance(80 * time.Second)
	token, err = tm.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-2", token)
}

func TestTokenManagerInvalidate(t *testing.T) {
	var calls atomic.Int32
	server := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		fmt.Fprintf(w, `{"access_token":"tok-%d","expires_in":600}`, n)
	})

	tm := newTokenManager(server.URL, "id", "secret", server.Client(), zap.NewNop())

	ctx := context.Background()
	token, err := tm.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)

	tm.invalidate()

	token, err = tm.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-2", token)
}

func TestTokenManagerAuthRejected(t *testing.T) {
	server := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid_client", http.StatusUnauthorized)
	})

	tm := newTokenManager(server.URL, "id", "wrong", server.Client(), zap.NewNop())

	_, err := tm.Token(context.Background())
	assert.ErrorIs(t, err, ErrAuth)
	assert.ErrorIs(t, err, ErrEstfeed)
}

func TestTokenManagerServerError(t *testing.T) {
	server := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	tm := newTokenManager(server.URL, "id", "secret", server.Client(), zap.NewNop())

	_, err := tm.Token(context.Background())
	assert.ErrorIs(t, err, ErrProtocol)
}

func TestTokenManagerMissingAccessToken(t *testing.T) {
	server := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"expires_in":600}`)
	})

	tm := newTokenManager(server.URL, "id", "secret", server.Client(), zap.NewNop())

	_, err := tm.Token(context.Background())
	assert.ErrorIs(t, err, ErrAuth)
}

func TestTokenManagerConnectionError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	tm := newTokenManager(url, "id", "secret", http.DefaultClient, zap.NewNop())

	_, err := tm.Token(context.Background())
	assert.ErrorIs(t, err, ErrConnection)
}
