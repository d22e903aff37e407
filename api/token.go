package api

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

	"go.uber.org/zap"
)

const (
	// defaultTokenTTL is assumed when the token response omits expires_in.
	defaultTokenTTL = 300 * time.Second

	// tokenExpiryMargin is subtracted from the reported lifetime so a token
	// is refreshed before the server considers it expired.
	tokenExpiryMargin = 30 * time.Second
)

// tokenManager obtains and caches OAuth2 client-credentials tokens. The
// cached token is reused until tokenExpiryMargin before its reported expiry.
type tokenManager struct {
	tokenURL     string
	clientID     string
	clientSecret string
	httpClient   *http.Client
	logger       *zap.Logger
	now          func() time.Time

	mu     sync.Mutex
	token  string
	expiry time.Time
}

func newTokenManager(tokenURL, clientID, clientSecret string, httpClient *http.Client, logger *zap.Logger) *tokenManager {
	return &tokenManager{
		tokenURL:     tokenURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   httpClient,
		logger:       logger,
		now:          time.Now,
	}
}

// Token returns a valid access token, fetching a fresh one when the cached
// token is missing or within the expiry margin.
func (t *tokenManager) Token(ctx context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.token != "" && t.now().Before(t.expiry) {
		return t.token, nil
	}
	return t.fetchLocked(ctx)
}

// invalidate drops the cached token so the next call fetches a new one.
// Used after the API rejects a request with 401/403.
func (t *tokenManager) invalidate() {
	t.mu.Lock()
	t.token = ""
	t.expiry = time.Time{}
	t.mu.Unlock()
}

func (t *tokenManager) fetchLocked(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", t.clientID)
	form.Set("client_secret", t.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	t.logger.Debug("requesting access token", zap.String("token_url", t.tokenURL))

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", &ConnectionError{Endpoint: t.tokenURL, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &ConnectionError{Endpoint: t.tokenURL, Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", &AuthError{StatusCode: resp.StatusCode, Message: "token request rejected, check client credentials"}
	case resp.StatusCode != http.StatusOK:
		return "", &ProtocolError{
			StatusCode: resp.StatusCode,
			Endpoint:   t.tokenURL,
			Message:    "unexpected status from token endpoint",
		}
	}

	var payload struct {
		AccessToken string  `json:"access_token"`
		ExpiresIn   float64 `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", &ProtocolError{
			StatusCode: resp.StatusCode,
			Endpoint:   t.tokenURL,
			Message:    fmt.Sprintf("failed to decode token response: %v", err),
		}
	}
	if payload.AccessToken == "" {
		return "", &AuthError{StatusCode: resp.StatusCode, Message: "token response did not contain an access token"}
	}

	ttl := defaultTokenTTL
	if payload.ExpiresIn > 0 {
		ttl = time.Duration(payload.ExpiresIn * float64(time.Second))
	}

	t.token = payload.AccessToken
	t.expiry = t.now().Add(ttl - tokenExpiryMargin)

	t.logger.Debug("access token refreshed", zap.Duration("ttl", ttl))
	return t.token, nil
}
