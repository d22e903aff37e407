package api

import (
	"errors"
	"fmt"
)

// Classification sentinels, matched with errors.Is. Every error the client
// returns belongs to ErrEstfeed plus exactly one of the narrower classes.
var (
	// ErrEstfeed is the family sentinel for all upstream API errors
	ErrEstfeed = errors.New("estfeed API error")
	// ErrAuth bad credentials, or a token the server rejected
	ErrAuth = errors.New("authentication failed")
	// ErrConnection the endpoint is unreachable
	ErrConnection = errors.New("endpoint unreachable")
	// ErrProtocol an unexpected status or a malformed success body
	ErrProtocol = errors.New("unexpected API response")
)

// AuthError is returned when the token exchange or an authenticated request
// fails with HTTP 401/403, or when the token response carries no token.
type AuthError struct {
	StatusCode int    // 0 when the failure was not tied to an HTTP status
	Message    string // server response body or a short description
}

func (e *AuthError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("authentication failed (HTTP %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("authentication failed: %s", e.Message)
}

func (e *AuthError) Is(target error) bool {
	return target == ErrAuth || target == ErrEstfeed
}

// ConnectionError is returned when the transport itself fails: DNS, timeout,
// connection refused.
type ConnectionError struct {
	Endpoint string
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("cannot reach %s: %v", e.Endpoint, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

func (e *ConnectionError) Is(target error) bool {
	return target == ErrConnection || target == ErrEstfeed
}

// ProtocolError is returned on any non-200 status outside the auth cases, and
// when a 200 body cannot be decoded.
type ProtocolError struct {
	StatusCode int
	Endpoint   string
	Message    string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("API request to %s failed (HTTP %d): %s", e.Endpoint, e.StatusCode, e.Message)
}

func (e *ProtocolError) Is(target error) bool {
	return target == ErrProtocol || target == ErrEstfeed
}
