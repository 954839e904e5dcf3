// Package auth resolves bearer tokens to user identities via the backend
// service and records per-request usage.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrUnauthenticated is returned for missing or invalid tokens and for
// upstream auth failures. Callers either reject with 401 or proceed
// anonymously depending on the handler.
var ErrUnauthenticated = errors.New("unauthenticated")

// Verifier resolves a bearer token to a user id.
type Verifier interface {
	UserID(ctx context.Context, token string) (uuid.UUID, error)
}

// BackendVerifier verifies tokens against the backend auth REST endpoint.
type BackendVerifier struct {
	baseURL    string
	serviceKey string
	client     *http.Client
}

// NewBackendVerifier builds a verifier for the backend at baseURL. serviceKey
// is sent as the service api key header alongside the user's bearer token.
func NewBackendVerifier(baseURL, serviceKey string) *BackendVerifier {
	return &BackendVerifier{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// UserID calls GET {base}/auth/v1/user with the bearer token and returns the
// user's id. Any failure collapses into ErrUnauthenticated; the cause is
// wrapped for server-side logging.
func (v *BackendVerifier) UserID(ctx context.Context, token string) (uuid.UUID, error) {
	if token == "" || v.baseURL == "" {
		return uuid.Nil, ErrUnauthenticated
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if v.serviceKey != "" {
		req.Header.Set("apikey", v.serviceKey)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return uuid.Nil, fmt.Errorf("%w: auth endpoint returned %d", ErrUnauthenticated, resp.StatusCode)
	}

	var body struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	id, err := uuid.Parse(body.ID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid user id", ErrUnauthenticated)
	}
	return id, nil
}

// BearerToken extracts the bearer token from an Authorization header value.
// Returns "" when the header is absent or malformed.
func BearerToken(header string) string {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
