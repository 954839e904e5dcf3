package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc123", BearerToken("Bearer abc123"))
	assert.Equal(t, "abc123", BearerToken("bearer abc123"))
	assert.Equal(t, "", BearerToken(""))
	assert.Equal(t, "", BearerToken("Basic abc123"))
	assert.Equal(t, "", BearerToken("Bearer"))
	assert.Equal(t, "", BearerToken("Bearer a b"))
}

func TestBackendVerifier_Success(t *testing.T) {
	want := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/user", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "svc-key", r.Header.Get("apikey"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"` + want.String() + `","email":"u@example.com"}`))
	}))
	defer srv.Close()

	v := NewBackendVerifier(srv.URL, "svc-key")
	got, err := v.UserID(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestBackendVerifier_Non200IsUnauthenticated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	v := NewBackendVerifier(srv.URL, "")
	_, err := v.UserID(context.Background(), "bad-token")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestBackendVerifier_EmptyToken(t *testing.T) {
	v := NewBackendVerifier("http://localhost:9", "")
	_, err := v.UserID(context.Background(), "")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestBackendVerifier_BadUserID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"not-a-uuid"}`))
	}))
	defer srv.Close()

	v := NewBackendVerifier(srv.URL, "")
	_, err := v.UserID(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestNopRecorder(t *testing.T) {
	require.NoError(t, NopRecorder{}.Record(context.Background(), UsageEntry{}))
}
