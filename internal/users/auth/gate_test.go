// Copyright (c) 2026 Vidora. All rights reserved.

package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidora/vidora/internal/platform/sec"
	"github.com/vidora/vidora/internal/users/auth"
	"github.com/vidora/vidora/pkg/uuid"
)

type gateFixture struct {
	gate       *auth.Gate
	repository *fakeUserRepository
	tokens     *sec.TokenService
	userID     string
}

func newGateFixture(t *testing.T) *gateFixture {
	t.Helper()

	tokens, err := sec.NewTokenService(sec.TokenConfig{
		AccessSecret:  []byte("access-secret-for-tests"),
		RefreshSecret: []byte("refresh-secret-for-tests"),
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    720 * time.Hour,
		Issuer:        "vidora.app",
	})
	require.NoError(t, err)

	repository := newFakeUserRepository()
	userID := uuid.New()
	require.NoError(t, repository.Create(context.Background(), &auth.User{
		ID:           userID,
		Username:     "mai",
		Email:        "mai@vidora.app",
		FullName:     "Mai Tran",
		PasswordHash: "x",
	}))

	return &gateFixture{
		gate:       auth.NewGate(tokens, repository),
		repository: repository,
		tokens:     tokens,
		userID:     userID,
	}
}

// protectedProbe returns a handler that records the injected identity.
func protectedProbe(captured **auth.User) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		*captured = auth.CurrentUser(request.Context())
		writer.WriteHeader(http.StatusOK)
	})
}

/*
TestGate_CookieToken accepts a valid access token from the cookie.
*/
func TestGate_CookieToken(t *testing.T) {
	fixture := newGateFixture(t)

	token, err := fixture.tokens.IssueAccessToken(fixture.userID, "mai", "Mai Tran", "mai@vidora.app")
	require.NoError(t, err)

	var captured *auth.User
	handler := fixture.gate.Require(protectedProbe(&captured))

	request := httptest.NewRequest(http.MethodGet, "/protected", nil)
	request.AddCookie(&http.Cookie{Name: "accessToken", Value: token})
	recorder := httptest.NewRecorder()

	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	require.NotNil(t, captured)
	assert.Equal(t, fixture.userID, captured.ID)
	assert.Empty(t, captured.PasswordHash, "injected identity must be sanitized")
}

/*
TestGate_BearerToken accepts a valid token from the Authorization header.
*/
func TestGate_BearerToken(t *testing.T) {
	fixture := newGateFixture(t)

	token, err := fixture.tokens.IssueAccessToken(fixture.userID, "mai", "Mai Tran", "mai@vidora.app")
	require.NoError(t, err)

	var captured *auth.User
	handler := fixture.gate.Require(protectedProbe(&captured))

	request := httptest.NewRequest(http.MethodGet, "/protected", nil)
	request.Header.Set("Authorization", "Bearer "+token)
	recorder := httptest.NewRecorder()

	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	require.NotNil(t, captured)
	assert.Equal(t, fixture.userID, captured.ID)
}

/*
TestGate_CookiePrecedence prefers the cookie over the Authorization header.
*/
func TestGate_CookiePrecedence(t *testing.T) {
	fixture := newGateFixture(t)

	token, err := fixture.tokens.IssueAccessToken(fixture.userID, "mai", "Mai Tran", "mai@vidora.app")
	require.NoError(t, err)

	var captured *auth.User
	handler := fixture.gate.Require(protectedProbe(&captured))

	// A garbage header next to a valid cookie must not matter.
	request := httptest.NewRequest(http.MethodGet, "/protected", nil)
	request.AddCookie(&http.Cookie{Name: "accessToken", Value: token})
	request.Header.Set("Authorization", "Bearer garbage")
	recorder := httptest.NewRecorder()

	handler.ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusOK, recorder.Code)

	// A garbage cookie next to a valid header fails: the cookie wins.
	request = httptest.NewRequest(http.MethodGet, "/protected", nil)
	request.AddCookie(&http.Cookie{Name: "accessToken", Value: "garbage"})
	request.Header.Set("Authorization", "Bearer "+token)
	recorder = httptest.NewRecorder()

	handler.ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

/*
TestGate_Rejections covers the unauthenticated failure modes.
*/
func TestGate_Rejections(t *testing.T) {
	fixture := newGateFixture(t)

	refreshToken, err := fixture.tokens.IssueRefreshToken(fixture.userID)
	require.NoError(t, err)

	tests := []struct {
		name    string
		prepare func(request *http.Request)
	}{
		{"no_credentials", func(*http.Request) {}},
		{"malformed_header", func(request *http.Request) {
			request.Header.Set("Authorization", "Basic abc123")
		}},
		{"tampered_token", func(request *http.Request) {
			request.Header.Set("Authorization", "Bearer not.a.token")
		}},
		{"refresh_token_rejected_as_access", func(request *http.Request) {
			request.Header.Set("Authorization", "Bearer "+refreshToken)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var captured *auth.User
			handler := fixture.gate.Require(protectedProbe(&captured))

			request := httptest.NewRequest(http.MethodGet, "/protected", nil)
			tt.prepare(request)
			recorder := httptest.NewRecorder()

			handler.ServeHTTP(recorder, request)

			assert.Equal(t, http.StatusUnauthorized, recorder.Code)
			assert.Nil(t, captured)
		})
	}
}

/*
TestGate_DeletedUser locks out a valid token whose account no longer exists.
*/
func TestGate_DeletedUser(t *testing.T) {
	fixture := newGateFixture(t)

	token, err := fixture.tokens.IssueAccessToken(fixture.userID, "mai", "Mai Tran", "mai@vidora.app")
	require.NoError(t, err)

	// Simulate account deletion after token issuance.
	fixture.repository.mu.Lock()
	delete(fixture.repository.users, fixture.userID)
	fixture.repository.mu.Unlock()

	var captured *auth.User
	handler := fixture.gate.Require(protectedProbe(&captured))

	request := httptest.NewRequest(http.MethodGet, "/protected", nil)
	request.AddCookie(&http.Cookie{Name: "accessToken", Value: token})
	recorder := httptest.NewRecorder()

	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Nil(t, captured)
}

/*
TestCurrentUser_NoIdentity returns nil outside the gate.
*/
func TestCurrentUser_NoIdentity(t *testing.T) {
	assert.Nil(t, auth.CurrentUser(context.Background()))
}
