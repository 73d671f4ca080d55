// Copyright (c) 2026 Vidora. All rights reserved.

package sec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()

	service, err := NewTokenService(TokenConfig{
		AccessSecret:  []byte("access-secret-for-tests"),
		RefreshSecret: []byte("refresh-secret-for-tests"),
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    30 * 24 * time.Hour,
		Issuer:        "vidora.app",
	})
	require.NoError(t, err)

	return service
}

/*
TestNewTokenService_Validation rejects unusable signing configurations.
*/
func TestNewTokenService_Validation(t *testing.T) {
	tests := []struct {
		name   string
		config TokenConfig
	}{
		{"empty_access_secret", TokenConfig{
			RefreshSecret: []byte("r"), AccessTTL: time.Minute, RefreshTTL: time.Hour,
		}},
		{"empty_refresh_secret", TokenConfig{
			AccessSecret: []byte("a"), AccessTTL: time.Minute, RefreshTTL: time.Hour,
		}},
		{"identical_secrets", TokenConfig{
			AccessSecret: []byte("same"), RefreshSecret: []byte("same"),
			AccessTTL: time.Minute, RefreshTTL: time.Hour,
		}},
		{"zero_access_ttl", TokenConfig{
			AccessSecret: []byte("a"), RefreshSecret: []byte("r"), RefreshTTL: time.Hour,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTokenService(tt.config)
			assert.Error(t, err)
		})
	}
}

/*
TestAccessToken_RoundTrip verifies an issued access token carries the identity.
*/
func TestAccessToken_RoundTrip(t *testing.T) {
	service := newTestTokenService(t)

	token, err := service.IssueAccessToken("user-1", "mai", "Mai Tran", "mai@vidora.app")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := service.VerifyAccessToken(token)
	require.NoError(t, err)

	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "mai", claims.Username)
	assert.Equal(t, "Mai Tran", claims.FullName)
	assert.Equal(t, "mai@vidora.app", claims.Email)
	assert.Equal(t, TokenKindAccess, claims.Kind)
	assert.Equal(t, "vidora.app", claims.Issuer)
}

/*
TestRefreshToken_RoundTrip verifies a refresh token carries only the subject.
*/
func TestRefreshToken_RoundTrip(t *testing.T) {
	service := newTestTokenService(t)

	token, err := service.IssueRefreshToken("user-1")
	require.NoError(t, err)

	claims, err := service.VerifyRefreshToken(token)
	require.NoError(t, err)

	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, TokenKindRefresh, claims.Kind)
	assert.Empty(t, claims.Username)
	assert.Empty(t, claims.Email)
}

/*
TestIssue_DistinctWithinSameSecond pins the rotation precondition: two tokens
minted for the same subject at the exact same instant must still differ, so
swapping a stored token hash for its successor always changes the stored value.
*/
func TestIssue_DistinctWithinSameSecond(t *testing.T) {
	service := newTestTokenService(t)

	frozen := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return frozen }

	firstRefresh, err := service.IssueRefreshToken("user-1")
	require.NoError(t, err)
	secondRefresh, err := service.IssueRefreshToken("user-1")
	require.NoError(t, err)
	require.NotEqual(t, firstRefresh, secondRefresh)

	firstClaims, err := service.VerifyRefreshToken(firstRefresh)
	require.NoError(t, err)
	secondClaims, err := service.VerifyRefreshToken(secondRefresh)
	require.NoError(t, err)
	assert.NotEmpty(t, firstClaims.ID)
	assert.NotEqual(t, firstClaims.ID, secondClaims.ID)

	firstAccess, err := service.IssueAccessToken("user-1", "mai", "Mai Tran", "mai@vidora.app")
	require.NoError(t, err)
	secondAccess, err := service.IssueAccessToken("user-1", "mai", "Mai Tran", "mai@vidora.app")
	require.NoError(t, err)
	assert.NotEqual(t, firstAccess, secondAccess)
}

/*
TestVerify_KindConfusion ensures tokens are rejected across kinds even before
the kind claim is consulted (the secrets are disjoint).
*/
func TestVerify_KindConfusion(t *testing.T) {
	service := newTestTokenService(t)

	accessToken, err := service.IssueAccessToken("user-1", "mai", "Mai Tran", "mai@vidora.app")
	require.NoError(t, err)
	refreshToken, err := service.IssueRefreshToken("user-1")
	require.NoError(t, err)

	_, err = service.VerifyRefreshToken(accessToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = service.VerifyAccessToken(refreshToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

/*
TestVerify_Tampered rejects a token whose payload was modified after signing.
*/
func TestVerify_Tampered(t *testing.T) {
	service := newTestTokenService(t)

	token, err := service.IssueAccessToken("user-1", "mai", "Mai Tran", "mai@vidora.app")
	require.NoError(t, err)

	tampered := token[:len(token)-4] + "xxxx"

	_, err = service.VerifyAccessToken(tampered)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

/*
TestVerify_Garbage rejects strings that are not JWTs at all.
*/
func TestVerify_Garbage(t *testing.T) {
	service := newTestTokenService(t)

	for _, input := range []string{"", "not-a-token", "a.b.c"} {
		_, err := service.VerifyAccessToken(input)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	}
}

/*
TestVerify_Expired maps an aged-out token to ErrTokenExpired.
*/
func TestVerify_Expired(t *testing.T) {
	service := newTestTokenService(t)

	issuedAt := time.Now()
	service.now = func() time.Time { return issuedAt }

	token, err := service.IssueAccessToken("user-1", "mai", "Mai Tran", "mai@vidora.app")
	require.NoError(t, err)

	// Advance the clock past the access TTL.
	service.now = func() time.Time { return issuedAt.Add(16 * time.Minute) }

	_, err = service.VerifyAccessToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)

	// A refresh token issued at the same instant is still comfortably valid.
	service.now = func() time.Time { return issuedAt }
	refreshToken, err := service.IssueRefreshToken("user-1")
	require.NoError(t, err)

	service.now = func() time.Time { return issuedAt.Add(16 * time.Minute) }
	_, err = service.VerifyRefreshToken(refreshToken)
	assert.NoError(t, err)
}
