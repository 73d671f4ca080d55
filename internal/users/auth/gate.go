// Copyright (c) 2026 Vidora. All rights reserved.

package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/vidora/vidora/internal/platform/apperr"
	"github.com/vidora/vidora/internal/platform/constants"
	"github.com/vidora/vidora/internal/platform/ctxkey"
	"github.com/vidora/vidora/internal/platform/respond"
	"github.com/vidora/vidora/internal/platform/sec"
)

// AccessTokenVerifier defines the minimal token contract the gate needs.
type AccessTokenVerifier interface {
	VerifyAccessToken(tokenString string) (*sec.Claims, error)
}

// Gate protects route groups behind a verified access token.
//
// On every request it re-resolves the account from storage, so a deleted
// account is locked out immediately even while its access token is still
// cryptographically valid.
type Gate struct {
	verifier       AccessTokenVerifier
	userRepository UserRepository
}

// NewGate constructs a new [Gate] with necessary dependencies.
func NewGate(verifier AccessTokenVerifier, userRepo UserRepository) *Gate {
	return &Gate{
		verifier:       verifier,
		userRepository: userRepo,
	}
}

/*
Require is the authentication middleware for protected route groups.

Description: Extracts the access token (cookie first, then the Authorization
header), verifies signature, expiry and kind, resolves the current account,
and injects the sanitized identity into the request context.

Parameters:
  - next: http.Handler

Returns:
  - http.Handler: Wrapped handler rejecting unauthenticated requests with 401
*/
func (gate *Gate) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		tokenString := extractAccessToken(request)
		if tokenString == "" {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}

		claims, err := gate.verifier.VerifyAccessToken(tokenString)
		if err != nil {
			respond.Error(writer, request, apperr.Unauthorized("Invalid or expired access token"))
			return
		}

		// The token proves who the caller was at issue time; storage decides
		// whether that account still exists.
		user, err := gate.userRepository.FindByID(request.Context(), claims.Subject)
		if err != nil {
			respond.Error(writer, request, apperr.Unauthorized("Invalid or expired access token"))
			return
		}

		requestContext := context.WithValue(request.Context(), ctxkey.KeyIdentity, user.Sanitized())
		next.ServeHTTP(writer, request.WithContext(requestContext))
	})
}

// CurrentUser returns the authenticated identity injected by [Gate.Require],
// or nil when the request did not pass through the gate.
func CurrentUser(context context.Context) *User {
	user, ok := context.Value(ctxkey.KeyIdentity).(*User)
	if !ok {
		return nil
	}
	return user
}

// extractAccessToken pulls the credential from the request. The cookie takes
// precedence over the Authorization header.
func extractAccessToken(request *http.Request) string {
	if cookie, err := request.Cookie(constants.AccessTokenCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authorization := request.Header.Get(constants.HeaderAuthorization)
	if token, found := strings.CutPrefix(authorization, "Bearer "); found {
		return strings.TrimSpace(token)
	}

	return ""
}
