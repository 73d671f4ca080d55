// Copyright (c) 2026 Vidora. All rights reserved.

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing) from
// the domain logic. It acts as an Infrastructure service injected into the
// Application layer via small interfaces defined by the consumers.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vidora/vidora/pkg/uuid"
)

// TokenKind discriminates access tokens from refresh tokens inside the claims
// payload. Together with the disjoint signing secrets it prevents a refresh
// token from ever being accepted where an access token is expected.
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

var (
	// ErrTokenInvalid is returned for structurally broken or tampered tokens.
	ErrTokenInvalid = errors.New("sec: token invalid")

	// ErrTokenExpired is returned for well-signed tokens past their expiry.
	ErrTokenExpired = errors.New("sec: token expired")
)

// Claims represents the payload embedded inside a Vidora JWT.
//
// # Why custom claims?
//
// Access tokens embed the full public identity (username, full name, email)
// so the auth gate can reconstruct the caller without a database round trip.
// Refresh tokens carry only the subject id to minimize their replay value.
type Claims struct {
	jwt.RegisteredClaims

	// Custom application claims are abbreviated to keep the JWT payload small.
	Kind     TokenKind `json:"knd"`
	Username string    `json:"unm,omitempty"`
	FullName string    `json:"fnm,omitempty"`
	Email    string    `json:"eml,omitempty"`
}

// TokenConfig is the immutable signing configuration for [TokenService].
//
// The two secrets MUST differ; sharing one secret across token kinds would
// let a long-lived refresh token masquerade as an access token.
type TokenConfig struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
}

// TokenService handles generation and verification of JWT tokens using HS256.
//
// It is pure given a clock: two calls with identical identity at different
// instants produce different signatures only because the time-bound claims
// differ.
type TokenService struct {
	config TokenConfig
	now    func() time.Time
}

// NewTokenService creates a new TokenService from an immutable configuration.
func NewTokenService(config TokenConfig) (*TokenService, error) {
	if len(config.AccessSecret) == 0 || len(config.RefreshSecret) == 0 {
		return nil, errors.New("sec: token secrets must not be empty")
	}
	if string(config.AccessSecret) == string(config.RefreshSecret) {
		return nil, errors.New("sec: access and refresh secrets must differ")
	}
	if config.AccessTTL <= 0 || config.RefreshTTL <= 0 {
		return nil, errors.New("sec: token TTLs must be positive")
	}

	return &TokenService{
		config: config,
		now:    time.Now,
	}, nil
}

// AccessTTL returns the configured access-token lifetime.
func (service *TokenService) AccessTTL() time.Duration { return service.config.AccessTTL }

// RefreshTTL returns the configured refresh-token lifetime.
func (service *TokenService) RefreshTTL() time.Duration { return service.config.RefreshTTL }

// IssueAccessToken creates a short-lived signed JWT carrying the full public
// identity of the user.
func (service *TokenService) IssueAccessToken(userID, username, fullName, email string) (string, error) {
	currentTime := service.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New(),
			Subject:   userID,
			Issuer:    service.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(service.config.AccessTTL)),
		},
		Kind:     TokenKindAccess,
		Username: username,
		FullName: fullName,
		Email:    email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(service.config.AccessSecret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign access token: %w", err)
	}

	return signedToken, nil
}

// IssueRefreshToken creates a long-lived signed JWT carrying only the subject
// id. The jti makes every issuance distinct even within one clock second, so
// rotating a refresh token always changes the stored hash.
func (service *TokenService) IssueRefreshToken(userID string) (string, error) {
	currentTime := service.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New(),
			Subject:   userID,
			Issuer:    service.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(service.config.RefreshTTL)),
		},
		Kind: TokenKindRefresh,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(service.config.RefreshSecret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign refresh token: %w", err)
	}

	return signedToken, nil
}

// VerifyAccessToken checks signature and validity against the access secret.
func (service *TokenService) VerifyAccessToken(tokenString string) (*Claims, error) {
	return service.verify(tokenString, service.config.AccessSecret, TokenKindAccess)
}

// VerifyRefreshToken checks signature and validity against the refresh secret.
func (service *TokenService) VerifyRefreshToken(tokenString string) (*Claims, error) {
	return service.verify(tokenString, service.config.RefreshSecret, TokenKindRefresh)
}

// verify parses and validates a JWT string against the given secret.
//
// The signature check always precedes any use of the claim contents; claims
// from a token that fails verification are never returned.
func (service *TokenService) verify(tokenString string, secret []byte, kind TokenKind) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
			}
			return secret, nil
		},
		jwt.WithTimeFunc(service.now),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	if claims.Kind != kind {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
