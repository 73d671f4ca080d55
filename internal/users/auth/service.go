// Copyright (c) 2026 Vidora. All rights reserved.

/*
Session and credential orchestration for the auth domain.

The Service implements the session state machine per user:

	Anonymous → Authenticated → (optionally) Rotated → Revoked

All coordination is pushed to the persistence layer's atomicity; the service
itself holds no mutable state and is safe for concurrent use.
*/
package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/vidora/vidora/internal/platform/apperr"
	"github.com/vidora/vidora/internal/platform/blob"
	"github.com/vidora/vidora/internal/platform/sec"
	"github.com/vidora/vidora/pkg/username"
	"github.com/vidora/vidora/pkg/uuid"
)

// # Contracts & Types

// TokenProvider defines the contract for minting and checking security tokens.
type TokenProvider interface {
	// IssueAccessToken creates a short-lived signed JWT carrying the full
	// public identity, so the gate can authenticate without a DB round trip.
	IssueAccessToken(userID, userName, fullName, email string) (string, error)

	// IssueRefreshToken creates a long-lived signed JWT carrying only the
	// subject id.
	IssueRefreshToken(userID string) (string, error)

	// VerifyRefreshToken checks signature and expiry against the refresh
	// secret and returns the embedded claims.
	VerifyRefreshToken(tokenString string) (*sec.Claims, error)

	// AccessTTL returns the configured access-token lifetime.
	AccessTTL() time.Duration

	// RefreshTTL returns the configured refresh-token lifetime.
	RefreshTTL() time.Duration
}

// Service implements user authentication use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, login,
// or rotation logic must be reviewed by the security team.
type Service struct {
	userRepository UserRepository
	loginThrottle  LoginThrottle
	tokenProvider  TokenProvider
	blobStore      blob.Store
}

// NewService constructs a new auth [Service] with necessary dependencies.
func NewService(
	userRepo UserRepository,
	throttle LoginThrottle,
	tokenProv TokenProvider,
	blobStore blob.Store,
) *Service {
	return &Service{
		userRepository: userRepo,
		loginThrottle:  throttle,
		tokenProvider:  tokenProv,
		blobStore:      blobStore,
	}
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new member.
//
// AvatarPath is required; CoverImagePath is optional. Both are local paths to
// already-received upload files, published through the blob store.
type RegisterInput struct {
	Username       string
	Email          string
	FullName       string
	Password       string
	AvatarPath     string
	CoverImagePath string
}

/*
Register validates, hashes, uploads, and persists a brand new user account.

Description: Deep-enrollment of a new member. Identifiers are case-normalized
before the uniqueness checks; the avatar (and optional cover image) are
published to the blob store and only their URLs are persisted.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *User: Created entity (sanitized)
  - error: apperr.Conflict (if identity exists), upload or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*User, error) {

	// Case-normalize before every lookup and write.
	normalizedUsername := username.Normalize(input.Username)
	normalizedEmail := username.Normalize(input.Email)

	// Verify username uniqueness. Return a client-safe Conflict err.
	_, err := service.userRepository.FindByUsername(context, normalizedUsername)
	if err == nil {
		return nil, apperr.Conflict("Username is already taken")
	}

	// Verify email uniqueness. Return a client-safe Conflict err.
	_, err = service.userRepository.FindByEmail(context, normalizedEmail)
	if err == nil {
		return nil, apperr.Conflict("Email is already registered")
	}

	// Prevent storing plain-text passwords. Default cost is used for balance
	// between security and CPU utilization during registration spikes.
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// Publish the avatar. A registration without a usable avatar is rejected.
	avatarURL, err := service.blobStore.Upload(context, input.AvatarPath)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("auth_service_avatar_upload_failed: %w", err))
	}

	// The cover image is optional; skip upload when absent.
	var coverImageURL string
	if input.CoverImagePath != "" {
		coverImageURL, err = service.blobStore.Upload(context, input.CoverImagePath)
		if err != nil {
			return nil, apperr.Internal(fmt.Errorf("auth_service_cover_upload_failed: %w", err))
		}
	}

	// Construct the new User entity. Time-sortable ID to prevent PG index fragmentation.
	user := &User{
		ID:            uuid.New(),
		Username:      normalizedUsername,
		Email:         normalizedEmail,
		FullName:      input.FullName,
		PasswordHash:  hashedPassword,
		AvatarURL:     avatarURL,
		CoverImageURL: coverImageURL,
	}

	// Persist the user. The unique constraints close the check-then-create
	// race; a concurrent duplicate still surfaces as Conflict.
	if err := service.userRepository.Create(context, user); err != nil {
		return nil, err
	}

	return user.Sanitized(), nil
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Identifier string // Can be Username or Email
	Password   string
	ClientIP   string
}

// Session represents a successfully established user session.
type Session struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
	User                  *User
}

/*
Login validates user credentials and issues a fresh access/refresh pair.

Description: Verifies identity, performs constant-time password comparison,
persists the hash of the new refresh token (superseding any previous
session), and returns transport-ready session credentials.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *Session: Access and refresh tokens plus the sanitized user profile
  - error: apperr.NotFound, apperr.Unauthorized, apperr.RateLimited, or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*Session, error) {
	identifier := username.Normalize(input.Identifier)
	throttleKey := identifier + "|" + input.ClientIP

	// Reject early when this identifier+IP pair has burned its attempts.
	blocked, err := service.loginThrottle.Blocked(context, throttleKey)
	if err != nil {
		return nil, fmt.Errorf("auth_service_throttle_check_failed: %w", err)
	}
	if blocked {
		return nil, apperr.RateLimited(ThrottleRetryAfterSeconds)
	}

	// Flexible login: a single lookup covers username and email.
	user, err := service.userRepository.FindByIdentifier(context, identifier)
	if err != nil {
		return nil, apperr.NotFound("User")
	}

	// bcrypt comparison is constant-time to prevent timing attacks.
	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		_, _ = service.loginThrottle.Fail(context, throttleKey)
		return nil, apperr.Unauthorized("Invalid user credentials")
	}

	// A good login clears the failure budget for this client.
	_ = service.loginThrottle.Reset(context, throttleKey)

	session, err := service.issueSession(context, user, func(tokenHash string) error {
		// Login unconditionally overwrites the persisted refresh token:
		// single active session per account.
		return service.userRepository.SetRefreshToken(context, user.ID, tokenHash)
	})
	if err != nil {
		return nil, err
	}

	return session, nil
}

/*
Refresh implements the refresh-token rotation mechanism.

Description: Verifies the presented refresh token against the refresh secret,
compares it by value against the persisted one to detect replay of a
superseded token, and atomically rotates to a new pair. Verification failure
and a vanished user share one generic message to avoid account enumeration.

Parameters:
  - context: context.Context
  - presentedToken: string

Returns:
  - *Session: New session credentials
  - error: apperr.Unauthorized or storage failures
*/
func (service *Service) Refresh(context context.Context, presentedToken string) (*Session, error) {

	// Signature and expiry check first; claims of an unverified token are
	// never inspected.
	claims, err := service.tokenProvider.VerifyRefreshToken(presentedToken)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid refresh token")
	}

	// Same message class as the verification failure: a caller must not be
	// able to distinguish "bad token" from "no such user".
	user, err := service.userRepository.FindByID(context, claims.Subject)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid refresh token")
	}

	// Compare by value against the persisted hash. A well-signed token that
	// no longer matches is a replay of a superseded token.
	presentedHash := sec.HashToken(presentedToken)
	if user.RefreshTokenHash == "" ||
		subtle.ConstantTimeCompare([]byte(presentedHash), []byte(user.RefreshTokenHash)) != 1 {
		return nil, apperr.Unauthorized("Refresh token expired or reused")
	}

	session, err := service.issueSession(context, user, func(newHash string) error {
		// Compare-and-set keyed on the old hash: of two racing refresh
		// calls only one may win; the other must fail rather than
		// silently overwrite the newer session.
		rotated, rotateErr := service.userRepository.RotateRefreshToken(context, user.ID, presentedHash, newHash)
		if rotateErr != nil {
			return rotateErr
		}
		if !rotated {
			return apperr.Unauthorized("Refresh token expired or reused")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return session, nil
}

/*
Logout permanently revokes the user's live refresh token.

Description: Unconditional and idempotent; logging out an already logged-out
user succeeds.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Revocation failures
*/
func (service *Service) Logout(context context.Context, userID string) error {
	if err := service.userRepository.ClearRefreshToken(context, userID); err != nil {
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}
	return nil
}

// # Credential Management

/*
ChangePassword allows an authenticated user to update their credentials.

Description: Verifies the current password before replacing the stored
digest. The live refresh token is left intact; the caller's session survives.

Parameters:
  - context: context.Context
  - userID: string
  - oldPassword: string
  - newPassword: string

Returns:
  - error: apperr.Unauthorized on mismatch, or storage failures
*/
func (service *Service) ChangePassword(context context.Context, userID, oldPassword, newPassword string) error {
	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return err
	}

	// Verify the current password before allowing change.
	if !sec.CheckPasswordHash(oldPassword, user.PasswordHash) {
		return apperr.Unauthorized("Old password is incorrect")
	}

	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_change_password_hash_failed: %w", err)
	}

	if err := service.userRepository.UpdatePassword(context, userID, hashedPassword); err != nil {
		return fmt.Errorf("auth_service_change_password_update_failed: %w", err)
	}

	return nil
}

// # Internals

// issueSession mints an access/refresh pair for the user and persists the new
// refresh-token hash via the supplied persist callback (unconditional write on
// login, compare-and-set on rotation).
func (service *Service) issueSession(context context.Context, user *User, persist func(newHash string) error) (*Session, error) {
	accessToken, err := service.tokenProvider.IssueAccessToken(user.ID, user.Username, user.FullName, user.Email)
	if err != nil {
		return nil, fmt.Errorf("auth_service_access_token_failed: %w", err)
	}

	refreshToken, err := service.tokenProvider.IssueRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	if err := persist(sec.HashToken(refreshToken)); err != nil {
		return nil, err
	}

	now := time.Now()
	return &Session{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		AccessTokenExpiresAt:  now.Add(service.tokenProvider.AccessTTL()),
		RefreshTokenExpiresAt: now.Add(service.tokenProvider.RefreshTTL()),
		User:                  user.Sanitized(),
	}, nil
}
