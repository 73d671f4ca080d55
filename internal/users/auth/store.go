// Copyright (c) 2026 Vidora. All rights reserved.

package auth

import (
	"context"
)

// # User Data Access

// UserRepository defines the data access contract for user accounts.
type UserRepository interface {

	/*
		Create persists a brand-new user account to the storage.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: apperr.Conflict on duplicate username/email, or persistence failures
	*/
	Create(context context.Context, user *User) error

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByID(context context.Context, id string) (*User, error)

	/*
		FindByIdentifier returns the account whose username OR email equals
		the given case-normalized identifier.

		Parameters:
		  - context: context.Context
		  - identifier: string

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByIdentifier(context context.Context, identifier string) (*User, error)

	/*
		FindByUsername returns the account with the given username.

		Parameters:
		  - context: context.Context
		  - username: string

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByUsername(context context.Context, username string) (*User, error)

	/*
		FindByEmail returns the account with the given email.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByEmail(context context.Context, email string) (*User, error)

	/*
		Update persists changes to mutable profile fields (full name,
		avatar URL, cover image URL). Username and email are immutable.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: Persistence failures
	*/
	Update(context context.Context, user *User) error

	/*
		UpdatePassword replaces only the user's password hash.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - newHash: string

		Returns:
		  - error: Persistence failures
	*/
	UpdatePassword(context context.Context, userID, newHash string) error

	/*
		SetRefreshToken unconditionally stores the hash of the user's live
		refresh token, superseding any previous session.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - tokenHash: string

		Returns:
		  - error: Persistence failures
	*/
	SetRefreshToken(context context.Context, userID, tokenHash string) error

	/*
		RotateRefreshToken atomically replaces the stored refresh-token hash,
		but only if the currently stored value still equals oldHash
		(compare-and-set). When two concurrent refresh calls race, exactly
		one observes rotated == true.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - oldHash: string
		  - newHash: string

		Returns:
		  - bool: true if the swap happened, false if the stored value changed underneath
		  - error: Persistence failures
	*/
	RotateRefreshToken(context context.Context, userID, oldHash, newHash string) (bool, error)

	/*
		ClearRefreshToken removes the stored refresh-token hash for the user.
		Idempotent: clearing an already-cleared token succeeds.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - error: Persistence failures
	*/
	ClearRefreshToken(context context.Context, userID string) error
}

// # Volatile Data Access

// LoginThrottle bounds the rate of failed credential checks per client.
type LoginThrottle interface {

	/*
		Blocked reports whether the key has exceeded its failed-attempt budget.

		Parameters:
		  - context: context.Context
		  - key: string (identifier + client IP)

		Returns:
		  - bool: true when further attempts must be rejected
		  - error: Retrieval failures
	*/
	Blocked(context context.Context, key string) (bool, error)

	/*
		Fail records one failed attempt and returns the running count.
		The counter expires on its own after the configured window.

		Parameters:
		  - context: context.Context
		  - key: string

		Returns:
		  - int64: Failed attempts within the current window
		  - error: Persistence failures
	*/
	Fail(context context.Context, key string) (int64, error)

	/*
		Reset clears the failed-attempt counter after a successful login.

		Parameters:
		  - context: context.Context
		  - key: string

		Returns:
		  - error: Persistence failures
	*/
	Reset(context context.Context, key string) error
}
