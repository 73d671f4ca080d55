// Copyright (c) 2026 Vidora. All rights reserved.

/*
Package account handles user profile management and viewing history.

It provides functionalities for users to update their mutable identity data
(full name, avatar, cover image) and to review what they have watched.

# Architecture

  - Entities: WatchEntry (DTO).
  - Domain: This package depends on the auth package for the User entity.
  - Immutability: Username and email are fixed at registration and are not
    reachable through any operation in this package.
*/
package account

import (
	"context"
	"time"

	"github.com/vidora/vidora/internal/users/auth"
)

// # Domain Entities

// WatchEntry represents one row of a user's viewing history.
type WatchEntry struct {
	ID              string    `json:"id"`
	UserID          string    `json:"userId"`
	VideoID         string    `json:"videoId"`
	Title           string    `json:"title"`
	ThumbnailURL    string    `json:"thumbnailUrl,omitempty"`
	DurationSeconds int       `json:"durationSeconds"`
	ProgressSeconds int       `json:"progressSeconds"`
	WatchedAt       time.Time `json:"watchedAt"`
}

// # Repository Contracts

// AccountRepository defines the persistence contract for profile updates.
//
// The auth package's user repository satisfies this contract; the narrower
// interface keeps this package from reaching credential-mutating methods.
type AccountRepository interface {
	/*
		FindByID retrieves a user record by their unique ID.

		Parameters:
		  - context: context.Context
		  - id: string (UUID)

		Returns:
		  - *auth.User: Loaded account entity
		  - error: apperr.NotFound or storage failures
	*/
	FindByID(context context.Context, id string) (*auth.User, error)

	/*
		Update modifies the mutable profile fields of an existing user.

		Parameters:
		  - context: context.Context
		  - user: *auth.User (Hydrated entity with changes)

		Returns:
		  - error: Storage or constraint failures
	*/
	Update(context context.Context, user *auth.User) error
}

// WatchHistoryRepository defines the persistence contract for viewing history.
type WatchHistoryRepository interface {
	/*
		ListByUserID returns the newest watch entries for a user.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - limit: int (Upper bound on returned rows)

		Returns:
		  - []WatchEntry: Entries ordered by watch time, newest first
		  - error: Retrieval failures
	*/
	ListByUserID(context context.Context, userID string, limit int) ([]WatchEntry, error)

	/*
		Record upserts a watch entry, keyed on (user, video).

		Parameters:
		  - context: context.Context
		  - entry: *WatchEntry

		Returns:
		  - error: Storage failures
	*/
	Record(context context.Context, entry *WatchEntry) error
}
