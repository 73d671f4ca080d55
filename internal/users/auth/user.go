// Copyright (c) 2026 Vidora. All rights reserved.

/*
Package auth implements the user identity and session management layer.

It defines the core domain entity (User) and the logic for credential
verification, token issuance, refresh-token rotation, and request
authentication.

# Architecture

This layer is the "Truth" of the system. The entity defined here has no
external dependencies and encapsulates all business rules related to user
identity.
*/
package auth

import (
	"time"
)

// # Domain Entities

// User represents a registered member of the Vidora platform.
//
// Username and Email are globally unique and case-normalized; both are
// immutable after creation. At most one refresh token is live per user at
// any time, stored only as a SHA-256 hash.
type User struct {
	ID               string    `json:"id"`
	Username         string    `json:"username"`
	Email            string    `json:"email"`
	FullName         string    `json:"fullName"`
	PasswordHash     string    `json:"-"` // Explicitly omitted from JSON for security.
	RefreshTokenHash string    `json:"-"` // Hashed value of the live refresh token. Omitted for security.
	AvatarURL        string    `json:"avatarUrl"`
	CoverImageURL    string    `json:"coverImageUrl,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Sanitized returns a copy of the user with all credential material cleared.
//
// Handlers must only ever attach or return sanitized users; the JSON tags
// above are a second line of defense, not the primary one.
func (user *User) Sanitized() *User {
	clone := *user
	clone.PasswordHash = ""
	clone.RefreshTokenHash = ""
	return &clone
}

// # Field Identifiers

// Global field names for validation and identity mapping in the authentication domain.
const (
	FieldUsername    = "username"
	FieldEmail       = "email"
	FieldFullName    = "fullName"
	FieldPassword    = "password"
	FieldIdentifier  = "identifier"
	FieldAvatar      = "avatar"
	FieldCoverImage  = "coverImage"
	FieldOldPassword = "oldPassword"
	FieldNewPassword = "newPassword"
)
