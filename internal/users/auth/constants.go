// Copyright (c) 2026 Vidora. All rights reserved.

package auth

import "time"

// # Authentication Constraints

const (
	// MaxFailedLogins is the number of failed attempts tolerated per
	// identifier+IP pair before logins are throttled.
	MaxFailedLogins = 10

	// FailedLoginWindow is how long a failed-attempt counter lives in Redis.
	FailedLoginWindow = 15 * time.Minute

	// ThrottleRetryAfterSeconds is advertised to throttled clients.
	ThrottleRetryAfterSeconds = int(FailedLoginWindow / time.Second)

	// PasswordMinLength is the minimum accepted password length.
	PasswordMinLength = 8

	// UsernameMinLength is the minimum accepted username length.
	UsernameMinLength = 3
)
