// Copyright (c) 2026 Vidora. All rights reserved.

// Package username normalizes account identifiers to their canonical form.
//
// # Usage
//
// Usernames and emails are globally unique and case-normalized. Every lookup
// and every write goes through [Normalize] so that "Alice", "alice" and
// "ＡＬＩＣＥ" (fullwidth) all resolve to the same account.
package username

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalize returns the canonical form of a username or email address.
//
// # Transformation Pipeline
//
// 1. Trims surrounding whitespace.
// 2. Applies Unicode NFKC normalization (folds fullwidth/compatibility forms).
// 3. Lowercases the result.
func Normalize(identifier string) string {
	trimmed := strings.TrimSpace(identifier)
	normalized := norm.NFKC.String(trimmed)
	return strings.ToLower(normalized)
}
