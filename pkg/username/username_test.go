// Copyright (c) 2026 Vidora. All rights reserved.

package username_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vidora/vidora/pkg/username"
)

/*
TestNormalize verifies the canonical form of identifiers.
*/
func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercase_passthrough", "alice", "alice"},
		{"uppercase_folded", "Alice", "alice"},
		{"email_folded", "Alice@Example.COM", "alice@example.com"},
		{"whitespace_trimmed", "  alice  ", "alice"},
		{"fullwidth_folded", "ＡＬＩＣＥ", "alice"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, username.Normalize(tt.input))
		})
	}
}

/*
TestNormalize_Idempotent ensures normalizing twice changes nothing.
*/
func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{"Alice", "  Bob@Example.com ", "ＣＡＲＯＬ"}

	for _, input := range inputs {
		once := username.Normalize(input)
		assert.Equal(t, once, username.Normalize(once))
	}
}
