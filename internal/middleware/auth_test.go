package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenFromHeader(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Token abc123", "abc123"},
		{"Bearer abc123", "abc123"},
		{"token abc123", "abc123"},
		{"BEARER abc123", "abc123"},
		{"Bearer  abc123 ", "abc123"},
		{"Basic abc123", ""},
		{"abc123", ""},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, TokenFromHeader(tt.header), "header %q", tt.header)
	}
}
