package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeRedirect(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "/events"},
		{"/events/sync-airmeet-event", "/events/sync-airmeet-event"},
		{"https://evil.example.com", "/events"},
		{"//evil.example.com", "/events"},
		{"/\\evil.example.com", "/events"},
		{"events", "/events"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, safeRedirect(tt.in), "input %q", tt.in)
	}
}
