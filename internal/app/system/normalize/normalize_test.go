package normalize_test

import (
	"testing"

	"github.com/cinevote/cinevote/internal/app/system/normalize"
)

func TestEmail(t *testing.T) {
	tests := []struct{ in, want string }{
		{"  Alice@Example.COM ", "alice@example.com"},
		{"bob@example.com", "bob@example.com"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := normalize.Email(tt.in); got != tt.want {
			t.Errorf("Email(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRole(t *testing.T) {
	tests := []struct{ in, want string }{
		{"admin", "admin"},
		{" Admin ", "admin"},
		{"user", "user"},
		{"", "user"},
		{"superuser", "user"},
	}
	for _, tt := range tests {
		if got := normalize.Role(tt.in); got != tt.want {
			t.Errorf("Role(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUsernameFromEmail(t *testing.T) {
	tests := []struct{ in, want string }{
		{"alice@example.com", "alice"},
		{"Bob.Smith@Example.com", "bob.smith"},
		{"noatsign", "noatsign"},
		{"@example.com", "@example.com"},
	}
	for _, tt := range tests {
		if got := normalize.UsernameFromEmail(tt.in); got != tt.want {
			t.Errorf("UsernameFromEmail(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
