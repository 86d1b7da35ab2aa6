package authutil_test

import (
	"testing"

	"github.com/cinevote/cinevote/internal/app/system/authutil"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := authutil.HashPassword("movie-night1")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "movie-night1" {
		t.Fatal("hash equals plaintext")
	}
	if !authutil.CheckPassword("movie-night1", hash) {
		t.Error("CheckPassword rejected correct password")
	}
	if authutil.CheckPassword("wrong-password2", hash) {
		t.Error("CheckPassword accepted wrong password")
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		wantErr  bool
	}{
		{"goodpass1", false},
		{"short1", true},
		{"alllettershere", true},
		{"123456789", true},
		{"", true},
	}
	for _, tt := range tests {
		err := authutil.ValidatePassword(tt.password)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidatePassword(%q) error = %v, wantErr %v", tt.password, err, tt.wantErr)
		}
	}
}
