// internal/domain/models/authmethods.go
package models

// Auth method values stored on a profile. Password signup and Google
// OAuth are the two ways into the app; a profile keeps the method it was
// created with even after linking the other.
const (
	AuthMethodPassword = "password"
	AuthMethodGoogle   = "google"
)

// ValidAuthMethod checks if a value is a supported auth method.
func ValidAuthMethod(value string) bool {
	return value == AuthMethodPassword || value == AuthMethodGoogle
}
