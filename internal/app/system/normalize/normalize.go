// internal/app/system/normalize/normalize.go
package normalize

import (
	"strings"

	"github.com/cinevote/cinevote/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
)

// Email lowercases and trims an email address for storage and lookup.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Username trims a username for storage. Case is preserved for display;
// use UsernameCI for case-insensitive matching.
func Username(s string) string {
	return strings.TrimSpace(s)
}

// UsernameCI folds a username for case/diacritic-insensitive matching.
func UsernameCI(s string) string {
	return text.Fold(strings.TrimSpace(s))
}

// Role lowercases and trims a role string, mapping anything outside the
// enumerated values to the default user role.
func Role(s string) string {
	r := strings.ToLower(strings.TrimSpace(s))
	if !models.ValidRole(r) {
		return models.RoleUser
	}
	return r
}

// AuthMethod lowercases and trims an auth method string.
func AuthMethod(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// UsernameFromEmail derives a default username from an email address, used
// when lazily provisioning a profile that has no explicit username.
func UsernameFromEmail(email string) string {
	e := Email(email)
	if at := strings.IndexByte(e, '@'); at > 0 {
		return e[:at]
	}
	return e
}
