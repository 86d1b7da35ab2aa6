// internal/domain/models/profile.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role values stored on a Profile. Every profile is exactly one of these;
// new accounts default to RoleUser.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// ValidRole reports whether role is one of the enumerated role values.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}

// Profile represents a member of the movie-night group.
//
// Profiles are provisioned lazily: a row is created the first time a user
// performs a mutating action (suggesting a movie, first Google sign-in),
// not at some separate registration step. Password accounts are the
// exception - signup creates the profile up front.
type Profile struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string             `bson:"username" json:"username"`
	UsernameCI   string             `bson:"username_ci" json:"username_ci"` // lowercase, diacritics-stripped
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash,omitempty" json:"-"`
	AuthMethod   string             `bson:"auth_method" json:"auth_method"` // password | google
	Role         string             `bson:"role" json:"role"`               // user | admin
	GoogleID     string             `bson:"google_id,omitempty" json:"google_id,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// IsAdmin reports whether the profile holds the admin role.
func (p *Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}
