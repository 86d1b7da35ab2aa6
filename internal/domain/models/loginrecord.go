// internal/domain/models/loginrecord.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LoginRecord captures a single successful sign-in.
// CreatedAt is indexed for recent-activity views.
type LoginRecord struct {
	ProfileID primitive.ObjectID `bson:"profile_id" json:"profile_id"`
	Method    string             `bson:"method" json:"method"` // password | google
	IP        string             `bson:"ip" json:"ip"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
