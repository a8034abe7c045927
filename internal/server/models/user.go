// Package models defines the persistent records of the server:
// users stored in MongoDB and tasks stored in PostgreSQL.
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a registered identity. Username and email are unique; uniqueness
// is enforced by indexes on the users collection, not by application checks.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Username  string             `bson:"username"`
	Email     string             `bson:"email"`
	Password  string             `bson:"password"` // bcrypt hash, never plaintext
	Role      string             `bson:"role,omitempty"`
	CreatedAt time.Time          `bson:"createdAt"`
}
