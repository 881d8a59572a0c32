// Package model defines the data structures used throughout the application.
package model

import "time"

// Roles a user account can hold.
//
// Members ask and answer questions; managers additionally get access to the
// team insights endpoint. Role is assigned at registration and stored on the
// user document — the JWT only carries the user ID, so the role is always
// read fresh from the database when it matters.
const (
	RoleMember  = "member"
	RoleManager = "manager"
)

// User represents a registered account.
//
// WHY STRING IDs?
// We generate xid strings for every entity and store them as the Mongo `_id`.
// Mongo is happy with any unique value as `_id`, and string IDs mean the API
// never has to convert ObjectIDs back and forth — identifiers are strings
// end to end, exactly as they appear in JSON responses.
//
// PasswordHash is tagged `json:"-"` so it can never leak into a response,
// no matter which handler serializes the user. OAuth accounts (GitHubID != 0)
// have an empty hash and cannot log in with a password.
type User struct {
	ID           string    `json:"id"        bson:"_id"`
	Name         string    `json:"name"      bson:"name"`
	Email        string    `json:"email"     bson:"email"` // stored lowercased, unique index
	PasswordHash string    `json:"-"         bson:"password_hash,omitempty"`
	Role         string    `json:"role"      bson:"role"` // "member" or "manager"
	GitHubID     int64     `json:"-"         bson:"github_id,omitempty"` // set for OAuth accounts
	AvatarURL    string    `json:"avatarUrl,omitempty" bson:"avatar_url,omitempty"`
	CreatedAt    time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updated_at"`
}

// ValidRole reports whether r is one of the roles accepted at registration.
func ValidRole(r string) bool {
	return r == RoleMember || r == RoleManager
}
