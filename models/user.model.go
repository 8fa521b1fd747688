package models

import "time"

// UserProfile defines the stored profile of a signed-in user.
// IsAdmin is derived from the admin role set and never written.
type UserProfile struct {
	ID          string    `json:"id" bson:"-" firestore:"-"`
	Email       string    `json:"email" bson:"email" firestore:"email"`
	DisplayName string    `json:"displayName,omitempty" bson:"displayName,omitempty" firestore:"displayName,omitempty"`
	PhotoURL    string    `json:"photoURL,omitempty" bson:"photoURL,omitempty" firestore:"photoURL,omitempty"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt" firestore:"createdAt"`
	LastLoginAt time.Time `json:"lastLoginAt" bson:"lastLoginAt" firestore:"lastLoginAt"`
	IsAdmin     bool      `json:"isAdmin" bson:"-" firestore:"-"`
}

// AdminRole marks its document id (a uid) as an administrator.
type AdminRole struct {
	ID   string `json:"id" bson:"id" firestore:"id"`
	Role string `json:"role" bson:"role" firestore:"role"`
}

// Credential holds the password hash for an email sign-in. Keyed by lower-cased email.
type Credential struct {
	UID          string    `bson:"uid" firestore:"uid"`
	PasswordHash string    `bson:"passwordHash,omitempty" firestore:"passwordHash,omitempty"`
	Provider     string    `bson:"provider" firestore:"provider"`
	CreatedAt    time.Time `bson:"createdAt" firestore:"createdAt"`
}
