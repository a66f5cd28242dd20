// File path: internal/userstore/userstore.go
package userstore

import (
	"context"
	"errors"
	"time"
)

// User is one signed-in account profile as reported by the identity
// provider. CreatedAt is fixed at first login; LastLogin moves forward on
// every successful sign-in.
type User struct {
	UID       string    `json:"uid" db:"uid"`
	Email     string    `json:"email" db:"email"`
	Name      string    `json:"name" db:"name"`
	Picture   string    `json:"picture" db:"picture"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	LastLogin time.Time `json:"last_login" db:"last_login"`
}

// ErrNotFound reports a lookup for an unknown uid.
var ErrNotFound = errors.New("user not found")

// Store persists account profiles. Two implementations exist: the SQLite
// catalog and a JSONL file store used when no database is configured.
type Store interface {
	// Upsert inserts the profile on first sign-in and refreshes email, name,
	// picture, and last-login time afterwards. The stored record is returned.
	Upsert(ctx context.Context, user User) (User, error)
	// Get returns the stored profile for uid, or ErrNotFound.
	Get(ctx context.Context, uid string) (User, error)
	Close() error
}
