// File path: internal/sqlite/users.go
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Chanthani-N-R-31/Python-Flowchart-Generator/internal/userstore"
)

var _ userstore.Store = (*Store)(nil)

// Upsert inserts the profile on first sign-in; afterwards it refreshes the
// mutable fields and the last-login time while keeping created_at intact.
func (s *Store) Upsert(ctx context.Context, user userstore.User) (userstore.User, error) {
	if s == nil || s.db == nil {
		return userstore.User{}, fmt.Errorf("sqlite store not initialised")
	}
	uid := strings.TrimSpace(user.UID)
	if uid == "" {
		return userstore.User{}, fmt.Errorf("user uid required")
	}
	now := time.Now().UTC()
	created := user.CreatedAt
	if created.IsZero() {
		created = now
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO users (uid, email, name, picture, created_at, last_login)
                VALUES (?, ?, ?, ?, ?, ?)
                ON CONFLICT(uid) DO UPDATE SET
                        email = excluded.email,
                        name = excluded.name,
                        picture = excluded.picture,
                        last_login = excluded.last_login`,
		uid, strings.TrimSpace(user.Email), strings.TrimSpace(user.Name), strings.TrimSpace(user.Picture), created, now)
	if err != nil {
		return userstore.User{}, fmt.Errorf("upsert user: %w", err)
	}
	return s.Get(ctx, uid)
}

// Get returns the stored profile for uid.
func (s *Store) Get(ctx context.Context, uid string) (userstore.User, error) {
	if s == nil || s.db == nil {
		return userstore.User{}, fmt.Errorf("sqlite store not initialised")
	}
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return userstore.User{}, fmt.Errorf("user uid required")
	}
	var user userstore.User
	err := s.db.GetContext(ctx, &user, `SELECT uid, email, name, picture, created_at, last_login FROM users WHERE uid = ?`, uid)
	if errors.Is(err, sql.ErrNoRows) {
		return userstore.User{}, userstore.ErrNotFound
	}
	if err != nil {
		return userstore.User{}, fmt.Errorf("select user: %w", err)
	}
	return user, nil
}

// CountUsers reports how many accounts have signed in at least once.
func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("sqlite store not initialised")
	}
	var count int64
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}
