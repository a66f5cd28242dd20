// File path: internal/sqlite/migrate.go
package sqlite

import (
	"context"
	"errors"
	"fmt"

	"github.com/Chanthani-N-R-31/Python-Flowchart-Generator/internal/common"
	"github.com/Chanthani-N-R-31/Python-Flowchart-Generator/internal/memory"
)

// SyncUsersFromMemory lifts profiles from the JSONL fallback store into the
// SQLite catalog. Existing rows keep their created_at and last_login only
// moves forward, so the sync is safe to repeat.
func (s *Store) SyncUsersFromMemory(ctx context.Context, mem *memory.Store) (int, error) {
	if s == nil || s.db == nil {
		return 0, errors.New("sqlite store not initialised")
	}
	if mem == nil {
		return 0, errors.New("memory store not provided")
	}
	users, err := mem.Users(ctx)
	if err != nil {
		return 0, fmt.Errorf("load fallback users: %w", err)
	}
	for _, user := range users {
		if _, err := s.db.ExecContext(ctx, `INSERT INTO users (uid, email, name, picture, created_at, last_login)
                        VALUES (?, ?, ?, ?, ?, ?)
                        ON CONFLICT(uid) DO UPDATE SET
                                email = excluded.email,
                                name = excluded.name,
                                picture = excluded.picture,
                                last_login = MAX(last_login, excluded.last_login)`,
			user.UID, user.Email, user.Name, user.Picture, user.CreatedAt, user.LastLogin); err != nil {
			return 0, fmt.Errorf("sync user %s: %w", user.UID, err)
		}
	}
	if len(users) > 0 {
		common.Logger().Info("sqlite: synced fallback users", "count", len(users), "source", mem.Path())
	}
	return len(users), nil
}
