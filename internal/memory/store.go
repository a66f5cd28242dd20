// File path: internal/memory/store.go
package memory

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Chanthani-N-R-31/Python-Flowchart-Generator/internal/userstore"
)

var _ userstore.Store = (*Store)(nil)

// Store keeps user profiles in a single JSONL file. It backs deployments
// that run without a SQLite catalog; every write rewrites the file under
// the lock, one JSON object per line.
type Store struct {
	path string
	mu   sync.RWMutex
}

func NewStore(path string) (*Store, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, errors.New("store path required")
	}
	if dir := filepath.Dir(trimmed); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}
	return &Store{path: trimmed}, nil
}

// Upsert inserts the profile on first sign-in and refreshes the mutable
// fields afterwards, keeping the original created_at.
func (s *Store) Upsert(ctx context.Context, user userstore.User) (userstore.User, error) {
	if s == nil {
		return userstore.User{}, errors.New("store not initialized")
	}
	uid := strings.TrimSpace(user.UID)
	if uid == "" {
		return userstore.User{}, fmt.Errorf("user uid required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	users, err := s.readAll(ctx)
	if err != nil {
		return userstore.User{}, err
	}
	now := time.Now().UTC()
	record := userstore.User{
		UID:       uid,
		Email:     strings.TrimSpace(user.Email),
		Name:      strings.TrimSpace(user.Name),
		Picture:   strings.TrimSpace(user.Picture),
		CreatedAt: user.CreatedAt,
		LastLogin: now,
	}
	if existing, ok := users[uid]; ok {
		record.CreatedAt = existing.CreatedAt
	} else if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	users[uid] = record
	if err := s.writeAll(ctx, users); err != nil {
		return userstore.User{}, err
	}
	return record, nil
}

// Get returns the stored profile for uid.
func (s *Store) Get(ctx context.Context, uid string) (userstore.User, error) {
	if s == nil {
		return userstore.User{}, errors.New("store not initialized")
	}
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return userstore.User{}, fmt.Errorf("user uid required")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	users, err := s.readAll(ctx)
	if err != nil {
		return userstore.User{}, err
	}
	user, ok := users[uid]
	if !ok {
		return userstore.User{}, userstore.ErrNotFound
	}
	return user, nil
}

// Users returns every stored profile ordered by uid.
func (s *Store) Users(ctx context.Context) ([]userstore.User, error) {
	if s == nil {
		return nil, errors.New("store not initialized")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	byID, err := s.readAll(ctx)
	if err != nil {
		return nil, err
	}
	users := make([]userstore.User, 0, len(byID))
	for _, user := range byID {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].UID < users[j].UID
	})
	return users, nil
}

func (s *Store) Close() error { return nil }

// Path returns the underlying file used for persistence.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

func (s *Store) readAll(ctx context.Context) (map[string]userstore.User, error) {
	users := make(map[string]userstore.User)
	file, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return users, nil
		}
		return nil, fmt.Errorf("open store: %w", err)
	}
	defer file.Close()
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64<<10), 1<<20)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var user userstore.User
		if err := json.Unmarshal(line, &user); err != nil {
			return nil, fmt.Errorf("decode user: %w", err)
		}
		if strings.TrimSpace(user.UID) == "" {
			continue
		}
		users[user.UID] = user
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan users: %w", err)
	}
	return users, nil
}

func (s *Store) writeAll(ctx context.Context, users map[string]userstore.User) error {
	file, err := os.OpenFile(s.path, os.O_TRUNC|os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer file.Close()
	uids := make([]string, 0, len(users))
	for uid := range users {
		uids = append(uids, uid)
	}
	sort.Strings(uids)
	enc := json.NewEncoder(file)
	for _, uid := range uids {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := enc.Encode(users[uid]); err != nil {
			return fmt.Errorf("encode user: %w", err)
		}
	}
	return nil
}
