package flatstore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fasttrack/fasttrack/internal/repository"
)

// Store is a directory-backed key/value store. It is the degraded
// fallback used when the durable store cannot be opened: one file per
// key, written atomically via rename.
type Store struct {
	dir string
}

// New creates a Store rooted at dir, creating the directory if needed
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating flat store dir: %v", repository.ErrPersistence, err)
	}
	return &Store{dir: dir}, nil
}

// Set writes value under key, replacing any previous value
func (s *Store) Set(key string, value []byte) error {
	path := s.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, value, 0o644); err != nil {
		return fmt.Errorf("%w: writing %s: %v", repository.ErrPersistence, key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: writing %s: %v", repository.ErrPersistence, key, err)
	}
	return nil
}

// Get returns the value stored under key, or repository.ErrNotFound
func (s *Store) Get(key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", repository.ErrPersistence, key, err)
	}
	return data, nil
}

// Remove deletes the value stored under key. Removing a missing key is
// not an error.
func (s *Store) Remove(key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: removing %s: %v", repository.ErrPersistence, key, err)
	}
	return nil
}

// path maps a key to a file name, replacing separators so keys can't
// escape the store directory.
func (s *Store) path(key string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		default:
			return '_'
		}
	}, key)
	return filepath.Join(s.dir, safe+".json")
}
