package filestore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jrsteele09/member-portal/store"
	"github.com/rs/zerolog"
)

var _ store.Store = (*Store)(nil)

// Store keeps every key in a single JSON object on disk. Each mutation rewrites the
// file through a temporary file and a rename, so readers never see a half-written file.
type Store struct {
	path   string
	values map[string]string
	log    zerolog.Logger
	mu     sync.RWMutex
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used to report an unreadable store file.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) {
		s.log = l
	}
}

// Open loads the store at path. A missing file is an empty store; a corrupt file is
// logged and treated as empty so a damaged file never blocks start-up.
func Open(path string, opts ...Option) (*Store, error) {
	s := &Store{
		path:   path,
		values: make(map[string]string),
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("read session store %s: %w", path, err)
	}

	if err := json.Unmarshal(data, &s.values); err != nil {
		s.log.Warn().Err(err).Str("path", path).Msg("session store file is unreadable, starting empty")
		s.values = make(map[string]string)
	}
	return s, nil
}

// Path returns the file backing the store.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	return v, ok, nil
}

func (s *Store) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.mutate(func(values map[string]string) {
		values[key] = value
	})
}

func (s *Store) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.values[key]; !ok {
		return nil
	}
	return s.mutate(func(values map[string]string) {
		delete(values, key)
	})
}

func (s *Store) Clear(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.mutate(func(values map[string]string) {
		for _, k := range keys {
			delete(values, k)
		}
	})
}

// mutate applies fn to a copy of the values and only swaps it in once the file is written.
func (s *Store) mutate(fn func(map[string]string)) error {
	next := make(map[string]string, len(s.values)+1)
	for k, v := range s.values {
		next[k] = v
	}
	fn(next)

	if err := s.write(next); err != nil {
		return err
	}
	s.values = next
	return nil
}

func (s *Store) write(values map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("create session store directory: %w", err)
	}

	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session store: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".session-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp session file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp session file: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp session file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace session store: %w", err)
	}
	return nil
}
