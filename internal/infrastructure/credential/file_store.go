// Package credential persists the API session cookie between CLI runs.
package credential

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

type fileState struct {
	Session string    `json:"session"`
	SavedAt time.Time `json:"saved_at"`
}

// FileStore keeps the session cookie in a 0600 JSON file.
// Implements domain.CredentialStore.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a store backed by path. The file is created lazily.
func NewFileStore(path string) (*FileStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("credentials file path is required")
	}
	return &FileStore{path: path}, nil
}

// Path returns the backing file path.
func (s *FileStore) Path() string { return s.path }

// Load returns the stored session value, or "" when none is stored.
func (s *FileStore) Load() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read credentials file: %w", err)
	}
	if len(b) == 0 {
		return "", nil
	}

	var st fileState
	if err := json.Unmarshal(b, &st); err != nil {
		return "", fmt.Errorf("decode credentials file: %w", err)
	}
	return st.Session, nil
}

// Save replaces the stored session value.
func (s *FileStore) Save(value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create credentials dir: %w", err)
	}

	b, err := json.MarshalIndent(fileState{Session: value, SavedAt: time.Now().UTC()}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode credentials file: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return fmt.Errorf("write credentials file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace credentials file: %w", err)
	}
	return nil
}

// Clear removes the stored session. Clearing an empty store is not an error.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove credentials file: %w", err)
	}
	return nil
}

// MemoryStore is an in-process store, used when no file is configured.
type MemoryStore struct {
	mu    sync.Mutex
	value string
}

// NewMemoryStore creates a memory store seeded with value.
func NewMemoryStore(value string) *MemoryStore {
	return &MemoryStore{value: value}
}

// Load returns the held value.
func (m *MemoryStore) Load() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.value, nil
}

// Save replaces the held value.
func (m *MemoryStore) Save(value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value = value
	return nil
}

// Clear drops the held value.
func (m *MemoryStore) Clear() error {
	return m.Save("")
}
