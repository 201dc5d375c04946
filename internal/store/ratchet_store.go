package store

import (
	"errors"
	"os"
	"path/filepath"
	"sync"

	"palaver/internal/domain"
)

const conversationsFile = "conversations.json"

// RatchetFileStore persists per-peer Double Ratchet state.
type RatchetFileStore struct {
	dir string
	mu  sync.Mutex
}

// NewRatchetFileStore returns a RatchetFileStore rooted at dir.
func NewRatchetFileStore(dir string) *RatchetFileStore { return &RatchetFileStore{dir: dir} }

func (s *RatchetFileStore) SaveConversation(peer string, conv domain.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := make(map[string]domain.Conversation)
	if err := readJSON(filepath.Join(s.dir, conversationsFile), &m); err != nil {
		return err
	}
	m[peer] = conv
	return writeJSON(filepath.Join(s.dir, conversationsFile), m, 0o600)
}

func (s *RatchetFileStore) LoadConversation(peer string) (domain.Conversation, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := make(map[string]domain.Conversation)
	if err := readJSON(filepath.Join(s.dir, conversationsFile), &m); err != nil {
		return domain.Conversation{}, false, err
	}
	conv, ok := m[peer]
	return conv, ok, nil
}

// DeleteAll removes every conversation; used when the identity is wiped.
func (s *RatchetFileStore) DeleteAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(filepath.Join(s.dir, conversationsFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Compile-time assertion that RatchetFileStore implements domain.RatchetStore.
var _ domain.RatchetStore = (*RatchetFileStore)(nil)
