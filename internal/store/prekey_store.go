package store

import (
	"path/filepath"
	"sync"
	"time"

	"palaver/internal/domain"
)

const (
	spkPairsFile = "spk_pairs.json"
	opkPairsFile = "opk_pairs.json"
	metaFile     = "prekey_meta.json"
)

type spkPair struct {
	Priv domain.X25519Private `json:"priv"`
	Pub  domain.X25519Public  `json:"pub"`
	Sig  []byte               `json:"sig"`
	At   int64                `json:"at"`
}

type opkPair struct {
	Priv domain.X25519Private `json:"priv"`
	Pub  domain.X25519Public  `json:"pub"`
	At   int64                `json:"at"`
}

type prekeyMeta struct {
	CurrentSPKID string `json:"current_spk_id"`
}

// PrekeyFileStore stores signed and one-time prekey pairs on disk.
type PrekeyFileStore struct {
	dir string
	mu  sync.Mutex
}

// NewPrekeyFileStore returns a PrekeyFileStore rooted at dir.
func NewPrekeyFileStore(dir string) *PrekeyFileStore { return &PrekeyFileStore{dir: dir} }

func (s *PrekeyFileStore) SaveSignedPrekey(id string, priv domain.X25519Private, pub domain.X25519Public, sig []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := make(map[string]spkPair)
	if err := readJSON(filepath.Join(s.dir, spkPairsFile), &m); err != nil {
		return err
	}
	m[id] = spkPair{Priv: priv, Pub: pub, Sig: append([]byte(nil), sig...), At: time.Now().Unix()}
	return writeJSON(filepath.Join(s.dir, spkPairsFile), m, 0o600)
}

func (s *PrekeyFileStore) LoadSignedPrekey(id string) (priv domain.X25519Private, pub domain.X25519Public, sig []byte, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := make(map[string]spkPair)
	if err = readJSON(filepath.Join(s.dir, spkPairsFile), &m); err != nil {
		return priv, pub, nil, false, err
	}
	p, exists := m[id]
	if !exists {
		return priv, pub, nil, false, nil
	}
	return p.Priv, p.Pub, append([]byte(nil), p.Sig...), true, nil
}

func (s *PrekeyFileStore) SetCurrentSignedPrekeyID(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return writeJSON(filepath.Join(s.dir, metaFile), prekeyMeta{CurrentSPKID: id}, 0o600)
}

func (s *PrekeyFileStore) CurrentSignedPrekeyID() (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var meta prekeyMeta
	if err := readJSON(filepath.Join(s.dir, metaFile), &meta); err != nil {
		return "", false, err
	}
	if meta.CurrentSPKID == "" {
		return "", false, nil
	}
	return meta.CurrentSPKID, true, nil
}

func (s *PrekeyFileStore) SaveOneTimePrekeys(pairs []domain.OneTimePair) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := make(map[string]opkPair)
	if err := readJSON(filepath.Join(s.dir, opkPairsFile), &m); err != nil {
		return err
	}
	for _, p := range pairs {
		m[p.ID] = opkPair{Priv: p.Priv, Pub: p.Pub, At: time.Now().Unix()}
	}
	return writeJSON(filepath.Join(s.dir, opkPairsFile), m, 0o600)
}

// ConsumeOneTimePrekey returns the pair and deletes it. A consumed
// one-time prekey can never seed a second session.
func (s *PrekeyFileStore) ConsumeOneTimePrekey(id string) (priv domain.X25519Private, pub domain.X25519Public, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := make(map[string]opkPair)
	if err = readJSON(filepath.Join(s.dir, opkPairsFile), &m); err != nil {
		return priv, pub, false, err
	}
	p, exists := m[id]
	if !exists {
		return priv, pub, false, nil
	}
	delete(m, id)
	if err = writeJSON(filepath.Join(s.dir, opkPairsFile), m, 0o600); err != nil {
		return priv, pub, false, err
	}
	return p.Priv, p.Pub, true, nil
}

// ListOneTimePrekeyPublics returns the remaining one-time publics.
func (s *PrekeyFileStore) ListOneTimePrekeyPublics() ([]domain.OneTimePub, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := make(map[string]opkPair)
	if err := readJSON(filepath.Join(s.dir, opkPairsFile), &m); err != nil {
		return nil, err
	}
	out := make([]domain.OneTimePub, 0, len(m))
	for id, p := range m {
		out = append(out, domain.OneTimePub{ID: id, Pub: p.Pub})
	}
	return out, nil
}

// Compile-time assertion that PrekeyFileStore implements domain.PrekeyStore.
var _ domain.PrekeyStore = (*PrekeyFileStore)(nil)
