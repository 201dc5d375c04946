package store

import (
	"path/filepath"
	"sync"

	"palaver/internal/domain"
)

const bundlesFile = "bundles.json"

// BundleFileStore caches peer prekey bundles by DID.
type BundleFileStore struct {
	dir string
	mu  sync.Mutex
}

// NewBundleFileStore returns a BundleFileStore rooted at dir.
func NewBundleFileStore(dir string) *BundleFileStore { return &BundleFileStore{dir: dir} }

func (s *BundleFileStore) SaveBundle(b domain.PrekeyBundle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := make(map[string]domain.PrekeyBundle)
	if err := readJSON(filepath.Join(s.dir, bundlesFile), &m); err != nil {
		return err
	}
	m[b.DID] = b
	return writeJSON(filepath.Join(s.dir, bundlesFile), m, 0o600)
}

func (s *BundleFileStore) LoadBundle(did string) (domain.PrekeyBundle, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := make(map[string]domain.PrekeyBundle)
	if err := readJSON(filepath.Join(s.dir, bundlesFile), &m); err != nil {
		return domain.PrekeyBundle{}, false, err
	}
	b, ok := m[did]
	return b, ok, nil
}

// Compile-time assertion that BundleFileStore implements domain.BundleStore.
var _ domain.BundleStore = (*BundleFileStore)(nil)
