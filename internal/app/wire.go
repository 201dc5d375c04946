package app

import (
	"palaver/internal/services/exchange"
	"palaver/internal/services/identity"
	"palaver/internal/services/message"
	"palaver/internal/store"
)

// Wire bundles the services the CLI commands use.
type Wire struct {
	Identity *identity.Service
	Exchange *exchange.Coordinator
	Messages *message.Service
}

// NewWire constructs the dependency graph from cfg.
func NewWire(cfg Config) (*Wire, error) {
	window, err := cfg.proofWindow()
	if err != nil {
		return nil, err
	}

	identityStore := store.NewIdentityFileStore(cfg.Home)
	prekeyStore := store.NewPrekeyFileStore(cfg.Home)
	bundleStore := store.NewBundleFileStore(cfg.Home)
	ratchetStore := store.NewRatchetFileStore(cfg.Home)

	ids := identity.New(identityStore, ratchetStore, window)
	ex := exchange.New(ids, prekeyStore, bundleStore, ratchetStore, cfg.MaxSkippedKeys, cfg.OneTimeBatch)
	msgs := message.New(ex, ratchetStore)

	return &Wire{
		Identity: ids,
		Exchange: ex,
		Messages: msgs,
	}, nil
}
