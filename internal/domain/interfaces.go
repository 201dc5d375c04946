package domain

// IdentityStore persists the long-term identity keys.
type IdentityStore interface {
	SaveIdentity(passphrase string, id Identity) error
	LoadIdentity(passphrase string) (Identity, error)
	DeleteIdentity() error
}

// PrekeyStore manages signed and one-time prekey pairs.
type PrekeyStore interface {
	// Signed prekey
	SaveSignedPrekey(id string, priv X25519Private, pub X25519Public, sig []byte) error
	LoadSignedPrekey(id string) (priv X25519Private, pub X25519Public, sig []byte, ok bool, err error)
	SetCurrentSignedPrekeyID(id string) error
	CurrentSignedPrekeyID() (string, bool, error)

	// One-time prekeys. Consume deletes the pair so it can never be
	// used to seed a second session.
	SaveOneTimePrekeys(pairs []OneTimePair) error
	ConsumeOneTimePrekey(id string) (priv X25519Private, pub X25519Public, ok bool, err error)
	ListOneTimePrekeyPublics() ([]OneTimePub, error)
}

// BundleStore caches peer bundles by DID.
type BundleStore interface {
	SaveBundle(b PrekeyBundle) error
	LoadBundle(did string) (PrekeyBundle, bool, error)
}

// RatchetStore keeps per-peer Double Ratchet state.
type RatchetStore interface {
	SaveConversation(peer string, conv Conversation) error
	LoadConversation(peer string) (Conversation, bool, error)
	DeleteAll() error
}
