package domain

// RatchetHeader is sent in the clear alongside every ciphertext; the
// receiver needs it to re-derive the message key.
type RatchetHeader struct {
	RatchetPub []byte `json:"ratchet_pub"`
	PN         uint32 `json:"pn"` // length of the previous sending chain
	N          uint32 `json:"n"`  // message number within the current chain
}

// SkippedKey is a cached message key for a message that has not arrived
// yet, keyed by the ratchet public key of its chain and its message
// number. Entries are kept in insertion order so the oldest can be
// evicted first.
type SkippedKey struct {
	RatchetPub []byte `json:"ratchet_pub"`
	N          uint32 `json:"n"`
	MessageKey []byte `json:"message_key"`
}

// RatchetState is the full Double Ratchet state for one peer. It is a
// single mutable record; all access must be serialized per peer.
type RatchetState struct {
	RootKey   []byte        `json:"root_key"`
	DHPriv    X25519Private `json:"dh_priv"`
	DHPub     X25519Public  `json:"dh_pub"`
	PeerDHPub X25519Public  `json:"peer_dh_pub"`
	HasPeerDH bool          `json:"has_peer_dh"`

	// Previous remote ratchet key, kept so messages from the last
	// completed chain whose cached keys are gone can be reported as
	// unavailable instead of failing authentication.
	PrevPeerDHPub X25519Public `json:"prev_peer_dh_pub"`
	HasPrevPeerDH bool         `json:"has_prev_peer_dh"`

	SendCK     []byte       `json:"send_ck,omitempty"`
	RecvCK     []byte       `json:"recv_ck,omitempty"`
	Ns         uint32       `json:"ns"`
	Nr         uint32       `json:"nr"`
	PN         uint32       `json:"pn"`
	Skipped    []SkippedKey `json:"skipped,omitempty"`
	MaxSkipped int          `json:"max_skipped"`
}

// Envelope is the wire form of an encrypted message.
type Envelope struct {
	Header    RatchetHeader `json:"header"`
	Cipher    []byte        `json:"cipher"`
	Handshake *Handshake    `json:"handshake,omitempty"` // first message only
	Timestamp int64         `json:"timestamp"`           // epoch milliseconds, informational
}

// Conversation persists the ratchet state for a peer DID. Handshake is
// retained while we are the initiator and have not yet heard back, so
// it can ride along on every outgoing envelope until the peer is known
// to have seeded its side.
type Conversation struct {
	Peer      string       `json:"peer"`
	State     RatchetState `json:"state"`
	Handshake *Handshake   `json:"handshake,omitempty"`
}
